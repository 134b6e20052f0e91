package primitive

import (
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Sphere is the raw definition of a sphere in its local frame. A
// non-uniform placement scale turns it into an ellipsoid.
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// Kind implements Definition
func (Sphere) Kind() Kind { return KindSphere }

// preparedSphere is the precomputed state of a placed sphere
type preparedSphere struct {
	center    core.Vec3 // local center
	radius    float64
	radiusSq  float64
	invRadius float64
	placement Placement
	bounds    core.AABB
}

func prepareSphere(def Definition, placement Placement, tol core.Tolerance) (Solid, error) {
	s, ok := def.(Sphere)
	if !ok {
		return nil, wrongDefinition(KindSphere, def)
	}
	if s.Radius <= tol.Dist || math.IsNaN(s.Radius) || !s.Center.IsFinite() {
		return nil, prepError(KindSphere, "sphere radius below distance tolerance")
	}

	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	local := core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))

	return &preparedSphere{
		center:    s.Center,
		radius:    s.Radius,
		radiusSq:  s.Radius * s.Radius,
		invRadius: 1.0 / s.Radius,
		placement: placement,
		bounds:    placement.BoundsToWorld(local),
	}, nil
}

// Bounds implements Solid
func (s *preparedSphere) Bounds() core.AABB {
	return s.bounds
}

// Intersect implements Solid
func (s *preparedSphere) Intersect(ray core.Ray, tol core.Tolerance, dst []core.Seg) []core.Seg {
	local := s.placement.RayToLocal(ray)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	oc := local.Origin.Subtract(s.center)
	a := local.Direction.LengthSquared()
	if a < 1e-24 {
		return dst
	}
	halfB := oc.Dot(local.Direction)
	c := oc.LengthSquared() - s.radiusSq

	discriminant := halfB*halfB - a*c
	if discriminant <= 0 || math.IsNaN(discriminant) {
		// Tangent rays graze without entering
		return dst
	}

	sqrtD := math.Sqrt(discriminant)
	t0 := (-halfB - sqrtD) / a
	t1 := (-halfB + sqrtD) / a

	return append(dst, core.Seg{
		In:  s.hit(ray, local, t0),
		Out: s.hit(ray, local, t1),
	})
}

func (s *preparedSphere) hit(ray, local core.Ray, t float64) core.Hit {
	localNormal := local.At(t).Subtract(s.center).Multiply(s.invRadius)
	return core.Hit{
		Dist:   t,
		Point:  ray.At(t),
		Normal: s.placement.NormalToWorld(localNormal),
	}
}

// Classify implements Solid
func (s *preparedSphere) Classify(ray core.Ray, hit core.Hit) core.Surface {
	local := s.placement.PointToLocal(hit.Point).Subtract(s.center).Multiply(s.invRadius)
	normal := s.placement.NormalToWorld(local)

	worldRadius := hit.Point.Subtract(s.placement.PointToWorld(s.center)).Length()
	curvature := -s.invRadius
	if worldRadius > 0 {
		curvature = -1.0 / worldRadius
	}

	return core.Surface{
		Normal: normal,
		Curvature: core.Curvature{
			PDir: normal.Perpendicular(),
			C1:   curvature,
			C2:   curvature,
		},
		UV: core.UV{
			U: math.Atan2(local.Y, local.X)/(2*math.Pi) + 0.5,
			V: math.Acos(math.Max(-1, math.Min(1, local.Z))) / math.Pi,
		},
	}
}

// Release implements Solid
func (s *preparedSphere) Release() {}
