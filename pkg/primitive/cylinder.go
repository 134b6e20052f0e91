package primitive

import (
	"math"
	"sort"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Cylinder is the raw definition of a closed right circular cylinder
// running from the base center to the top center
type Cylinder struct {
	Base   core.Vec3
	Top    core.Vec3
	Radius float64
}

// Kind implements Definition
func (Cylinder) Kind() Kind { return KindCylinder }

// Cylinder surface ids
const (
	CylinderSide = iota
	CylinderBase
	CylinderTop
)

// preparedCylinder caches the axis frame of a placed cylinder
type preparedCylinder struct {
	base      core.Vec3
	axis      core.Vec3 // Unit vector from base to top
	height    float64
	radius    float64
	radiusSq  float64
	placement Placement
	bounds    core.AABB
}

func prepareCylinder(def Definition, placement Placement, tol core.Tolerance) (Solid, error) {
	c, ok := def.(Cylinder)
	if !ok {
		return nil, wrongDefinition(KindCylinder, def)
	}
	axisVector := c.Top.Subtract(c.Base)
	height := axisVector.Length()
	if height <= tol.Dist || !axisVector.IsFinite() {
		return nil, prepError(KindCylinder, "cylinder height below distance tolerance")
	}
	if c.Radius <= tol.Dist || math.IsNaN(c.Radius) {
		return nil, prepError(KindCylinder, "cylinder radius below distance tolerance")
	}

	pc := &preparedCylinder{
		base:      c.Base,
		axis:      axisVector.Multiply(1 / height),
		height:    height,
		radius:    c.Radius,
		radiusSq:  c.Radius * c.Radius,
		placement: placement,
	}
	pc.bounds = placement.BoundsToWorld(pc.localBounds(c))
	return pc, nil
}

// localBounds bounds both end discs. Each disc extends by r*sqrt(1-a²)
// along a coordinate axis whose axis component is a.
func (c *preparedCylinder) localBounds(def Cylinder) core.AABB {
	ext := core.NewVec3(
		c.radius*math.Sqrt(math.Max(0, 1-c.axis.X*c.axis.X)),
		c.radius*math.Sqrt(math.Max(0, 1-c.axis.Y*c.axis.Y)),
		c.radius*math.Sqrt(math.Max(0, 1-c.axis.Z*c.axis.Z)),
	)
	box := core.NewAABBFromPoints(def.Base, def.Top)
	return core.NewAABB(box.Min.Subtract(ext), box.Max.Add(ext))
}

// Bounds implements Solid
func (c *preparedCylinder) Bounds() core.AABB {
	return c.bounds
}

type cylinderHit struct {
	t    float64
	surf int
}

// Intersect implements Solid
func (c *preparedCylinder) Intersect(ray core.Ray, tol core.Tolerance, dst []core.Seg) []core.Seg {
	local := c.placement.RayToLocal(ray)
	if local.Direction.LengthSquared() < 1e-24 {
		return dst
	}

	delta := local.Origin.Subtract(c.base)
	dv := local.Direction.Dot(c.axis)
	deltaV := delta.Dot(c.axis)

	// Quadratic equation coefficients for the infinite side: at² + bt + cc = 0
	a := local.Direction.LengthSquared() - dv*dv
	b := 2.0 * (delta.Dot(local.Direction) - deltaV*dv)
	cc := delta.LengthSquared() - deltaV*deltaV - c.radiusSq

	var hits [4]cylinderHit
	n := 0

	if a > 1e-12 {
		discriminant := b*b - 4*a*cc
		if discriminant <= 0 {
			return dst
		}
		sqrtD := math.Sqrt(discriminant)
		for _, t := range [2]float64{(-b - sqrtD) / (2 * a), (-b + sqrtD) / (2 * a)} {
			h := deltaV + t*dv
			if h >= 0 && h <= c.height {
				hits[n] = cylinderHit{t: t, surf: CylinderSide}
				n++
			}
		}
	} else if cc > 0 {
		// Parallel to the axis and outside the side wall
		return dst
	}

	if math.Abs(dv) > 1e-12 {
		for _, end := range [2]struct {
			h    float64
			surf int
		}{{0, CylinderBase}, {c.height, CylinderTop}} {
			t := (end.h - deltaV) / dv
			p := delta.Add(local.Direction.Multiply(t))
			radial := p.Subtract(c.axis.Multiply(end.h))
			if radial.LengthSquared() <= c.radiusSq {
				hits[n] = cylinderHit{t: t, surf: end.surf}
				n++
			}
		}
	}

	if n < 2 {
		return dst
	}
	found := hits[:n]
	sort.Slice(found, func(i, j int) bool { return found[i].t < found[j].t })
	in, out := found[0], found[n-1]
	if out.t-in.t <= 0 {
		return dst
	}

	return append(dst, core.Seg{
		In:  c.hit(ray, local, in),
		Out: c.hit(ray, local, out),
	})
}

func (c *preparedCylinder) hit(ray, local core.Ray, ch cylinderHit) core.Hit {
	return core.Hit{
		Dist:   ch.t,
		Point:  ray.At(ch.t),
		Normal: c.placement.NormalToWorld(c.localNormal(local.At(ch.t), ch.surf)),
		Surf:   ch.surf,
	}
}

func (c *preparedCylinder) localNormal(p core.Vec3, surf int) core.Vec3 {
	switch surf {
	case CylinderBase:
		return c.axis.Negate()
	case CylinderTop:
		return c.axis
	default:
		h := p.Subtract(c.base).Dot(c.axis)
		axisPoint := c.base.Add(c.axis.Multiply(h))
		return p.Subtract(axisPoint).Normalize()
	}
}

// Classify implements Solid
func (c *preparedCylinder) Classify(ray core.Ray, hit core.Hit) core.Surface {
	p := c.placement.PointToLocal(hit.Point)
	normal := c.placement.NormalToWorld(c.localNormal(p, hit.Surf))

	h := p.Subtract(c.base).Dot(c.axis)
	radial := p.Subtract(c.base.Add(c.axis.Multiply(h)))
	ref := c.axis.Perpendicular()
	angle := math.Atan2(c.axis.Cross(ref).Dot(radial), ref.Dot(radial))

	surface := core.Surface{
		Normal: normal,
		UV: core.UV{
			U: angle/(2*math.Pi) + 0.5,
			V: clamp01(h / c.height),
		},
	}
	if hit.Surf == CylinderSide {
		// Flat along the axis, curved around it
		surface.Curvature = core.Curvature{
			PDir: c.placement.NormalToWorld(c.axis),
			C1:   0,
			C2:   -1 / c.radius,
		}
	} else {
		surface.Curvature = core.Curvature{PDir: normal.Perpendicular()}
		surface.UV.U = clamp01(radial.Length() / c.radius)
	}
	return surface
}

// Release implements Solid
func (c *preparedCylinder) Release() {}
