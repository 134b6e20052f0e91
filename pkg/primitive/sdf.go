package primitive

import (
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/deadsy/sdfx/sdf"
)

// SDF wraps an sdfx signed distance field as a primitive. The field must
// be negative inside, positive outside and must not overestimate the
// distance to its surface.
type SDF struct {
	Shape sdf.SDF3
}

// Kind implements Definition
func (SDF) Kind() Kind { return KindSDF }

const (
	sdfMaxSteps     = 2048
	sdfCoarseSteps  = sdfMaxSteps / 2 // Floor on the step count across the bounds
	sdfBisectSteps  = 48
	sdfBoundsMargin = 0.01
)

type preparedSDF struct {
	shape     sdf.SDF3
	local     core.AABB // padded local bounds
	placement Placement
	bounds    core.AABB
	gradStep  float64
}

func prepareSDF(def Definition, placement Placement, tol core.Tolerance) (Solid, error) {
	s, ok := def.(SDF)
	if !ok {
		return nil, wrongDefinition(KindSDF, def)
	}
	if s.Shape == nil {
		return nil, prepError(KindSDF, "sdf has no shape")
	}

	bb := s.Shape.BoundingBox()
	local := core.NewAABB(fromV3(bb.Min), fromV3(bb.Max))
	if !local.Min.IsFinite() || !local.Max.IsFinite() {
		return nil, prepError(KindSDF, "sdf bounding box must be finite")
	}
	size := local.Size()
	if size.X <= tol.Dist || size.Y <= tol.Dist || size.Z <= tol.Dist {
		return nil, prepError(KindSDF, "sdf bounding box has zero volume")
	}

	pad := size.Length()*sdfBoundsMargin + tol.Dist
	local = local.Expand(pad)

	return &preparedSDF{
		shape:     s.Shape,
		local:     local,
		placement: placement,
		bounds:    placement.BoundsToWorld(local),
		gradStep:  math.Max(tol.Dist, size.Length()*1e-6),
	}, nil
}

// Bounds implements Solid
func (s *preparedSDF) Bounds() core.AABB {
	return s.bounds
}

func (s *preparedSDF) eval(p core.Vec3) float64 {
	return s.shape.Evaluate(toV3(p))
}

// Intersect implements Solid. It sphere traces the ray across the padded
// bounds and refines every sign change by bisection.
func (s *preparedSDF) Intersect(ray core.Ray, tol core.Tolerance, dst []core.Seg) []core.Seg {
	local := s.placement.RayToLocal(ray)
	scale := local.Direction.Length()
	if scale < 1e-12 {
		return dst
	}

	t0, t1, ok := s.local.Intersect(local, core.NewRecips(local), math.Inf(-1), math.Inf(1))
	if !ok || math.IsInf(t0, 0) || math.IsInf(t1, 0) {
		return dst
	}

	// A field that stays close to zero along the ray would otherwise
	// creep in tolerance-sized steps and never reach the far side
	start := len(dst)
	minStep := math.Max(tol.Dist/scale, (t1-t0)/sdfCoarseSteps)

	t := t0
	d := s.eval(local.At(t))
	if math.IsNaN(d) {
		return dst
	}
	inside := d < 0
	var in core.Hit
	if inside {
		in = s.hit(ray, local, t)
	}

	for steps := 0; t < t1; steps++ {
		if steps >= sdfMaxSteps {
			// Did not converge: report nothing rather than a partial answer
			return dst[:start]
		}

		prevT, prevD := t, d
		t = math.Min(t+math.Max(math.Abs(d)/scale, minStep), t1)
		d = s.eval(local.At(t))
		if math.IsNaN(d) {
			return dst[:start]
		}

		if (d < 0) == inside {
			continue
		}

		root := s.bisect(local, prevT, t, prevD)
		if inside {
			dst = append(dst, core.Seg{In: in, Out: s.hit(ray, local, root)})
		} else {
			in = s.hit(ray, local, root)
		}
		inside = !inside
	}

	if inside {
		// The field is still negative where the padded bounds end
		dst = append(dst, core.Seg{In: in, Out: s.hit(ray, local, t1)})
	}
	return dst
}

// bisect narrows a sign change of the field between ta and tb
func (s *preparedSDF) bisect(local core.Ray, ta, tb, da float64) float64 {
	for i := 0; i < sdfBisectSteps; i++ {
		mid := 0.5 * (ta + tb)
		dm := s.eval(local.At(mid))
		if (dm < 0) == (da < 0) {
			ta, da = mid, dm
		} else {
			tb = mid
		}
	}
	return 0.5 * (ta + tb)
}

func (s *preparedSDF) hit(ray, local core.Ray, t float64) core.Hit {
	return core.Hit{
		Dist:   t,
		Point:  ray.At(t),
		Normal: s.placement.NormalToWorld(s.gradient(local.At(t))),
	}
}

// gradient estimates the field gradient with central differences
func (s *preparedSDF) gradient(p core.Vec3) core.Vec3 {
	h := s.gradStep
	g := core.NewVec3(
		s.eval(p.Add(core.NewVec3(h, 0, 0)))-s.eval(p.Subtract(core.NewVec3(h, 0, 0))),
		s.eval(p.Add(core.NewVec3(0, h, 0)))-s.eval(p.Subtract(core.NewVec3(0, h, 0))),
		s.eval(p.Add(core.NewVec3(0, 0, h)))-s.eval(p.Subtract(core.NewVec3(0, 0, h))),
	)
	if g.LengthSquared() == 0 || !g.IsFinite() {
		return unit(2)
	}
	return g
}

// Classify implements Solid
func (s *preparedSDF) Classify(ray core.Ray, hit core.Hit) core.Surface {
	p := s.placement.PointToLocal(hit.Point)
	normal := s.placement.NormalToWorld(s.gradient(p))

	// Surface coordinates are the planar projection onto the bounds
	size := s.local.Size()
	return core.Surface{
		Normal:    normal,
		Curvature: core.Curvature{PDir: normal.Perpendicular()},
		UV: core.UV{
			U: clamp01((p.X - s.local.Min.X) / size.X),
			V: clamp01((p.Y - s.local.Min.Y) / size.Y),
		},
	}
}

// Release implements Solid
func (s *preparedSDF) Release() {}
