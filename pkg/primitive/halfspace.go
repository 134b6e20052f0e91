package primitive

import (
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Halfspace is the raw definition of the infinite region behind a plane.
// Points p with Normal·p <= Dist are inside; Normal points outward.
type Halfspace struct {
	Normal core.Vec3
	Dist   float64
}

// Kind implements Definition
func (Halfspace) Kind() Kind { return KindHalfspace }

type preparedHalfspace struct {
	normal    core.Vec3 // unit, local frame
	dist      float64
	placement Placement
}

func prepareHalfspace(def Definition, placement Placement, tol core.Tolerance) (Solid, error) {
	h, ok := def.(Halfspace)
	if !ok {
		return nil, wrongDefinition(KindHalfspace, def)
	}
	length := h.Normal.Length()
	if length < tol.Perp || !h.Normal.IsFinite() || math.IsNaN(h.Dist) || math.IsInf(h.Dist, 0) {
		return nil, prepError(KindHalfspace, "halfspace normal is zero")
	}
	return &preparedHalfspace{
		normal:    h.Normal.Multiply(1 / length),
		dist:      h.Dist / length,
		placement: placement,
	}, nil
}

// Bounds implements Solid
func (h *preparedHalfspace) Bounds() core.AABB {
	return core.InfiniteAABB()
}

// Intersect implements Solid
func (h *preparedHalfspace) Intersect(ray core.Ray, tol core.Tolerance, dst []core.Seg) []core.Seg {
	local := h.placement.RayToLocal(ray)
	dn := h.normal.Dot(local.Direction)
	above := h.normal.Dot(local.Origin) - h.dist

	worldNormal := h.placement.NormalToWorld(h.normal)
	farIn := core.Hit{Dist: math.Inf(-1), Normal: ray.Direction.Negate()}
	farOut := core.Hit{Dist: math.Inf(1), Normal: ray.Direction}

	if math.Abs(dn) < 1e-12 {
		// Parallel: the whole line is either inside or outside
		if above > 0 {
			return dst
		}
		return append(dst, core.Seg{In: farIn, Out: farOut})
	}

	t := -above / dn
	plane := core.Hit{Dist: t, Point: ray.At(t), Normal: worldNormal}
	if dn < 0 {
		return append(dst, core.Seg{In: plane, Out: farOut})
	}
	return append(dst, core.Seg{In: farIn, Out: plane})
}

// Classify implements Solid
func (h *preparedHalfspace) Classify(ray core.Ray, hit core.Hit) core.Surface {
	normal := h.placement.NormalToWorld(h.normal)
	if hit.IsInfinite() {
		normal = hit.Normal
	}

	// Surface coordinates tile the plane with unit squares
	p := h.placement.PointToLocal(hit.Point)
	u := h.normal.Perpendicular()
	v := h.normal.Cross(u)
	uc := p.Dot(u)
	vc := p.Dot(v)

	return core.Surface{
		Normal:    normal,
		Curvature: core.Curvature{PDir: normal.Perpendicular()},
		UV:        core.UV{U: uc - math.Floor(uc), V: vc - math.Floor(vc)},
	}
}

// Release implements Solid
func (h *preparedHalfspace) Release() {}
