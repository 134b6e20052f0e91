package primitive

import (
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Box is the raw definition of a rectangular parallelepiped given by its
// local min and max corners. Rotated boxes come from the placement.
type Box struct {
	Min core.Vec3
	Max core.Vec3
}

// Kind implements Definition
func (Box) Kind() Kind { return KindBox }

// NewCenteredBox builds a box definition from a center and half-extents
func NewCenteredBox(center, halfSize core.Vec3) Box {
	return Box{Min: center.Subtract(halfSize), Max: center.Add(halfSize)}
}

// preparedBox is the precomputed state of a placed box. Surface ids are
// 2*axis for the min face and 2*axis+1 for the max face.
type preparedBox struct {
	local     core.AABB
	placement Placement
	bounds    core.AABB
}

func prepareBox(def Definition, placement Placement, tol core.Tolerance) (Solid, error) {
	b, ok := def.(Box)
	if !ok {
		return nil, wrongDefinition(KindBox, def)
	}
	local := core.NewAABB(b.Min, b.Max)
	if !local.Min.IsFinite() || !local.Max.IsFinite() {
		return nil, prepError(KindBox, "box corners must be finite")
	}
	size := local.Size()
	if size.X <= tol.Dist || size.Y <= tol.Dist || size.Z <= tol.Dist {
		return nil, prepError(KindBox, "box has zero volume")
	}

	return &preparedBox{
		local:     local,
		placement: placement,
		bounds:    placement.BoundsToWorld(local),
	}, nil
}

// Bounds implements Solid
func (b *preparedBox) Bounds() core.AABB {
	return b.bounds
}

// Intersect implements Solid
func (b *preparedBox) Intersect(ray core.Ray, tol core.Tolerance, dst []core.Seg) []core.Seg {
	local := b.placement.RayToLocal(ray)

	tNear := math.Inf(-1)
	tFar := math.Inf(1)
	inFace, outFace := -1, -1

	for axis := 0; axis < 3; axis++ {
		min := b.local.Min.Axis(axis)
		max := b.local.Max.Axis(axis)
		origin := local.Origin.Axis(axis)
		direction := local.Direction.Axis(axis)

		if math.Abs(direction) < 1e-12 {
			if origin < min || origin > max {
				return dst
			}
			continue
		}

		t1 := (min - origin) / direction
		t2 := (max - origin) / direction
		f1, f2 := 2*axis, 2*axis+1
		if t1 > t2 {
			t1, t2 = t2, t1
			f1, f2 = f2, f1
		}

		if t1 > tNear {
			tNear, inFace = t1, f1
		}
		if t2 < tFar {
			tFar, outFace = t2, f2
		}
		if tNear >= tFar {
			return dst
		}
	}

	if inFace < 0 || outFace < 0 {
		// Zero direction in the local frame
		return dst
	}

	return append(dst, core.Seg{
		In:  core.Hit{Dist: tNear, Point: ray.At(tNear), Normal: b.faceNormal(inFace), Surf: inFace},
		Out: core.Hit{Dist: tFar, Point: ray.At(tFar), Normal: b.faceNormal(outFace), Surf: outFace},
	})
}

func (b *preparedBox) faceNormal(face int) core.Vec3 {
	n := unit(face / 2)
	if face%2 == 0 {
		n = n.Negate()
	}
	return b.placement.NormalToWorld(n)
}

// Classify implements Solid
func (b *preparedBox) Classify(ray core.Ray, hit core.Hit) core.Surface {
	face := hit.Surf
	if face < 0 || face > 5 {
		face = b.nearestFace(b.placement.PointToLocal(hit.Point))
	}
	normal := b.faceNormal(face)

	// Surface coordinates run along the two axes spanning the face
	p := b.placement.PointToLocal(hit.Point)
	size := b.local.Size()
	uAxis := (face/2 + 1) % 3
	vAxis := (face/2 + 2) % 3

	return core.Surface{
		Normal: normal,
		Curvature: core.Curvature{
			PDir: normal.Perpendicular(),
		},
		UV: core.UV{
			U: clamp01((p.Axis(uAxis) - b.local.Min.Axis(uAxis)) / size.Axis(uAxis)),
			V: clamp01((p.Axis(vAxis) - b.local.Min.Axis(vAxis)) / size.Axis(vAxis)),
		},
	}
}

// nearestFace returns the face whose plane is closest to a local point
func (b *preparedBox) nearestFace(p core.Vec3) int {
	best, bestDist := 0, math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		if d := math.Abs(p.Axis(axis) - b.local.Min.Axis(axis)); d < bestDist {
			best, bestDist = 2*axis, d
		}
		if d := math.Abs(p.Axis(axis) - b.local.Max.Axis(axis)); d < bestDist {
			best, bestDist = 2*axis+1, d
		}
	}
	return best
}

// Release implements Solid
func (b *preparedBox) Release() {}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
