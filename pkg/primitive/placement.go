package primitive

import (
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Placement positions a primitive's local frame in the model. It wraps an
// sdfx world-from-local matrix together with its inverse.
type Placement struct {
	m   sdf.M44
	inv sdf.M44
}

// Identity returns a placement that leaves the primitive where it is
func Identity() Placement {
	return Placement{m: sdf.Identity3d(), inv: sdf.Identity3d()}
}

// Translate returns a placement that moves the primitive by (x, y, z)
func Translate(x, y, z float64) Placement {
	return fromMatrix(sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z}))
}

// RotateDegrees returns a placement rotating by Euler angles in degrees,
// applied around X, then Y, then Z.
func RotateDegrees(x, y, z float64) Placement {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0
	return fromMatrix(sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad)))
}

// Scale returns a placement scaling the primitive along each axis
func Scale(x, y, z float64) Placement {
	return fromMatrix(sdf.Scale3d(v3.Vec{X: x, Y: y, Z: z}))
}

// Matrix wraps an arbitrary sdfx matrix as a placement
func Matrix(m sdf.M44) Placement {
	return fromMatrix(m)
}

func fromMatrix(m sdf.M44) Placement {
	return Placement{m: m, inv: m.Inverse()}
}

// Then returns the placement that applies p first and next afterwards
func (p Placement) Then(next Placement) Placement {
	return Placement{m: next.m.Mul(p.m), inv: p.inv.Mul(next.inv)}
}

// IsIdentity reports whether the placement leaves points unchanged
func (p Placement) IsIdentity() bool {
	return p.m == sdf.Identity3d()
}

// M44 returns the world-from-local sdfx matrix
func (p Placement) M44() sdf.M44 {
	return p.m
}

// IsDegenerate reports whether the placement collapses space (zero scale)
// or contains non-finite values
func (p Placement) IsDegenerate() bool {
	origin := p.PointToLocal(core.Vec3{})
	if !origin.IsFinite() {
		return true
	}
	for axis := 0; axis < 3; axis++ {
		col := p.vectorToWorld(unit(axis))
		if !col.IsFinite() || col.LengthSquared() < 1e-24 {
			return true
		}
	}
	return false
}

// PointToWorld maps a local point into model space
func (p Placement) PointToWorld(v core.Vec3) core.Vec3 {
	return fromV3(p.m.MulPosition(toV3(v)))
}

// PointToLocal maps a model-space point into the primitive's frame
func (p Placement) PointToLocal(v core.Vec3) core.Vec3 {
	return fromV3(p.inv.MulPosition(toV3(v)))
}

// RayToLocal maps a ray into the local frame without renormalizing the
// direction, so a parameter t means the same point in both frames.
func (p Placement) RayToLocal(r core.Ray) core.Ray {
	origin := p.PointToLocal(r.Origin)
	tip := p.PointToLocal(r.Origin.Add(r.Direction))
	return core.Ray{Origin: origin, Direction: tip.Subtract(origin)}
}

// NormalToWorld maps a local normal into model space using the inverse
// transpose and renormalizes it
func (p Placement) NormalToWorld(n core.Vec3) core.Vec3 {
	c0 := p.vectorToLocal(unit(0))
	c1 := p.vectorToLocal(unit(1))
	c2 := p.vectorToLocal(unit(2))
	return core.NewVec3(n.Dot(c0), n.Dot(c1), n.Dot(c2)).Normalize()
}

// BoundsToWorld returns the model-space box enclosing a local box
func (p Placement) BoundsToWorld(b core.AABB) core.AABB {
	if b.IsInfinite() {
		return core.InfiniteAABB()
	}
	box := p.m.MulBox(sdf.Box3{Min: toV3(b.Min), Max: toV3(b.Max)})
	return core.NewAABB(fromV3(box.Min), fromV3(box.Max))
}

func (p Placement) vectorToWorld(v core.Vec3) core.Vec3 {
	return p.PointToWorld(v).Subtract(p.PointToWorld(core.Vec3{}))
}

func (p Placement) vectorToLocal(v core.Vec3) core.Vec3 {
	return p.PointToLocal(v).Subtract(p.PointToLocal(core.Vec3{}))
}

func unit(axis int) core.Vec3 {
	switch axis {
	case 0:
		return core.NewVec3(1, 0, 0)
	case 1:
		return core.NewVec3(0, 1, 0)
	default:
		return core.NewVec3(0, 0, 1)
	}
}

func toV3(v core.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) core.Vec3 {
	return core.NewVec3(v.X, v.Y, v.Z)
}
