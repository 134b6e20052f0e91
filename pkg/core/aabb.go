package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns an inverted box that acts as the identity for Union
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// InfiniteAABB returns a box covering all of space
func InfiniteAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(-inf, -inf, -inf),
		Max: NewVec3(inf, inf, inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]
	for _, point := range points[1:] {
		min = min.Min(point)
		max = max.Max(point)
	}

	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, _, ok := aabb.Intersect(ray, NewRecips(ray), tMin, tMax)
	return ok
}

// Intersect clips the parametric range [tMin, tMax] against the box and
// returns the entry and exit distances. Axes flagged parallel in rr only
// check that the origin lies inside the slab.
func (aabb AABB) Intersect(ray Ray, rr Recips, tMin, tMax float64) (float64, float64, bool) {
	for axis := 0; axis < 3; axis++ {
		min := aabb.Min.Axis(axis)
		max := aabb.Max.Axis(axis)
		origin := ray.Origin.Axis(axis)

		// Handle parallel rays (direction near zero)
		if rr.Parallel[axis] {
			if origin < min || origin > max {
				return 0, 0, false // Ray origin outside slab
			}
			continue
		}

		t1 := (min - origin) * rr.Inv[axis]
		t2 := (max - origin) * rr.Inv[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		// Infinite slabs give NaN when the origin sits on an infinite face
		if !math.IsNaN(t1) {
			tMin = math.Max(tMin, t1)
		}
		if !math.IsNaN(t2) {
			tMax = math.Min(tMax, t2)
		}

		if tMin > tMax {
			return 0, 0, false
		}
	}

	return tMin, tMax, true
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// Intersection returns the overlapping region of two boxes (may be invalid)
func (aabb AABB) Intersection(other AABB) AABB {
	return AABB{Min: aabb.Min.Max(other.Min), Max: aabb.Max.Min(other.Max)}
}

// Overlaps reports whether two boxes share any volume or touch
func (aabb AABB) Overlaps(other AABB) bool {
	return aabb.Min.X <= other.Max.X && aabb.Max.X >= other.Min.X &&
		aabb.Min.Y <= other.Max.Y && aabb.Max.Y >= other.Min.Y &&
		aabb.Min.Z <= other.Max.Z && aabb.Max.Z >= other.Min.Z
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0 // X axis
	}
	if size.Y > size.Z {
		return 1 // Y axis
	}
	return 2 // Z axis
}

// IsValid returns true if this is a valid AABB (min <= max for all axes)
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// IsInfinite reports whether any bound of the box is unbounded
func (aabb AABB) IsInfinite() bool {
	return !aabb.Min.IsFinite() || !aabb.Max.IsFinite()
}

// Expand returns an AABB expanded by the given amount in all directions
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}

// WithAxis returns a copy of the box with the given axis bounds replaced
func (aabb AABB) WithAxis(axis int, min, max float64) AABB {
	switch axis {
	case 0:
		aabb.Min.X, aabb.Max.X = min, max
	case 1:
		aabb.Min.Y, aabb.Max.Y = min, max
	default:
		aabb.Min.Z, aabb.Max.Z = min, max
	}
	return aabb
}
