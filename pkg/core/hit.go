package core

import "math"

// Hit describes one point where a ray crosses a primitive's surface
type Hit struct {
	Dist   float64 // Distance along the ray
	Point  Vec3    // Intersection point (zero for hits at infinity)
	Normal Vec3    // Outward surface normal of the primitive
	Surf   int     // Primitive-specific surface identifier
}

// IsInfinite reports whether the hit lies at infinity (halfspace rays)
func (h Hit) IsInfinite() bool {
	return math.IsInf(h.Dist, 0)
}

// Seg is one primitive-level inside interval along a ray
type Seg struct {
	In    Hit // Entry hit
	Out   Hit // Exit hit
	Solid int // Handle of the soltab that produced this segment
}

// Len returns the distance covered by the segment
func (s Seg) Len() float64 {
	return s.Out.Dist - s.In.Dist
}

// IsValid reports whether the segment is ordered and free of NaNs
func (s Seg) IsValid() bool {
	if math.IsNaN(s.In.Dist) || math.IsNaN(s.Out.Dist) {
		return false
	}
	return s.In.Dist <= s.Out.Dist
}

// Curvature describes the principal curvatures at a surface point
type Curvature struct {
	PDir Vec3    // Direction of the first principal curvature
	C1   float64 // Curvature along PDir (negative for convex surfaces)
	C2   float64 // Curvature perpendicular to PDir
}

// UV holds surface parameter coordinates in [0, 1]
type UV struct {
	U, V float64
}

// Surface is the result of classifying a hit on a primitive
type Surface struct {
	Normal    Vec3
	Curvature Curvature
	UV        UV
}
