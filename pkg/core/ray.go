package core

import "math"

// parallelEpsilon is the magnitude below which a direction component is
// treated as parallel to that axis
const parallelEpsilon = 1e-12

// Ray represents a ray with an origin and a unit direction
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a new ray, normalizing the direction
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// IsDegenerate reports whether the ray has no usable direction
func (r Ray) IsDegenerate() bool {
	l := r.Direction.LengthSquared()
	return l < parallelEpsilon || !r.Direction.IsFinite() || !r.Origin.IsFinite() || math.IsNaN(l)
}

// Recips caches the reciprocal direction of a ray for repeated slab tests.
// Axes with a near-zero direction component are flagged as parallel and
// never divided by.
type Recips struct {
	Inv      [3]float64
	Parallel [3]bool
}

// NewRecips computes the reciprocal direction for a ray
func NewRecips(r Ray) Recips {
	var rr Recips
	for axis := 0; axis < 3; axis++ {
		d := r.Direction.Axis(axis)
		if math.Abs(d) < parallelEpsilon {
			rr.Parallel[axis] = true
			continue
		}
		rr.Inv[axis] = 1.0 / d
	}
	return rr
}
