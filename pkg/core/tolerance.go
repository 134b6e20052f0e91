package core

import "math"

// Tolerance holds the numerical tolerances shared by prep, intersect and
// boolean evaluation
type Tolerance struct {
	Dist   float64 // Distances closer than this are considered equal
	DistSq float64 // Dist squared
	Perp   float64 // Dot products below this are perpendicular
	Para   float64 // Dot products above this are parallel
}

// DefaultTolerance returns the tolerance used when none is configured
func DefaultTolerance() Tolerance {
	return NewTolerance(0.0005, 1e-6)
}

// NewTolerance builds a tolerance from a distance and an angular epsilon
func NewTolerance(dist, perp float64) Tolerance {
	return Tolerance{
		Dist:   dist,
		DistSq: dist * dist,
		Perp:   perp,
		Para:   1 - perp,
	}
}

// Equal reports whether two distances are within tolerance
func (t Tolerance) Equal(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) <= t.Dist
}

// Units converts model units to the kernel's base unit (millimeters)
type Units struct {
	Name     string
	ToBase   float64 // Base units per model unit
	FromBase float64 // Model units per base unit
}

// Millimeters is the identity unit
var Millimeters = NewUnits("mm", 1)

// NewUnits builds a unit conversion from its base-unit scale
func NewUnits(name string, toBase float64) Units {
	return Units{Name: name, ToBase: toBase, FromBase: 1 / toBase}
}

// ToLocal scales a model-unit distance to base units
func (u Units) ToLocal(v float64) float64 {
	return v * u.ToBase
}

// ToModel scales a base-unit distance to model units
func (u Units) ToModel(v float64) float64 {
	return v * u.FromBase
}
