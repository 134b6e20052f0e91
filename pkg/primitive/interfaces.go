// Package primitive holds the primitive dispatch table: the fixed set of
// primitive kinds and the operations every kind supports (prepare,
// intersect, classify, release).
package primitive

import "github.com/BRL-CAD/brlcad-sub154/pkg/core"

// Kind tags a primitive type
type Kind int

const (
	KindSphere Kind = iota
	KindBox
	KindCylinder
	KindHalfspace
	KindSDF

	numKinds
)

// String returns the short tag for the kind
func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return "unknown"
}

var kindNames = [numKinds]string{
	KindSphere:    "sph",
	KindBox:       "box",
	KindCylinder:  "rcc",
	KindHalfspace: "half",
	KindSDF:       "sdf",
}

// Definition is a raw, unprepared primitive description
type Definition interface {
	Kind() Kind
}

// Solid is a prepared primitive, immutable after Prepare and safe for
// concurrent use by many ray-tracing workers
type Solid interface {
	// Bounds returns the model-space bounding box
	Bounds() core.AABB

	// Intersect appends every inside segment of the ray's full line to dst.
	// Segment distances are measured along the ray and may be negative.
	// Numerically degenerate rays simply append nothing.
	Intersect(ray core.Ray, tol core.Tolerance, dst []core.Seg) []core.Seg

	// Classify computes the outward normal, curvature and surface
	// coordinates of a hit produced by Intersect
	Classify(ray core.Ray, hit core.Hit) core.Surface

	// Release frees any resources held by the prepared primitive
	Release()
}
