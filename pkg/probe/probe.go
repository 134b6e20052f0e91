// Package probe fires single rays through a model and reports every
// partition along them in the model's own units.
package probe

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// Options controls how a probe ray is woven
type Options struct {
	AllHits bool              // Report every partition, not only the nearest
	Overlap rt.OverlapHandler // nil uses rt.DefaultOverlap
}

// Result is what a probe ray found
type Result struct {
	Units      string      `json:"units"`
	Origin     [3]float64  `json:"origin"`
	Direction  [3]float64  `json:"direction"`
	Partitions []Partition `json:"partitions"`
}

// Partition is one region's span along the probe ray
type Partition struct {
	Region   string     `json:"region"`
	ID       int        `json:"id"`
	Material string     `json:"material,omitempty"`
	Air      bool       `json:"air,omitempty"`
	In       float64    `json:"in"`
	Out      float64    `json:"out"`
	InSolid  string     `json:"in_solid"`
	OutSolid string     `json:"out_solid"`
	InPoint  [3]float64 `json:"in_point"`
	OutPoint [3]float64 `json:"out_point"`
	InNormal [3]float64 `json:"in_normal"`
	Overlaps bool       `json:"overlaps,omitempty"`
}

// Fire shoots one ray from origin along dir, both in model units, using a
// resource of its own
func Fire(m *rt.Model, origin, dir core.Vec3, opts Options) (Result, error) {
	res, err := m.NewResource()
	if err != nil {
		return Result{}, err
	}
	defer res.Release()
	return FireWith(res, origin, dir, opts)
}

// FireWith shoots through a resource the caller owns
func FireWith(res *rt.Resource, origin, dir core.Vec3, opts Options) (Result, error) {
	units := res.Model().Units()
	ray := core.NewRay(origin.Multiply(units.ToBase), dir)

	result := Result{
		Units:      units.Name,
		Origin:     ToArray(origin),
		Direction:  ToArray(ray.Direction),
		Partitions: []Partition{},
	}
	toModel := func(p core.Vec3) [3]float64 {
		return ToArray(p.Multiply(units.FromBase))
	}

	_, err := res.Shoot(ray, rt.Application{
		Overlap: opts.Overlap,
		OneHit:  !opts.AllHits,
		Hit: func(ray core.Ray, parts *rt.PartitionList) {
			parts.Each(func(p *rt.Partition) bool {
				// Behind the origin
				if p.Out.Dist <= 0 {
					return true
				}
				result.Partitions = append(result.Partitions, Partition{
					Region:   p.Region.Name,
					ID:       p.Region.ID,
					Material: p.Region.Material,
					Air:      p.Region.IsAir(),
					In:       units.ToModel(p.In.Dist),
					Out:      units.ToModel(p.Out.Dist),
					InSolid:  p.InSolid.Name,
					OutSolid: p.OutSolid.Name,
					InPoint:  toModel(ray.At(p.In.Dist)),
					OutPoint: toModel(ray.At(p.Out.Dist)),
					InNormal: ToArray(p.InNormal()),
					Overlaps: p.Overlaps,
				})
				return true
			})
		},
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// ToArray converts v to a plain array, as used in JSON responses.
func ToArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
