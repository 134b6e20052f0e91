package rt

import "github.com/BRL-CAD/brlcad-sub154/pkg/core"

// Partition is one region's inside span along a ray. Back and Forw are
// the handles of its ray-ordered neighbours, -1 at either end.
type Partition struct {
	In       core.Hit
	Out      core.Hit
	InFlip   bool
	OutFlip  bool
	InSolid  *Soltab
	OutSolid *Soltab
	Region   *Region
	Overlaps bool // Shares part of its span with another region's partition
	Back     int
	Forw     int
}

// Len returns the distance the partition covers
func (p *Partition) Len() float64 {
	return p.Out.Dist - p.In.Dist
}

// InNormal returns the entry normal pointing out of the partition
func (p *Partition) InNormal() core.Vec3 {
	if p.InFlip {
		return p.In.Normal.Negate()
	}
	return p.In.Normal
}

// OutNormal returns the exit normal pointing out of the partition
func (p *Partition) OutNormal() core.Vec3 {
	if p.OutFlip {
		return p.Out.Normal.Negate()
	}
	return p.Out.Normal
}

// InSurface classifies the entry hit, with the normal flipped when the
// boundary came from a subtracted solid
func (p *Partition) InSurface(ray core.Ray) core.Surface {
	s := p.InSolid.Solid.Classify(ray, p.In)
	if p.InFlip {
		s.Normal = s.Normal.Negate()
		s.Curvature.C1, s.Curvature.C2 = -s.Curvature.C1, -s.Curvature.C2
	}
	return s
}

// OutSurface classifies the exit hit
func (p *Partition) OutSurface(ray core.Ray) core.Surface {
	s := p.OutSolid.Solid.Classify(ray, p.Out)
	if p.OutFlip {
		s.Normal = s.Normal.Negate()
		s.Curvature.C1, s.Curvature.C2 = -s.Curvature.C1, -s.Curvature.C2
	}
	return s
}

// PartitionList is the ray-ordered result handed to a hit callback. It
// lives in the worker's arena and is only valid during the callback; use
// Clone to keep it.
type PartitionList struct {
	parts []Partition
	head  int
}

// Len returns the number of partitions
func (l *PartitionList) Len() int {
	return len(l.parts)
}

// Head returns the handle of the nearest partition, -1 when empty
func (l *PartitionList) Head() int {
	if len(l.parts) == 0 {
		return -1
	}
	return l.head
}

// Get returns the partition behind a handle
func (l *PartitionList) Get(h int) *Partition {
	return &l.parts[h]
}

// First returns the nearest partition or nil
func (l *PartitionList) First() *Partition {
	if len(l.parts) == 0 {
		return nil
	}
	return &l.parts[l.head]
}

// Ahead returns the nearest partition that ends in front of the origin,
// or nil when every partition lies behind it
func (l *PartitionList) Ahead(tol float64) *Partition {
	for h := l.Head(); h >= 0; h = l.parts[h].Forw {
		if l.parts[h].Out.Dist > tol {
			return &l.parts[h]
		}
	}
	return nil
}

// Each calls fn for every partition in ray order until fn returns false
func (l *PartitionList) Each(fn func(p *Partition) bool) {
	for h := l.Head(); h >= 0; h = l.parts[h].Forw {
		if !fn(&l.parts[h]) {
			return
		}
	}
}

// Clone copies the partitions out of the worker's arena in ray order
func (l *PartitionList) Clone() []Partition {
	out := make([]Partition, 0, len(l.parts))
	l.Each(func(p *Partition) bool {
		out = append(out, *p)
		return true
	})
	return out
}
