// Package csg implements boolean evaluation over inside intervals along a
// ray. Sets are sorted, disjoint interval lists; the combinators never
// modify their inputs.
package csg

import (
	"sort"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Interval is one inside span of a boolean expression. Each end keeps the
// primitive hit that bounds it and the solid that produced that hit. A set
// flip flag means the bounding surface belongs to a subtracted solid, so
// its outward normal points the wrong way for this interval.
type Interval struct {
	In       core.Hit
	Out      core.Hit
	InSolid  int
	OutSolid int
	InFlip   bool
	OutFlip  bool
}

// FromSeg converts a primitive segment into an interval
func FromSeg(s core.Seg) Interval {
	return Interval{In: s.In, Out: s.Out, InSolid: s.Solid, OutSolid: s.Solid}
}

// Len returns the distance covered by the interval
func (iv Interval) Len() float64 {
	return iv.Out.Dist - iv.In.Dist
}

// InNormal returns the entry normal pointing out of the interval
func (iv Interval) InNormal() core.Vec3 {
	if iv.InFlip {
		return iv.In.Normal.Negate()
	}
	return iv.In.Normal
}

// OutNormal returns the exit normal pointing out of the interval
func (iv Interval) OutNormal() core.Vec3 {
	if iv.OutFlip {
		return iv.Out.Normal.Negate()
	}
	return iv.Out.Normal
}

// Set is an ordered list of disjoint intervals
type Set []Interval

// FromSegs builds a normalized set from one solid's segments. Invalid
// segments are dropped.
func FromSegs(segs []core.Seg, tol core.Tolerance) Set {
	if len(segs) == 0 {
		return nil
	}
	s := make(Set, 0, len(segs))
	for _, seg := range segs {
		s = append(s, FromSeg(seg))
	}
	return normalize(s, tol)
}

// Normalize returns a sorted copy of s with overlapping or touching
// intervals merged. Inverted and zero-length intervals are dropped.
func Normalize(s Set, tol core.Tolerance) Set {
	if len(s) == 0 {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return normalize(out, tol)
}

// normalize works in place
func normalize(s Set, tol core.Tolerance) Set {
	valid := s[:0]
	for _, iv := range s {
		if iv.Out.Dist-iv.In.Dist > tol.Dist {
			valid = append(valid, iv)
		}
	}
	s = valid
	if len(s) == 0 {
		return nil
	}

	sort.SliceStable(s, func(i, j int) bool { return s[i].In.Dist < s[j].In.Dist })

	merged := s[:1]
	for _, iv := range s[1:] {
		last := &merged[len(merged)-1]
		if iv.In.Dist <= last.Out.Dist+tol.Dist {
			if iv.Out.Dist > last.Out.Dist {
				last.Out, last.OutSolid, last.OutFlip = iv.Out, iv.OutSolid, iv.OutFlip
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Len returns the total distance covered by the set
func (s Set) Len() float64 {
	total := 0.0
	for _, iv := range s {
		total += iv.Len()
	}
	return total
}

// IsNormalized reports whether the set is sorted and its intervals are
// longer than, and disjoint by more than, the distance tolerance
func (s Set) IsNormalized(tol core.Tolerance) bool {
	for i, iv := range s {
		if iv.Out.Dist-iv.In.Dist <= tol.Dist {
			return false
		}
		if i > 0 && iv.In.Dist <= s[i-1].Out.Dist+tol.Dist {
			return false
		}
	}
	return true
}

// Contains reports whether dist lies inside one of the intervals
func (s Set) Contains(dist float64) bool {
	for _, iv := range s {
		if dist >= iv.In.Dist && dist <= iv.Out.Dist {
			return true
		}
	}
	return false
}
