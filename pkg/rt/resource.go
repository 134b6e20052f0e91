package rt

import (
	"fmt"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
)

// State is the stage a resource's current ray has reached
type State int

const (
	StateIdle State = iota
	StateShooting
	StatePerRegionEval
	StateCrossRegionMerge
	StateDelivered
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateShooting:
		return "shooting"
	case StatePerRegionEval:
		return "per_region_eval"
	case StateCrossRegionMerge:
		return "cross_region_merge"
	case StateDelivered:
		return "delivered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// RayStats accumulates per-worker counters. Workers reduce them once
// they are done instead of sharing counters on the hot path.
type RayStats struct {
	Rays         int64
	Hits         int64
	Misses       int64
	Errors       int64
	SolidShots   int64
	Segs         int64
	Partitions   int64
	Degeneracies int64
	Overlaps     int64
}

// Add folds other into s
func (s *RayStats) Add(other RayStats) {
	s.Rays += other.Rays
	s.Hits += other.Hits
	s.Misses += other.Misses
	s.Errors += other.Errors
	s.SolidShots += other.SolidShots
	s.Segs += other.Segs
	s.Partitions += other.Partitions
	s.Degeneracies += other.Degeneracies
	s.Overlaps += other.Overlaps
}

type regionResult struct {
	region int
	set    csg.Set
}

// Resource is one worker's scratch space: the segment and partition
// arenas plus the per-ray bit vectors. It must only be used by one
// goroutine at a time and is reused across rays without locking.
type Resource struct {
	model    *Model
	state    State
	released bool

	segs     []core.Seg // arena; one soltab's segments are contiguous
	segStart []int
	segEnd   []int
	shot     bitv
	shotList []int

	sets    []csg.Set // interval sets built from segs, per soltab
	setDone bitv

	regionHit  bitv
	regionList []int
	results    []regionResult

	parts []Partition
	list  PartitionList

	stats RayStats
}

func newResource(m *Model) *Resource {
	n := len(m.soltabs)
	return &Resource{
		model:     m,
		segStart:  make([]int, n),
		segEnd:    make([]int, n),
		shot:      newBitv(n),
		sets:      make([]csg.Set, n),
		setDone:   newBitv(n),
		regionHit: newBitv(len(m.regions)),
	}
}

// Model returns the model the resource belongs to
func (r *Resource) Model() *Model {
	return r.model
}

// State returns the stage of the ray in flight, StateIdle between rays
func (r *Resource) State() State {
	return r.state
}

// Stats returns the counters accumulated by this resource
func (r *Resource) Stats() RayStats {
	return r.stats
}

// Release hands the resource back to its model. Further shots fail.
func (r *Resource) Release() {
	if r.released {
		return
	}
	r.reset()
	r.released = true
	r.segs = nil
	r.parts = nil
	r.model.releaseResource()
}

// reset clears everything the last ray touched
func (r *Resource) reset() {
	for _, s := range r.shotList {
		r.shot.clear(s)
		r.setDone.clear(s)
		r.sets[s] = nil
	}
	r.shotList = r.shotList[:0]
	for _, reg := range r.regionList {
		r.regionHit.clear(reg)
	}
	r.regionList = r.regionList[:0]
	for i := range r.results {
		r.results[i].set = nil
	}
	r.results = r.results[:0]
	r.segs = r.segs[:0]
	r.parts = r.parts[:0]
	r.list = PartitionList{}
	r.state = StateIdle
}

// soltabSegs returns the arena segments a soltab produced for this ray
func (r *Resource) soltabSegs(s int) []core.Seg {
	if !r.shot.test(s) {
		return nil
	}
	return r.segs[r.segStart[s]:r.segEnd[s]]
}

// soltabSet returns the normalized intervals of one soltab, built on
// first use and cached for the rest of the ray
func (r *Resource) soltabSet(s int) csg.Set {
	if !r.shot.test(s) {
		return nil
	}
	if r.setDone.test(s) {
		return r.sets[s]
	}
	r.sets[s] = csg.FromSegs(r.soltabSegs(s), r.model.opts.tol)
	r.setDone.set(s)
	return r.sets[s]
}
