// Package cut builds the space partition used to find which solids a ray
// can possibly hit. Leaf cells are visited near to far along the ray.
package cut

import (
	"sort"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Item is one bounded object placed in the tree
type Item struct {
	Handle int
	Bounds core.AABB
}

// Config controls how finely space is divided
type Config struct {
	MaxLeaf  int     // Leaves with this many items or fewer are not split
	MaxDepth int     // Hard limit on tree depth
	MinSize  float64 // Cells narrower than this along their longest axis are not split
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{MaxLeaf: 8, MaxDepth: 24, MinSize: 1e-3}
}

// Node is a cell of the partition. Interior nodes split their box with an
// axis-aligned plane; leaves list the handles whose bounds reach into the
// cell. A handle straddling the plane appears on both sides.
type Node struct {
	Bounds core.AABB
	Left   *Node
	Right  *Node
	Axis   int
	Split  float64
	Items  []int
}

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// Tree is an immutable space partition, safe for concurrent walks
type Tree struct {
	Root     *Node
	Bounds   core.AABB
	Infinite []int // Handles with unbounded extent, tested on every ray
	stats    Stats
}

// Build partitions the items. Items with unbounded bounds are kept out of
// the tree and listed in Infinite.
func Build(items []Item, cfg Config) *Tree {
	if cfg.MaxLeaf <= 0 {
		cfg.MaxLeaf = DefaultConfig().MaxLeaf
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}

	tree := &Tree{Bounds: core.EmptyAABB()}

	// Copy so the caller's slice is never reordered
	finite := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Bounds.IsInfinite() {
			tree.Infinite = append(tree.Infinite, item.Handle)
			continue
		}
		finite = append(finite, item)
		tree.Bounds = tree.Bounds.Union(item.Bounds)
	}

	if len(finite) > 0 {
		tree.Root = buildNode(finite, tree.Bounds, 0, cfg)
	}
	tree.stats = tree.collectStats()
	return tree
}

func buildNode(items []Item, box core.AABB, depth int, cfg Config) *Node {
	if len(items) <= cfg.MaxLeaf || depth >= cfg.MaxDepth {
		return newLeaf(items, box)
	}

	axis := box.LongestAxis()
	lo, hi := box.Min.Axis(axis), box.Max.Axis(axis)
	if hi-lo < cfg.MinSize {
		return newLeaf(items, box)
	}

	split := medianCenter(items, axis)
	if split <= lo || split >= hi {
		split = 0.5 * (lo + hi)
	}

	var left, right []Item
	for _, item := range items {
		if item.Bounds.Min.Axis(axis) <= split {
			left = append(left, item)
		}
		if item.Bounds.Max.Axis(axis) >= split {
			right = append(right, item)
		}
	}

	// Every item straddles the plane: splitting only duplicates work
	if len(left) == len(items) && len(right) == len(items) {
		return newLeaf(items, box)
	}

	node := &Node{Bounds: box, Axis: axis, Split: split}
	node.Left = buildNode(left, box.WithAxis(axis, lo, split), depth+1, cfg)
	node.Right = buildNode(right, box.WithAxis(axis, split, hi), depth+1, cfg)
	return node
}

func newLeaf(items []Item, box core.AABB) *Node {
	handles := make([]int, len(items))
	for i, item := range items {
		handles[i] = item.Handle
	}
	return &Node{Bounds: box, Items: handles}
}

// medianCenter returns the median of the items' box centers along an axis
func medianCenter(items []Item, axis int) float64 {
	centers := make([]float64, len(items))
	for i, item := range items {
		centers[i] = item.Bounds.Center().Axis(axis)
	}
	sort.Float64s(centers)
	return centers[len(centers)/2]
}

// VisitFunc receives each non-empty leaf the ray crosses together with the
// distances at which the ray enters and leaves the cell. Returning false
// stops the walk.
type VisitFunc func(items []int, tEnter, tExit float64) bool

// Walk visits the leaves crossed by the ray between tMin and tMax in
// order of increasing entry distance
func (t *Tree) Walk(ray core.Ray, tMin, tMax float64, visit VisitFunc) {
	if t.Root == nil {
		return
	}
	rr := core.NewRecips(ray)
	t0, t1, ok := t.Root.Bounds.Intersect(ray, rr, tMin, tMax)
	if !ok {
		return
	}

	type entry struct {
		n      *Node
		t0, t1 float64
	}
	stack := make([]entry, 0, 2*t.stats.MaxDepth+2)
	stack = append(stack, entry{n: t.Root, t0: t0, t1: t1})

	for len(stack) > 0 {
		// pop
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if e.n.IsLeaf() {
			if len(e.n.Items) == 0 {
				continue
			}
			if !visit(e.n.Items, e.t0, e.t1) {
				return
			}
			continue
		}

		lT0, lT1, lOK := e.n.Left.Bounds.Intersect(ray, rr, e.t0, e.t1)
		rT0, rT1, rOK := e.n.Right.Bounds.Intersect(ray, rr, e.t0, e.t1)

		// order children near→far (push far first so near is processed next)
		left := entry{n: e.n.Left, t0: lT0, t1: lT1}
		right := entry{n: e.n.Right, t0: rT0, t1: rT1}
		switch {
		case lOK && rOK:
			if lT0 <= rT0 {
				stack = append(stack, right, left)
			} else {
				stack = append(stack, left, right)
			}
		case lOK:
			stack = append(stack, left)
		case rOK:
			stack = append(stack, right)
		}
	}
}

// Candidates returns every handle the ray may hit between tMin and tMax,
// including the unbounded ones, each listed once
func (t *Tree) Candidates(ray core.Ray, tMin, tMax float64) []int {
	seen := make(map[int]struct{})
	out := append([]int(nil), t.Infinite...)
	for _, h := range t.Infinite {
		seen[h] = struct{}{}
	}
	t.Walk(ray, tMin, tMax, func(items []int, _, _ float64) bool {
		for _, h := range items {
			if _, ok := seen[h]; !ok {
				seen[h] = struct{}{}
				out = append(out, h)
			}
		}
		return true
	})
	return out
}

// Empty reports whether the tree holds nothing at all
func (t *Tree) Empty() bool {
	return t.Root == nil && len(t.Infinite) == 0
}

// Stats returns the shape of the tree
func (t *Tree) Stats() Stats {
	return t.stats
}

// Stats contains statistics about the tree structure
type Stats struct {
	Nodes        int
	Leaves       int
	MaxDepth     int
	AvgDepth     float64
	Refs         int // Handle references across all leaves
	MaxLeafItems int
	Infinite     int
}

func (t *Tree) collectStats() Stats {
	stats := Stats{Infinite: len(t.Infinite)}
	if t.Root == nil {
		return stats
	}

	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		stats.Nodes++
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		if n.IsLeaf() {
			stats.Leaves++
			stats.Refs += len(n.Items)
			stats.AvgDepth += float64(depth) // Accumulate depth for average calculation
			if len(n.Items) > stats.MaxLeafItems {
				stats.MaxLeafItems = len(n.Items)
			}
			return
		}
		walk(n.Left, depth+1)
		walk(n.Right, depth+1)
	}
	walk(t.Root, 0)

	// Calculate average depth after collecting all data
	if stats.Leaves > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.Leaves)
	}
	return stats
}
