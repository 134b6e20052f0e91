package cut

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/stretchr/testify/require"
)

func row(n int) []Item {
	items := make([]Item, n)
	for i := 0; i < n; i++ {
		x := float64(3 * i)
		items[i] = Item{
			Handle: i,
			Bounds: core.NewAABB(core.NewVec3(x, 0, 0), core.NewVec3(x+1, 1, 1)),
		}
	}
	return items
}

func TestBuild_LeafThresholdBoundary(t *testing.T) {
	// Exactly MaxLeaf items stay in a single leaf
	tree := Build(row(8), DefaultConfig())
	stats := tree.Stats()
	require.Equal(t, 1, stats.Nodes)
	require.Equal(t, 1, stats.Leaves)

	// One more forces a split
	tree = Build(row(9), DefaultConfig())
	stats = tree.Stats()
	require.Greater(t, stats.Nodes, 1)
	require.GreaterOrEqual(t, stats.Leaves, 2)
	require.Equal(t, 9, stats.Refs)
}

func TestBuild_EmptyAndInfinite(t *testing.T) {
	tree := Build(nil, DefaultConfig())
	require.Nil(t, tree.Root)
	require.True(t, tree.Empty())

	visited := false
	tree.Walk(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)), 0, math.Inf(1), func([]int, float64, float64) bool {
		visited = true
		return true
	})
	require.False(t, visited)

	tree = Build([]Item{{Handle: 7, Bounds: core.InfiniteAABB()}}, DefaultConfig())
	require.Nil(t, tree.Root)
	require.False(t, tree.Empty())
	require.Equal(t, []int{7}, tree.Infinite)
	require.Equal(t, 1, tree.Stats().Infinite)
}

func TestBuild_DoesNotReorderInput(t *testing.T) {
	items := row(20)
	rand.New(rand.NewSource(1)).Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	before := append([]Item(nil), items...)
	Build(items, DefaultConfig())
	require.Equal(t, before, items)
}

func TestBuild_StraddlingItemsGoBothWays(t *testing.T) {
	items := row(16)
	long := Item{Handle: 99, Bounds: core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(46, 1, 1))}
	items = append(items, long)

	tree := Build(items, Config{MaxLeaf: 4, MaxDepth: 10})
	leaves := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			for _, h := range n.Items {
				if h == 99 {
					leaves++
				}
			}
			return
		}
		walk(n.Left)
		walk(n.Right)
	}
	walk(tree.Root)
	require.Greater(t, leaves, 1)
}

func TestBuild_AllStraddleStopsSplitting(t *testing.T) {
	items := make([]Item, 20)
	for i := range items {
		items[i] = Item{Handle: i, Bounds: core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))}
	}
	tree := Build(items, DefaultConfig())
	require.Equal(t, 1, tree.Stats().Leaves)
}

func TestBuild_MaxDepth(t *testing.T) {
	tree := Build(row(200), Config{MaxLeaf: 1, MaxDepth: 3})
	require.LessOrEqual(t, tree.Stats().MaxDepth, 3)
}

func TestWalk_NearToFar(t *testing.T) {
	tree := Build(row(40), Config{MaxLeaf: 2, MaxDepth: 16})

	for _, dir := range []float64{1, -1} {
		origin := core.NewVec3(-10, 0.5, 0.5)
		if dir < 0 {
			origin = core.NewVec3(200, 0.5, 0.5)
		}
		ray := core.NewRay(origin, core.NewVec3(dir, 0, 0))

		var enters []float64
		seen := map[int]bool{}
		tree.Walk(ray, 0, math.Inf(1), func(items []int, tEnter, tExit float64) bool {
			require.LessOrEqual(t, tEnter, tExit)
			enters = append(enters, tEnter)
			for _, h := range items {
				seen[h] = true
			}
			return true
		})
		require.True(t, sort.Float64sAreSorted(enters))
		require.Len(t, seen, 40)
	}
}

func TestWalk_StopsEarly(t *testing.T) {
	tree := Build(row(40), Config{MaxLeaf: 2, MaxDepth: 16})
	ray := core.NewRay(core.NewVec3(-10, 0.5, 0.5), core.NewVec3(1, 0, 0))

	calls := 0
	tree.Walk(ray, 0, math.Inf(1), func([]int, float64, float64) bool {
		calls++
		return false
	})
	require.Equal(t, 1, calls)
}

func TestWalk_RespectsRange(t *testing.T) {
	tree := Build(row(40), Config{MaxLeaf: 2, MaxDepth: 16})
	ray := core.NewRay(core.NewVec3(-10, 0.5, 0.5), core.NewVec3(1, 0, 0))

	// Only the first item starts before t = 11
	got := tree.Candidates(ray, 0, 11)
	require.Contains(t, got, 0)
	require.NotContains(t, got, 39)
}

func TestCandidates_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := make([]Item, 300)
	for i := range items {
		c := core.NewVec3(rng.Float64()*100, rng.Float64()*100, rng.Float64()*100)
		h := core.NewVec3(rng.Float64()*4+0.1, rng.Float64()*4+0.1, rng.Float64()*4+0.1)
		items[i] = Item{Handle: i, Bounds: core.NewAABB(c.Subtract(h), c.Add(h))}
	}
	items = append(items, Item{Handle: 300, Bounds: core.InfiniteAABB()})
	tree := Build(items, DefaultConfig())

	for i := 0; i < 200; i++ {
		origin := core.NewVec3(rng.Float64()*100, rng.Float64()*100, -20)
		dir := core.NewVec3(rng.Float64()-0.5, rng.Float64()-0.5, 1)
		ray := core.NewRay(origin, dir)

		got := map[int]bool{}
		for _, h := range tree.Candidates(ray, 0, math.Inf(1)) {
			require.False(t, got[h], "handle listed twice")
			got[h] = true
		}

		require.True(t, got[300])
		for _, item := range items[:300] {
			if item.Bounds.Hit(ray, 0, math.Inf(1)) {
				require.True(t, got[item.Handle], "missed handle %d", item.Handle)
			}
		}
	}
}
