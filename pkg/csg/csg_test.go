package csg

import (
	"math"
	"math/rand"
	"testing"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

var tol = core.DefaultTolerance()

func span(solid int, in, out float64) Interval {
	return Interval{
		In:       core.Hit{Dist: in, Normal: core.NewVec3(-1, 0, 0)},
		Out:      core.Hit{Dist: out, Normal: core.NewVec3(1, 0, 0)},
		InSolid:  solid,
		OutSolid: solid,
	}
}

func dists(s Set) [][2]float64 {
	out := make([][2]float64, 0, len(s))
	for _, iv := range s {
		out = append(out, [2]float64{iv.In.Dist, iv.Out.Dist})
	}
	return out
}

func TestNormalize(t *testing.T) {
	s := Set{span(0, 5, 6), span(0, 1, 3), span(0, 2, 4), span(0, 6, 7), span(0, 9, 8)}
	got := Normalize(s, tol)
	require.Equal(t, [][2]float64{{1, 4}, {5, 7}}, dists(got))
	require.True(t, got.IsNormalized(tol))

	// The input is left untouched
	require.Equal(t, 5.0, s[0].In.Dist)
}

func TestNormalize_DropsZeroLength(t *testing.T) {
	got := Set{span(0, 2, 2), span(0, 4, 4+tol.Dist/2)}.Union(Set{span(1, 6, 7)}, tol)
	require.Equal(t, [][2]float64{{6, 7}}, dists(got))

	segs := []core.Seg{
		{In: core.Hit{Dist: 3}, Out: core.Hit{Dist: 3}},
		{In: core.Hit{Dist: 5}, Out: core.Hit{Dist: 8}},
	}
	require.Equal(t, [][2]float64{{5, 8}}, dists(FromSegs(segs, tol)))
	require.Empty(t, Normalize(Set{span(0, 1, 1)}, tol))
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Set
		expected [][2]float64
	}{
		{
			name:     "Disjoint",
			a:        Set{span(0, 0, 1)},
			b:        Set{span(1, 2, 3)},
			expected: [][2]float64{{0, 1}, {2, 3}},
		},
		{
			name:     "Overlapping",
			a:        Set{span(0, 0, 2)},
			b:        Set{span(1, 1, 3)},
			expected: [][2]float64{{0, 3}},
		},
		{
			name:     "Touching within tolerance merges",
			a:        Set{span(0, 0, 1)},
			b:        Set{span(1, 1 + tol.Dist/2, 2)},
			expected: [][2]float64{{0, 2}},
		},
		{
			name:     "Empty side",
			a:        nil,
			b:        Set{span(1, 1, 2)},
			expected: [][2]float64{{1, 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, dists(tt.a.Union(tt.b, tol)))
		})
	}
}

func TestUnion_KeepsBoundingHits(t *testing.T) {
	got := Set{span(0, 0, 2)}.Union(Set{span(1, 1, 3)}, tol)
	require.Len(t, got, 1)
	require.Equal(t, 0, got[0].InSolid)
	require.Equal(t, 1, got[0].OutSolid)
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Set
		expected [][2]float64
	}{
		{
			name:     "Overlap",
			a:        Set{span(0, 0, 5)},
			b:        Set{span(1, 3, 8)},
			expected: [][2]float64{{3, 5}},
		},
		{
			name:     "Touching gives nothing",
			a:        Set{span(0, 0, 5)},
			b:        Set{span(1, 5, 8)},
			expected: [][2]float64{},
		},
		{
			name:     "Several pieces",
			a:        Set{span(0, 0, 10)},
			b:        Set{span(1, 1, 2), span(1, 4, 5), span(1, 9, 12)},
			expected: [][2]float64{{1, 2}, {4, 5}, {9, 10}},
		},
		{
			name: "Infinite halfspace",
			a:    Set{span(0, 2, 6)},
			b: Set{{
				In:  core.Hit{Dist: math.Inf(-1)},
				Out: core.Hit{Dist: 4},
			}},
			expected: [][2]float64{{2, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, dists(tt.a.Intersect(tt.b, tol)))
		})
	}
}

func TestSubtract(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Set
		expected [][2]float64
	}{
		{
			name:     "Hollow sphere through the center",
			a:        Set{span(0, -10, 10)},
			b:        Set{span(1, -5, 5)},
			expected: [][2]float64{{-10, -5}, {5, 10}},
		},
		{
			name:     "Touching leaves it unchanged",
			a:        Set{span(0, 0, 5)},
			b:        Set{span(1, 5, 8)},
			expected: [][2]float64{{0, 5}},
		},
		{
			name:     "Covers everything",
			a:        Set{span(0, 1, 2)},
			b:        Set{span(1, 0, 3)},
			expected: [][2]float64{},
		},
		{
			name:     "Zero length remainder is dropped",
			a:        Set{span(0, 0, 5)},
			b:        Set{span(1, tol.Dist/2, 5 - tol.Dist/2)},
			expected: [][2]float64{},
		},
		{
			name:     "Trims the front",
			a:        Set{span(0, 0, 5)},
			b:        Set{span(1, -1, 2)},
			expected: [][2]float64{{2, 5}},
		},
		{
			name:     "Multiple cuts",
			a:        Set{span(0, 0, 10), span(0, 20, 30)},
			b:        Set{span(1, 2, 3), span(1, 8, 22), span(1, 25, 26)},
			expected: [][2]float64{{0, 2}, {3, 8}, {22, 25}, {26, 30}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, dists(tt.a.Subtract(tt.b, tol)))
		})
	}
}

func TestSubtract_FlipsCutBoundaries(t *testing.T) {
	got := Set{span(0, -10, 10)}.Subtract(Set{span(1, -5, 5)}, tol)
	require.Len(t, got, 2)

	require.False(t, got[0].InFlip)
	require.True(t, got[0].OutFlip)
	require.Equal(t, 1, got[0].OutSolid)
	require.Equal(t, core.NewVec3(1, 0, 0), got[0].OutNormal())

	require.True(t, got[1].InFlip)
	require.Equal(t, 1, got[1].InSolid)
	require.Equal(t, core.NewVec3(-1, 0, 0), got[1].InNormal())
}

func randomSet(rng *rand.Rand, solid int) Set {
	var s Set
	n := rng.Intn(5)
	for i := 0; i < n; i++ {
		in := rng.Float64() * 100
		s = append(s, span(solid, in, in+0.01+rng.Float64()*20))
	}
	return Normalize(s, tol)
}

func TestBooleanLaws(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		a := randomSet(rng, 0)
		b := randomSet(rng, 1)

		union := a.Union(b, tol)
		inter := a.Intersect(b, tol)
		diff := a.Subtract(b, tol)

		require.True(t, union.IsNormalized(tol))
		require.True(t, inter.IsNormalized(tol))
		require.True(t, diff.IsNormalized(tol))

		// Union is idempotent and commutative in coverage
		require.InDelta(t, a.Len(), a.Union(a, tol).Len(), 1e-9)
		require.InDelta(t, union.Len(), b.Union(a, tol).Len(), 1e-9)

		// A - A is empty and A ∩ A is A
		require.Empty(t, a.Subtract(a, tol))
		require.InDelta(t, a.Len(), a.Intersect(a, tol).Len(), 1e-9)

		// |A ∪ B| = |A| + |B| - |A ∩ B| up to dropped slivers
		require.InDelta(t, a.Len()+b.Len()-inter.Len(), union.Len(), 4*tol.Dist*float64(len(a)+len(b)+1))

		// A - B never grows and shares nothing with B
		require.LessOrEqual(t, diff.Len(), a.Len()+1e-9)
		require.InDelta(t, 0, diff.Intersect(b, tol).Len(), 4*tol.Dist*float64(len(b)+1))
	}
}

func TestCompile(t *testing.T) {
	known := map[string]int{"a": 0, "b": 1, "c": 2, "dropped": -1}
	resolve := func(name string) (int, bool) {
		h, ok := known[name]
		return h, ok
	}

	t.Run("Valid tree", func(t *testing.T) {
		tree, err := Compile(Subtract(Union(Leaf("a"), Leaf("c")), Leaf("b")), resolve)
		require.NoError(t, err)
		require.Equal(t, []int{0, 1, 2}, tree.Solids())
	})

	t.Run("Dropped solid is an empty leaf", func(t *testing.T) {
		tree, err := Compile(Union(Leaf("a"), Leaf("dropped")), resolve)
		require.NoError(t, err)
		require.Equal(t, []int{0}, tree.Solids())
	})

	shared := Leaf("a")
	cyclic := Union(Leaf("a"), nil)
	cyclic.Right = cyclic

	malformed := map[string]*Node{
		"Nil root":        nil,
		"Unknown name":    Union(Leaf("a"), Leaf("nope")),
		"Missing operand": Intersect(Leaf("a"), nil),
		"Shared subtree":  Union(shared, shared),
		"Cycle":           cyclic,
		"Unknown op":      {Op: Op(42), Left: Leaf("a"), Right: Leaf("b")},
		"Leaf operands":   {Op: OpLeaf, Name: "a", Left: Leaf("b")},
	}
	for name, root := range malformed {
		t.Run(name, func(t *testing.T) {
			tree, err := Compile(root, resolve)
			require.Error(t, err)
			require.Nil(t, tree)
			require.Equal(t, ErrTypeMalformed, errors.Type(err))
		})
	}
}

func TestEvaluate(t *testing.T) {
	sets := map[int]Set{
		0: {span(0, -10, 10)},
		1: {span(1, -5, 5)},
		2: {span(2, 0, 20)},
	}
	names := map[string]int{"outer": 0, "inner": 1, "slab": 2, "gone": -1}
	resolve := func(name string) (int, bool) {
		h, ok := names[name]
		return h, ok
	}
	src := func(solid int) Set { return sets[solid] }

	tests := []struct {
		name     string
		root     *Node
		expected [][2]float64
	}{
		{
			name:     "Hollow",
			root:     Subtract(Leaf("outer"), Leaf("inner")),
			expected: [][2]float64{{-10, -5}, {5, 10}},
		},
		{
			name:     "Hollow clipped by slab",
			root:     Intersect(Subtract(Leaf("outer"), Leaf("inner")), Leaf("slab")),
			expected: [][2]float64{{5, 10}},
		},
		{
			name:     "Union with empty leaf",
			root:     Union(Leaf("gone"), Leaf("inner")),
			expected: [][2]float64{{-5, 5}},
		},
		{
			name:     "Subtract from empty leaf",
			root:     Subtract(Leaf("gone"), Leaf("inner")),
			expected: [][2]float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Compile(tt.root, resolve)
			require.NoError(t, err)
			require.Equal(t, tt.expected, dists(tree.Evaluate(src, tol)))
		})
	}
}
