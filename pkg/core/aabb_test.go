package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAABB_Intersect(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name   string
		ray    Ray
		tMin   float64
		tMax   float64
		hit    bool
		t0, t1 float64
	}{
		{
			name: "Straight through",
			ray:  NewRay(NewVec3(-5, 0, 0), NewVec3(1, 0, 0)),
			tMin: 0, tMax: math.Inf(1),
			hit: true, t0: 4, t1: 6,
		},
		{
			name: "Origin inside clips to tMin",
			ray:  NewRay(NewVec3(0, 0, 0), NewVec3(0, 1, 0)),
			tMin: 0, tMax: math.Inf(1),
			hit: true, t0: 0, t1: 1,
		},
		{
			name: "Parallel outside slab",
			ray:  NewRay(NewVec3(-5, 2, 0), NewVec3(1, 0, 0)),
			tMin: 0, tMax: math.Inf(1),
			hit: false,
		},
		{
			name: "Behind the origin",
			ray:  NewRay(NewVec3(5, 0, 0), NewVec3(1, 0, 0)),
			tMin: 0, tMax: math.Inf(1),
			hit: false,
		},
		{
			name: "Range ends before box",
			ray:  NewRay(NewVec3(-5, 0, 0), NewVec3(1, 0, 0)),
			tMin: 0, tMax: 3,
			hit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t0, t1, ok := box.Intersect(tt.ray, NewRecips(tt.ray), tt.tMin, tt.tMax)
			require.Equal(t, tt.hit, ok)
			if tt.hit {
				require.InDelta(t, tt.t0, t0, 1e-9)
				require.InDelta(t, tt.t1, t1, 1e-9)
			}
			require.Equal(t, tt.hit, box.Hit(tt.ray, tt.tMin, tt.tMax))
		})
	}
}

func TestAABB_InfiniteBox(t *testing.T) {
	box := InfiniteAABB()
	require.True(t, box.IsInfinite())

	ray := NewRay(NewVec3(0, 0, 0), NewVec3(1, 1, 0))
	t0, t1, ok := box.Intersect(ray, NewRecips(ray), 0, 100)
	require.True(t, ok)
	require.Equal(t, 0.0, t0)
	require.Equal(t, 100.0, t1)
}

func TestAABB_SetOperations(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(2, 2, 2))
	b := NewAABB(NewVec3(1, 1, 1), NewVec3(3, 3, 3))
	c := NewAABB(NewVec3(5, 5, 5), NewVec3(6, 6, 6))

	require.Equal(t, NewAABB(NewVec3(0, 0, 0), NewVec3(3, 3, 3)), a.Union(b))
	require.Equal(t, NewAABB(NewVec3(1, 1, 1), NewVec3(2, 2, 2)), a.Intersection(b))
	require.True(t, a.Overlaps(b))
	require.False(t, a.Overlaps(c))
	require.False(t, a.Intersection(c).IsValid())

	require.Equal(t, a, EmptyAABB().Union(a))
	require.Equal(t, NewVec3(1, 1, 1), a.Center())
	require.Equal(t, 2, NewAABB(NewVec3(0, 0, 0), NewVec3(1, 2, 3)).LongestAxis())
}

func TestTolerance_Equal(t *testing.T) {
	tol := DefaultTolerance()
	require.True(t, tol.Equal(1, 1+tol.Dist/2))
	require.False(t, tol.Equal(1, 1+tol.Dist*2))
	require.True(t, tol.Equal(math.Inf(1), math.Inf(1)))
	require.False(t, tol.Equal(math.Inf(1), 1e300))
	require.InDelta(t, tol.Dist*tol.Dist, tol.DistSq, 1e-18)
}

func TestUnits(t *testing.T) {
	inches := NewUnits("in", 25.4)
	require.InDelta(t, 25.4, inches.ToLocal(1), 1e-12)
	require.InDelta(t, 1, inches.ToModel(25.4), 1e-12)
	require.Equal(t, 3.0, Millimeters.ToLocal(3))
}
