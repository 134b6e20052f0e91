package probe

import (
	"testing"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

// Two unit spheres in centimeters, the second one hollowed out
func model(t *testing.T) *rt.Model {
	t.Helper()
	dir := rt.NewDirectory()
	dir.MustAddSolid("a", primitive.Sphere{Radius: 1}, primitive.Identity())
	dir.MustAddSolid("b", primitive.Sphere{Center: core.NewVec3(3, 0, 0), Radius: 1}, primitive.Identity())
	dir.MustAddSolid("b.hole", primitive.Sphere{Center: core.NewVec3(3, 0, 0), Radius: 0.5}, primitive.Identity())
	dir.MustAddRegion(rt.RegionDef{Name: "first", ID: 7, Material: "glass", Tree: csg.Leaf("a")})
	dir.MustAddRegion(rt.RegionDef{Name: "second", ID: 8, Tree: csg.Subtract(csg.Leaf("b"), csg.Leaf("b.hole"))})

	m, err := rt.Prep(dir, rt.WithUnits(core.NewUnits("cm", 10)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestFire(t *testing.T) {
	m := model(t)
	result, err := Fire(m, core.NewVec3(-5, 0, 0), core.NewVec3(4, 0, 0), Options{AllHits: true})
	require.NoError(t, err)

	require.Equal(t, "cm", result.Units)
	require.Equal(t, [3]float64{-5, 0, 0}, result.Origin)
	require.Equal(t, [3]float64{1, 0, 0}, result.Direction)
	require.Len(t, result.Partitions, 3)

	first := result.Partitions[0]
	require.Equal(t, "first", first.Region)
	require.Equal(t, 7, first.ID)
	require.Equal(t, "glass", first.Material)
	require.InDelta(t, 4, first.In, 1e-9)
	require.InDelta(t, 6, first.Out, 1e-9)
	require.InDelta(t, -1, first.InPoint[0], 1e-9)
	require.InDelta(t, 1, first.OutPoint[0], 1e-9)
	require.InDelta(t, -1, first.InNormal[0], 1e-9)

	hollow := result.Partitions[1]
	require.Equal(t, "second", hollow.Region)
	require.Equal(t, "b", hollow.InSolid)
	require.Equal(t, "b.hole", hollow.OutSolid)
	require.InDelta(t, 7, hollow.In, 1e-9)
	require.InDelta(t, 7.5, hollow.Out, 1e-9)

	// Leaving the cavity the normal faces back into it
	far := result.Partitions[2]
	require.Equal(t, "b.hole", far.InSolid)
	require.InDelta(t, 8.5, far.In, 1e-9)
	require.InDelta(t, 9, far.Out, 1e-9)
	require.InDelta(t, -1, far.InNormal[0], 1e-9)
}

func TestFire_FromInsideCavity(t *testing.T) {
	m := model(t)
	for _, allHits := range []bool{true, false} {
		result, err := Fire(m, core.NewVec3(3, 0, 0), core.NewVec3(1, 0, 0), Options{AllHits: allHits})
		require.NoError(t, err)

		// Partitions behind the origin are left out
		require.Len(t, result.Partitions, 1)
		require.Equal(t, "second", result.Partitions[0].Region)
		require.InDelta(t, 0.5, result.Partitions[0].In, 1e-9)
		require.InDelta(t, 1, result.Partitions[0].Out, 1e-9)
	}
}

func TestFire_NearestOnly(t *testing.T) {
	m := model(t)
	result, err := Fire(m, core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0), Options{})
	require.NoError(t, err)
	require.Len(t, result.Partitions, 1)
	require.Equal(t, "first", result.Partitions[0].Region)
}

func TestFire_Miss(t *testing.T) {
	m := model(t)
	result, err := Fire(m, core.NewVec3(-5, 5, 0), core.NewVec3(1, 0, 0), Options{AllHits: true})
	require.NoError(t, err)
	require.NotNil(t, result.Partitions)
	require.Empty(t, result.Partitions)
}

func TestFire_ClosedModel(t *testing.T) {
	m := model(t)
	require.NoError(t, m.Close())

	_, err := Fire(m, core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0), Options{})
	require.True(t, errors.IsType(err, rt.ErrTypeModelClosed))
}

func TestParseVec3(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		expected    core.Vec3
		expectError bool
	}{
		{"integers", "1,2,3", core.NewVec3(1, 2, 3), false},
		{"spaces and decimals", " -1.5, 0 ,2e2", core.NewVec3(-1.5, 0, 200), false},
		{"too few", "1,2", core.Vec3{}, true},
		{"too many", "1,2,3,4", core.Vec3{}, true},
		{"not a number", "1,x,3", core.Vec3{}, true},
		{"empty", "", core.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVec3(tt.in)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, v)
		})
	}
}
