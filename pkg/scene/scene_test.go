package scene

import (
	"testing"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

type span struct {
	region  string
	in, out float64
}

func load(t *testing.T, id string) *rt.Model {
	t.Helper()
	s, err := Load(id)
	require.NoError(t, err)
	require.Equal(t, id, s.Info.ID)

	m, err := s.Prep()
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func shoot(t *testing.T, m *rt.Model, origin, dir core.Vec3, overlap rt.OverlapHandler) []span {
	t.Helper()
	res, err := m.NewResource()
	require.NoError(t, err)
	defer res.Release()

	var spans []span
	_, err = res.Shoot(core.NewRay(origin, dir), rt.Application{
		Overlap: overlap,
		Hit: func(ray core.Ray, parts *rt.PartitionList) {
			parts.Each(func(p *rt.Partition) bool {
				spans = append(spans, span{p.Region.Name, p.In.Dist, p.Out.Dist})
				return true
			})
		},
	})
	require.NoError(t, err)
	return spans
}

func keepBoth(ray core.Ray, first, second *rt.Region, s rt.Span) rt.Resolution {
	return rt.KeepBoth
}

func requireSpans(t *testing.T, expected, actual []span) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		require.Equal(t, expected[i].region, actual[i].region)
		require.InDelta(t, expected[i].in, actual[i].in, 1e-3)
		require.InDelta(t, expected[i].out, actual[i].out, 1e-3)
	}
}

func TestLoad_EveryScenePreps(t *testing.T) {
	for _, info := range List() {
		t.Run(info.ID, func(t *testing.T) {
			m := load(t, info.ID)
			require.Zero(t, m.Dropped())
			require.NotEmpty(t, m.Regions())
			require.True(t, m.Bounds().IsValid())
			require.False(t, m.Bounds().IsInfinite())
		})
	}
}

func TestLoad_UnknownScene(t *testing.T) {
	_, err := Load("teapot")
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeUnknownScene))
}

func TestHollowSphereScene(t *testing.T) {
	m := load(t, "hollow-sphere")
	spans := shoot(t, m, core.NewVec3(-100, 0, 0), core.NewVec3(1, 0, 0), keepBoth)
	requireSpans(t, []span{
		{"shell", 50, 60},
		{"core", 80, 120},
		{"shell", 140, 150},
	}, spans)

	// Above the cutaway only the core is left
	spans = shoot(t, m, core.NewVec3(-100, 18, 0), core.NewVec3(1, 0, 0), keepBoth)
	require.Len(t, spans, 1)
	require.Equal(t, "core", spans[0].region)
}

func TestBracketScene(t *testing.T) {
	m := load(t, "bracket")
	require.Equal(t, "in", m.Units().Name)

	// Straight down through the base plate, between the holes
	spans := shoot(t, m, core.NewVec3(2*25.4, 25.4, 254), core.NewVec3(0, 0, -1), keepBoth)
	requireSpans(t, []span{{"bracket", 254 - 0.25*25.4, 254}}, spans)

	// Down the first hole
	spans = shoot(t, m, core.NewVec3(1.5*25.4, 25.4, 254), core.NewVec3(0, 0, -1), keepBoth)
	require.Empty(t, spans)

	// Along the bolt: it fills the upright's hole without overlapping it
	spans = shoot(t, m, core.NewVec3(-254, 25.4, 2*25.4), core.NewVec3(1, 0, 0), keepBoth)
	requireSpans(t, []span{{"bolt", 254 - 0.5*25.4, 254 + 0.75*25.4}}, spans)
}

func TestOverlapScene(t *testing.T) {
	m := load(t, "overlap")

	var pairs []string
	spans := shoot(t, m, core.NewVec3(-100, 0, 0), core.NewVec3(1, 0, 0), func(ray core.Ray, first, second *rt.Region, s rt.Span) rt.Resolution {
		pairs = append(pairs, first.Name+"/"+second.Name)
		if first.IsAir() || second.IsAir() {
			return rt.AirOverlap(ray, first, second, s)
		}
		return rt.KeepBoth
	})
	require.ElementsMatch(t, []string{"left/pocket", "left/right"}, pairs)

	// The air pocket gave its space to the left block
	for _, s := range spans {
		require.NotEqual(t, "pocket", s.region)
	}
}

func TestSDFPartScene(t *testing.T) {
	m := load(t, "sdf-part")

	// Down the through hole
	require.Empty(t, shoot(t, m, core.NewVec3(0, 0, 100), core.NewVec3(0, 0, -1), keepBoth))

	spans := shoot(t, m, core.NewVec3(-20, 0, 100), core.NewVec3(0, 0, -1), keepBoth)
	require.Len(t, spans, 1)
	require.Equal(t, "casting", spans[0].region)
	require.InDelta(t, 90, spans[0].in, 0.05)
	require.InDelta(t, 110, spans[0].out, 0.05)

	// Top of the boss
	spans = shoot(t, m, core.NewVec3(18, 0, 100), core.NewVec3(0, 0, -1), keepBoth)
	require.Len(t, spans, 1)
	require.InDelta(t, 78, spans[0].in, 0.05)

	spans = shoot(t, m, core.NewVec3(0, 45, 100), core.NewVec3(0, 0, -1), keepBoth)
	requireSpans(t, []span{{"marker", 88, 112}}, spans)
}

func TestSphereGridScene(t *testing.T) {
	m := load(t, "sphere-grid")
	require.Len(t, m.Regions(), gridSize*gridSize)
	require.Len(t, m.Soltabs(), gridSize*gridSize+gridSize*gridSize/2)

	spans := shoot(t, m, core.NewVec3(-95, -95, 100), core.NewVec3(0, 0, -1), keepBoth)
	requireSpans(t, []span{{"ball0000", 96.5, 103.5}}, spans)

	// The notch takes the top off every other ball
	spans = shoot(t, m, core.NewVec3(-85, -95, 100), core.NewVec3(0, 0, -1), keepBoth)
	require.Len(t, spans, 1)
	require.Equal(t, "ball0100", spans[0].region)
	require.InDelta(t, 100, spans[0].in, 1e-3)
}

func TestListGroups(t *testing.T) {
	groups := ListGroups()
	require.Len(t, groups, 3)
	require.Equal(t, "Booleans", groups[0].Name)
	require.Equal(t, "Overlaps", groups[1].Name)
	require.Equal(t, "Primitives", groups[2].Name)

	booleans := groups[0].Scenes
	require.Equal(t, "Bracket", booleans[0].DisplayName)
	require.Equal(t, "Hollow Sphere", booleans[1].DisplayName)
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"hollow-sphere", "Hollow Sphere"},
		{"sdf_part", "Sdf Part"},
		{"bracket", "Bracket"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, titleCase(tt.in))
	}
}
