package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/BRL-CAD/brlcad-sub154/pkg/scene"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func TestRun_List(t *testing.T) {
	conf := defaultConfig()
	conf.List = true

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), conf, &out))

	var groups []scene.SceneGroup
	require.NoError(t, json.Unmarshal(out.Bytes(), &groups))
	require.Equal(t, scene.ListGroups(), groups)
}

func shot(t *testing.T, conf config) shotResult {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), conf, &out))

	var result shotResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result
}

func TestRun_Shot(t *testing.T) {
	conf := defaultConfig()
	conf.Scene = "hollow-sphere"
	conf.Shot = "-100,0,0"
	conf.Dir = "2,0,0"
	conf.AllHits = true

	result := shot(t, conf)
	require.Equal(t, "hollow-sphere", result.Scene)
	require.Equal(t, [3]float64{1, 0, 0}, result.Direction)
	require.Len(t, result.Partitions, 3)

	first := result.Partitions[0]
	require.Equal(t, "shell", first.Region)
	require.Equal(t, "steel", first.Material)
	require.Equal(t, "shell.outer", first.InSolid)
	require.Equal(t, "shell.inner", first.OutSolid)
	require.InDelta(t, 50, first.In, 1e-6)
	require.InDelta(t, 60, first.Out, 1e-6)
	require.InDelta(t, -50, first.InPoint[0], 1e-6)
	require.InDelta(t, -1, first.InNormal[0], 1e-6)

	require.Equal(t, "core", result.Partitions[1].Region)

	// The nearest partition only
	conf.AllHits = false
	require.Len(t, shot(t, conf).Partitions, 1)
}

func TestRun_ShotInSceneUnits(t *testing.T) {
	conf := defaultConfig()
	conf.Scene = "bracket"
	conf.Shot = "2,1,10"
	conf.Dir = "0,0,-1"

	result := shot(t, conf)
	require.Equal(t, "in", result.Units)
	require.Len(t, result.Partitions, 1)

	p := result.Partitions[0]
	require.Equal(t, "bracket", p.Region)
	require.InDelta(t, 9.75, p.In, 1e-6)
	require.InDelta(t, 10, p.Out, 1e-6)
	require.InDelta(t, 0.25, p.InPoint[2], 1e-6)
}

func TestRun_ShotMiss(t *testing.T) {
	conf := defaultConfig()
	conf.Shot = "-100,100,0"

	result := shot(t, conf)
	require.NotNil(t, result.Partitions)
	require.Empty(t, result.Partitions)
}

func TestRun_Render(t *testing.T) {
	dir := t.TempDir()
	conf := defaultConfig()
	conf.Scene = "overlap"
	conf.Width = 40
	conf.Height = 30
	conf.Workers = 2
	conf.Air = true
	conf.Output = filepath.Join(dir, "overlap.png")
	conf.Depth = filepath.Join(dir, "overlap-depth.png")

	require.NoError(t, run(context.Background(), conf, nil))

	for _, name := range []string{conf.Output, conf.Depth} {
		f, err := os.Open(name)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		require.Equal(t, 40, img.Bounds().Dx())
		require.Equal(t, 30, img.Bounds().Dy())
	}
}

func TestRun_Errors(t *testing.T) {
	t.Run("unknown scene", func(t *testing.T) {
		conf := defaultConfig()
		conf.Scene = "nonexistent"
		conf.Output = filepath.Join(t.TempDir(), "out.png")
		err := run(context.Background(), conf, nil)
		require.True(t, errors.IsType(err, scene.ErrTypeUnknownScene))
	})

	t.Run("missing output", func(t *testing.T) {
		conf := defaultConfig()
		conf.Output = ""
		require.Error(t, run(context.Background(), conf, nil))
	})

	t.Run("bad shot direction", func(t *testing.T) {
		conf := defaultConfig()
		conf.Shot = "0,0,0"
		conf.Dir = "up"
		require.Error(t, run(context.Background(), conf, &bytes.Buffer{}))
	})

	t.Run("unwritable output", func(t *testing.T) {
		conf := defaultConfig()
		conf.Width, conf.Height = 4, 4
		conf.Output = filepath.Join(t.TempDir(), "missing", "out.png")
		require.Error(t, run(context.Background(), conf, nil))
	})
}
