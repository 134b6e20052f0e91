// Package renderer traces a grid of rays through a prepared model with a
// fixed pool of workers, one kernel resource each, and shades the nearest
// partition of every pixel.
package renderer

import (
	"context"
	"image"
	"time"

	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Config contains configuration for grid rendering
type Config struct {
	TileSize   int               // Size of each square tile in pixels
	NumWorkers int               // Number of parallel workers (0 = use CPU count)
	OneHit     bool              // Stop each ray at its nearest partition
	Overlap    rt.OverlapHandler // nil logs every overlap and keeps both regions
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:   32,
		NumWorkers: 0,
		OneHit:     true,
	}
}

// TileCompletionResult contains progress information about a finished tile
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	Bounds     image.Rectangle // Pixels covered by the tile
	TileNumber int             // Completed tiles so far (1-based)
	TotalTiles int
	Frame      *Frame // Frame being filled; only finished tiles may be read
}

// Renderer renders one view of a model
type Renderer struct {
	model         *rt.Model
	view          View
	width, height int
	config        Config
	tiles         []*Tile
}

// New creates a renderer for a width x height image
func New(model *rt.Model, view View, width, height int, config Config) *Renderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	return &Renderer{
		model:  model,
		view:   view,
		width:  width,
		height: height,
		config: config,
		tiles:  NewTileGrid(width, height, config.TileSize),
	}
}

// Render traces every tile and returns the filled frame. The first tile
// error, or cancelling ctx, makes every tile not yet started fail fast;
// the first error received is returned.
func (r *Renderer) Render(ctx context.Context, tileCallback func(TileCompletionResult)) (*Frame, RenderStats, error) {
	if r.width <= 0 || r.height <= 0 {
		return nil, RenderStats{}, errors.New("image must have a positive size").
			WithTag("width", r.width).
			WithTag("height", r.height)
	}

	pool, err := NewWorkerPool(r.model, r.view, r.width, r.height, r.config)
	if err != nil {
		return nil, RenderStats{}, err
	}

	start := time.Now()
	frame := NewFrame(r.width, r.height, Palette(r.model))

	logs.WithTag("model_id", r.model.ID().String()).
		WithTag("width", r.width).
		WithTag("height", r.height).
		WithTag("tiles", len(r.tiles)).
		WithTag("workers", pool.GetNumWorkers()).
		Debug("render started")

	pool.Start(ctx)
	for i, tile := range r.tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i, Frame: frame})
	}

	var firstErr error
	for i := 0; i < len(r.tiles); i++ {
		result, ok := pool.GetResult()
		if !ok {
			firstErr = errors.New("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}

		if tileCallback != nil {
			tile := r.tiles[result.TaskID]
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / r.config.TileSize,
				TileY:      tile.Bounds.Min.Y / r.config.TileSize,
				Bounds:     tile.Bounds,
				TileNumber: i + 1,
				TotalTiles: len(r.tiles),
				Frame:      frame,
			})
		}
	}
	pool.Stop()

	stats := RenderStats{
		Width:    r.width,
		Height:   r.height,
		Tiles:    len(r.tiles),
		Workers:  pool.GetNumWorkers(),
		Coverage: frame.Coverage(),
		Rays:     pool.RayStats(),
		Duration: time.Since(start),
	}
	if firstErr != nil {
		return nil, stats, firstErr
	}

	logs.WithTag("model_id", r.model.ID().String()).
		WithTag("rays", stats.Rays.Rays).
		WithTag("hits", stats.Rays.Hits).
		WithTag("overlaps", stats.Rays.Overlaps).
		WithTag("degeneracies", stats.Rays.Degeneracies).
		WithTag("coverage", stats.Coverage).
		WithTag("duration", stats.Duration.String()).
		Info("render complete")

	return frame, stats, nil
}
