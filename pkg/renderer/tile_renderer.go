package renderer

import (
	"image"
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// TileRenderer traces the pixels of tiles through one worker's resource
type TileRenderer struct {
	res    *rt.Resource
	view   View
	width  int
	height int
	app    rt.Application
	pixel  *Pixel // Pixel the ray in flight writes to
}

// NewTileRenderer creates a tile renderer shooting through res
func NewTileRenderer(res *rt.Resource, view View, width, height int, cfg Config) *TileRenderer {
	tr := &TileRenderer{
		res:    res,
		view:   view,
		width:  width,
		height: height,
	}
	tr.app = rt.Application{
		Hit:     tr.hit,
		Overlap: cfg.Overlap,
		OneHit:  cfg.OneHit,
	}
	return tr
}

// RenderTileBounds traces every pixel within bounds into frame. The first
// kernel error aborts the tile.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, frame *Frame) error {
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tr.pixel = frame.At(x, y)
			ray := tr.view.PixelRay(x, y, tr.width, tr.height)
			if _, err := tr.res.Shoot(ray, tr.app); err != nil {
				tr.pixel = nil
				return err
			}
		}
	}
	tr.pixel = nil
	return nil
}

// hit records the first partition in front of the eye. Partitions that
// end behind it leave the pixel a miss.
func (tr *TileRenderer) hit(ray core.Ray, parts *rt.PartitionList) {
	p := parts.Ahead(0)
	if p == nil {
		return
	}
	px := tr.pixel

	px.Hit = true
	px.Region = p.Region.Index
	px.Overlap = p.Overlaps
	px.Segments = parts.Len()

	// The eye is inside the partition: treat it as facing the viewer
	if p.In.Dist < 0 {
		px.Dist = 0
		px.Normal = ray.Direction.Negate()
		px.Cos = 1
		return
	}

	px.Dist = p.In.Dist
	px.Normal = p.InNormal()
	px.Cos = math.Abs(px.Normal.Dot(ray.Direction))
}
