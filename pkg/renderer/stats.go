package renderer

import (
	"time"

	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width    int
	Height   int
	Tiles    int           // Number of tiles rendered
	Workers  int           // Number of parallel workers used
	Coverage float64       // Fraction of pixels that hit geometry
	Rays     rt.RayStats   // Kernel counters reduced over all workers
	Duration time.Duration // Wall time of the render
}

// RaysPerSecond returns the kernel throughput of the render
func (s RenderStats) RaysPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Rays.Rays) / s.Duration.Seconds()
}
