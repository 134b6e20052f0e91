package renderer

import (
	"image/color"
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/cespare/xxhash/v2"
)

var (
	background   = color.RGBA{R: 24, G: 26, B: 32, A: 255}
	overlapColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// Palette assigns every region of a model a stable color. Regions
// sharing a material share a color; the rest are keyed by name.
func Palette(model *rt.Model) []color.RGBA {
	regions := model.Regions()
	palette := make([]color.RGBA, len(regions))
	for i, r := range regions {
		key := r.Material
		if key == "" {
			key = r.Name
		}
		palette[i] = keyColor(key)
	}
	return palette
}

// keyColor hashes key to a hue and returns a light, saturated color for it
func keyColor(key string) color.RGBA {
	h := xxhash.Sum64String(key)
	hue := float64(h%3600) / 10
	return hsv(hue, 0.55, 0.95)
}

func hsv(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
