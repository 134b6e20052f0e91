package renderer

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// Pixel is what the nearest partition along a pixel's ray looked like
type Pixel struct {
	Hit      bool
	Dist     float64   // Distance to the first surface in front of the eye
	Region   int       // Region index, -1 on a miss
	Normal   core.Vec3 // Outward normal of the partition's entry
	Cos      float64   // Cosine between the normal and the reversed ray
	Overlap  bool      // The partition shares space with another region
	Segments int       // Partitions along the whole ray
}

// Frame holds the traced pixels of one image. Tiles write disjoint
// pixels, so workers fill it without locking.
type Frame struct {
	Width   int
	Height  int
	Pixels  []Pixel
	palette []color.RGBA
}

// NewFrame allocates an empty frame
func NewFrame(width, height int, palette []color.RGBA) *Frame {
	pixels := make([]Pixel, width*height)
	for i := range pixels {
		pixels[i].Region = -1
	}
	return &Frame{
		Width:   width,
		Height:  height,
		Pixels:  pixels,
		palette: palette,
	}
}

// At returns the pixel at (x, y)
func (f *Frame) At(x, y int) *Pixel {
	return &f.Pixels[y*f.Width+x]
}

// Image shades the frame: region colors lit head-on, overlaps in red and
// misses on a dark background
func (f *Frame) Image() *image.RGBA {
	return f.SubImage(image.Rect(0, 0, f.Width, f.Height))
}

// SubImage shades only the pixels within bounds, reading nothing outside
// them. The result keeps frame coordinates.
func (f *Frame) SubImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, f.Width, f.Height))
	img := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, f.shade(f.At(x, y)))
		}
	}
	return img
}

func (f *Frame) shade(p *Pixel) color.RGBA {
	if !p.Hit {
		return background
	}

	base := overlapColor
	if !p.Overlap && p.Region >= 0 && p.Region < len(f.palette) {
		base = f.palette[p.Region]
	}

	// Ambient plus head-on diffuse
	k := 0.25 + 0.75*math.Max(0, p.Cos)
	return color.RGBA{
		R: uint8(float64(base.R) * k),
		G: uint8(float64(base.G) * k),
		B: uint8(float64(base.B) * k),
		A: 255,
	}
}

// DepthImage maps hit distances to grey levels, near surfaces bright and
// misses black
func (f *Frame) DepthImage() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))

	near, far := math.Inf(1), math.Inf(-1)
	for i := range f.Pixels {
		if p := &f.Pixels[i]; p.Hit {
			near = math.Min(near, p.Dist)
			far = math.Max(far, p.Dist)
		}
	}
	span := far - near
	if span <= 0 {
		span = 1
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			p := f.At(x, y)
			if !p.Hit {
				continue
			}
			v := 1 - (p.Dist-near)/span
			img.SetGray16(x, y, color.Gray16{Y: uint16(4096 + v*61439)})
		}
	}
	return img
}

// Coverage returns the fraction of pixels that hit something
func (f *Frame) Coverage() float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	hits := 0
	for i := range f.Pixels {
		if f.Pixels[i].Hit {
			hits++
		}
	}
	return float64(hits) / float64(len(f.Pixels))
}

// WritePNG encodes the shaded frame
func (f *Frame) WritePNG(w io.Writer) error {
	return png.Encode(w, f.Image())
}
