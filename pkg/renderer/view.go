package renderer

import (
	"math"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

// View generates one ray per grid cell. With a zero FOV every ray is
// parallel to Forward and starts on the view plane through Eye; otherwise
// all rays start at Eye.
type View struct {
	Eye     core.Vec3
	Forward core.Vec3
	Right   core.Vec3
	Up      core.Vec3
	Width   float64 // World extent of the grid along Right
	Height  float64 // World extent of the grid along Up
	FOV     float64 // Vertical field of view in degrees, 0 for parallel rays
}

// NewView creates a parallel view looking from eye towards lookAt. size is
// the world height of the grid; the width follows from aspect.
func NewView(eye, lookAt, up core.Vec3, size, aspect float64) View {
	forward := lookAt.Subtract(eye).Normalize()
	right := forward.Cross(up).Normalize()
	if right.LengthSquared() == 0 {
		// up is parallel to the view direction
		right = forward.Perpendicular()
	}
	return View{
		Eye:     eye,
		Forward: forward,
		Right:   right,
		Up:      right.Cross(forward).Normalize(),
		Width:   size * aspect,
		Height:  size,
	}
}

// FitView frames the whole of bounds in a parallel view. azimuth is
// measured in degrees from +X towards +Y, elevation in degrees up from
// the XY plane; the eye sits outside bounds on that side.
func FitView(bounds core.AABB, azimuth, elevation, aspect float64) View {
	center := core.NewVec3(0, 0, 0)
	radius := 1.0
	if bounds.IsValid() && !bounds.IsInfinite() {
		center = bounds.Center()
		radius = math.Max(bounds.Size().Length()/2, 1e-3)
	}

	az := azimuth * math.Pi / 180
	el := elevation * math.Pi / 180
	toEye := core.NewVec3(math.Cos(el)*math.Cos(az), math.Cos(el)*math.Sin(az), math.Sin(el))

	up := core.NewVec3(0, 0, 1)
	if math.Abs(toEye.Z) > 0.999 {
		up = core.NewVec3(0, 1, 0)
	}

	size := 2 * radius
	if aspect < 1 {
		size /= aspect
	}
	return NewView(center.Add(toEye.Multiply(2*radius)), center, up, size, aspect)
}

// WithPerspective returns a copy of the view with converging rays
func (v View) WithPerspective(fov float64) View {
	v.FOV = fov
	return v
}

// Ray generates the ray for grid coordinates (s, t), 0 <= s,t <= 1, with
// (0, 0) at the bottom left
func (v View) Ray(s, t float64) core.Ray {
	dx, dy := s-0.5, t-0.5

	if v.FOV <= 0 {
		origin := v.Eye.
			Add(v.Right.Multiply(dx * v.Width)).
			Add(v.Up.Multiply(dy * v.Height))
		return core.NewRay(origin, v.Forward)
	}

	h := 2 * math.Tan(v.FOV*math.Pi/360)
	aspect := 1.0
	if v.Height > 0 {
		aspect = v.Width / v.Height
	}
	direction := v.Forward.
		Add(v.Right.Multiply(dx * h * aspect)).
		Add(v.Up.Multiply(dy * h))
	return core.NewRay(v.Eye, direction)
}

// PixelRay generates the ray through the center of pixel (x, y) of a
// width x height image, y growing downwards
func (v View) PixelRay(x, y, width, height int) core.Ray {
	s := (float64(x) + 0.5) / float64(width)
	t := 1 - (float64(y)+0.5)/float64(height)
	return v.Ray(s, t)
}
