package renderer

import (
	"math"
	"testing"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
)

func vecClose(a, b core.Vec3) bool {
	return a.ApproxEqual(b, 1e-9)
}

func TestNewView_ParallelRays(t *testing.T) {
	view := NewView(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), 2, 1)

	tests := []struct {
		name   string
		s, t   float64
		origin core.Vec3
	}{
		{"Center", 0.5, 0.5, core.NewVec3(0, 0, 10)},
		{"Bottom left", 0, 0, core.NewVec3(-1, -1, 10)},
		{"Top right", 1, 1, core.NewVec3(1, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := view.Ray(tt.s, tt.t)
			if !vecClose(ray.Origin, tt.origin) {
				t.Errorf("Expected origin %v, got %v", tt.origin, ray.Origin)
			}
			if !vecClose(ray.Direction, core.NewVec3(0, 0, -1)) {
				t.Errorf("Expected direction (0,0,-1), got %v", ray.Direction)
			}
		})
	}
}

func TestNewView_UpParallelToForward(t *testing.T) {
	view := NewView(core.NewVec3(0, 0, 10), core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), 2, 1)
	if math.Abs(view.Right.Length()-1) > 1e-9 || math.Abs(view.Up.Length()-1) > 1e-9 {
		t.Fatalf("Expected a unit basis, got right %v up %v", view.Right, view.Up)
	}
	if math.Abs(view.Right.Dot(view.Forward)) > 1e-9 {
		t.Errorf("Right is not perpendicular to forward: %v", view.Right)
	}
}

func TestView_Perspective(t *testing.T) {
	view := NewView(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 1, 1).WithPerspective(90)

	center := view.Ray(0.5, 0.5)
	if !vecClose(center.Direction, core.NewVec3(0, 0, -1)) {
		t.Errorf("Expected center ray along -Z, got %v", center.Direction)
	}

	edge := view.Ray(1, 0.5)
	expected := core.NewVec3(1, 0, -1).Normalize()
	if !vecClose(edge.Direction, expected) {
		t.Errorf("Expected edge ray %v, got %v", expected, edge.Direction)
	}
	if !vecClose(edge.Origin, core.Vec3{}) {
		t.Errorf("Expected every ray to start at the eye, got %v", edge.Origin)
	}
}

func TestFitView(t *testing.T) {
	bounds := core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))

	tests := []struct {
		name    string
		az, el  float64
		forward core.Vec3
	}{
		{"Front", 0, 0, core.NewVec3(-1, 0, 0)},
		{"Side", 90, 0, core.NewVec3(0, -1, 0)},
		{"Top", 0, 90, core.NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := FitView(bounds, tt.az, tt.el, 1)
			if !vecClose(view.Forward, tt.forward) {
				t.Errorf("Expected forward %v, got %v", tt.forward, view.Forward)
			}

			// The eye must be outside the box so every ray starts in front of it
			if bounds.Expand(1e-6).Hit(core.NewRay(view.Eye, view.Forward), -1e-9, 1e-9) {
				t.Errorf("Eye %v is inside the bounds", view.Eye)
			}

			// The grid covers the whole box
			if view.Width < 2*math.Sqrt(3)-1e-9 || view.Height < 2*math.Sqrt(3)-1e-9 {
				t.Errorf("Expected the grid to cover the bounds, got %vx%v", view.Width, view.Height)
			}

			ray := view.PixelRay(50, 50, 101, 101)
			if !vecClose(ray.At(view.Eye.Length()), core.Vec3{}) {
				t.Errorf("Expected the center ray to pass through the box center, got %v", ray)
			}
		})
	}
}

func TestFitView_EmptyBounds(t *testing.T) {
	view := FitView(core.EmptyAABB(), 0, 0, 2)
	if view.Height <= 0 || view.Width != 2*view.Height {
		t.Errorf("Expected a usable 2:1 view, got %vx%v", view.Width, view.Height)
	}
}
