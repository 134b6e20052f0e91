// Package scene builds the demonstration models: named solids and regions
// in a directory, plus the units they are written in and a view to look
// at them from.
package scene

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ErrTypeUnknownScene is returned when a scene ID is not in the catalog
const ErrTypeUnknownScene = "unknown_scene"

// Scene contains everything needed to prepare and frame a model
type Scene struct {
	Info      SceneInfo
	Directory *rt.Directory
	Units     core.Units
	Azimuth   float64 // Suggested view azimuth in degrees
	Elevation float64 // Suggested view elevation in degrees
}

// Prep prepares the scene's directory in its own units. Extra options
// are applied after the units.
func (s *Scene) Prep(opts ...rt.Option) (*rt.Model, error) {
	all := append([]rt.Option{rt.WithUnits(s.Units)}, opts...)
	return rt.Prep(s.Directory, all...)
}

// Load builds a scene from the catalog
func Load(id string) (*Scene, error) {
	for _, b := range builtins {
		if b.info.ID != id {
			continue
		}
		s, err := b.build()
		if err != nil {
			return nil, errors.New("building scene failed").
				WithTag("scene", id).
				Wrap(err)
		}
		s.Info = b.info
		return s, nil
	}
	return nil, errors.New("unknown scene").
		WithType(ErrTypeUnknownScene).
		WithTag("scene", id)
}

func newScene(azimuth, elevation float64) *Scene {
	return &Scene{
		Directory: rt.NewDirectory(),
		Units:     core.Millimeters,
		Azimuth:   azimuth,
		Elevation: elevation,
	}
}
