package scene

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// NewBracketScene creates an angle bracket written in inches: a 4x2 base
// plate and a 3in upright, two holes through the base, one through the
// upright with a bolt sitting in it
func NewBracketScene() (*Scene, error) {
	s := newScene(225, 30)
	s.Units = core.NewUnits("in", 25.4)
	dir := s.Directory

	const thickness = 0.25

	dir.MustAddSolid("base.box", primitive.Box{
		Min: core.NewVec3(0, 0, 0),
		Max: core.NewVec3(4, 2, thickness),
	}, primitive.Identity())
	dir.MustAddSolid("upright.box", primitive.Box{
		Min: core.NewVec3(0, 0, 0),
		Max: core.NewVec3(thickness, 2, 3),
	}, primitive.Identity())

	// Holes run a little past both faces so no skin is left behind
	for i, x := range []float64{1.5, 3.25} {
		dir.MustAddSolid(holeName(i), primitive.Cylinder{
			Base:   core.NewVec3(x, 1, -0.1),
			Top:    core.NewVec3(x, 1, thickness+0.1),
			Radius: 0.25,
		}, primitive.Identity())
	}

	// The upright hole is modelled along Z and turned onto the X axis
	dir.MustAddSolid("upright.hole", primitive.Cylinder{
		Base:   core.NewVec3(0, 0, -0.1),
		Top:    core.NewVec3(0, 0, thickness+0.1),
		Radius: 0.3125,
	}, primitive.RotateDegrees(0, 90, 0).Then(primitive.Translate(0, 1, 2)))
	dir.MustAddSolid("bolt.shank", primitive.Cylinder{
		Base:   core.NewVec3(0, 0, -0.5),
		Top:    core.NewVec3(0, 0, thickness+0.5),
		Radius: 0.25,
	}, primitive.RotateDegrees(0, 90, 0).Then(primitive.Translate(0, 1, 2)))

	dir.MustAddRegion(rt.RegionDef{
		Name:     "bracket",
		ID:       2000,
		Material: "steel",
		Tree: csg.Subtract(
			csg.Subtract(
				csg.Subtract(
					csg.Union(csg.Leaf("base.box"), csg.Leaf("upright.box")),
					csg.Leaf(holeName(0)),
				),
				csg.Leaf(holeName(1)),
			),
			csg.Leaf("upright.hole"),
		),
	})
	dir.MustAddRegion(rt.RegionDef{
		Name:     "bolt",
		ID:       2001,
		Material: "zinc",
		Tree:     csg.Leaf("bolt.shank"),
	})
	return s, nil
}

func holeName(i int) string {
	return []string{"base.hole1", "base.hole2"}[i]
}
