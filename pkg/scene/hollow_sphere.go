package scene

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// NewHollowSphereScene creates a 50mm spherical shell, 10mm thick, with a
// 20mm core floating in the cavity. Everything above y=15 is cut away.
func NewHollowSphereScene() (*Scene, error) {
	s := newScene(35, 25)
	dir := s.Directory

	origin := core.NewVec3(0, 0, 0)
	dir.MustAddSolid("shell.outer", primitive.Sphere{Center: origin, Radius: 50}, primitive.Identity())
	dir.MustAddSolid("shell.inner", primitive.Sphere{Center: origin, Radius: 40}, primitive.Identity())
	dir.MustAddSolid("core.s", primitive.Sphere{Center: origin, Radius: 20}, primitive.Identity())
	dir.MustAddSolid("cutaway", primitive.Halfspace{Normal: core.NewVec3(0, 1, 0), Dist: 15}, primitive.Identity())

	dir.MustAddRegion(rt.RegionDef{
		Name:     "shell",
		ID:       1000,
		Material: "steel",
		Tree: csg.Intersect(
			csg.Subtract(csg.Leaf("shell.outer"), csg.Leaf("shell.inner")),
			csg.Leaf("cutaway"),
		),
	})
	dir.MustAddRegion(rt.RegionDef{
		Name:     "core",
		ID:       1001,
		Material: "brass",
		Tree:     csg.Leaf("core.s"),
	})
	return s, nil
}
