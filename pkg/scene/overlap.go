package scene

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// NewOverlapScene creates two 40mm blocks that share a 10mm slab, and an
// air pocket inside the left block. Rendering it shows the overlap
// handlers at work.
func NewOverlapScene() (*Scene, error) {
	s := newScene(30, 20)
	dir := s.Directory

	dir.MustAddSolid("left.box", primitive.NewCenteredBox(core.NewVec3(-15, 0, 0), core.NewVec3(20, 20, 20)), primitive.Identity())
	dir.MustAddSolid("right.box", primitive.NewCenteredBox(core.NewVec3(15, 0, 0), core.NewVec3(20, 20, 20)), primitive.Identity())
	dir.MustAddSolid("pocket.s", primitive.Sphere{Center: core.NewVec3(-20, 0, 0), Radius: 10}, primitive.Identity())

	dir.MustAddRegion(rt.RegionDef{Name: "left", ID: 3000, Material: "oak", Tree: csg.Leaf("left.box")})
	dir.MustAddRegion(rt.RegionDef{Name: "right", ID: 3001, Material: "pine", Tree: csg.Leaf("right.box")})
	dir.MustAddRegion(rt.RegionDef{Name: "pocket", ID: 3002, AirCode: 1, Tree: csg.Leaf("pocket.s")})
	return s, nil
}
