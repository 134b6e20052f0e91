package scene

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// NewSDFPartScene creates a rounded 60x40x20mm block with a through hole
// and a spherical boss, all as one signed distance field, placed next to
// an analytic sphere
func NewSDFPartScene() (*Scene, error) {
	s := newScene(40, 35)
	dir := s.Directory

	casting, err := castingShape()
	if err != nil {
		return nil, err
	}

	dir.MustAddSolid("casting.sdf", primitive.SDF{Shape: casting}, primitive.Identity())
	dir.MustAddSolid("marker.s", primitive.Sphere{Center: core.NewVec3(0, 45, 0), Radius: 12}, primitive.Identity())

	dir.MustAddRegion(rt.RegionDef{Name: "casting", ID: 4000, Material: "aluminium", Tree: csg.Leaf("casting.sdf")})
	dir.MustAddRegion(rt.RegionDef{Name: "marker", ID: 4001, Material: "brass", Tree: csg.Leaf("marker.s")})
	return s, nil
}

func castingShape() (sdf.SDF3, error) {
	block, err := sdf.Box3D(v3.Vec{X: 60, Y: 40, Z: 20}, 4)
	if err != nil {
		return nil, err
	}
	hole, err := sdf.Cylinder3D(30, 8, 0)
	if err != nil {
		return nil, err
	}
	boss, err := sdf.Sphere3D(12)
	if err != nil {
		return nil, err
	}
	boss = sdf.Transform3D(boss, sdf.Translate3d(v3.Vec{X: 18, Y: 0, Z: 10}))

	return sdf.Union3D(sdf.Difference3D(block, hole), boss), nil
}
