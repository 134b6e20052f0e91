package scene

import (
	"fmt"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
)

// Grid layout
const (
	gridSize    = 20
	gridSpacing = 10.0
)

// NewSphereGridScene creates a flat grid of spheres, one region each, with
// a rotated box notch cut from every other sphere. It exercises the cut
// tree with many small solids.
func NewSphereGridScene() (*Scene, error) {
	s := newScene(30, 40)
	dir := s.Directory

	radius := gridSpacing * 0.35
	materials := []string{"copper", "steel", "brass", "zinc"}
	offset := float64(gridSize-1) * gridSpacing / 2

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			center := core.NewVec3(float64(i)*gridSpacing-offset, float64(j)*gridSpacing-offset, 0)
			name := fmt.Sprintf("ball.%d.%d", i, j)
			dir.MustAddSolid(name, primitive.Sphere{Center: center, Radius: radius}, primitive.Identity())

			tree := csg.Leaf(name)
			if (i+j)%2 == 1 {
				notch := fmt.Sprintf("notch.%d.%d", i, j)
				half := core.NewVec3(radius/2, radius/2, radius)
				// Rotated about its own center, then moved to the top of the ball
				placement := primitive.RotateDegrees(0, 0, float64(i*j%90)).
					Then(primitive.Translate(center.X, center.Y, center.Z+radius))
				dir.MustAddSolid(notch, primitive.NewCenteredBox(core.NewVec3(0, 0, 0), half), placement)
				tree = csg.Subtract(tree, csg.Leaf(notch))
			}

			dir.MustAddRegion(rt.RegionDef{
				Name:     fmt.Sprintf("ball%02d%02d", i, j),
				ID:       5000 + i*gridSize + j,
				Material: materials[(i+j)%len(materials)],
				Tree:     tree,
			})
		}
	}
	return s, nil
}
