package rt

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
)

// Soltab is a prepared, placed solid. It is immutable once the model is
// prepared and shared by every worker.
type Soltab struct {
	Index     int
	Name      string
	Kind      primitive.Kind
	Bounds    core.AABB
	Placement primitive.Placement
	Solid     primitive.Solid
	Regions   []int // Indexes of the regions referencing this solid
}

// Region is a named boolean combination of soltabs
type Region struct {
	Index    int
	Name     string
	ID       int
	AirCode  int
	Material string
	Tree     *csg.Tree
	Solids   []int // Soltab indexes referenced by the tree
}

// IsAir reports whether the region is an air region
func (r *Region) IsAir() bool {
	return r.AirCode != 0
}
