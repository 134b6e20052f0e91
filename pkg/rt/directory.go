package rt

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// SolidDef is a named, placed raw primitive
type SolidDef struct {
	Name       string
	Definition primitive.Definition
	Placement  primitive.Placement
}

// RegionDef is a named boolean combination of solids
type RegionDef struct {
	Name     string
	ID       int
	AirCode  int // Non-zero marks an air region
	Material string
	Tree     *csg.Node
}

// Directory collects the solids and regions a model is prepared from. It
// is filled in by a loader and is not safe for concurrent use.
type Directory struct {
	solids  []SolidDef
	regions []RegionDef
	names   map[string]struct{}
}

// NewDirectory returns an empty directory
func NewDirectory() *Directory {
	return &Directory{names: make(map[string]struct{})}
}

// AddSolid registers a solid under a unique name
func (d *Directory) AddSolid(name string, def primitive.Definition, placement primitive.Placement) error {
	if err := d.claim(name); err != nil {
		return err
	}
	d.solids = append(d.solids, SolidDef{Name: name, Definition: def, Placement: placement})
	return nil
}

// AddRegion registers a region under a unique name. Solids and regions
// share one namespace.
func (d *Directory) AddRegion(r RegionDef) error {
	if err := d.claim(r.Name); err != nil {
		return err
	}
	d.regions = append(d.regions, r)
	return nil
}

// MustAddSolid is AddSolid for programmatic models that cannot fail
func (d *Directory) MustAddSolid(name string, def primitive.Definition, placement primitive.Placement) {
	if err := d.AddSolid(name, def, placement); err != nil {
		panic(err)
	}
}

// MustAddRegion is AddRegion for programmatic models that cannot fail
func (d *Directory) MustAddRegion(r RegionDef) {
	if err := d.AddRegion(r); err != nil {
		panic(err)
	}
}

func (d *Directory) claim(name string) error {
	if name == "" {
		return errors.New("empty object name").WithType(ErrTypeDuplicateName)
	}
	if _, ok := d.names[name]; ok {
		return errors.New("object name already in use").
			WithType(ErrTypeDuplicateName).
			WithTag("name", name)
	}
	d.names[name] = struct{}{}
	return nil
}

// Solids returns the registered solids in insertion order
func (d *Directory) Solids() []SolidDef {
	return d.solids
}

// Regions returns the registered regions in insertion order
func (d *Directory) Regions() []RegionDef {
	return d.regions
}
