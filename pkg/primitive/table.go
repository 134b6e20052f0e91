package primitive

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ErrTypePrep marks a definition that cannot be made geometrically valid
const ErrTypePrep = "prep_error"

// PrepareFunc turns a raw definition into a prepared solid
type PrepareFunc func(def Definition, placement Placement, tol core.Tolerance) (Solid, error)

// Functab is one row of the dispatch table
type Functab struct {
	Kind    Kind
	Name    string
	Prepare PrepareFunc
}

// table is indexed by Kind and never modified after init
var table = [numKinds]Functab{
	KindSphere:    {Kind: KindSphere, Name: kindNames[KindSphere], Prepare: prepareSphere},
	KindBox:       {Kind: KindBox, Name: kindNames[KindBox], Prepare: prepareBox},
	KindCylinder:  {Kind: KindCylinder, Name: kindNames[KindCylinder], Prepare: prepareCylinder},
	KindHalfspace: {Kind: KindHalfspace, Name: kindNames[KindHalfspace], Prepare: prepareHalfspace},
	KindSDF:       {Kind: KindSDF, Name: kindNames[KindSDF], Prepare: prepareSDF},
}

// Lookup returns the dispatch entry for a kind
func Lookup(kind Kind) (Functab, error) {
	if kind < 0 || kind >= numKinds {
		return Functab{}, errors.New("unknown primitive kind").
			WithType(ErrTypePrep).
			WithTag("kind", int(kind))
	}
	return table[kind], nil
}

// Kinds lists every registered kind in tag order
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// Prepare dispatches a definition to its kind's prepare operation
func Prepare(def Definition, placement Placement, tol core.Tolerance) (Solid, error) {
	if def == nil {
		return nil, errors.New("nil primitive definition").WithType(ErrTypePrep)
	}
	ft, err := Lookup(def.Kind())
	if err != nil {
		return nil, err
	}
	if placement.IsDegenerate() {
		return nil, prepError(def.Kind(), "degenerate placement")
	}
	return ft.Prepare(def, placement, tol)
}

func prepError(kind Kind, msg string) error {
	return errors.New(msg).
		WithType(ErrTypePrep).
		WithTag("kind", kind.String())
}

func wrongDefinition(kind Kind, def Definition) error {
	return errors.Newf("definition %T is not a %s", def, kind).
		WithType(ErrTypePrep).
		WithTag("kind", kind.String())
}
