package rt

import (
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
)

// Error types reported by the kernel. Classify with errors.Type or
// errors.IsType from go-tooling.
const (
	ErrTypePrep               = primitive.ErrTypePrep
	ErrTypeMalformedTree      = csg.ErrTypeMalformed
	ErrTypeNumericDegeneracy  = "numeric_degeneracy"
	ErrTypeResourceExhaustion = "resource_exhaustion"
	ErrTypeOverlap            = "overlap"
	ErrTypeModelClosed        = "model_closed"
	ErrTypeBusy               = "busy"
	ErrTypeDuplicateName      = "duplicate_name"
)
