package rt

import (
	"fmt"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Resolution is a caller's decision about two overlapping partitions
type Resolution int

const (
	KeepBoth Resolution = iota
	KeepFirst
	KeepSecond
	ResolveError
)

func (r Resolution) String() string {
	switch r {
	case KeepBoth:
		return "keep_both"
	case KeepFirst:
		return "keep_first"
	case KeepSecond:
		return "keep_second"
	case ResolveError:
		return "error"
	default:
		return fmt.Sprintf("Resolution(%d)", int(r))
	}
}

// Span is the stretch of ray two regions both claim
type Span struct {
	In  float64
	Out float64
}

// Len returns the length of the span
func (s Span) Len() float64 {
	return s.Out - s.In
}

// OverlapHandler decides what happens where two regions claim the same
// space. first is the region whose partition the ray enters first, or
// the lower-indexed region when both are entered at the same distance.
type OverlapHandler func(ray core.Ray, first, second *Region, span Span) Resolution

// DefaultOverlap keeps both partitions and logs a warning
func DefaultOverlap(ray core.Ray, first, second *Region, span Span) Resolution {
	logs.Warn(errors.New("regions overlap").
		WithType(ErrTypeOverlap).
		WithTag("first", first.Name).
		WithTag("second", second.Name).
		WithTag("in", span.In).
		WithTag("out", span.Out).
		WithTag("origin", ray.Origin).
		WithTag("direction", ray.Direction))
	return KeepBoth
}

// AirOverlap gives the space to the solid region when exactly one of the
// two is air, and otherwise behaves like DefaultOverlap
func AirOverlap(ray core.Ray, first, second *Region, span Span) Resolution {
	switch {
	case first.IsAir() && !second.IsAir():
		return KeepSecond
	case !first.IsAir() && second.IsAir():
		return KeepFirst
	default:
		return DefaultOverlap(ray, first, second, span)
	}
}
