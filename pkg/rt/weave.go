package rt

import (
	"sort"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

type piece struct {
	iv       csg.Interval
	region   int
	overlaps bool
}

type trim struct {
	target int
	cut    csg.Interval
}

func sortPieces(pieces []piece) {
	sort.SliceStable(pieces, func(i, j int) bool {
		a, b := pieces[i].iv, pieces[j].iv
		if a.In.Dist != b.In.Dist {
			return a.In.Dist < b.In.Dist
		}
		if a.Out.Dist != b.Out.Dist {
			return a.Out.Dist < b.Out.Dist
		}
		return pieces[i].region < pieces[j].region
	})
}

// merge combines every region's intervals into the ray-ordered partition
// list. Each pair of overlapping partitions from different regions is
// reported to the handler exactly once; trims it asks for are measured
// against the untrimmed partitions.
func (r *Resource) merge(ray core.Ray, handler OverlapHandler) error {
	tol := r.model.opts.tol
	if handler == nil {
		handler = DefaultOverlap
	}

	var pieces []piece
	for _, res := range r.results {
		for _, iv := range res.set {
			pieces = append(pieces, piece{iv: iv, region: res.region})
		}
	}
	sortPieces(pieces)

	var trims []trim
	for i := range pieces {
		for j := i + 1; j < len(pieces); j++ {
			a, b := pieces[i].iv, pieces[j].iv
			if b.In.Dist >= a.Out.Dist-tol.Dist {
				break
			}
			if pieces[i].region == pieces[j].region {
				continue
			}

			// b starts no earlier than a, so the shared span starts at b
			cut := b
			if a.Out.Dist < b.Out.Dist {
				cut.Out, cut.OutSolid, cut.OutFlip = a.Out, a.OutSolid, a.OutFlip
			}
			span := Span{In: cut.In.Dist, Out: cut.Out.Dist}
			if span.Len() <= tol.Dist {
				continue
			}

			first, second := i, j
			if a.In.Dist == b.In.Dist && pieces[j].region < pieces[i].region {
				first, second = j, i
			}

			res := handler(ray, r.model.regions[pieces[first].region], r.model.regions[pieces[second].region], span)
			r.stats.Overlaps++
			instrumentOverlap(res)

			switch res {
			case KeepFirst:
				trims = append(trims, trim{target: second, cut: cut})
			case KeepSecond:
				trims = append(trims, trim{target: first, cut: cut})
			case ResolveError:
				return errors.New("overlap resolved as an error").
					WithType(ErrTypeOverlap).
					WithTag("first", r.model.regions[pieces[first].region].Name).
					WithTag("second", r.model.regions[pieces[second].region].Name).
					WithTag("in", span.In).
					WithTag("out", span.Out)
			default:
				pieces[i].overlaps = true
				pieces[j].overlaps = true
			}
		}
	}

	if len(trims) > 0 {
		pieces = applyTrims(pieces, trims, tol)
	}

	if len(pieces) > r.model.opts.maxPartitions {
		return errors.New("partition limit exceeded").
			WithType(ErrTypeResourceExhaustion).
			WithTag("model_id", r.model.id.String()).
			WithTag("limit", r.model.opts.maxPartitions)
	}

	r.parts = r.parts[:0]
	for i, p := range pieces {
		r.parts = append(r.parts, Partition{
			In:       p.iv.In,
			Out:      p.iv.Out,
			InFlip:   p.iv.InFlip,
			OutFlip:  p.iv.OutFlip,
			InSolid:  r.model.soltabs[p.iv.InSolid],
			OutSolid: r.model.soltabs[p.iv.OutSolid],
			Region:   r.model.regions[p.region],
			Overlaps: p.overlaps,
			Back:     i - 1,
			Forw:     i + 1,
		})
	}
	if n := len(r.parts); n > 0 {
		r.parts[n-1].Forw = -1
	}
	r.list = PartitionList{parts: r.parts}
	return nil
}

// applyTrims removes each cut from its target piece. Pieces may split in
// two or disappear.
func applyTrims(pieces []piece, trims []trim, tol core.Tolerance) []piece {
	trimmed := make(map[int]csg.Set, len(trims))
	for _, t := range trims {
		set, ok := trimmed[t.target]
		if !ok {
			set = csg.Set{pieces[t.target].iv}
		}
		trimmed[t.target] = set.Subtract(csg.Set{t.cut}, tol)
	}

	out := make([]piece, 0, len(pieces)+len(trims))
	for i, p := range pieces {
		set, ok := trimmed[i]
		if !ok {
			out = append(out, p)
			continue
		}
		for _, iv := range set {
			if iv.Out.Dist <= tol.Dist {
				continue
			}
			out = append(out, piece{iv: iv, region: p.region, overlaps: p.overlaps})
		}
	}
	sortPieces(out)
	return out
}
