package rt

import (
	"math"
	"sort"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
)

// Application is the set of callbacks a ray's result is delivered to
type Application struct {
	// Hit receives the partitions when there is at least one. The list is
	// only valid until Hit returns.
	Hit func(ray core.Ray, parts *PartitionList)

	// Miss is called when the ray produces no partitions
	Miss func(ray core.Ray)

	// Overlap resolves space claimed by two regions. DefaultOverlap is
	// used when nil.
	Overlap OverlapHandler

	// OneHit stops the walk as soon as the nearest partition in front of
	// the origin is known. Partitions beyond it may be missing from the
	// result; those behind the origin are always complete.
	OneHit bool
}

// Shoot traces one ray through the model and delivers the result to app.
// It reports whether the ray hit anything. Only resource exhaustion and
// an overlap resolved as ResolveError are returned as errors; a failing
// primitive just contributes nothing.
func (r *Resource) Shoot(ray core.Ray, app Application) (bool, error) {
	if r.released {
		return false, errors.New("resource has been released").
			WithType(ErrTypeModelClosed).
			WithTag("model_id", r.model.id.String())
	}
	if r.state != StateIdle {
		return false, errors.New("resource is already tracing a ray").
			WithType(ErrTypeBusy).
			WithTag("state", r.state.String())
	}
	defer r.reset()
	r.stats.Rays++

	if ray.IsDegenerate() {
		r.stats.Degeneracies++
		instrumentDegeneracy("ray")
		return r.deliver(ray, app), nil
	}
	if l := ray.Direction.Length(); math.Abs(l-1) > 1e-9 {
		ray.Direction = ray.Direction.Multiply(1 / l)
	}

	r.state = StateShooting
	if err := r.shoot(ray, app.OneHit); err != nil {
		return false, r.fail(err)
	}

	r.state = StatePerRegionEval
	r.evaluateRegions()

	r.state = StateCrossRegionMerge
	if err := r.merge(ray, app.Overlap); err != nil {
		return false, r.fail(err)
	}

	r.state = StateDelivered
	return r.deliver(ray, app), nil
}

func (r *Resource) fail(err error) error {
	r.stats.Errors++
	instrumentRay("error")
	return err
}

func (r *Resource) deliver(ray core.Ray, app Application) bool {
	if len(r.parts) == 0 {
		r.stats.Misses++
		instrumentRay("miss")
		if app.Miss != nil {
			app.Miss(ray)
		}
		return false
	}

	r.stats.Hits++
	r.stats.Partitions += int64(len(r.parts))
	instrumentRay("hit")
	if app.Hit != nil {
		app.Hit(ray, &r.list)
	}
	return true
}

// shoot intersects every soltab the ray may reach, each exactly once
func (r *Resource) shoot(ray core.Ray, oneHit bool) error {
	for _, h := range r.model.tree.Infinite {
		if err := r.shootSoltab(h, ray); err != nil {
			return err
		}
	}

	// Start behind the origin so solids enclosing it keep their true
	// entry distance
	var err error
	r.model.tree.Walk(ray, math.Inf(-1), math.Inf(1), func(items []int, tEnter, tExit float64) bool {
		for _, h := range items {
			if r.shot.test(h) {
				continue
			}
			if err = r.shootSoltab(h, ray); err != nil {
				return false
			}
		}
		return !oneHit || !r.nearestEndsBefore(tExit)
	})
	return err
}

func (r *Resource) shootSoltab(h int, ray core.Ray) error {
	st := r.model.soltabs[h]
	r.shot.set(h)
	r.shotList = append(r.shotList, h)

	start := len(r.segs)
	r.segStart[h] = start
	r.segs = r.intersect(st, ray, start)
	r.segEnd[h] = len(r.segs)

	r.stats.SolidShots++
	instrumentSolidShot(st.Kind.String())

	if n := len(r.segs) - start; n > 0 {
		r.stats.Segs += int64(n)
		for _, reg := range st.Regions {
			if !r.regionHit.test(reg) {
				r.regionHit.set(reg)
				r.regionList = append(r.regionList, reg)
			}
		}
	}

	if len(r.segs) > r.model.opts.maxSegs {
		return errors.New("segment limit exceeded").
			WithType(ErrTypeResourceExhaustion).
			WithTag("model_id", r.model.id.String()).
			WithTag("limit", r.model.opts.maxSegs)
	}
	return nil
}

// intersect runs a primitive behind a recover boundary. A panic, a NaN
// distance or an inverted segment discards everything the soltab
// produced for this ray.
func (r *Resource) intersect(st *Soltab, ray core.Ray, start int) (segs []core.Seg) {
	defer func() {
		if p := recover(); p != nil {
			r.degenerate(st, errors.Newf("intersect panicked: %v", p))
			segs = r.segs[:start]
		}
	}()

	segs = st.Solid.Intersect(ray, r.model.opts.tol, r.segs[:start])
	for i := start; i < len(segs); i++ {
		if !segs[i].IsValid() {
			r.degenerate(st, errors.New("invalid segment").
				WithTag("in", segs[i].In.Dist).
				WithTag("out", segs[i].Out.Dist))
			return segs[:start]
		}
		segs[i].Solid = st.Index
	}
	return segs
}

func (r *Resource) degenerate(st *Soltab, err error) {
	r.stats.Degeneracies++
	instrumentDegeneracy(st.Kind.String())
	logs.WithTag("model_id", r.model.id.String()).
		WithTag("solid", st.Name).
		Debug(errors.New("solid skipped for ray").
			WithType(ErrTypeNumericDegeneracy).
			Wrap(err))
}

// evaluateRegions runs every hit region's boolean tree
func (r *Resource) evaluateRegions() {
	tol := r.model.opts.tol
	sort.Ints(r.regionList)

	r.results = r.results[:0]
	for _, reg := range r.regionList {
		set := r.model.regions[reg].Tree.Evaluate(r.soltabSet, tol)
		if len(set) > 0 {
			r.results = append(r.results, regionResult{region: reg, set: set})
		}
	}
}

// nearestEndsBefore reports whether the nearest partition in front of
// the origin is already complete at distance t. Nothing not yet shot can
// reach the ray before t.
func (r *Resource) nearestEndsBefore(t float64) bool {
	r.evaluateRegions()
	tol := r.model.opts.tol

	found := false
	nearestIn, nearestOut := math.Inf(1), math.Inf(1)
	for _, res := range r.results {
		for _, iv := range res.set {
			if iv.Out.Dist <= tol.Dist {
				continue
			}
			if iv.In.Dist < nearestIn {
				nearestIn, nearestOut = iv.In.Dist, iv.Out.Dist
				found = true
			}
			break
		}
	}
	return found && nearestOut <= t
}
