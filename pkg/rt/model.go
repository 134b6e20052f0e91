// Package rt is the ray-tracing kernel. Prep turns a Directory into an
// immutable Model; each worker takes a Resource from the model and
// shoots rays through it, receiving ray-ordered partitions.
package rt

import (
	"sync"

	"github.com/BRL-CAD/brlcad-sub154/pkg/core"
	"github.com/BRL-CAD/brlcad-sub154/pkg/csg"
	"github.com/BRL-CAD/brlcad-sub154/pkg/cut"
	"github.com/BRL-CAD/brlcad-sub154/pkg/primitive"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/google/uuid"
)

// Default per-ray limits
const (
	DefaultMaxSegs       = 1 << 20
	DefaultMaxPartitions = 1 << 18
)

type options struct {
	tol           core.Tolerance
	units         core.Units
	cut           cut.Config
	maxSegs       int
	maxPartitions int
}

// Option configures Prep
type Option func(*options)

// WithTolerance sets the distance and angular tolerances
func WithTolerance(tol core.Tolerance) Option {
	return func(o *options) { o.tol = tol }
}

// WithUnits sets the unit the directory's coordinates are written in.
// Geometry is scaled to millimeters at prep time.
func WithUnits(u core.Units) Option {
	return func(o *options) { o.units = u }
}

// WithCutConfig tunes the spatial index
func WithCutConfig(cfg cut.Config) Option {
	return func(o *options) { o.cut = cfg }
}

// WithMaxSegs bounds the segments one ray may produce
func WithMaxSegs(n int) Option {
	return func(o *options) { o.maxSegs = n }
}

// WithMaxPartitions bounds the partitions one ray may produce
func WithMaxPartitions(n int) Option {
	return func(o *options) { o.maxPartitions = n }
}

// Model is a prepared directory ready for ray tracing. Its soltabs,
// regions and cut tree are immutable and read concurrently by workers.
type Model struct {
	id      uuid.UUID
	opts    options
	soltabs []*Soltab
	regions []*Region
	byName  map[string]int // soltab index, -1 for solids dropped at prep
	tree    *cut.Tree
	dropped int

	mu          sync.Mutex
	outstanding int
	closed      bool
}

// Prep prepares every solid, compiles every region and builds the cut
// tree. Solids that fail to prepare are dropped with a warning; a
// malformed region tree rejects the whole model.
func Prep(dir *Directory, opts ...Option) (*Model, error) {
	o := options{
		tol:           core.DefaultTolerance(),
		units:         core.Millimeters,
		cut:           cut.DefaultConfig(),
		maxSegs:       DefaultMaxSegs,
		maxPartitions: DefaultMaxPartitions,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Model{
		id:     uuid.New(),
		opts:   o,
		byName: make(map[string]int, len(dir.Solids())),
	}

	unitScale := primitive.Identity()
	if o.units.ToBase != 1 {
		s := o.units.ToBase
		unitScale = primitive.Scale(s, s, s)
	}

	for _, def := range dir.Solids() {
		placement := def.Placement.Then(unitScale)
		solid, err := primitive.Prepare(def.Definition, placement, o.tol)
		if err != nil {
			m.byName[def.Name] = -1
			m.dropped++
			kind := "unknown"
			if def.Definition != nil {
				kind = def.Definition.Kind().String()
			}
			instrumentPrepFailure(kind)
			logs.Warn(errors.New("solid dropped from model").
				WithTag("model_id", m.id.String()).
				WithTag("solid", def.Name).
				Wrap(err))
			continue
		}

		st := &Soltab{
			Index:     len(m.soltabs),
			Name:      def.Name,
			Kind:      def.Definition.Kind(),
			Bounds:    solid.Bounds(),
			Placement: placement,
			Solid:     solid,
		}
		m.byName[def.Name] = st.Index
		m.soltabs = append(m.soltabs, st)
	}

	resolve := func(name string) (int, bool) {
		h, ok := m.byName[name]
		return h, ok
	}
	for _, def := range dir.Regions() {
		tree, err := csg.Compile(def.Tree, resolve)
		if err != nil {
			m.releaseSoltabs()
			return nil, errors.New("region tree is malformed").
				WithType(ErrTypeMalformedTree).
				WithTag("region", def.Name).
				Wrap(err)
		}

		r := &Region{
			Index:    len(m.regions),
			Name:     def.Name,
			ID:       def.ID,
			AirCode:  def.AirCode,
			Material: def.Material,
			Tree:     tree,
			Solids:   tree.Solids(),
		}
		for _, s := range r.Solids {
			m.soltabs[s].Regions = append(m.soltabs[s].Regions, r.Index)
		}
		m.regions = append(m.regions, r)
	}

	// Only solids some region uses can contribute to a partition
	items := make([]cut.Item, 0, len(m.soltabs))
	for _, st := range m.soltabs {
		if len(st.Regions) > 0 {
			items = append(items, cut.Item{Handle: st.Index, Bounds: st.Bounds})
		}
	}
	m.tree = cut.Build(items, o.cut)

	stats := m.tree.Stats()
	logs.WithTag("model_id", m.id.String()).
		WithTag("solids", len(m.soltabs)).
		WithTag("dropped", m.dropped).
		WithTag("regions", len(m.regions)).
		WithTag("cut_nodes", stats.Nodes).
		WithTag("cut_leaves", stats.Leaves).
		WithTag("cut_depth", stats.MaxDepth).
		WithTag("cut_infinite", stats.Infinite).
		Debug("model prepared")

	return m, nil
}

// ID returns the model's unique identifier
func (m *Model) ID() uuid.UUID {
	return m.id
}

// Tolerance returns the tolerances every operation uses
func (m *Model) Tolerance() core.Tolerance {
	return m.opts.tol
}

// Units returns the unit the directory was written in
func (m *Model) Units() core.Units {
	return m.opts.units
}

// Soltabs returns every prepared solid, indexed by handle
func (m *Model) Soltabs() []*Soltab {
	return m.soltabs
}

// Regions returns every region, indexed by handle
func (m *Model) Regions() []*Region {
	return m.regions
}

// Soltab looks up a prepared solid by name
func (m *Model) Soltab(name string) (*Soltab, bool) {
	h, ok := m.byName[name]
	if !ok || h < 0 {
		return nil, false
	}
	return m.soltabs[h], true
}

// Region looks up a region by name
func (m *Model) Region(name string) (*Region, bool) {
	for _, r := range m.regions {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// Dropped returns how many solids failed to prepare
func (m *Model) Dropped() int {
	return m.dropped
}

// Bounds returns the box enclosing every finite solid in the cut tree
func (m *Model) Bounds() core.AABB {
	return m.tree.Bounds
}

// CutStats describes the spatial index
func (m *Model) CutStats() cut.Stats {
	return m.tree.Stats()
}

// NewResource hands out a worker-owned resource. Every resource must be
// released before the model can be closed.
func (m *Model) NewResource() (*Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.New("model is closed").
			WithType(ErrTypeModelClosed).
			WithTag("model_id", m.id.String())
	}
	m.outstanding++
	return newResource(m), nil
}

func (m *Model) releaseResource() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outstanding--
}

// Close tears the model down. It fails while resources are outstanding.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	if m.outstanding > 0 {
		return errors.New("model has outstanding resources").
			WithType(ErrTypeBusy).
			WithTag("model_id", m.id.String()).
			WithTag("resources", m.outstanding)
	}
	m.closed = true
	m.releaseSoltabs()
	return nil
}

func (m *Model) releaseSoltabs() {
	for _, st := range m.soltabs {
		st.Solid.Release()
	}
}
