// Package server exposes the ray tracing kernel over HTTP: scene listings,
// tile-streamed renders and single-ray probes.
package server

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/BRL-CAD/brlcad-sub154/pkg/probe"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/BRL-CAD/brlcad-sub154/pkg/scene"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

// ErrTypeBadRequest marks errors caused by invalid request parameters
const ErrTypeBadRequest = "bad_request"

// Server handles web requests. Scenes are prepared on first use and the
// resulting models are shared by every request until Close.
type Server struct {
	mu     sync.Mutex
	models map[string]*preparedScene
	closed bool
}

type preparedScene struct {
	id    string
	scene *scene.Scene
	model *rt.Model
	users int // Requests holding the model, guarded by Server.mu
}

// New creates a new web server
func New() *Server {
	return &Server{models: make(map[string]*preparedScene)}
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/shot", s.handleShot)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Close releases every prepared model. Models still held by a request
// are closed when that request finishes.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	var firstErr error
	for id, p := range s.models {
		if p.users > 0 {
			logs.WithTag("scene", id).
				WithTag("users", p.users).
				Info("model close deferred until requests finish")
			continue
		}
		if err := s.closeModel(id, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) closeModel(id string, p *preparedScene) error {
	delete(s.models, id)
	if err := p.model.Close(); err != nil {
		return errors.New("closing model failed").
			WithTag("scene", id).
			Wrap(err)
	}
	return nil
}

// release hands back a model taken with prepared
func (s *Server) release(p *preparedScene) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.users--
	if !s.closed || p.users > 0 {
		return
	}
	if err := s.closeModel(p.id, p); err != nil {
		logs.Warn(err)
	}
}

// prepared returns the shared model of a scene, preparing it if needed.
// Callers hand it back with release.
func (s *Server) prepared(id string) (*preparedScene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("server is closed").WithType(rt.ErrTypeModelClosed)
	}
	if p, ok := s.models[id]; ok {
		p.users++
		return p, nil
	}

	sc, err := scene.Load(id)
	if err != nil {
		return nil, err
	}
	m, err := sc.Prep()
	if err != nil {
		return nil, err
	}

	logs.WithTag("scene", id).
		WithTag("model_id", m.ID().String()).
		WithTag("solids", len(m.Soltabs())).
		WithTag("regions", len(m.Regions())).
		Info("scene prepared")

	p := &preparedScene{id: id, scene: sc, model: m, users: 1}
	s.models[id] = p
	return p, nil
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the scene catalog by group
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListGroups())
}

// SceneConfig describes a prepared scene and the defaults used to view it
type SceneConfig struct {
	Scene     scene.SceneInfo  `json:"scene"`
	Units     string           `json:"units"`
	Min       [3]float64       `json:"min"` // Model bounds in scene units
	Max       [3]float64       `json:"max"`
	Solids    int              `json:"solids"`
	Regions   int              `json:"regions"`
	Dropped   int              `json:"dropped"`
	Azimuth   float64          `json:"azimuth"`
	Elevation float64          `json:"elevation"`
	Limits    map[string]Limit `json:"limits"`
}

// Limit is the accepted range of a numeric request parameter
type Limit struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

var limits = map[string]Limit{
	"width":       {Min: 1, Max: 4096},
	"height":      {Min: 1, Max: 4096},
	"azimuth":     {Min: -360, Max: 360},
	"elevation":   {Min: -90, Max: 90},
	"perspective": {Min: 0, Max: 170},
	"tileSize":    {Min: 4, Max: 256},
}

// handleSceneConfig returns what a client needs to frame a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	p, err := s.prepared(sceneParam(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	defer s.release(p)

	units := p.model.Units()
	bounds := p.model.Bounds()
	writeJSON(w, http.StatusOK, SceneConfig{
		Scene:     p.scene.Info,
		Units:     units.Name,
		Min:       probe.ToArray(bounds.Min.Multiply(units.FromBase)),
		Max:       probe.ToArray(bounds.Max.Multiply(units.FromBase)),
		Solids:    len(p.model.Soltabs()),
		Regions:   len(p.model.Regions()),
		Dropped:   p.model.Dropped(),
		Azimuth:   p.scene.Azimuth,
		Elevation: p.scene.Elevation,
		Limits:    limits,
	})
}

func sceneParam(values url.Values) string {
	if id := values.Get("scene"); id != "" {
		return id
	}
	return scene.List()[0].ID
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, badParam(key, value, err)
	}
	if l, ok := limits[key]; ok && (float64(parsed) < l.Min || float64(parsed) > l.Max) {
		return 0, badParam(key, value, errors.Newf("must be between %v and %v", l.Min, l.Max))
	}
	return parsed, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue float64) (float64, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, badParam(key, value, err)
	}
	if l, ok := limits[key]; ok && (parsed < l.Min || parsed > l.Max) {
		return 0, badParam(key, value, errors.Newf("must be between %v and %v", l.Min, l.Max))
	}
	return parsed, nil
}

func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, badParam(key, value, err)
	}
	return parsed, nil
}

func badParam(key, value string, cause error) error {
	return errors.New("invalid parameter").
		WithType(ErrTypeBadRequest).
		WithTag("key", key).
		WithTag("value", value).
		Wrap(cause)
}

func statusCode(err error) int {
	switch errors.Type(err) {
	case ErrTypeBadRequest, scene.ErrTypeUnknownScene:
		return http.StatusBadRequest
	case rt.ErrTypeModelClosed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		logs.Warn(err)
	}
	writeJSON(w, code, map[string]string{
		"error": err.Error(),
		"type":  errors.Type(err),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
