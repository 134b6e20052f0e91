package server

import (
	"net/http"

	"github.com/BRL-CAD/brlcad-sub154/pkg/probe"
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// ShotResponse is the JSON response of a probe ray
type ShotResponse struct {
	Scene string  `json:"scene"`
	Pixel *[2]int `json:"pixel,omitempty"`
	probe.Result
}

var errNotInImage = errors.New("pixel is outside the image")

// handleShot fires one ray given by origin and direction in scene units
func (s *Server) handleShot(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	p, err := s.prepared(sceneParam(values))
	if err != nil {
		writeError(w, err)
		return
	}
	defer s.release(p)

	origin, err := probe.ParseVec3(values.Get("origin"))
	if err != nil {
		writeError(w, badParam("origin", values.Get("origin"), err))
		return
	}
	dir, err := probe.ParseVec3(values.Get("dir"))
	if err != nil {
		writeError(w, badParam("dir", values.Get("dir"), err))
		return
	}
	allHits, err := parseBoolParam(values, "allHits")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := probe.Fire(p.model, origin, dir, probe.Options{AllHits: allHits})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ShotResponse{Scene: p.scene.Info.ID, Result: result})
}

// handleInspect fires the ray behind one pixel of a render request, so a
// client can ask what it is looking at
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	p, err := s.prepared(sceneParam(values))
	if err != nil {
		writeError(w, err)
		return
	}
	defer s.release(p)
	req, err := parseRenderRequest(values, p)
	if err != nil {
		writeError(w, err)
		return
	}

	x, err := parseIntParam(values, "x", -1)
	if err != nil {
		writeError(w, err)
		return
	}
	y, err := parseIntParam(values, "y", -1)
	if err != nil {
		writeError(w, err)
		return
	}
	if x < 0 || x >= req.Width || y < 0 || y >= req.Height {
		writeError(w, badParam("pixel", values.Get("x")+","+values.Get("y"), errNotInImage))
		return
	}

	units := p.model.Units()
	ray := req.view(p.model).PixelRay(x, y, req.Width, req.Height)
	result, err := probe.Fire(p.model, ray.Origin.Multiply(units.FromBase), ray.Direction, probe.Options{
		AllHits: true,
		Overlap: req.overlap(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ShotResponse{Scene: p.scene.Info.ID, Pixel: &[2]int{x, y}, Result: result})
}
