package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"time"

	"github.com/BRL-CAD/brlcad-sub154/pkg/renderer"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene       string  `json:"scene"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	TileSize    int     `json:"tileSize"`
	Azimuth     float64 `json:"azimuth"`
	Elevation   float64 `json:"elevation"`
	Perspective float64 `json:"perspective"` // Vertical field of view, 0 for parallel rays
	AllHits     bool    `json:"allHits"`
	Air         bool    `json:"air"` // Solid regions win overlaps with air
}

// TileUpdate is sent via SSE every time a tile is finished
type TileUpdate struct {
	TileX      int    `json:"tileX"`
	TileY      int    `json:"tileY"`
	ImageData  string `json:"imageData"`  // Base64 encoded PNG of just this tile
	TileNumber int    `json:"tileNumber"` // Completed tiles so far (1-based)
	TotalTiles int    `json:"totalTiles"`
}

// FrameUpdate is the last event of a successful render
type FrameUpdate struct {
	ImageData     string  `json:"imageData"` // Base64 encoded PNG of the whole frame
	Coverage      float64 `json:"coverage"`
	Rays          int64   `json:"rays"`
	Overlaps      int64   `json:"overlaps"`
	Degeneracies  int64   `json:"degeneracies"`
	RaysPerSecond float64 `json:"raysPerSecond"`
	ElapsedMs     int64   `json:"elapsedMs"`
}

// SSEEvent is one server-sent event
type SSEEvent struct {
	Type string // "console", "tile", "complete", "error"
	Data string // JSON-encoded data
}

// parseRenderRequest parses request parameters, defaulting the view to
// the scene's own
func parseRenderRequest(values url.Values, p *preparedScene) (RenderRequest, error) {
	req := RenderRequest{Scene: p.scene.Info.ID}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400); err != nil {
		return req, err
	}
	if req.Height, err = parseIntParam(values, "height", 300); err != nil {
		return req, err
	}
	if req.TileSize, err = parseIntParam(values, "tileSize", 32); err != nil {
		return req, err
	}
	if req.Azimuth, err = parseFloatParam(values, "azimuth", p.scene.Azimuth); err != nil {
		return req, err
	}
	if req.Elevation, err = parseFloatParam(values, "elevation", p.scene.Elevation); err != nil {
		return req, err
	}
	if req.Perspective, err = parseFloatParam(values, "perspective", 0); err != nil {
		return req, err
	}
	if req.AllHits, err = parseBoolParam(values, "allHits"); err != nil {
		return req, err
	}
	if req.Air, err = parseBoolParam(values, "air"); err != nil {
		return req, err
	}
	return req, nil
}

// view frames the whole model the way the request asks for
func (req RenderRequest) view(m *rt.Model) renderer.View {
	v := renderer.FitView(m.Bounds(), req.Azimuth, req.Elevation, float64(req.Width)/float64(req.Height))
	if req.Perspective > 0 {
		v = v.WithPerspective(req.Perspective)
	}
	return v
}

func (req RenderRequest) overlap() rt.OverlapHandler {
	if req.Air {
		return rt.AirOverlap
	}
	return rt.DefaultOverlap
}

// handleRender renders a scene and streams every finished tile via SSE,
// followed by the whole frame
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New("streaming not supported"))
		return
	}

	p, err := s.prepared(sceneParam(r.URL.Query()))
	if err != nil {
		writeError(w, err)
		return
	}
	defer s.release(p)
	req, err := parseRenderRequest(r.URL.Query(), p)
	if err != nil {
		writeError(w, err)
		return
	}

	setSSEHeaders(w)
	ctx := r.Context()

	// All writes to w happen on the writer goroutine
	events := make(chan SSEEvent, 100)
	written := make(chan struct{})
	go writeSSEEvents(ctx, w, flusher, events, written)

	console := make(chan ConsoleMessage, 50)
	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for msg := range console {
			sendEvent(events, "console", msg)
		}
	}()

	start := time.Now()
	rend := renderer.New(p.model, req.view(p.model), req.Width, req.Height, renderer.Config{
		TileSize: req.TileSize,
		OneHit:   !req.AllHits,
		Overlap:  OverlapConsole(console, req.overlap()),
	})

	frame, stats, err := rend.Render(ctx, func(tile renderer.TileCompletionResult) {
		data, err := encodePNG(tile.Frame.SubImage(tile.Bounds))
		if err != nil {
			return
		}
		sendEvent(events, "tile", TileUpdate{
			TileX:      tile.TileX,
			TileY:      tile.TileY,
			ImageData:  data,
			TileNumber: tile.TileNumber,
			TotalTiles: tile.TotalTiles,
		})
	})

	close(console)
	<-forwarded

	if err == nil {
		var data string
		if data, err = encodePNG(frame.Image()); err == nil {
			sendEvent(events, "complete", FrameUpdate{
				ImageData:     data,
				Coverage:      stats.Coverage,
				Rays:          stats.Rays.Rays,
				Overlaps:      stats.Rays.Overlaps,
				Degeneracies:  stats.Rays.Degeneracies,
				RaysPerSecond: stats.RaysPerSecond(),
				ElapsedMs:     time.Since(start).Milliseconds(),
			})
		}
	}
	if err != nil && ctx.Err() == nil {
		logs.WithTag("scene", req.Scene).Warn(err)
		sendEvent(events, "error", map[string]string{
			"error": err.Error(),
			"type":  errors.Type(err),
		})
	}

	close(events)
	<-written
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func sendEvent(events chan<- SSEEvent, eventType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	events <- SSEEvent{Type: eventType, Data: string(data)}
}

// writeSSEEvents writes events until the channel is closed. Once the
// client is gone the remaining events are drained without writing.
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, events <-chan SSEEvent, done chan<- struct{}) {
	defer close(done)

	for event := range events {
		if ctx.Err() != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			continue
		}
		flusher.Flush()
	}
}

// encodePNG converts an image to base64-encoded PNG
func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
