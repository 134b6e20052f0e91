package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"math"
	"net/http"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/BRL-CAD/brlcad-sub154/pkg/probe"
	"github.com/BRL-CAD/brlcad-sub154/pkg/renderer"
	"github.com/BRL-CAD/brlcad-sub154/pkg/rt"
	"github.com/BRL-CAD/brlcad-sub154/pkg/scene"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

// The csgtrace version number. Set at build.
var version = "v0.1.0"

// Keeps the config field names intact under obfuscating builds so the cli
// package generates readable options.
var _ = reflect.TypeOf(config{})

type config struct {
	Scene       string  `cli:""        env:"CSGTRACE_SCENE"        help:"Scene to load (see -list)."`
	Width       int     `cli:""        env:"CSGTRACE_WIDTH"        help:"Image width in pixels."`
	Height      int     `cli:""        env:"CSGTRACE_HEIGHT"       help:"Image height in pixels."`
	Output      string  `cli:""        env:"CSGTRACE_OUTPUT"       help:"PNG file the shaded image is written to."`
	Depth       string  `cli:""        env:"CSGTRACE_DEPTH"        help:"Optional PNG file for a 16-bit depth image."`
	Azimuth     float64 `cli:""        env:"CSGTRACE_AZIMUTH"      help:"View azimuth in degrees. Defaults to the scene's."`
	Elevation   float64 `cli:""        env:"CSGTRACE_ELEVATION"    help:"View elevation in degrees. Defaults to the scene's."`
	Perspective float64 `cli:""        env:"CSGTRACE_PERSPECTIVE"  help:"Vertical field of view in degrees, 0 for a parallel view."`
	Workers     int     `cli:""        env:"CSGTRACE_WORKERS"      help:"Number of workers, 0 for one per CPU."`
	TileSize    int     `cli:",hidden" env:"CSGTRACE_TILE_SIZE"    help:"Tile size in pixels."`
	AllHits     bool    `cli:""        env:"CSGTRACE_ALL_HITS"     help:"Weave every partition instead of stopping at the nearest."`
	Air         bool    `cli:""        env:"CSGTRACE_AIR"          help:"Let solid regions win overlaps with air."`
	Shot        string  `cli:""        env:"-"                     help:"Fire one ray from x,y,z (scene units) and print its partitions."`
	Dir         string  `cli:""        env:"-"                     help:"Direction of the -shot ray as x,y,z."`
	List        bool    `cli:""        env:"-"                     help:"List the available scenes."`
	MetricsAddr string  `cli:""        env:"CSGTRACE_METRICS_ADDR" help:"Serve Prometheus metrics on this address while running."`
	LogLevel    string  `cli:""        env:"CSGTRACE_LOG_LEVEL"    help:"Log level (debug|info|warning|error)."`
	LogIndent   bool    `cli:""        env:"CSGTRACE_LOG_INDENT"   help:"Indent logs."`
	Version     bool    `cli:""        env:"-"                     help:"Show version."`
	Help        bool    `cli:""        env:"-"                     help:"Show help."`
}

func defaultConfig() config {
	return config{
		Scene:     "hollow-sphere",
		Width:     640,
		Height:    480,
		Output:    "render.png",
		Azimuth:   math.NaN(),
		Elevation: math.NaN(),
		TileSize:  renderer.DefaultConfig().TileSize,
		Dir:       "1,0,0",
		LogLevel:  logs.InfoLevel.String(),
	}
}

func main() {
	conf := defaultConfig()

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Traces rays through constructive solid geometry models.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if conf.MetricsAddr != "" {
		stop := serveMetrics(conf.MetricsAddr)
		defer stop()
	}

	if err := run(ctx, conf, os.Stdout); err != nil {
		logs.Fatal(err)
	}
}

// run executes the mode selected by conf, writing listings and shotline
// results to out
func run(ctx context.Context, conf config, out io.Writer) error {
	switch {
	case conf.List:
		return writeJSON(out, scene.ListGroups())
	case conf.Shot != "":
		return fireShot(conf, out)
	default:
		return renderScene(ctx, conf)
	}
}

func loadScene(conf config) (*scene.Scene, *rt.Model, error) {
	s, err := scene.Load(conf.Scene)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.Prep()
	if err != nil {
		return nil, nil, errors.New("preparing scene failed").
			WithTag("scene", conf.Scene).
			Wrap(err)
	}

	logs.WithTag("scene", s.Info.ID).
		WithTag("model_id", m.ID().String()).
		WithTag("units", m.Units().Name).
		WithTag("solids", len(m.Soltabs())).
		WithTag("regions", len(m.Regions())).
		WithTag("dropped", m.Dropped()).
		WithTag("cut_nodes", m.CutStats().Nodes).
		Debug("scene prepared")
	return s, m, nil
}

func overlapHandler(conf config) rt.OverlapHandler {
	if conf.Air {
		return rt.AirOverlap
	}
	return rt.DefaultOverlap
}

func renderScene(ctx context.Context, conf config) error {
	if conf.Output == "" {
		return errors.New("an output file is required")
	}

	s, m, err := loadScene(conf)
	if err != nil {
		return err
	}
	defer m.Close()

	azimuth, elevation := s.Azimuth, s.Elevation
	if !math.IsNaN(conf.Azimuth) {
		azimuth = conf.Azimuth
	}
	if !math.IsNaN(conf.Elevation) {
		elevation = conf.Elevation
	}

	aspect := 1.0
	if conf.Height > 0 {
		aspect = float64(conf.Width) / float64(conf.Height)
	}
	view := renderer.FitView(m.Bounds(), azimuth, elevation, aspect)
	if conf.Perspective > 0 {
		view = view.WithPerspective(conf.Perspective)
	}

	r := renderer.New(m, view, conf.Width, conf.Height, renderer.Config{
		TileSize:   conf.TileSize,
		NumWorkers: conf.Workers,
		OneHit:     !conf.AllHits,
		Overlap:    overlapHandler(conf),
	})
	frame, stats, err := r.Render(ctx, func(tile renderer.TileCompletionResult) {
		logs.WithTag("tile_x", tile.TileX).
			WithTag("tile_y", tile.TileY).
			WithTag("done", tile.TileNumber).
			WithTag("total", tile.TotalTiles).
			Debug("tile complete")
	})
	if err != nil {
		return err
	}

	if err := writeFile(conf.Output, frame.WritePNG); err != nil {
		return err
	}
	if conf.Depth != "" {
		err := writeFile(conf.Depth, func(w io.Writer) error {
			return png.Encode(w, frame.DepthImage())
		})
		if err != nil {
			return err
		}
	}

	logs.WithTag("scene", s.Info.ID).
		WithTag("output", conf.Output).
		WithTag("coverage", stats.Coverage).
		WithTag("rays_per_second", math.Round(stats.RaysPerSecond())).
		Info("image written")
	return nil
}

func writeFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.New("creating output file failed").
			WithTag("file_name", name).
			Wrap(err)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.New("writing output file failed").
			WithTag("file_name", name).
			Wrap(err)
	}
	return f.Close()
}

type shotResult struct {
	Scene string `json:"scene"`
	probe.Result
}

// fireShot shoots a single ray and prints every partition along it,
// distances and points in the scene's units
func fireShot(conf config, out io.Writer) error {
	origin, err := probe.ParseVec3(conf.Shot)
	if err != nil {
		return errors.New("invalid shot origin").Wrap(err)
	}
	dir, err := probe.ParseVec3(conf.Dir)
	if err != nil {
		return errors.New("invalid shot direction").Wrap(err)
	}

	s, m, err := loadScene(conf)
	if err != nil {
		return err
	}
	defer m.Close()

	result, err := probe.Fire(m, origin, dir, probe.Options{
		AllHits: conf.AllHits,
		Overlap: overlapHandler(conf),
	})
	if err != nil {
		return err
	}
	return writeJSON(out, shotResult{Scene: s.Info.ID, Result: result})
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.New("encoding output failed").Wrap(err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

// serveMetrics exposes the Prometheus registry until the returned function
// is called
func serveMetrics(addr string) func() {
	var mux http.ServeMux
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: &mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Warn(errors.New("metrics server failed").
				WithTag("addr", addr).
				Wrap(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}
