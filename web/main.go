package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"reflect"
	"syscall"
	"time"

	"github.com/BRL-CAD/brlcad-sub154/web/server"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

// The server version number. Set at build.
var version = "v0.1.0"

var _ = reflect.TypeOf(config{})

type config struct {
	Addr      string `cli:"" env:"CSGTRACE_WEB_ADDR"       help:"Listening address."`
	LogLevel  string `cli:"" env:"CSGTRACE_WEB_LOG_LEVEL"  help:"Log level (debug|info|warning|error)."`
	LogIndent bool   `cli:"" env:"CSGTRACE_WEB_LOG_INDENT" help:"Indent logs."`
	Version   bool   `cli:"" env:"-"                       help:"Show version."`
	Help      bool   `cli:"" env:"-"                       help:"Show help."`
}

func main() {
	conf := config{
		Addr:     ":8080",
		LogLevel: logs.InfoLevel.String(),
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Serves scene renders and probe rays over HTTP.").
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

	srv := server.New()
	httpServer := &http.Server{Addr: conf.Addr, Handler: srv.Handler()}

	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logs.WithTag("version", version).
		WithTag("addr", conf.Addr).
		Info("starting web server")

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logs.Fatal(errors.New("web server failed").Wrap(err))
	}
	<-shutdown
	if err := srv.Close(); err != nil {
		logs.Warn(err)
	}
}
