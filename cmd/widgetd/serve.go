package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/provekit/widget/internal/config"
	"github.com/provekit/widget/pkg/protocol"
	"github.com/provekit/widget/pkg/rpc"
	"github.com/provekit/widget/pkg/server"
	"github.com/provekit/widget/pkg/widget"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		stdio      bool
		check      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo widget over WebSocket or JSON-RPC stdio",
		Long: `Start the widget server.

By default widgetd listens for WebSocket clients on /ws and exposes
Prometheus metrics on /metrics. With --stdio it instead speaks
JSON-RPC 2.0 on stdin/stdout, the way prover frontends are embedded
in editors.

The built-in root component is a demo counter; embedding hosts mount
their own components through pkg/server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if check {
				fmt.Println("configuration ok")
				return nil
			}
			if addr == "" {
				addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
			}
			if stdio {
				return serveStdio(cfg)
			}
			return serveHTTP(cfg, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to widget.json (default: ./widget.json)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&stdio, "stdio", false, "Speak JSON-RPC 2.0 on stdin/stdout instead of HTTP")
	cmd.Flags().BoolVar(&check, "check", false, "Validate the configuration and exit")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load(".")
}

func serveHTTP(cfg *config.Config, addr string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	server.EnableMetrics()

	srv, err := server.New(serverConfig(cfg, logger), demoRoot)
	if err != nil {
		return err
	}
	defer srv.Close()

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/ws", srv.HandleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if cfg.MetricsAddr == "" {
		r.Handle("/metrics", promhttp.Handler())
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if cfg.MetricsAddr != "" {
		metricsSrv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func serveStdio(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// The stdio transport drives a single engine. server.New installs
	// the process task queue, but its completions are routed to
	// websocket sessions only; this engine does not receive them and
	// learns of a finished task only through widget/taskCompleted.
	srv, err := server.New(serverConfig(cfg, logger), demoRoot)
	if err != nil {
		return err
	}
	defer srv.Close()

	component, props, err := demoRoot()
	if err != nil {
		return err
	}
	engine, err := widget.NewEngine(component, props, widget.WithLogger(logger))
	if err != nil {
		return err
	}
	defer engine.Dispose()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("speaking JSON-RPC on stdio")
	rpc.NewServer(engine).Serve(ctx, stdrwc{})
	return nil
}

func serverConfig(cfg *config.Config, logger *slog.Logger) *server.Config {
	return &server.Config{
		MaxSessions:   cfg.Session.MaxSessions,
		MaxEventQueue: cfg.Session.MaxEventQueue,
		WriteTimeout:  time.Duration(cfg.Session.WriteTimeoutMS) * time.Millisecond,
		Codec:         protocol.CodecByName(cfg.Codec),
		TaskWorkers:   cfg.Tasks.Workers,
		Logger:        logger,
	}
}

// stdrwc adapts stdin/stdout to io.ReadWriteCloser for the JSON-RPC
// stream.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdrwc) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		os.Stdout.Close()
		return err
	}
	return os.Stdout.Close()
}
