// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jarvis/internal/api"
	"github.com/starford/jarvis/internal/dispatch"
	"github.com/starford/jarvis/internal/hud"
	"github.com/starford/jarvis/internal/mcpserver"
	"github.com/starford/jarvis/internal/metrics"
	"github.com/starford/jarvis/internal/nlu"
	"github.com/starford/jarvis/internal/sse"
	"github.com/starford/jarvis/internal/store"
)

const shutdownTimeout = 10 * time.Second

// runtime is everything both the HTTP and the MCP front ends share.
type runtime struct {
	cfg      *Config
	version  string
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	db       *store.SQLite
	store    store.Provider
	policy   *dispatch.Policy
	broker   *sse.Broker
	session  *hud.Session
}

func newRuntime(opts []Option) (*runtime, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.Store.SQLitePath),
		slog.String("cache_dir", cfg.Store.CacheDir),
		slog.String("user_key", cfg.HUD.UserKey),
		slog.Bool("nlu_key_configured", cfg.NLU.APIKey != ""),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt := &runtime{cfg: cfg, version: app.version, logger: logger}

	rt.registry = prometheus.NewRegistry()
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rt.metrics = metrics.New(rt.registry)

	if err := rt.openStore(); err != nil {
		return nil, err
	}

	policy, err := loadPolicy(cfg.HUD.PolicyFile, logger)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.policy = policy

	groq := nlu.NewGroq(nlu.Config{
		BaseURL: cfg.NLU.BaseURL,
		APIKey:  cfg.NLU.APIKey,
		Models:  cfg.NLU.Models,
		Timeout: cfg.NLU.Timeout,
	}, logger, rt.metrics)

	rt.broker = sse.NewBroker(cfg.HUD.SSEThrottle, rt.metrics.SSEClients)

	rt.session = hud.New(hud.Config{
		UserKey:         cfg.HUD.UserKey,
		HistoryCapacity: cfg.HUD.HistoryCapacity,
		Persona:         nlu.ParsePersona(cfg.NLU.Persona),
	}, hud.Deps{
		Parser:    groq,
		Briefer:   groq,
		Store:     rt.store,
		Publisher: rt.broker,
		Policy:    rt.policy,
		Logger:    logger,
		Metrics:   rt.metrics,
	})
	return rt, nil
}

// openStore builds the persistence chain: SQLite, a local JSON cache, or
// SQLite backed by the cache when both are configured.
func (rt *runtime) openStore() error {
	cfg := rt.cfg.Store
	var local store.Provider
	if cfg.CacheDir != "" {
		fs, err := store.NewFS(cfg.CacheDir)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		local = fs
	}
	if cfg.SQLitePath == "" {
		rt.store = local
		return nil
	}

	// Ensure the database directory exists.
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		if local == nil {
			return fmt.Errorf("init sqlite: %w", err)
		}
		rt.logger.Warn("sqlite unavailable, using local cache only", slog.String("error", err.Error()))
		rt.store = local
		return nil
	}
	rt.db = db
	if local == nil {
		rt.store = db
		return nil
	}
	rt.store = store.NewCached(db, local, rt.logger)
	return nil
}

func loadPolicy(path string, logger *slog.Logger) (*dispatch.Policy, error) {
	if path == "" {
		return dispatch.DefaultPolicy(), nil
	}
	kinds, err := dispatch.LoadPolicyFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("policy file not found, using defaults", slog.String("path", path))
		return dispatch.DefaultPolicy(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	return dispatch.NewPolicy(kinds), nil
}

func (rt *runtime) close() {
	if rt.broker != nil {
		rt.broker.Close()
	}
	if rt.db != nil {
		if err := rt.db.Close(); err != nil {
			rt.logger.Error("close sqlite", slog.String("error", err.Error()))
		}
	}
}

// startCore runs the session loop, the saver, the initial load and the
// policy watcher on g.
func (rt *runtime) startCore(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error { return rt.session.Run(ctx) })
	g.Go(func() error { return rt.session.RunSaver(ctx) })
	g.Go(func() error {
		if err := rt.session.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
			rt.logger.Error("initial load failed", slog.String("error", err.Error()))
		}
		return nil
	})
	if path := rt.cfg.HUD.PolicyFile; path != "" {
		g.Go(func() error {
			err := dispatch.WatchPolicy(ctx, rt.policy, path, rt.logger, func(p *dispatch.Policy) {
				rt.logger.Info("approval policy reloaded", slog.Int("auto_execute", len(p.Kinds())))
			})
			if err != nil {
				rt.logger.Warn("policy watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.close()
	logger := rt.logger
	cfg := rt.cfg

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", api.Live)
	var pinger api.Pinger
	if rt.db != nil {
		pinger = rt.db
	}
	r.Get("/health/ready", api.Ready(pinger))
	r.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(rt.session, rt.broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)
	rt.startCore(gCtx, g)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut down once a signal arrives or any component fails.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the HUD tools over stdio until the client disconnects or a
// signal arrives.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := newRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	rt.startCore(gCtx, g)

	srv := mcpserver.New(rt.session, rt.version)
	g.Go(func() error {
		defer cancel()
		rt.logger.Info("MCP server listening on stdio")
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		rt.logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	return nil
}
