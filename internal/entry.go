// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/recvault/internal/api"
	"github.com/starford/recvault/internal/docstore"
	"github.com/starford/recvault/internal/events"
	"github.com/starford/recvault/internal/filestore"
	"github.com/starford/recvault/internal/mcpserver"
	"github.com/starford/recvault/internal/menu"
	"github.com/starford/recvault/internal/metrics"
	"github.com/starford/recvault/internal/sse"
	"github.com/starford/recvault/internal/storage"
	"github.com/starford/recvault/internal/vault"
)

var (
	_ vault.Repository = (*filestore.Repository)(nil)
	_ vault.Repository = (*docstore.Store)(nil)
)

func newApplication(opts []Option) (*application, error) {
	app := &application{stdin: os.Stdin, stdout: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger installs a structured JSON logger writing to w as the default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// vaultRuntime is the assembled vault shared by every mode.
type vaultRuntime struct {
	svc      *vault.Service
	notifier *events.Notifier
	// coll is the backing file collection; nil for the document store.
	coll *filestore.Collection
}

// buildVault prepares the data directory, opens the configured storage
// strategy and wires the vault service with the event logger attached.
func buildVault(cfg *Config, logger *slog.Logger) (*vaultRuntime, error) {
	if err := os.MkdirAll(cfg.Vault.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	repo, coll, err := openRepository(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	notifier := events.NewNotifier(events.NewLogObserver(logger))
	svc := vault.NewService(repo, store, notifier, vault.Config{
		ExportFile:   cfg.Vault.ExportFile,
		BackupDir:    cfg.Vault.Backup.Dir,
		BackupRetain: cfg.Vault.Backup.Retain,
	}, vault.WithLogger(logger))

	return &vaultRuntime{svc: svc, notifier: notifier, coll: coll}, nil
}

// openRepository selects the storage strategy once at startup. A failing
// document store is an error; there is no fallback to the file backend.
func openRepository(cfg *Config, store *storage.FS, logger *slog.Logger) (vault.Repository, *filestore.Collection, error) {
	switch cfg.Storage.Backend {
	case BackendDocStore:
		ds, err := docstore.Open(cfg.DocStore.DSN, cfg.DocStore.Collection)
		if err != nil {
			return nil, nil, fmt.Errorf("init docstore: %w", err)
		}
		logger.Info("Storage backend selected",
			slog.String("backend", BackendDocStore),
			slog.String("collection", ds.Collection()))
		return ds, nil, nil
	default:
		coll := filestore.NewCollection(store, cfg.Vault.File, logger)
		logger.Info("Storage backend selected",
			slog.String("backend", BackendFile),
			slog.String("file", coll.File()))
		return filestore.NewRepository(coll, nil), coll, nil
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// newHTTPHandler builds the root router: shared middleware, health and
// metrics endpoints, and the vault API.
func newHTTPHandler(svc *vault.Service, broker *sse.Broker, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(m.Middleware)

	r.Get("/health/live", healthHandler)
	r.Get("/health/ready", healthHandler)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Mount("/", api.NewRouter(svc, broker))
	return r
}

// Run starts the HTTP server mode with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Vault.DataDir),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := buildVault(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.svc.Close()

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	m := metrics.New()
	rt.notifier.Subscribe(broker)
	rt.notifier.Subscribe(m)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(rt.svc, broker, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the backing file for edits made outside this process.
	if rt.coll != nil {
		g.Go(func() error {
			err := rt.coll.Watch(gCtx, func() {
				rt.svc.NotifyExternalChange(gCtx)
			})
			if err != nil {
				logger.Warn("file watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Open SSE streams end when the broker closes.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMenu starts the interactive text menu. Logs go to stderr so the
// terminal output stays readable.
func RunMenu(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)

	fmt.Fprintln(app.stdout, "🚀 Initializing recvault...")
	rt, err := buildVault(app.config, logger)
	if err != nil {
		return err
	}
	defer rt.svc.Close()

	return menu.Run(ctx, rt.svc, app.stdin, app.stdout)
}

// RunMCP serves the vault over the MCP stdio transport. stdout carries the
// protocol, so logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := newLogger(app.config, os.Stderr)

	rt, err := buildVault(app.config, logger)
	if err != nil {
		return err
	}
	defer rt.svc.Close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc).ServeStdio()
}
