// Command loanlocator serves the loan file lookup and the admin API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"loanlocator/internal/adapters/httpapi"
	"loanlocator/internal/auth"
	"loanlocator/internal/blob"
	"loanlocator/internal/config"
	"loanlocator/internal/core"
	"loanlocator/internal/logging"
	"loanlocator/internal/lookup"
	"loanlocator/internal/metrics"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli(ctx, os.Args[1:], os.Stderr)
	stop()
	exitFunc(code)
}

func cli(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("loanlocator", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var configPath string
	fs.StringVar(&configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "loanlocator: %v\n", err)
		return 1
	}
	zl, err := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "loanlocator: %v\n", err)
		return 1
	}
	defer func() { _ = zl.Sync() }()

	if err := serve(ctx, cfg, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

// app is the wired server before it starts listening.
type app struct {
	server *http.Server
	loader *lookup.Loader
	close  func()
}

func build(ctx context.Context, cfg *config.Config, zl *zap.Logger) (*app, error) {
	logger := logging.NewLogger(zl)
	m := metrics.New()

	store, err := core.OpenReferenceStore(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, err
	}
	closeStore := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				zl.Warn("close store", zap.Error(err))
			}
		}
	}

	opts := []core.ServiceOption{
		core.WithLogger(logger.Named("core")),
		core.WithMetricsRecorder(m),
		core.WithAuditRecorder(core.LogAuditRecorder{Logger: logger.Named("audit")}),
	}
	if cfg.BlobEnabled() {
		archive, err := blob.Open(ctx, cfg.BlobOptions())
		if err != nil {
			closeStore()
			return nil, fmt.Errorf("open archive: %w", err)
		}
		opts = append(opts, core.WithArchive(archive))
		zl.Info("export archive enabled", zap.String("driver", string(archive.Driver())))
	}
	svc := core.NewService(store, opts...)

	seeded, err := svc.Seed(ctx, core.SeedFiles{Loans: cfg.Storage.SeedLoans, Ranges: cfg.Storage.SeedRanges})
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("seed reference data: %w", err)
	}
	if seeded.Loans > 0 || seeded.Ranges > 0 {
		zl.Info("seeded reference data", zap.Int("loans", seeded.Loans), zap.Int("ranges", seeded.Ranges))
	}

	loader := lookup.NewLoader(svc, lookup.WithReloadObserver(m))
	if snap, err := loader.Reload(ctx); err != nil {
		zl.Warn("initial snapshot load failed; lookups unavailable until reload", zap.Error(err))
	} else {
		stats := snap.Stats()
		zl.Info("snapshot loaded", zap.Int("loans", stats.Loans), zap.Int("ranges", stats.Ranges))
	}

	verifier := auth.NewVerifier(cfg.Auth.PasswordHash)
	if verifier.UsesDefault() {
		zl.Warn("admin password is the shipped default; set auth.password_hash")
	}
	handler := httpapi.NewHandler(loader, svc,
		httpapi.WithVerifier(verifier),
		httpapi.WithSessions(auth.NewSessions(cfg.Auth.SessionTTL, nil)),
		httpapi.WithLookupObserver(m),
		httpapi.WithMetricsHandler(m.Handler()),
		httpapi.WithLogger(logger.Named("http")),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return &app{server: server, loader: loader, close: closeStore}, nil
}

func serve(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	a, err := build(ctx, cfg, zl)
	if err != nil {
		return err
	}
	defer a.close()

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("storage", cfg.Storage.Driver))
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
