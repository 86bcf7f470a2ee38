// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/finrep, cmd/finrep-worker, and cmd/deadline-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finrep/internal/config"
	"finrep/internal/storage"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore selects and opens the configured data backend. Returns the store
// or exits the process on failure.
func OpenStore(logger *slog.Logger, cfg *config.Config) storage.Store {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
		return repo
	default:
		logger.Info("Initialized memory backend")
		return storage.NewMemoryStore()
	}
}

// ProvisionFromPortal seeds the store from the portal file when the store is
// empty. Returns the loaded portal definition or exits on failure.
func ProvisionFromPortal(ctx context.Context, logger *slog.Logger, cfg *config.Config, store storage.Store) *config.Portal {
	portal, err := config.LoadPortal(cfg.PortalFile)
	if err != nil {
		logger.Error("Failed to load portal file", "error", err, "path", cfg.PortalFile)
		os.Exit(1)
	}

	seeded, err := storage.EnsureProvisioned(ctx, store, portal.ProvisionSpec())
	if err != nil {
		logger.Error("Failed to provision reporting periods", "error", err)
		os.Exit(1)
	}
	if seeded {
		logger.Info("Provisioned reporting periods from portal file",
			"from", portal.Periods.From,
			"months", portal.Periods.Months,
			"projects", len(portal.Projects))
	}
	return portal
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
