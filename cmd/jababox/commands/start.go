package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/api"
	"github.com/jababox/jababox/pkg/config"
	"github.com/jababox/jababox/pkg/metrics"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/spf13/cobra"

	// Import prometheus metrics to register init() functions
	_ "github.com/jababox/jababox/pkg/metrics/prometheus"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the JabaBox server",
	Long: `Start the JabaBox server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/jababox/config.yaml.

Examples:
  # Start with default config location
  jababox start

  # Start with custom config file
  jababox start --config /etc/jababox/config.yaml

  # Start with environment variable overrides
  JABABOX_LOGGING_LEVEL=DEBUG jababox start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))

	// Initialize metrics FIRST so the coordinator picks up a live recorder
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer, err = metrics.NewServer(cfg.Metrics.Port)
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("Metrics collection disabled")
	}

	metadata, blobs, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			logger.Error("byte store close error", "error", err)
		}
		if err := metadata.Close(); err != nil {
			logger.Error("metadata store close error", "error", err)
		}
	}()
	logger.Info("Stores opened",
		"database", cfg.Database.Type, "storage", cfg.Storage.Type)

	registry := storage.NewRegistry(metadata, blobs)
	coordinator := storage.NewCoordinator(metadata, blobs)
	coordinator.SetMetrics(metrics.NewStorageMetrics())

	// Ensure the bootstrap account exists (generates a random password on
	// first run)
	if err := ensureBootstrapAccount(ctx, registry, cfg); err != nil {
		return err
	}

	codec, err := config.CreateCodec(cfg)
	if err != nil {
		return err
	}

	apiServer, err := api.NewServer(cfg.API, registry, coordinator, metadata, blobs, codec)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}
	logger.Info("API server configured", "port", cfg.API.Port)

	// Start servers in background
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	metricsDone := make(chan error, 1)
	if metricsServer != nil {
		go func() {
			metricsDone <- metricsServer.Start(ctx)
		}()
	}

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		if err := <-serverDone; err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		if metricsServer != nil {
			if err := <-metricsDone; err != nil {
				logger.Error("Metrics server shutdown error", "error", err)
			}
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		cancel()
		if err != nil {
			logger.Error("Server error", "error", err)
			return err
		}
		logger.Info("Server stopped")
	}

	return nil
}

// ensureBootstrapAccount registers the configured bootstrap account when the
// database holds no accounts at all. The generated password is printed once.
func ensureBootstrapAccount(ctx context.Context, registry *storage.Registry, cfg *config.Config) error {
	accounts, err := registry.ListAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) > 0 {
		return nil
	}

	password, err := generatePassword()
	if err != nil {
		return fmt.Errorf("failed to generate bootstrap password: %w", err)
	}

	account, err := registry.Register(ctx, cfg.Bootstrap.Login, password, cfg.Bootstrap.QuotaGigabytes)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap account: %w", err)
	}

	logger.Info("Bootstrap account created",
		"login", account.Login, "quota_gigabytes", account.QuotaGigabytes)
	fmt.Printf("\n*** IMPORTANT: Account %q created with password: %s ***\n", account.Login, password)
	fmt.Println("Please save this password. It will not be shown again.")
	fmt.Println()

	return nil
}

// generatePassword returns a 32-character hex string (16 bytes of entropy).
func generatePassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
