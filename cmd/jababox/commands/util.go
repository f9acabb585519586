package commands

import (
	"context"
	"fmt"

	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/blob"
	"github.com/jababox/jababox/pkg/config"
	"github.com/jababox/jababox/pkg/storage/store"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openStores creates the metadata store and byte store from configuration.
// The caller closes both.
func openStores(ctx context.Context, cfg *config.Config) (store.Store, blob.Store, error) {
	metadata, err := config.CreateMetadataStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	blobs, err := config.CreateByteStore(ctx, cfg)
	if err != nil {
		_ = metadata.Close()
		return nil, nil, err
	}

	return metadata, blobs, nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
