package config

import (
	"strings"
	"time"

	"github.com/jababox/jababox/internal/bytesize"
	"github.com/jababox/jababox/pkg/api"
	"github.com/jababox/jababox/pkg/blob/fs"
	"github.com/jababox/jababox/pkg/compress"
	"github.com/jababox/jababox/pkg/storage/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyShutdownTimeoutDefaults(cfg)
	applyDatabaseDefaults(&cfg.Database)
	applyStorageDefaults(&cfg.Storage)
	applyCompressionDefaults(&cfg.Compression)
	applyMetricsDefaults(&cfg.Metrics)
	applyAPIDefaults(&cfg.API)
	applyBootstrapDefaults(&cfg.Bootstrap)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyShutdownTimeoutDefaults sets shutdown timeout defaults.
func applyShutdownTimeoutDefaults(cfg *Config) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyDatabaseDefaults sets metadata database defaults.
func applyDatabaseDefaults(cfg *store.Config) {
	cfg.ApplyDefaults()
}

// applyStorageDefaults sets byte store defaults.
func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Type == "" {
		cfg.Type = StorageTypeFS
	}
	if cfg.Type == StorageTypeFS {
		if cfg.FS.BasePath == "" {
			cfg.FS.BasePath = "/var/lib/jababox/storage"
		}
		defaults := fs.DefaultConfig(cfg.FS.BasePath)
		cfg.FS.CreateDir = defaults.CreateDir
		if cfg.FS.DirMode == 0 {
			cfg.FS.DirMode = defaults.DirMode
		}
		if cfg.FS.FileMode == 0 {
			cfg.FS.FileMode = defaults.FileMode
		}
	}
	if cfg.Type == StorageTypeS3 && cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
}

// applyCompressionDefaults sets deflate codec defaults.
func applyCompressionDefaults(cfg *CompressionConfig) {
	if cfg.Level == 0 {
		cfg.Level = compress.DefaultLevel
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false (opt-in for metrics)
	// Port defaults to 9090 if metrics are enabled
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// applyAPIDefaults sets REST API server defaults.
// The API is always enabled; it is the only way to manage accounts and files.
func applyAPIDefaults(cfg *api.Config) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = 256 * bytesize.MiB
	}
	if cfg.JWT.AccessTokenDuration == 0 {
		cfg.JWT.AccessTokenDuration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenDuration == 0 {
		cfg.JWT.RefreshTokenDuration = 168 * time.Hour
	}
}

// applyBootstrapDefaults sets bootstrap account defaults.
func applyBootstrapDefaults(cfg *BootstrapConfig) {
	if cfg.Login == "" {
		cfg.Login = "admin"
	}
	if cfg.QuotaGigabytes == 0 {
		cfg.QuotaGigabytes = 10
	}
	// PasswordHash has no default - it is set during init
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{
		Database: store.Config{
			Type: store.DatabaseTypeSQLite, // Default to SQLite for single-node
		},
		Storage: StorageConfig{
			Type: StorageTypeFS,
		},
	}

	ApplyDefaults(cfg)
	return cfg
}
