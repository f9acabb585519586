package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for invalid or inconsistent values.
//
// Structural rules come from the `validate` struct tags; cross-field rules
// that tags cannot express are checked explicitly afterwards.
func Validate(cfg *Config) error {
	v := validator.New()

	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}

	return nil
}

// validateStorage checks backend-specific byte store requirements.
func validateStorage(cfg *StorageConfig) error {
	switch cfg.Type {
	case StorageTypeFS:
		if cfg.FS.BasePath == "" {
			return fmt.Errorf("storage type %q requires fs.base_path to be set", cfg.Type)
		}
	case StorageTypeS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("storage type %q requires s3.bucket to be set", cfg.Type)
		}
		if cfg.S3.Region == "" {
			return fmt.Errorf("storage type %q requires s3.region to be set", cfg.Type)
		}
	case StorageTypeMemory:
		// No configuration required.
	default:
		return fmt.Errorf("unknown storage type: %q", cfg.Type)
	}

	return nil
}
