package config

import (
	"context"
	"fmt"

	"github.com/jababox/jababox/pkg/blob"
	"github.com/jababox/jababox/pkg/blob/fs"
	"github.com/jababox/jababox/pkg/blob/memory"
	"github.com/jababox/jababox/pkg/blob/s3"
	"github.com/jababox/jababox/pkg/compress"
	"github.com/jababox/jababox/pkg/storage/store"
)

// CreateMetadataStore creates the metadata store from configuration.
//
// The metadata store holds accounts, quota ledgers, directories, and file
// records. The caller is responsible for closing it.
func CreateMetadataStore(cfg *Config) (store.Store, error) {
	s, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata store: %w", err)
	}
	return s, nil
}

// CreateByteStore creates the byte store backend from configuration.
//
// The byte store holds file payloads, keyed by account, directory, and file
// identifiers. The caller is responsible for closing it.
func CreateByteStore(ctx context.Context, cfg *Config) (blob.Store, error) {
	switch cfg.Storage.Type {
	case StorageTypeFS, "":
		s, err := fs.New(cfg.Storage.FS)
		if err != nil {
			return nil, fmt.Errorf("failed to create filesystem byte store: %w", err)
		}
		return s, nil

	case StorageTypeS3:
		s, err := s3.NewFromConfig(ctx, cfg.Storage.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 byte store: %w", err)
		}
		return s, nil

	case StorageTypeMemory:
		return memory.New(), nil

	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Storage.Type)
	}
}

// CreateCodec creates the payload compression codec from configuration.
func CreateCodec(cfg *Config) (compress.Codec, error) {
	if cfg.Compression.Level == compress.DefaultLevel || cfg.Compression.Level == 0 {
		return compress.NewDeflate(), nil
	}

	codec, err := compress.NewDeflateLevel(cfg.Compression.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid compression configuration: %w", err)
	}
	return codec, nil
}
