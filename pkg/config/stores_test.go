package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jababox/jababox/pkg/compress"
)

func TestCreateByteStore_FS(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = StorageTypeFS
	cfg.Storage.FS.BasePath = filepath.Join(t.TempDir(), "blobs")
	cfg.Storage.FS.CreateDir = true

	store, err := CreateByteStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create fs byte store: %v", err)
	}
	defer store.Close()

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
}

func TestCreateByteStore_Memory(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = StorageTypeMemory

	store, err := CreateByteStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create memory byte store: %v", err)
	}
	defer store.Close()
}

func TestCreateByteStore_UnknownType(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Storage.Type = "tape"

	_, err := CreateByteStore(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected error for unknown storage type")
	}
}

func TestCreateMetadataStore_SQLite(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Database.SQLite.Path = ":memory:"

	store, err := CreateMetadataStore(cfg)
	if err != nil {
		t.Fatalf("Failed to create metadata store: %v", err)
	}
	defer store.Close()

	if err := store.HealthCheck(); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
}

func TestCreateCodec(t *testing.T) {
	cfg := GetDefaultConfig()

	codec, err := CreateCodec(cfg)
	if err != nil {
		t.Fatalf("Failed to create codec: %v", err)
	}

	payload := []byte("the same bytes must come back out")
	compressed, err := codec.Compress(payload)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	restored, err := codec.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if string(restored) != string(payload) {
		t.Errorf("Round trip mismatch: got %q", restored)
	}
}

func TestCreateCodec_ExplicitLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Compression.Level = 9

	if _, err := CreateCodec(cfg); err != nil {
		t.Fatalf("Failed to create codec with level 9: %v", err)
	}

	cfg.Compression.Level = compress.DefaultLevel
	if _, err := CreateCodec(cfg); err != nil {
		t.Fatalf("Failed to create codec with default level: %v", err)
	}
}
