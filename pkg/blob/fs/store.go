// Package fs provides a filesystem-backed byte store. Containers map to
// directories and blobs to regular files under a base path:
//
//	<base>/<accountID>/<directoryID>/<fileID>
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/jababox/jababox/pkg/blob"
)

// Config holds configuration for the filesystem byte store.
type Config struct {
	// BasePath is the root directory for payload storage.
	BasePath string `mapstructure:"base_path" yaml:"base_path"`

	// CreateDir creates the base directory if it doesn't exist.
	// Default: true
	CreateDir bool `mapstructure:"create_dir" yaml:"create_dir"`

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode `mapstructure:"dir_mode" yaml:"dir_mode"`

	// FileMode is the permission mode for created files.
	// Default: 0644
	FileMode os.FileMode `mapstructure:"file_mode" yaml:"file_mode"`
}

// DefaultConfig returns the default configuration for a base path.
func DefaultConfig(basePath string) Config {
	return Config{
		BasePath:  basePath,
		CreateDir: true,
		DirMode:   0755,
		FileMode:  0644,
	}
}

// Store is a filesystem-backed implementation of blob.Store.
type Store struct {
	mu       sync.RWMutex
	basePath string
	dirMode  os.FileMode
	fileMode os.FileMode
	closed   bool
}

// New creates a filesystem byte store with the given configuration.
func New(cfg Config) (*Store, error) {
	if cfg.BasePath == "" {
		return nil, errors.New("base path is required")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(cfg.BasePath, cfg.DirMode); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("base path is not a directory")
	}

	return &Store{
		basePath: cfg.BasePath,
		dirMode:  cfg.DirMode,
		fileMode: cfg.FileMode,
	}, nil
}

// NewWithPath creates a filesystem byte store with default configuration.
func NewWithPath(basePath string) (*Store, error) {
	return New(DefaultConfig(basePath))
}

func (s *Store) containerPath(accountID string) string {
	return filepath.Join(s.basePath, accountID)
}

func (s *Store) subcontainerPath(accountID, directoryID string) string {
	return filepath.Join(s.basePath, accountID, directoryID)
}

func (s *Store) blobPath(accountID, directoryID, fileID string) string {
	return filepath.Join(s.basePath, accountID, directoryID, fileID)
}

// checkPath asserts the path exists and matches the wantDir expectation.
func checkPath(path string, wantDir bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return blob.ErrNotFound
		}
		return err
	}
	if info.IsDir() != wantDir {
		return blob.ErrNotFound
	}
	return nil
}

func (s *Store) guard() error {
	if s.closed {
		return blob.ErrStoreClosed
	}
	return nil
}

// CreateContainer creates the account's directory.
func (s *Store) CreateContainer(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	return os.MkdirAll(s.containerPath(accountID), s.dirMode)
}

// CheckContainer asserts the account's directory exists.
func (s *Store) CheckContainer(ctx context.Context, accountID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	return checkPath(s.containerPath(accountID), true)
}

// CreateSubcontainer creates a directory's container under its account.
func (s *Store) CreateSubcontainer(ctx context.Context, accountID, directoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	return os.MkdirAll(s.subcontainerPath(accountID, directoryID), s.dirMode)
}

// CheckSubcontainer asserts a directory's container exists.
func (s *Store) CheckSubcontainer(ctx context.Context, accountID, directoryID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	return checkPath(s.subcontainerPath(accountID, directoryID), true)
}

// DeleteSubcontainer removes a directory's container and every blob in it.
func (s *Store) DeleteSubcontainer(ctx context.Context, accountID, directoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	return os.RemoveAll(s.subcontainerPath(accountID, directoryID))
}

// WriteBlob writes a payload to a temporary file first, then renames it
// into place so readers never observe a partial write.
func (s *Store) WriteBlob(ctx context.Context, accountID, directoryID, fileID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	path := s.blobPath(accountID, directoryID, fileID)
	if err := os.MkdirAll(filepath.Dir(path), s.dirMode); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, s.fileMode); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// CheckBlob asserts a payload file exists.
func (s *Store) CheckBlob(ctx context.Context, accountID, directoryID, fileID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	return checkPath(s.blobPath(accountID, directoryID, fileID), false)
}

// ReadBlob reads a payload from disk.
func (s *Store) ReadBlob(ctx context.Context, accountID, directoryID, fileID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.blobPath(accountID, directoryID, fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blob.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// DeleteBlob removes a payload file.
func (s *Store) DeleteBlob(ctx context.Context, accountID, directoryID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}

	err := os.Remove(s.blobPath(accountID, directoryID, fileID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// HealthCheck verifies the base path is accessible.
func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	_, err := os.Stat(s.basePath)
	return err
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// BasePath returns the base path of the store (for testing).
func (s *Store) BasePath() string {
	return s.basePath
}

// Ensure Store implements blob.Store.
var _ blob.Store = (*Store)(nil)
