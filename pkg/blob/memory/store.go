// Package memory provides an in-memory byte store, primarily for tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jababox/jababox/pkg/blob"
)

// Store is a map-backed implementation of blob.Store. Containers and
// subcontainers are tracked explicitly so Check* probes behave like the
// real backends.
type Store struct {
	mu         sync.RWMutex
	containers map[string]bool
	subs       map[string]bool
	blobs      map[string][]byte
	closed     bool
}

// New creates an empty in-memory byte store.
func New() *Store {
	return &Store{
		containers: make(map[string]bool),
		subs:       make(map[string]bool),
		blobs:      make(map[string][]byte),
	}
}

func subKey(accountID, directoryID string) string {
	return accountID + "/" + directoryID
}

func blobKey(accountID, directoryID, fileID string) string {
	return accountID + "/" + directoryID + "/" + fileID
}

func (s *Store) guard() error {
	if s.closed {
		return blob.ErrStoreClosed
	}
	return nil
}

func (s *Store) CreateContainer(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.containers[accountID] = true
	return nil
}

func (s *Store) CheckContainer(ctx context.Context, accountID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	if !s.containers[accountID] {
		return blob.ErrNotFound
	}
	return nil
}

func (s *Store) CreateSubcontainer(ctx context.Context, accountID, directoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.containers[accountID] = true
	s.subs[subKey(accountID, directoryID)] = true
	return nil
}

func (s *Store) CheckSubcontainer(ctx context.Context, accountID, directoryID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	if !s.subs[subKey(accountID, directoryID)] {
		return blob.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSubcontainer(ctx context.Context, accountID, directoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	delete(s.subs, subKey(accountID, directoryID))
	prefix := subKey(accountID, directoryID) + "/"
	for key := range s.blobs {
		if strings.HasPrefix(key, prefix) {
			delete(s.blobs, key)
		}
	}
	return nil
}

func (s *Store) WriteBlob(ctx context.Context, accountID, directoryID, fileID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	s.containers[accountID] = true
	s.subs[subKey(accountID, directoryID)] = true
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[blobKey(accountID, directoryID, fileID)] = buf
	return nil
}

func (s *Store) CheckBlob(ctx context.Context, accountID, directoryID, fileID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return err
	}
	if _, ok := s.blobs[blobKey(accountID, directoryID, fileID)]; !ok {
		return blob.ErrNotFound
	}
	return nil
}

func (s *Store) ReadBlob(ctx context.Context, accountID, directoryID, fileID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	data, ok := s.blobs[blobKey(accountID, directoryID, fileID)]
	if !ok {
		return nil, blob.ErrNotFound
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return buf, nil
}

func (s *Store) DeleteBlob(ctx context.Context, accountID, directoryID, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	delete(s.blobs, blobKey(accountID, directoryID, fileID))
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guard()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// BlobCount returns the number of stored blobs (for testing).
func (s *Store) BlobCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Ensure Store implements blob.Store.
var _ blob.Store = (*Store)(nil)
