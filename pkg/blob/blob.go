// Package blob defines the byte store contract: raw file payloads organized
// as a per-account container, per-directory subcontainers, and one blob per
// file id.
//
// The byte store and the metadata store are not transactionally coupled.
// The Check* probes exist for exactly that reason: the coordinator calls
// them after metadata mutations to assert the corresponding physical object
// really exists, turning drift into an explicit error instead of a silent
// quota miscount.
package blob

import (
	"context"
	"errors"
)

// Sentinel errors shared by all byte store implementations.
var (
	// ErrNotFound is returned when a container, subcontainer, or blob does
	// not exist.
	ErrNotFound = errors.New("blob store: object not found")

	// ErrStoreClosed is returned when the store has been closed.
	ErrStoreClosed = errors.New("blob store: store is closed")
)

// Store persists raw file payloads. All objects are keyed by opaque
// account/directory/file ids; names never reach the byte store, which is
// why renames are metadata-only operations.
type Store interface {
	// CreateContainer allocates the physical container for an account.
	// Creating an existing container is not an error.
	CreateContainer(ctx context.Context, accountID string) error

	// CheckContainer asserts the account's container exists, returning
	// ErrNotFound when it does not.
	CheckContainer(ctx context.Context, accountID string) error

	// CreateSubcontainer allocates the physical container for a directory.
	CreateSubcontainer(ctx context.Context, accountID, directoryID string) error

	// CheckSubcontainer asserts the directory's container exists.
	CheckSubcontainer(ctx context.Context, accountID, directoryID string) error

	// DeleteSubcontainer recursively deletes every blob in the directory's
	// container and then the container itself. Deleting an absent
	// subcontainer is not an error.
	DeleteSubcontainer(ctx context.Context, accountID, directoryID string) error

	// WriteBlob stores a file's payload.
	WriteBlob(ctx context.Context, accountID, directoryID, fileID string, data []byte) error

	// CheckBlob asserts the file's payload exists.
	CheckBlob(ctx context.Context, accountID, directoryID, fileID string) error

	// ReadBlob retrieves a file's payload, returning ErrNotFound when the
	// blob does not exist.
	ReadBlob(ctx context.Context, accountID, directoryID, fileID string) ([]byte, error)

	// DeleteBlob removes a file's payload. Deleting an absent blob is not
	// an error.
	DeleteBlob(ctx context.Context, accountID, directoryID, fileID string) error

	// HealthCheck verifies the store is accessible.
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
