package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/blob"
	"github.com/jababox/jababox/pkg/storage/models"
	"github.com/jababox/jababox/pkg/storage/store"
)

// Coordinator orchestrates the metadata catalog, the quota ledger, and the
// byte store to implement directory and file CRUD with quota accounting and
// ownership enforcement.
//
// The two stores are not transactionally coupled. Creates write bytes and
// probe them before committing metadata; deletes commit metadata before
// touching bytes. A crash between the two halves leaves either an orphan
// blob (reclaimable by the reconciler) or a dangling record whose missing
// payload surfaces as an explicit error on the next read. It never leaves a
// silently wrong quota count.
type Coordinator struct {
	metadata store.Store
	blobs    blob.Store
	metrics  Metrics
}

// NewCoordinator creates a storage coordinator over the given stores.
func NewCoordinator(metadata store.Store, blobs blob.Store) *Coordinator {
	return &Coordinator{
		metadata: metadata,
		blobs:    blobs,
	}
}

// SetMetrics attaches a metrics recorder to the coordinator. Must be called
// before the coordinator serves requests; a nil recorder disables collection.
func (c *Coordinator) SetMetrics(m Metrics) {
	c.metrics = m
}

// checkDirectoryOwnership re-resolves a caller-supplied directory by name
// under the claimed account and verifies the ids match. A stale or forged
// handle reports not-found, never what it actually points at.
func (c *Coordinator) checkDirectoryOwnership(ctx context.Context, account *models.Account, directory *models.DirectoryEntry) (*models.DirectoryEntry, error) {
	resolved, err := c.metadata.FindDirectory(ctx, account.ID, directory.Name)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFound("directory %q not found", directory.Name)
		}
		return nil, err
	}
	if resolved.ID != directory.ID {
		return nil, models.NewNotFound("directory %q not found", directory.Name)
	}
	return resolved, nil
}

// checkFileOwnership re-resolves a caller-supplied file by name under its
// claimed directory and verifies the ids match.
func (c *Coordinator) checkFileOwnership(ctx context.Context, directory *models.DirectoryEntry, file *models.FileRecord) (*models.FileRecord, error) {
	resolved, err := c.metadata.FindFile(ctx, directory.ID, file.Name)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewNotFound("file %q not found", file.Name)
		}
		return nil, err
	}
	if resolved.ID != file.ID {
		return nil, models.NewNotFound("file %q not found", file.Name)
	}
	return resolved, nil
}

// FindDirectory looks up a directory by name within the account. Absence is
// a query result, not a failure: it returns (nil, nil).
func (c *Coordinator) FindDirectory(ctx context.Context, account *models.Account, name string) (*models.DirectoryEntry, error) {
	dir, err := c.metadata.FindDirectory(ctx, account.ID, name)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return dir, nil
}

// FindFile looks up a file by name within the directory, after verifying
// the directory belongs to the account. Absence returns (nil, nil).
func (c *Coordinator) FindFile(ctx context.Context, account *models.Account, directory *models.DirectoryEntry, name string) (*models.FileRecord, error) {
	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return nil, err
	}

	file, err := c.metadata.FindFile(ctx, dir.ID, name)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return file, nil
}

// ListDirectories returns every directory of the account.
func (c *Coordinator) ListDirectories(ctx context.Context, account *models.Account) ([]*models.DirectoryEntry, error) {
	return c.metadata.ListDirectories(ctx, account.ID)
}

// CreateDirectory creates a named directory for the account and allocates
// its physical container in the byte store.
func (c *Coordinator) CreateDirectory(ctx context.Context, account *models.Account, name string) (_ *models.DirectoryEntry, err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "create_directory", start, err) }()

	dir := &models.DirectoryEntry{
		AccountID: account.ID,
		Name:      name,
	}
	if err := dir.Validate(); err != nil {
		return nil, err
	}

	id, err := c.metadata.CreateDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	dir.ID = id

	if err := c.blobs.CreateSubcontainer(ctx, account.ID, id); err != nil {
		return nil, fmt.Errorf("allocate directory container: %w", err)
	}
	if err := c.blobs.CheckSubcontainer(ctx, account.ID, id); err != nil {
		return nil, fmt.Errorf("directory container missing after create: %w", err)
	}

	logger.Debug("directory created", "account", account.Login, "name", name, "id", id)
	return dir, nil
}

// RenameDirectory renames a directory in place. Containers are keyed by id,
// so the byte store is untouched.
func (c *Coordinator) RenameDirectory(ctx context.Context, account *models.Account, directory *models.DirectoryEntry, newName string) (err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "rename_directory", start, err) }()

	if newName == "" {
		return models.NewValidation("directory name must not be empty")
	}

	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return err
	}

	if _, err := c.metadata.FindDirectory(ctx, account.ID, newName); err == nil {
		return models.NewAlreadyExists("directory %q already exists", newName)
	} else if !models.IsNotFound(err) {
		return err
	}

	return c.metadata.RenameDirectory(ctx, dir.ID, newName)
}

// DeleteDirectory removes a directory, every file it contains, and its
// physical container. The quota ledger reclaims the sum of the contained
// file sizes in the same metadata transaction that drops the records.
func (c *Coordinator) DeleteDirectory(ctx context.Context, account *models.Account, directory *models.DirectoryEntry) (err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "delete_directory", start, err) }()

	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return err
	}

	reclaimed := dir.BytesUsed()
	if err := c.metadata.DeleteDirectory(ctx, account.ID, dir.ID, reclaimed); err != nil {
		return err
	}

	if err := c.blobs.DeleteSubcontainer(ctx, account.ID, dir.ID); err != nil {
		// Metadata is already gone; the reconciler reclaims the orphan.
		logger.Warn("orphan directory container left behind",
			"account", account.Login, "directory", dir.ID, "error", err)
	}

	logger.Debug("directory deleted",
		"account", account.Login, "name", dir.Name, "reclaimed_bytes", reclaimed)
	return nil
}

// AddFile stores a payload as a new named file in the directory. The quota
// and collision checks run before any byte is written, the payload is
// written and probed before the record is committed, and the ledger
// increment rides the metadata transaction.
func (c *Coordinator) AddFile(ctx context.Context, account *models.Account, directory *models.DirectoryEntry, state models.FileState, name string, data []byte) (_ *models.FileRecord, err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "add_file", start, err) }()

	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return nil, err
	}

	file := &models.FileRecord{
		ID:          uuid.NewString(),
		DirectoryID: dir.ID,
		Name:        name,
		ByteSize:    int64(len(data)),
		State:       state,
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}

	if _, err := c.metadata.FindFile(ctx, dir.ID, name); err == nil {
		return nil, models.NewAlreadyExists("file %q already exists in directory %q", name, dir.Name)
	} else if !models.IsNotFound(err) {
		return nil, err
	}

	available, err := c.BytesAvailable(ctx, account)
	if err != nil {
		return nil, err
	}
	if file.ByteSize > available {
		return nil, models.NewQuotaExceeded(
			"payload of %d bytes exceeds the %d bytes available", file.ByteSize, available)
	}

	if err := c.blobs.WriteBlob(ctx, account.ID, dir.ID, file.ID, data); err != nil {
		return nil, fmt.Errorf("write payload: %w", err)
	}
	if err := c.blobs.CheckBlob(ctx, account.ID, dir.ID, file.ID); err != nil {
		return nil, fmt.Errorf("payload missing after write: %w", err)
	}

	if _, err := c.metadata.CreateFile(ctx, account.ID, file); err != nil {
		// The record never existed, so the blob is an orphan. Best-effort
		// removal; the reconciler catches whatever this misses.
		if delErr := c.blobs.DeleteBlob(ctx, account.ID, dir.ID, file.ID); delErr != nil {
			logger.Warn("orphan payload left behind",
				"account", account.Login, "file", file.ID, "error", delErr)
		}
		return nil, err
	}

	recordBytes(c.metrics, "write", file.ByteSize)
	logger.Debug("file added",
		"account", account.Login, "directory", dir.Name, "name", name,
		"bytes", file.ByteSize, "state", state)
	return file, nil
}

// RenameFile renames a file within its directory. Metadata only; blobs are
// keyed by id.
func (c *Coordinator) RenameFile(ctx context.Context, account *models.Account, directory *models.DirectoryEntry, file *models.FileRecord, newName string) (err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "rename_file", start, err) }()

	if newName == "" {
		return models.NewValidation("file name must not be empty")
	}

	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return err
	}
	resolved, err := c.checkFileOwnership(ctx, dir, file)
	if err != nil {
		return err
	}

	if _, err := c.metadata.FindFile(ctx, dir.ID, newName); err == nil {
		return models.NewAlreadyExists("file %q already exists in directory %q", newName, dir.Name)
	} else if !models.IsNotFound(err) {
		return err
	}

	return c.metadata.RenameFile(ctx, resolved.ID, newName)
}

// DeleteFile removes a file's record, reclaims its bytes from the ledger,
// and deletes its payload.
func (c *Coordinator) DeleteFile(ctx context.Context, account *models.Account, directory *models.DirectoryEntry, file *models.FileRecord) (err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "delete_file", start, err) }()

	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return err
	}
	resolved, err := c.checkFileOwnership(ctx, dir, file)
	if err != nil {
		return err
	}

	if err := c.metadata.DeleteFile(ctx, account.ID, resolved.ID, resolved.ByteSize); err != nil {
		return err
	}

	if err := c.blobs.DeleteBlob(ctx, account.ID, dir.ID, resolved.ID); err != nil {
		logger.Warn("orphan payload left behind",
			"account", account.Login, "file", resolved.ID, "error", err)
	}

	logger.Debug("file deleted",
		"account", account.Login, "directory", dir.Name, "name", resolved.Name,
		"reclaimed_bytes", resolved.ByteSize)
	return nil
}

// BytesAvailable returns the account's remaining quota in bytes.
func (c *Coordinator) BytesAvailable(ctx context.Context, account *models.Account) (int64, error) {
	ledger, err := c.metadata.GetLedger(ctx, account.ID)
	if err != nil {
		return 0, err
	}
	return account.QuotaBytes() - ledger.BytesOccupied, nil
}

// GetFileData reads a file's raw payload. Decompression, if the file was
// stored compressed, is the caller's responsibility.
func (c *Coordinator) GetFileData(ctx context.Context, account *models.Account, directory *models.DirectoryEntry, file *models.FileRecord) (_ []byte, err error) {
	start := time.Now()
	defer func() { observeOperation(c.metrics, "get_file_data", start, err) }()

	dir, err := c.checkDirectoryOwnership(ctx, account, directory)
	if err != nil {
		return nil, err
	}
	resolved, err := c.checkFileOwnership(ctx, dir, file)
	if err != nil {
		return nil, err
	}

	data, err := c.blobs.ReadBlob(ctx, account.ID, dir.ID, resolved.ID)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			// The record exists but the payload does not: drift between the
			// stores, surfaced instead of silently returning nothing.
			return nil, models.NewNotFound("payload for file %q missing from byte store", resolved.Name)
		}
		return nil, err
	}

	recordBytes(c.metrics, "read", int64(len(data)))
	return data, nil
}
