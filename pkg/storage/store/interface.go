package store

import (
	"context"

	"github.com/jababox/jababox/pkg/storage/models"
)

// Store is the metadata store contract consumed by the registry and the
// storage coordinator.
//
// Mutations that touch more than one row (account+ledger creation, file
// creation/deletion with quota accounting, directory deletion) are atomic:
// implementations run them in a single database transaction. Only the
// pairing of metadata with the byte store is non-transactional; that gap is
// the coordinator's problem, not this interface's.
type Store interface {
	// Accounts
	CreateAccount(ctx context.Context, account *models.Account) (string, error)
	GetAccount(ctx context.Context, login string) (*models.Account, error)
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	UpdatePassword(ctx context.Context, login, passwordHash string) error
	UpdateQuota(ctx context.Context, login string, quotaGigabytes int64) error

	// Quota ledgers
	GetLedger(ctx context.Context, accountID string) (*models.QuotaLedger, error)
	SetLedgerBytes(ctx context.Context, accountID string, bytesOccupied int64) error

	// Directories
	FindDirectory(ctx context.Context, accountID, name string) (*models.DirectoryEntry, error)
	GetDirectory(ctx context.Context, id string) (*models.DirectoryEntry, error)
	ListDirectories(ctx context.Context, accountID string) ([]*models.DirectoryEntry, error)
	CreateDirectory(ctx context.Context, dir *models.DirectoryEntry) (string, error)
	RenameDirectory(ctx context.Context, id, newName string) error
	DeleteDirectory(ctx context.Context, accountID, directoryID string, reclaimedBytes int64) error

	// Files
	FindFile(ctx context.Context, directoryID, name string) (*models.FileRecord, error)
	ListFiles(ctx context.Context, directoryID string) ([]*models.FileRecord, error)
	CreateFile(ctx context.Context, accountID string, file *models.FileRecord) (string, error)
	RenameFile(ctx context.Context, id, newName string) error
	DeleteFile(ctx context.Context, accountID, fileID string, size int64) error

	// HealthCheck verifies the store is reachable.
	HealthCheck() error

	// Close releases the underlying connection.
	Close() error
}

// Ensure GORMStore implements Store.
var _ Store = (*GORMStore)(nil)
