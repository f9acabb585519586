package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/jababox/jababox/pkg/storage/models"
)

// ============================================
// DIRECTORY OPERATIONS
// ============================================

// FindDirectory looks up a directory by name within an account's scope,
// with its files eager-loaded. Absence is a not-found domain error; the
// coordinator decides whether that is a failure or an empty query result.
func (s *GORMStore) FindDirectory(ctx context.Context, accountID, name string) (*models.DirectoryEntry, error) {
	return getScoped[models.DirectoryEntry](s.db, ctx,
		"account_id", accountID, "name", name,
		models.NewNotFound("directory with name %q not found", name),
		"Files")
}

// GetDirectory loads a directory by id with its files eager-loaded.
func (s *GORMStore) GetDirectory(ctx context.Context, id string) (*models.DirectoryEntry, error) {
	return getByField[models.DirectoryEntry](s.db, ctx, "id", id,
		models.NewNotFound("directory with id %q not found", id),
		"Files")
}

func (s *GORMStore) ListDirectories(ctx context.Context, accountID string) ([]*models.DirectoryEntry, error) {
	return listWhere[models.DirectoryEntry](s.db, ctx, "account_id", accountID, "Files")
}

func (s *GORMStore) CreateDirectory(ctx context.Context, dir *models.DirectoryEntry) (string, error) {
	return createWithID(s.db, ctx, dir,
		func(d *models.DirectoryEntry, id string) { d.ID = id },
		dir.ID,
		models.NewAlreadyExists("directory with name %q already exists", dir.Name))
}

// RenameDirectory updates the directory's name only; containers in the
// byte store are keyed by id, so no physical move happens.
func (s *GORMStore) RenameDirectory(ctx context.Context, id, newName string) error {
	result := s.db.WithContext(ctx).
		Model(&models.DirectoryEntry{}).
		Where("id = ?", id).
		Update("name", newName)

	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return models.NewAlreadyExists("directory with name %q already exists", newName)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFound("directory with id %q not found", id)
	}
	return nil
}

// DeleteDirectory removes the directory record, every file record it
// contains, and reclaims their bytes from the account's ledger, all in one
// transaction.
func (s *GORMStore) DeleteDirectory(ctx context.Context, accountID, directoryID string, reclaimedBytes int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("directory_id = ?", directoryID).Delete(&models.FileRecord{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ? AND account_id = ?", directoryID, accountID).Delete(&models.DirectoryEntry{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFound("directory with id %q not found", directoryID)
		}

		if reclaimedBytes != 0 {
			if err := tx.Model(&models.QuotaLedger{}).
				Where("account_id = ?", accountID).
				Update("bytes_occupied", gorm.Expr("bytes_occupied - ?", reclaimedBytes)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
