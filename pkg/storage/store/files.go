package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/jababox/jababox/pkg/storage/models"
)

// ============================================
// FILE OPERATIONS
// ============================================

// FindFile looks up a file by name within a directory's scope. Absence is
// a not-found domain error.
func (s *GORMStore) FindFile(ctx context.Context, directoryID, name string) (*models.FileRecord, error) {
	return getScoped[models.FileRecord](s.db, ctx,
		"directory_id", directoryID, "name", name,
		models.NewNotFound("file with name %q not found", name))
}

func (s *GORMStore) ListFiles(ctx context.Context, directoryID string) ([]*models.FileRecord, error) {
	return listWhere[models.FileRecord](s.db, ctx, "directory_id", directoryID)
}

// CreateFile inserts the file record and charges its size against the
// account's ledger in one transaction.
func (s *GORMStore) CreateFile(ctx context.Context, accountID string, file *models.FileRecord) (string, error) {
	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		createdID, err := createWithID(tx, ctx, file,
			func(f *models.FileRecord, id string) { f.ID = id },
			file.ID,
			models.NewAlreadyExists("file with name %q already exists", file.Name))
		if err != nil {
			return err
		}

		if err := tx.Model(&models.QuotaLedger{}).
			Where("account_id = ?", accountID).
			Update("bytes_occupied", gorm.Expr("bytes_occupied + ?", file.ByteSize)).Error; err != nil {
			return err
		}

		id = createdID
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RenameFile updates the file's name only; the blob is keyed by id.
func (s *GORMStore) RenameFile(ctx context.Context, id, newName string) error {
	result := s.db.WithContext(ctx).
		Model(&models.FileRecord{}).
		Where("id = ?", id).
		Update("name", newName)

	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return models.NewAlreadyExists("file with name %q already exists", newName)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFound("file with id %q not found", id)
	}
	return nil
}

// DeleteFile removes the file record and reclaims its bytes from the
// account's ledger in one transaction.
func (s *GORMStore) DeleteFile(ctx context.Context, accountID, fileID string, size int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", fileID).Delete(&models.FileRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFound("file with id %q not found", fileID)
		}

		return tx.Model(&models.QuotaLedger{}).
			Where("account_id = ?", accountID).
			Update("bytes_occupied", gorm.Expr("bytes_occupied - ?", size)).Error
	})
}
