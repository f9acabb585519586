package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/jababox/jababox/pkg/storage/models"
)

// ============================================
// ACCOUNT OPERATIONS
// ============================================

// CreateAccount inserts the account and its quota ledger in one
// transaction, so an account can never exist without a ledger. A login
// collision surfaces as an already-exists domain error.
func (s *GORMStore) CreateAccount(ctx context.Context, account *models.Account) (string, error) {
	var id string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		createdID, err := createWithID(tx, ctx, account,
			func(a *models.Account, id string) { a.ID = id },
			account.ID,
			models.NewAlreadyExists("account with login %q already exists", account.Login))
		if err != nil {
			return err
		}

		ledger := &models.QuotaLedger{AccountID: createdID, BytesOccupied: 0}
		if err := tx.WithContext(ctx).Create(ledger).Error; err != nil {
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

func (s *GORMStore) GetAccount(ctx context.Context, login string) (*models.Account, error) {
	return getByField[models.Account](s.db, ctx, "login", login,
		models.NewNotFound("account with login %q not found", login))
}

func (s *GORMStore) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return getByField[models.Account](s.db, ctx, "id", id,
		models.NewNotFound("account with id %q not found", id))
}

func (s *GORMStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return listAll[models.Account](s.db, ctx)
}

func (s *GORMStore) UpdatePassword(ctx context.Context, login, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("login = ?", login).
		Update("password_hash", passwordHash)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFound("account with login %q not found", login)
	}
	return nil
}

func (s *GORMStore) UpdateQuota(ctx context.Context, login string, quotaGigabytes int64) error {
	result := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("login = ?", login).
		Update("quota_gigabytes", quotaGigabytes)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFound("account with login %q not found", login)
	}
	return nil
}

// ============================================
// QUOTA LEDGER OPERATIONS
// ============================================

// GetLedger loads an account's ledger with its directories eager-loaded.
func (s *GORMStore) GetLedger(ctx context.Context, accountID string) (*models.QuotaLedger, error) {
	return getByField[models.QuotaLedger](s.db, ctx, "account_id", accountID,
		models.NewNotFound("quota ledger for account %q not found", accountID),
		"Directories")
}

// SetLedgerBytes overwrites the ledger's byte counter. Used by the
// reconciliation pass; normal operations adjust the counter inside their
// own transactions.
func (s *GORMStore) SetLedgerBytes(ctx context.Context, accountID string, bytesOccupied int64) error {
	result := s.db.WithContext(ctx).
		Model(&models.QuotaLedger{}).
		Where("account_id = ?", accountID).
		Update("bytes_occupied", bytesOccupied)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFound("quota ledger for account %q not found", accountID)
	}
	return nil
}
