// Package storage implements the storage backend core: the account
// registry and the storage coordinator that keeps the metadata catalog,
// the quota ledger, and the byte store consistent with each other.
package storage

import (
	"context"
	"fmt"

	"github.com/jababox/jababox/internal/bytesize"
	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/blob"
	"github.com/jababox/jababox/pkg/storage/models"
	"github.com/jababox/jababox/pkg/storage/store"
)

// Registry owns account identity, credentials, and quota plans. It is the
// leaf dependency of the coordinator: every other operation starts from an
// account the registry resolved.
type Registry struct {
	metadata store.Store
	blobs    blob.Store
}

// NewRegistry creates an account registry over the given stores.
func NewRegistry(metadata store.Store, blobs blob.Store) *Registry {
	return &Registry{
		metadata: metadata,
		blobs:    blobs,
	}
}

// Register creates a new account with its quota ledger and allocates the
// account's container in the byte store. The login must be unique; the
// quota is a positive number of gibibytes.
func (r *Registry) Register(ctx context.Context, login, password string, quotaGigabytes int64) (*models.Account, error) {
	if login == "" {
		return nil, models.NewValidation("login must not be empty")
	}
	if password == "" {
		return nil, models.NewValidation("password must not be empty")
	}
	if quotaGigabytes <= 0 {
		return nil, models.NewValidation("quota must be a positive number of gigabytes")
	}

	hash, err := models.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &models.Account{
		Login:          login,
		PasswordHash:   hash,
		QuotaGigabytes: quotaGigabytes,
	}

	id, err := r.metadata.CreateAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	account.ID = id

	if err := r.blobs.CreateContainer(ctx, id); err != nil {
		return nil, fmt.Errorf("allocate byte store container: %w", err)
	}
	if err := r.blobs.CheckContainer(ctx, id); err != nil {
		return nil, fmt.Errorf("byte store container missing after create: %w", err)
	}

	logger.Info("account registered", "login", login, "id", id, "quota_gb", quotaGigabytes)

	return account, nil
}

// GetAccount resolves an account by login.
func (r *Registry) GetAccount(ctx context.Context, login string) (*models.Account, error) {
	return r.metadata.GetAccount(ctx, login)
}

// GetAccountByID resolves an account by id.
func (r *Registry) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return r.metadata.GetAccountByID(ctx, id)
}

// ListAccounts returns every registered account.
func (r *Registry) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return r.metadata.ListAccounts(ctx)
}

// Authenticate resolves an account by login and verifies the password.
// A wrong password reports not-found rather than disclosing that the
// login exists.
func (r *Registry) Authenticate(ctx context.Context, login, password string) (*models.Account, error) {
	account, err := r.metadata.GetAccount(ctx, login)
	if err != nil {
		return nil, err
	}
	if !models.VerifyPassword(password, account.PasswordHash) {
		return nil, models.NewNotFound("account %q not found", login)
	}
	return account, nil
}

// ChangePassword replaces the account's password. The old password must
// match the stored one and the new password must differ from it.
func (r *Registry) ChangePassword(ctx context.Context, login, oldPassword, newPassword string) error {
	if newPassword == "" {
		return models.NewValidation("new password must not be empty")
	}

	account, err := r.metadata.GetAccount(ctx, login)
	if err != nil {
		return err
	}
	if !models.VerifyPassword(oldPassword, account.PasswordHash) {
		return models.NewValidation("old password does not match")
	}
	if oldPassword == newPassword {
		return models.NewValidation("new password must differ from the old one")
	}

	hash, err := models.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := r.metadata.UpdatePassword(ctx, login, hash); err != nil {
		return err
	}

	logger.Info("account password changed", "login", login)
	return nil
}

// ChangeGigabytesPlan updates the account's quota plan. The new plan must
// be positive and must still fit the bytes the account already occupies.
func (r *Registry) ChangeGigabytesPlan(ctx context.Context, login string, quotaGigabytes int64) (*models.Account, error) {
	if quotaGigabytes <= 0 {
		return nil, models.NewValidation("quota must be a positive number of gigabytes")
	}

	account, err := r.metadata.GetAccount(ctx, login)
	if err != nil {
		return nil, err
	}

	ledger, err := r.metadata.GetLedger(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	newQuotaBytes := quotaGigabytes * bytesize.GiB.Int64()
	if newQuotaBytes < ledger.BytesOccupied {
		return nil, models.NewQuotaExceeded(
			"cannot shrink quota to %d GB: account occupies %d bytes", quotaGigabytes, ledger.BytesOccupied)
	}

	if err := r.metadata.UpdateQuota(ctx, login, quotaGigabytes); err != nil {
		return nil, err
	}
	account.QuotaGigabytes = quotaGigabytes

	logger.Info("account plan changed", "login", login, "quota_gb", quotaGigabytes)
	return account, nil
}
