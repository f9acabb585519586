// Package models defines the persistent records of the storage backend:
// accounts, quota ledgers, directory entries, and file records, plus the
// tagged domain error type they all report failures with.
//
// Directories and files are flat tables keyed by UUID with account and
// directory foreign keys. Scoped lookups (directory by name within an
// account, file by name within a directory) go through those keys rather
// than live object-graph navigation.
package models

import (
	"time"

	"github.com/jababox/jababox/internal/bytesize"
	"golang.org/x/crypto/bcrypt"
)

// Account represents a storage tenant. The id and login are immutable after
// registration; the password and quota plan are mutable through the
// registry.
type Account struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Login          string    `gorm:"uniqueIndex;not null;size:255" json:"login"`
	PasswordHash   string    `gorm:"not null" json:"-"`
	QuotaGigabytes int64     `gorm:"not null" json:"quota_gigabytes"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for Account.
func (Account) TableName() string {
	return "accounts"
}

// QuotaBytes returns the account's byte ceiling: quota gibibytes × 2^30.
func (a *Account) QuotaBytes() int64 {
	return a.QuotaGigabytes * bytesize.GiB.Int64()
}

// Validate checks the account's registration invariants.
func (a *Account) Validate() error {
	if a.Login == "" {
		return NewValidation("login must not be empty")
	}
	if a.PasswordHash == "" {
		return NewValidation("password must not be empty")
	}
	if a.QuotaGigabytes <= 0 {
		return NewValidation("quota must be a positive number of gigabytes")
	}
	return nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
