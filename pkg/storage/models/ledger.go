package models

// QuotaLedger tracks the bytes occupied by an account and owns its set of
// directory entries. It is keyed 1:1 by account id, created in the same
// transaction as the account, and updated by every file mutation.
//
// Invariant: BytesOccupied equals the sum of sizes of all files transitively
// owned by the account, and never exceeds Account.QuotaBytes after a
// completed operation.
type QuotaLedger struct {
	AccountID     string `gorm:"primaryKey;size:36" json:"account_id"`
	BytesOccupied int64  `gorm:"not null;default:0" json:"bytes_occupied"`

	// Directories owned by this account, eager-loaded on ledger reads.
	Directories []DirectoryEntry `gorm:"foreignKey:AccountID;references:AccountID" json:"directories,omitempty"`
}

// TableName returns the table name for QuotaLedger.
func (QuotaLedger) TableName() string {
	return "quota_ledgers"
}
