package models

import "time"

// DirectoryEntry is a named directory owned by an account. Names are unique
// per account; the id is assigned on creation and keys the physical
// container in the byte store, so renames never touch stored bytes.
type DirectoryEntry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	AccountID string    `gorm:"not null;size:36;uniqueIndex:idx_directories_account_name" json:"account_id"`
	Name      string    `gorm:"not null;size:255;uniqueIndex:idx_directories_account_name" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Files contained in this directory, eager-loaded on directory reads.
	Files []FileRecord `gorm:"foreignKey:DirectoryID" json:"files,omitempty"`
}

// TableName returns the table name for DirectoryEntry.
func (DirectoryEntry) TableName() string {
	return "directories"
}

// BytesUsed returns the sum of sizes of the loaded file records.
func (d *DirectoryEntry) BytesUsed() int64 {
	var total int64
	for _, f := range d.Files {
		total += f.ByteSize
	}
	return total
}

// Validate checks the directory's creation invariants.
func (d *DirectoryEntry) Validate() error {
	if d.Name == "" {
		return NewValidation("directory name must not be empty")
	}
	if d.AccountID == "" {
		return NewValidation("directory must reference an owning account")
	}
	return nil
}
