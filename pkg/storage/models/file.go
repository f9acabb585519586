package models

import "time"

// FileState records which compression treatment was applied to a file's
// payload before it was stored. The coordinator only records the state;
// compressing and decompressing is the HTTP boundary's job.
type FileState string

const (
	// FileStateNormal marks a payload stored as uploaded.
	FileStateNormal FileState = "normal"
	// FileStateCompressed marks a payload deflate-compressed before storage.
	FileStateCompressed FileState = "compressed"
)

// IsValid checks if the state is a known FileState.
func (s FileState) IsValid() bool {
	return s == FileStateNormal || s == FileStateCompressed
}

// FileRecord is a stored file's metadata. Names are unique per directory;
// the byte size is fixed at creation and survives renames. The id keys the
// blob in the byte store.
type FileRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	DirectoryID string    `gorm:"not null;size:36;uniqueIndex:idx_files_directory_name" json:"directory_id"`
	Name        string    `gorm:"not null;size:255;uniqueIndex:idx_files_directory_name" json:"name"`
	ByteSize    int64     `gorm:"not null" json:"byte_size"`
	State       FileState `gorm:"not null;size:50;default:normal" json:"state"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for FileRecord.
func (FileRecord) TableName() string {
	return "files"
}

// Validate checks the file's creation invariants.
func (f *FileRecord) Validate() error {
	if f.Name == "" {
		return NewValidation("file name must not be empty")
	}
	if f.ByteSize <= 0 {
		return NewValidation("file size must be greater than zero bytes")
	}
	if !f.State.IsValid() {
		return NewValidation("unknown file state %q", f.State)
	}
	if f.DirectoryID == "" {
		return NewValidation("file must reference an owning directory")
	}
	return nil
}
