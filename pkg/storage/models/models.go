package models

// AllModels returns every model for schema auto-migration, ordered so that
// referenced tables are created before their dependents.
func AllModels() []any {
	return []any{
		&Account{},
		&QuotaLedger{},
		&DirectoryEntry{},
		&FileRecord{},
	}
}
