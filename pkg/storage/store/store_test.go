package store

import (
	"context"
	"testing"

	"github.com/jababox/jababox/pkg/storage/models"
)

func newTestStore(t *testing.T) *GORMStore {
	t.Helper()

	s, err := New(&Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: ":memory:"},
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestAccount(t *testing.T, s *GORMStore, login string) *models.Account {
	t.Helper()

	account := &models.Account{
		Login:          login,
		PasswordHash:   "hash",
		QuotaGigabytes: 1,
	}
	id, err := s.CreateAccount(context.Background(), account)
	if err != nil {
		t.Fatalf("failed to create account %q: %v", login, err)
	}
	account.ID = id
	return account
}

func createTestDirectory(t *testing.T, s *GORMStore, accountID, name string) *models.DirectoryEntry {
	t.Helper()

	dir := &models.DirectoryEntry{AccountID: accountID, Name: name}
	id, err := s.CreateDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("failed to create directory %q: %v", name, err)
	}
	dir.ID = id
	return dir
}

func createTestFile(t *testing.T, s *GORMStore, accountID, directoryID, name string, size int64) *models.FileRecord {
	t.Helper()

	file := &models.FileRecord{
		DirectoryID: directoryID,
		Name:        name,
		ByteSize:    size,
		State:       models.FileStateNormal,
	}
	id, err := s.CreateFile(context.Background(), accountID, file)
	if err != nil {
		t.Fatalf("failed to create file %q: %v", name, err)
	}
	file.ID = id
	return file
}

func TestCreateAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("creates ledger atomically", func(t *testing.T) {
		account := createTestAccount(t, s, "admin")

		ledger, err := s.GetLedger(ctx, account.ID)
		if err != nil {
			t.Fatalf("ledger not created with account: %v", err)
		}
		if ledger.BytesOccupied != 0 {
			t.Errorf("new ledger occupied = %d, want 0", ledger.BytesOccupied)
		}
	})

	t.Run("duplicate login", func(t *testing.T) {
		account := &models.Account{Login: "admin", PasswordHash: "h", QuotaGigabytes: 1}
		_, err := s.CreateAccount(ctx, account)
		if !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
	})
}

func TestAccountLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	created := createTestAccount(t, s, "admin")

	t.Run("by login", func(t *testing.T) {
		account, err := s.GetAccount(ctx, "admin")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if account.ID != created.ID {
			t.Errorf("id mismatch")
		}
	})

	t.Run("by id", func(t *testing.T) {
		account, err := s.GetAccountByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if account.Login != "admin" {
			t.Errorf("login mismatch")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := s.GetAccount(ctx, "nobody"); !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		createTestAccount(t, s, "second")
		accounts, err := s.ListAccounts(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(accounts) != 2 {
			t.Errorf("got %d accounts, want 2", len(accounts))
		}
	})
}

func TestAccountUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestAccount(t, s, "admin")

	t.Run("password", func(t *testing.T) {
		if err := s.UpdatePassword(ctx, "admin", "newhash"); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		account, err := s.GetAccount(ctx, "admin")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if account.PasswordHash != "newhash" {
			t.Errorf("hash not updated")
		}
	})

	t.Run("quota", func(t *testing.T) {
		if err := s.UpdateQuota(ctx, "admin", 7); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		account, err := s.GetAccount(ctx, "admin")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if account.QuotaGigabytes != 7 {
			t.Errorf("quota = %d, want 7", account.QuotaGigabytes)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		if err := s.UpdatePassword(ctx, "nobody", "h"); !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
		if err := s.UpdateQuota(ctx, "nobody", 2); !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})
}

func TestDirectoryOperations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := createTestAccount(t, s, "admin")
	other := createTestAccount(t, s, "other")

	t.Run("scoped uniqueness", func(t *testing.T) {
		createTestDirectory(t, s, admin.ID, "docs")

		dup := &models.DirectoryEntry{AccountID: admin.ID, Name: "docs"}
		if _, err := s.CreateDirectory(ctx, dup); !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}

		// Same name under a different account is allowed.
		createTestDirectory(t, s, other.ID, "docs")
	})

	t.Run("find is scoped to the account", func(t *testing.T) {
		adminDocs, err := s.FindDirectory(ctx, admin.ID, "docs")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		otherDocs, err := s.FindDirectory(ctx, other.ID, "docs")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if adminDocs.ID == otherDocs.ID {
			t.Error("scoped lookups returned the same directory")
		}
	})

	t.Run("find preloads files", func(t *testing.T) {
		dir, err := s.FindDirectory(ctx, admin.ID, "docs")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		createTestFile(t, s, admin.ID, dir.ID, "a.txt", 10)
		createTestFile(t, s, admin.ID, dir.ID, "b.txt", 20)

		dir, err = s.FindDirectory(ctx, admin.ID, "docs")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if len(dir.Files) != 2 {
			t.Errorf("preloaded %d files, want 2", len(dir.Files))
		}
		if dir.BytesUsed() != 30 {
			t.Errorf("bytes used = %d, want 30", dir.BytesUsed())
		}
	})

	t.Run("rename collision", func(t *testing.T) {
		pics := createTestDirectory(t, s, admin.ID, "pics")
		if err := s.RenameDirectory(ctx, pics.ID, "docs"); !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
		if err := s.RenameDirectory(ctx, pics.ID, "photos"); err != nil {
			t.Errorf("rename failed: %v", err)
		}
	})

	t.Run("rename missing", func(t *testing.T) {
		if err := s.RenameDirectory(ctx, "no-such-id", "x"); !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})
}

func TestDeleteDirectory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := createTestAccount(t, s, "admin")
	dir := createTestDirectory(t, s, admin.ID, "docs")
	createTestFile(t, s, admin.ID, dir.ID, "a.txt", 100)
	createTestFile(t, s, admin.ID, dir.ID, "b.txt", 200)

	ledger, err := s.GetLedger(ctx, admin.ID)
	if err != nil {
		t.Fatalf("get ledger failed: %v", err)
	}
	if ledger.BytesOccupied != 300 {
		t.Fatalf("ledger = %d, want 300", ledger.BytesOccupied)
	}

	t.Run("wrong account guard", func(t *testing.T) {
		other := createTestAccount(t, s, "other")
		if err := s.DeleteDirectory(ctx, other.ID, dir.ID, 300); !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("removes records and reclaims bytes", func(t *testing.T) {
		if err := s.DeleteDirectory(ctx, admin.ID, dir.ID, 300); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		if _, err := s.FindDirectory(ctx, admin.ID, "docs"); !models.IsNotFound(err) {
			t.Errorf("directory still present: %v", err)
		}
		files, err := s.ListFiles(ctx, dir.ID)
		if err != nil {
			t.Fatalf("list files failed: %v", err)
		}
		if len(files) != 0 {
			t.Errorf("%d file records survived the delete", len(files))
		}

		ledger, err := s.GetLedger(ctx, admin.ID)
		if err != nil {
			t.Fatalf("get ledger failed: %v", err)
		}
		if ledger.BytesOccupied != 0 {
			t.Errorf("ledger = %d, want 0", ledger.BytesOccupied)
		}
	})
}

func TestFileOperations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	admin := createTestAccount(t, s, "admin")
	dir := createTestDirectory(t, s, admin.ID, "docs")

	t.Run("create charges ledger", func(t *testing.T) {
		createTestFile(t, s, admin.ID, dir.ID, "f.txt", 42)

		ledger, err := s.GetLedger(ctx, admin.ID)
		if err != nil {
			t.Fatalf("get ledger failed: %v", err)
		}
		if ledger.BytesOccupied != 42 {
			t.Errorf("ledger = %d, want 42", ledger.BytesOccupied)
		}
	})

	t.Run("scoped uniqueness", func(t *testing.T) {
		dup := &models.FileRecord{
			DirectoryID: dir.ID, Name: "f.txt", ByteSize: 1, State: models.FileStateNormal,
		}
		if _, err := s.CreateFile(ctx, admin.ID, dup); !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}

		// Failed create must not charge the ledger.
		ledger, err := s.GetLedger(ctx, admin.ID)
		if err != nil {
			t.Fatalf("get ledger failed: %v", err)
		}
		if ledger.BytesOccupied != 42 {
			t.Errorf("ledger = %d after failed create, want 42", ledger.BytesOccupied)
		}
	})

	t.Run("find", func(t *testing.T) {
		file, err := s.FindFile(ctx, dir.ID, "f.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if file.ByteSize != 42 {
			t.Errorf("size = %d, want 42", file.ByteSize)
		}
		if _, err := s.FindFile(ctx, dir.ID, "missing"); !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("rename", func(t *testing.T) {
		file, err := s.FindFile(ctx, dir.ID, "f.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if err := s.RenameFile(ctx, file.ID, "g.txt"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}
		renamed, err := s.FindFile(ctx, dir.ID, "g.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if renamed.ID != file.ID || renamed.ByteSize != 42 {
			t.Errorf("rename changed identity or size: %+v", renamed)
		}
	})

	t.Run("rename collision", func(t *testing.T) {
		other := createTestFile(t, s, admin.ID, dir.ID, "h.txt", 5)
		if err := s.RenameFile(ctx, other.ID, "g.txt"); !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
	})

	t.Run("delete reclaims bytes", func(t *testing.T) {
		file, err := s.FindFile(ctx, dir.ID, "g.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if err := s.DeleteFile(ctx, admin.ID, file.ID, file.ByteSize); err != nil {
			t.Fatalf("delete failed: %v", err)
		}

		ledger, err := s.GetLedger(ctx, admin.ID)
		if err != nil {
			t.Fatalf("get ledger failed: %v", err)
		}
		if ledger.BytesOccupied != 5 {
			t.Errorf("ledger = %d, want 5", ledger.BytesOccupied)
		}

		if err := s.DeleteFile(ctx, admin.ID, file.ID, file.ByteSize); !models.IsNotFound(err) {
			t.Errorf("expected NotFound on second delete, got %v", err)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	s := newTestStore(t)
	if err := s.HealthCheck(); err != nil {
		t.Errorf("health check failed: %v", err)
	}
}
