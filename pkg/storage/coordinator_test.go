package storage

import (
	"bytes"
	"context"
	"testing"

	"github.com/jababox/jababox/internal/bytesize"
	"github.com/jababox/jababox/pkg/blob/memory"
	"github.com/jababox/jababox/pkg/storage/models"
)

// testEnv bundles the coordinator with its stores and a registered account.
type testEnv struct {
	registry    *Registry
	coordinator *Coordinator
	blobs       *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	metadata, blobs := newTestStores(t)
	return &testEnv{
		registry:    NewRegistry(metadata, blobs),
		coordinator: NewCoordinator(metadata, blobs),
		blobs:       blobs,
	}
}

func (e *testEnv) register(t *testing.T, login string, quotaGB int64) *models.Account {
	t.Helper()
	account, err := e.registry.Register(context.Background(), login, "12345", quotaGB)
	if err != nil {
		t.Fatalf("register %q failed: %v", login, err)
	}
	return account
}

func (e *testEnv) mkdir(t *testing.T, account *models.Account, name string) *models.DirectoryEntry {
	t.Helper()
	dir, err := e.coordinator.CreateDirectory(context.Background(), account, name)
	if err != nil {
		t.Fatalf("create directory %q failed: %v", name, err)
	}
	return dir
}

func (e *testEnv) addFile(t *testing.T, account *models.Account, dir *models.DirectoryEntry, name string, data []byte) *models.FileRecord {
	t.Helper()
	file, err := e.coordinator.AddFile(context.Background(), account, dir, models.FileStateNormal, name, data)
	if err != nil {
		t.Fatalf("add file %q failed: %v", name, err)
	}
	return file
}

func (e *testEnv) available(t *testing.T, account *models.Account) int64 {
	t.Helper()
	n, err := e.coordinator.BytesAvailable(context.Background(), account)
	if err != nil {
		t.Fatalf("bytes available failed: %v", err)
	}
	return n
}

func TestBytesAvailableAfterRegistration(t *testing.T) {
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)

	if got := env.available(t, admin); got != bytesize.GiB.Int64() {
		t.Errorf("bytes available = %d, want %d", got, bytesize.GiB.Int64())
	}
}

func TestCreateDirectory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)

	t.Run("creates metadata and container", func(t *testing.T) {
		dir := env.mkdir(t, admin, "docs")
		if dir.ID == "" {
			t.Error("expected directory id to be assigned")
		}
		if err := env.blobs.CheckSubcontainer(ctx, admin.ID, dir.ID); err != nil {
			t.Errorf("directory container not created: %v", err)
		}
	})

	t.Run("duplicate name fails and leaves one directory", func(t *testing.T) {
		_, err := env.coordinator.CreateDirectory(ctx, admin, "docs")
		if !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}

		dirs, err := env.coordinator.ListDirectories(ctx, admin)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		count := 0
		for _, d := range dirs {
			if d.Name == "docs" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("found %d directories named docs, want 1", count)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		if _, err := env.coordinator.CreateDirectory(ctx, admin, ""); !models.IsValidation(err) {
			t.Errorf("expected Validation, got %v", err)
		}
	})

	t.Run("same name under another account is fine", func(t *testing.T) {
		other := env.register(t, "other", 1)
		if _, err := env.coordinator.CreateDirectory(ctx, other, "docs"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFindDirectory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	created := env.mkdir(t, admin, "docs")

	t.Run("found", func(t *testing.T) {
		dir, err := env.coordinator.FindDirectory(ctx, admin, "docs")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if dir == nil || dir.ID != created.ID {
			t.Errorf("got %+v, want id %q", dir, created.ID)
		}
	})

	t.Run("absent is not an error", func(t *testing.T) {
		dir, err := env.coordinator.FindDirectory(ctx, admin, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir != nil {
			t.Errorf("expected nil, got %+v", dir)
		}
	})
}

func TestAddFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")

	t.Run("accounting and lookup", func(t *testing.T) {
		file := env.addFile(t, admin, docs, "t1.txt", []byte("abcdef"))
		if file.ByteSize != 6 {
			t.Errorf("size = %d, want 6", file.ByteSize)
		}

		if got, want := env.available(t, admin), bytesize.GiB.Int64()-6; got != want {
			t.Errorf("bytes available = %d, want %d", got, want)
		}

		found, err := env.coordinator.FindFile(ctx, admin, docs, "t1.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if found == nil || found.ByteSize != 6 {
			t.Errorf("got %+v, want size 6", found)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.coordinator.AddFile(ctx, admin, docs, models.FileStateNormal, "t1.txt", []byte("xx"))
		if !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
		if got, want := env.available(t, admin), bytesize.GiB.Int64()-6; got != want {
			t.Errorf("bytes available changed on failed add: %d, want %d", got, want)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := env.coordinator.AddFile(ctx, admin, docs, models.FileStateNormal, "", []byte("xx"))
		if !models.IsValidation(err) {
			t.Errorf("expected Validation, got %v", err)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := env.coordinator.AddFile(ctx, admin, docs, models.FileStateNormal, "empty.txt", nil)
		if !models.IsValidation(err) {
			t.Errorf("expected Validation, got %v", err)
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		_, err := env.coordinator.AddFile(ctx, admin, docs, models.FileState("zip"), "z.txt", []byte("xx"))
		if !models.IsValidation(err) {
			t.Errorf("expected Validation, got %v", err)
		}
	})
}

func TestAddFileQuota(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")

	// Shrink the available window to something test-sized by filling most
	// of the quota through the ledger directly.
	env.addFile(t, admin, docs, "filler.bin", make([]byte, 1024))
	metadata := env.coordinator.metadata
	if err := metadata.SetLedgerBytes(ctx, admin.ID, bytesize.GiB.Int64()-10); err != nil {
		t.Fatalf("set ledger failed: %v", err)
	}

	before := env.available(t, admin)
	if before != 10 {
		t.Fatalf("bytes available = %d, want 10", before)
	}

	t.Run("oversized payload is rejected cleanly", func(t *testing.T) {
		blobsBefore := env.blobs.BlobCount()

		_, err := env.coordinator.AddFile(ctx, admin, docs, models.FileStateNormal, "big.bin", make([]byte, 11))
		if !models.IsQuotaExceeded(err) {
			t.Fatalf("expected QuotaExceeded, got %v", err)
		}

		if got := env.available(t, admin); got != before {
			t.Errorf("bytes available changed: %d, want %d", got, before)
		}
		found, err := env.coordinator.FindFile(ctx, admin, docs, "big.bin")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if found != nil {
			t.Errorf("metadata record created for rejected file: %+v", found)
		}
		if got := env.blobs.BlobCount(); got != blobsBefore {
			t.Errorf("byte payload written for rejected file: %d blobs, want %d", got, blobsBefore)
		}
	})

	t.Run("exact fit succeeds", func(t *testing.T) {
		if _, err := env.coordinator.AddFile(ctx, admin, docs, models.FileStateNormal, "fit.bin", make([]byte, 10)); err != nil {
			t.Fatalf("exact-fit add failed: %v", err)
		}
		if got := env.available(t, admin); got != 0 {
			t.Errorf("bytes available = %d, want 0", got)
		}
	})
}

func TestGetFileDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")

	payload := []byte("exact payload bytes")
	file := env.addFile(t, admin, docs, "x", payload)

	got, err := env.coordinator.GetFileData(ctx, admin, docs, file)
	if err != nil {
		t.Fatalf("get file data failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload mismatch: got %q, want %q", got, payload)
	}
}

func TestGetFileDataMissingPayload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")
	file := env.addFile(t, admin, docs, "x", []byte("bytes"))

	// Simulate drift: the payload vanishes from under the record.
	if err := env.blobs.DeleteBlob(ctx, admin.ID, docs.ID, file.ID); err != nil {
		t.Fatalf("delete blob failed: %v", err)
	}

	_, err := env.coordinator.GetFileData(ctx, admin, docs, file)
	if !models.IsNotFound(err) {
		t.Errorf("expected NotFound for missing payload, got %v", err)
	}
}

func TestRenameFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")
	t1 := env.addFile(t, admin, docs, "t1.txt", []byte("abcdef"))

	t.Run("rename moves the name, keeps id and size", func(t *testing.T) {
		if err := env.coordinator.RenameFile(ctx, admin, docs, t1, "t2.txt"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}

		old, err := env.coordinator.FindFile(ctx, admin, docs, "t1.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if old != nil {
			t.Errorf("old name still resolves: %+v", old)
		}

		renamed, err := env.coordinator.FindFile(ctx, admin, docs, "t2.txt")
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if renamed == nil {
			t.Fatal("new name does not resolve")
		}
		if renamed.ID != t1.ID {
			t.Errorf("id changed on rename: %q != %q", renamed.ID, t1.ID)
		}
		if renamed.ByteSize != 6 {
			t.Errorf("size changed on rename: %d, want 6", renamed.ByteSize)
		}
	})

	t.Run("collision", func(t *testing.T) {
		other := env.addFile(t, admin, docs, "other.txt", []byte("zz"))
		err := env.coordinator.RenameFile(ctx, admin, docs, other, "t2.txt")
		if !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
	})

	t.Run("payload still readable after rename", func(t *testing.T) {
		renamed, err := env.coordinator.FindFile(ctx, admin, docs, "t2.txt")
		if err != nil || renamed == nil {
			t.Fatalf("find failed: %v", err)
		}
		data, err := env.coordinator.GetFileData(ctx, admin, docs, renamed)
		if err != nil {
			t.Fatalf("get data failed: %v", err)
		}
		if !bytes.Equal(data, []byte("abcdef")) {
			t.Errorf("payload mismatch after rename: %q", data)
		}
	})
}

func TestRenameDirectory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")
	env.mkdir(t, admin, "pics")
	file := env.addFile(t, admin, docs, "f.txt", []byte("data"))

	t.Run("collision", func(t *testing.T) {
		err := env.coordinator.RenameDirectory(ctx, admin, docs, "pics")
		if !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
	})

	t.Run("rename to current name fails as collision", func(t *testing.T) {
		err := env.coordinator.RenameDirectory(ctx, admin, docs, "docs")
		if !models.IsAlreadyExists(err) {
			t.Errorf("expected AlreadyExists, got %v", err)
		}
	})

	t.Run("rename keeps contents reachable", func(t *testing.T) {
		if err := env.coordinator.RenameDirectory(ctx, admin, docs, "archive"); err != nil {
			t.Fatalf("rename failed: %v", err)
		}

		renamed, err := env.coordinator.FindDirectory(ctx, admin, "archive")
		if err != nil || renamed == nil {
			t.Fatalf("renamed directory not found: %v", err)
		}
		if renamed.ID != docs.ID {
			t.Errorf("directory id changed on rename")
		}

		data, err := env.coordinator.GetFileData(ctx, admin, renamed, file)
		if err != nil {
			t.Fatalf("get data failed: %v", err)
		}
		if !bytes.Equal(data, []byte("data")) {
			t.Errorf("payload mismatch: %q", data)
		}
	})
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")
	file := env.addFile(t, admin, docs, "f.txt", []byte("123456789"))

	if err := env.coordinator.DeleteFile(ctx, admin, docs, file); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got := env.available(t, admin); got != bytesize.GiB.Int64() {
		t.Errorf("bytes not reclaimed: available = %d", got)
	}
	found, err := env.coordinator.FindFile(ctx, admin, docs, "f.txt")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if found != nil {
		t.Errorf("record still present after delete")
	}
	if err := env.blobs.CheckBlob(ctx, admin.ID, docs.ID, file.ID); err == nil {
		t.Error("payload still present after delete")
	}

	// A second delete via the stale handle fails the ownership check.
	if err := env.coordinator.DeleteFile(ctx, admin, docs, file); !models.IsNotFound(err) {
		t.Errorf("expected NotFound on stale handle, got %v", err)
	}
}

func TestDeleteDirectoryReclaimsEverything(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")
	f1 := env.addFile(t, admin, docs, "a.txt", make([]byte, 100))
	f2 := env.addFile(t, admin, docs, "b.txt", make([]byte, 250))

	if got, want := env.available(t, admin), bytesize.GiB.Int64()-350; got != want {
		t.Fatalf("bytes available = %d, want %d", got, want)
	}

	if err := env.coordinator.DeleteDirectory(ctx, admin, docs); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got := env.available(t, admin); got != bytesize.GiB.Int64() {
		t.Errorf("bytes not fully reclaimed: available = %d", got)
	}
	dir, err := env.coordinator.FindDirectory(ctx, admin, "docs")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if dir != nil {
		t.Errorf("directory still present after delete")
	}
	for _, f := range []*models.FileRecord{f1, f2} {
		if err := env.blobs.CheckBlob(ctx, admin.ID, docs.ID, f.ID); err == nil {
			t.Errorf("payload %s still present after directory delete", f.Name)
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	a1 := env.register(t, "a1", 1)
	a2 := env.register(t, "a2", 1)
	a1docs := env.mkdir(t, a1, "docs")
	a2docs := env.mkdir(t, a2, "docs")
	f := env.addFile(t, a1, a1docs, "f", []byte("secret"))

	t.Run("cross-account delete fails", func(t *testing.T) {
		err := env.coordinator.DeleteFile(ctx, a2, a2docs, f)
		if !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("cross-account read via forged directory handle fails", func(t *testing.T) {
		_, err := env.coordinator.GetFileData(ctx, a2, a1docs, f)
		if !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("cross-account directory rename fails", func(t *testing.T) {
		err := env.coordinator.RenameDirectory(ctx, a2, a1docs, "stolen")
		if !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("cross-account directory delete fails", func(t *testing.T) {
		err := env.coordinator.DeleteDirectory(ctx, a2, a1docs)
		if !models.IsNotFound(err) {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("file remains retrievable under its true owner", func(t *testing.T) {
		data, err := env.coordinator.GetFileData(ctx, a1, a1docs, f)
		if err != nil {
			t.Fatalf("get data failed: %v", err)
		}
		if !bytes.Equal(data, []byte("secret")) {
			t.Errorf("payload mismatch: %q", data)
		}
	})
}

func TestQuotaInvariantAcrossOperations(t *testing.T) {
	// After any finite sequence of successful creates and deletes, the
	// available bytes equal quota minus the sum of surviving file sizes.
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)

	docs := env.mkdir(t, admin, "docs")
	pics := env.mkdir(t, admin, "pics")

	env.addFile(t, admin, docs, "a", make([]byte, 10))
	b := env.addFile(t, admin, docs, "b", make([]byte, 20))
	env.addFile(t, admin, pics, "c", make([]byte, 40))

	if err := env.coordinator.DeleteFile(ctx, admin, docs, b); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	env.addFile(t, admin, pics, "d", make([]byte, 80))
	if err := env.coordinator.DeleteDirectory(ctx, admin, docs); err != nil {
		t.Fatalf("delete directory failed: %v", err)
	}

	// Surviving files: c (40) + d (80).
	want := bytesize.GiB.Int64() - 120
	if got := env.available(t, admin); got != want {
		t.Errorf("bytes available = %d, want %d", got, want)
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.register(t, "admin", 1)
	docs := env.mkdir(t, admin, "docs")
	file := env.addFile(t, admin, docs, "f", []byte("12345"))

	t.Run("clean state reports nothing", func(t *testing.T) {
		report, err := env.coordinator.Reconcile(ctx)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if report.AccountsChecked != 1 {
			t.Errorf("accounts checked = %d, want 1", report.AccountsChecked)
		}
		if report.ContainersRepaired+report.SubcontainersRepaired+report.LedgersCorrected != 0 {
			t.Errorf("clean state repaired something: %+v", report)
		}
		if len(report.MissingPayloads) != 0 {
			t.Errorf("clean state reported missing payloads: %v", report.MissingPayloads)
		}
	})

	t.Run("repairs drift", func(t *testing.T) {
		// Drift: drop the subcontainer (and with it the payload) and skew
		// the ledger.
		if err := env.blobs.DeleteSubcontainer(ctx, admin.ID, docs.ID); err != nil {
			t.Fatalf("delete subcontainer failed: %v", err)
		}
		if err := env.coordinator.metadata.SetLedgerBytes(ctx, admin.ID, 999); err != nil {
			t.Fatalf("set ledger failed: %v", err)
		}

		report, err := env.coordinator.Reconcile(ctx)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if report.SubcontainersRepaired != 1 {
			t.Errorf("subcontainers repaired = %d, want 1", report.SubcontainersRepaired)
		}
		if report.LedgersCorrected != 1 {
			t.Errorf("ledgers corrected = %d, want 1", report.LedgersCorrected)
		}
		if len(report.MissingPayloads) != 1 {
			t.Fatalf("missing payloads = %v, want one entry", report.MissingPayloads)
		}
		if want := "admin/docs/f"; report.MissingPayloads[0] != want {
			t.Errorf("missing payload path = %q, want %q", report.MissingPayloads[0], want)
		}

		// Ledger now matches the catalog again.
		ledger, err := env.coordinator.metadata.GetLedger(ctx, admin.ID)
		if err != nil {
			t.Fatalf("get ledger failed: %v", err)
		}
		if ledger.BytesOccupied != file.ByteSize {
			t.Errorf("ledger = %d, want %d", ledger.BytesOccupied, file.ByteSize)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		report, err := env.coordinator.Reconcile(ctx)
		if err != nil {
			t.Fatalf("reconcile failed: %v", err)
		}
		if report.SubcontainersRepaired != 0 || report.LedgersCorrected != 0 {
			t.Errorf("second pass repaired again: %+v", report)
		}
		// The dangling record is still reported until an operator acts.
		if len(report.MissingPayloads) != 1 {
			t.Errorf("missing payloads = %v, want one entry", report.MissingPayloads)
		}
	})
}
