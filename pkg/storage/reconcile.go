package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jababox/jababox/internal/logger"
	"github.com/jababox/jababox/pkg/blob"
)

// ReconcileReport summarizes what a repair pass found and fixed.
type ReconcileReport struct {
	AccountsChecked       int
	ContainersRepaired    int
	SubcontainersRepaired int
	LedgersCorrected      int

	// MissingPayloads lists files whose record exists but whose payload is
	// gone from the byte store, as "login/directory/file" paths. These
	// need operator attention; the reconciler never deletes records.
	MissingPayloads []string
}

// Reconcile walks every account and repairs drift between the metadata
// catalog and the byte store: it recreates missing containers, recomputes
// each quota ledger from the file records, and reports payloads that
// vanished from under their records. The pass is idempotent; running it
// twice changes nothing the second time.
func (c *Coordinator) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	accounts, err := c.metadata.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	for _, account := range accounts {
		report.AccountsChecked++

		if err := c.blobs.CheckContainer(ctx, account.ID); err != nil {
			if !errors.Is(err, blob.ErrNotFound) {
				return nil, fmt.Errorf("probe container for %q: %w", account.Login, err)
			}
			if err := c.blobs.CreateContainer(ctx, account.ID); err != nil {
				return nil, fmt.Errorf("recreate container for %q: %w", account.Login, err)
			}
			report.ContainersRepaired++
			logger.Warn("recreated missing account container", "login", account.Login)
		}

		directories, err := c.metadata.ListDirectories(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("list directories for %q: %w", account.Login, err)
		}

		var occupied int64
		for _, dir := range directories {
			if err := c.blobs.CheckSubcontainer(ctx, account.ID, dir.ID); err != nil {
				if !errors.Is(err, blob.ErrNotFound) {
					return nil, fmt.Errorf("probe container for directory %q: %w", dir.Name, err)
				}
				if err := c.blobs.CreateSubcontainer(ctx, account.ID, dir.ID); err != nil {
					return nil, fmt.Errorf("recreate container for directory %q: %w", dir.Name, err)
				}
				report.SubcontainersRepaired++
				logger.Warn("recreated missing directory container",
					"login", account.Login, "directory", dir.Name)
			}

			files, err := c.metadata.ListFiles(ctx, dir.ID)
			if err != nil {
				return nil, fmt.Errorf("list files for directory %q: %w", dir.Name, err)
			}

			for _, file := range files {
				occupied += file.ByteSize

				if err := c.blobs.CheckBlob(ctx, account.ID, dir.ID, file.ID); err != nil {
					if !errors.Is(err, blob.ErrNotFound) {
						return nil, fmt.Errorf("probe payload for file %q: %w", file.Name, err)
					}
					path := account.Login + "/" + dir.Name + "/" + file.Name
					report.MissingPayloads = append(report.MissingPayloads, path)
					logger.Warn("file record has no payload", "path", path, "file_id", file.ID)
				}
			}
		}

		ledger, err := c.metadata.GetLedger(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("read ledger for %q: %w", account.Login, err)
		}
		if ledger.BytesOccupied != occupied {
			if err := c.metadata.SetLedgerBytes(ctx, account.ID, occupied); err != nil {
				return nil, fmt.Errorf("correct ledger for %q: %w", account.Login, err)
			}
			report.LedgersCorrected++
			logger.Warn("corrected quota ledger",
				"login", account.Login, "was", ledger.BytesOccupied, "now", occupied)
		}
	}

	return report, nil
}
