package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jababox/jababox/internal/cli/output"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair drift between the metadata catalog and the byte store",
	Long: `Walk every account and verify that the byte store still holds its
container, every directory's subcontainer, and every file's payload.
Missing containers are recreated, quota ledgers are recomputed from the
file records, and files whose payloads are gone are reported.

The pass is idempotent and never deletes metadata. Run it after a crash
or when quota numbers look wrong.

Examples:
  jababox reconcile
  jababox reconcile --config /etc/jababox/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func runReconcile(cmd *cobra.Command, args []string) error {
	return withRegistry(func(ctx context.Context, _ *storage.Registry, coordinator *storage.Coordinator) error {
		report, err := coordinator.Reconcile(ctx)
		if err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}

		err = output.SimpleTable(os.Stdout, [][2]string{
			{"Accounts checked", strconv.Itoa(report.AccountsChecked)},
			{"Containers repaired", strconv.Itoa(report.ContainersRepaired)},
			{"Subcontainers repaired", strconv.Itoa(report.SubcontainersRepaired)},
			{"Ledgers corrected", strconv.Itoa(report.LedgersCorrected)},
			{"Missing payloads", strconv.Itoa(len(report.MissingPayloads))},
		})
		if err != nil {
			return err
		}

		if len(report.MissingPayloads) > 0 {
			fmt.Println("\nFiles whose payloads are missing from the byte store:")
			for _, path := range report.MissingPayloads {
				fmt.Printf("  %s\n", path)
			}
			fmt.Println("\nRe-upload these files or delete their records to reclaim quota.")
		}

		return nil
	})
}
