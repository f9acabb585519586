package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jababox/jababox/internal/bytesize"
	"github.com/jababox/jababox/internal/cli/output"
	"github.com/jababox/jababox/internal/cli/prompt"
	"github.com/jababox/jababox/pkg/config"
	"github.com/jababox/jababox/pkg/storage"
	"github.com/spf13/cobra"
)

var accountQuotaGigabytes int64

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts (add, list, show, passwd, plan)",
	Long: `Manage JabaBox accounts directly against the configured stores.

These commands open the metadata database and byte store from the
configuration file. Run them on the host that owns the stores, ideally
while the server is stopped when using SQLite.

Examples:
  jababox account add alice --quota 5
  jababox account list
  jababox account show alice
  jababox account passwd alice
  jababox account plan alice 20`,
}

var accountAddCmd = &cobra.Command{
	Use:   "add <login>",
	Short: "Register a new account (prompts for password)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all accounts",
	Args:    cobra.NoArgs,
	RunE:    runAccountList,
}

var accountShowCmd = &cobra.Command{
	Use:   "show <login>",
	Short: "Show account details and quota usage",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountShow,
}

var accountPasswdCmd = &cobra.Command{
	Use:     "passwd <login>",
	Aliases: []string{"password"},
	Short:   "Change an account password",
	Args:    cobra.ExactArgs(1),
	RunE:    runAccountPasswd,
}

var accountPlanCmd = &cobra.Command{
	Use:   "plan <login> <gigabytes>",
	Short: "Change an account's quota plan",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountPlan,
}

func init() {
	accountAddCmd.Flags().Int64Var(&accountQuotaGigabytes, "quota", 1, "Account quota in gibibytes")

	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountShowCmd)
	accountCmd.AddCommand(accountPasswdCmd)
	accountCmd.AddCommand(accountPlanCmd)
}

// withRegistry loads config and runs fn with a registry and coordinator over
// the configured stores.
func withRegistry(fn func(ctx context.Context, registry *storage.Registry, coordinator *storage.Coordinator) error) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := context.Background()

	metadata, blobs, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open stores: %w", err)
	}
	defer func() {
		_ = blobs.Close()
		_ = metadata.Close()
	}()

	registry := storage.NewRegistry(metadata, blobs)
	coordinator := storage.NewCoordinator(metadata, blobs)
	return fn(ctx, registry, coordinator)
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	login := args[0]

	password, err := prompt.PasswordWithConfirmation("Password", "Confirm password", 1)
	if err != nil {
		if prompt.IsAborted(err) {
			return nil
		}
		return err
	}

	return withRegistry(func(ctx context.Context, registry *storage.Registry, _ *storage.Coordinator) error {
		account, err := registry.Register(ctx, login, password, accountQuotaGigabytes)
		if err != nil {
			return err
		}
		fmt.Printf("Account %q created with a %d GiB quota\n", account.Login, account.QuotaGigabytes)
		return nil
	})
}

func runAccountList(cmd *cobra.Command, args []string) error {
	return withRegistry(func(ctx context.Context, registry *storage.Registry, coordinator *storage.Coordinator) error {
		accounts, err := registry.ListAccounts(ctx)
		if err != nil {
			return err
		}

		table := output.NewTableData("login", "quota", "available")
		for _, account := range accounts {
			available, err := coordinator.BytesAvailable(ctx, account)
			if err != nil {
				return err
			}
			table.AddRow(
				account.Login,
				bytesize.ByteSize(account.QuotaBytes()).String(),
				bytesize.ByteSize(available).String(),
			)
		}

		return output.PrintTable(os.Stdout, table)
	})
}

func runAccountShow(cmd *cobra.Command, args []string) error {
	login := args[0]

	return withRegistry(func(ctx context.Context, registry *storage.Registry, coordinator *storage.Coordinator) error {
		account, err := registry.GetAccount(ctx, login)
		if err != nil {
			return err
		}
		available, err := coordinator.BytesAvailable(ctx, account)
		if err != nil {
			return err
		}
		directories, err := coordinator.ListDirectories(ctx, account)
		if err != nil {
			return err
		}

		return output.SimpleTable(os.Stdout, [][2]string{
			{"Login", account.Login},
			{"ID", account.ID},
			{"Quota", bytesize.ByteSize(account.QuotaBytes()).String()},
			{"Available", bytesize.ByteSize(available).String()},
			{"Directories", strconv.Itoa(len(directories))},
		})
	})
}

func runAccountPasswd(cmd *cobra.Command, args []string) error {
	login := args[0]

	oldPassword, err := prompt.Password("Current password")
	if err != nil {
		if prompt.IsAborted(err) {
			return nil
		}
		return err
	}
	newPassword, err := prompt.PasswordWithConfirmation("New password", "Confirm new password", 1)
	if err != nil {
		if prompt.IsAborted(err) {
			return nil
		}
		return err
	}

	return withRegistry(func(ctx context.Context, registry *storage.Registry, _ *storage.Coordinator) error {
		if err := registry.ChangePassword(ctx, login, oldPassword, newPassword); err != nil {
			return err
		}
		fmt.Printf("Password changed for account %q\n", login)
		return nil
	})
}

func runAccountPlan(cmd *cobra.Command, args []string) error {
	login := args[0]
	gigabytes, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quota %q: %w", args[1], err)
	}

	return withRegistry(func(ctx context.Context, registry *storage.Registry, _ *storage.Coordinator) error {
		account, err := registry.ChangeGigabytesPlan(ctx, login, gigabytes)
		if err != nil {
			return err
		}
		fmt.Printf("Account %q quota changed to %d GiB\n", account.Login, account.QuotaGigabytes)
		return nil
	})
}
