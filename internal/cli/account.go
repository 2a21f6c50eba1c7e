package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/skrbnik/internal/db"
	"github.com/erazemk/skrbnik/internal/model"
)

// NewAccountCommand creates the account command group.
func NewAccountCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(newAccountCreateCommand(rootOpts))
	return cmd
}

func newAccountCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var identity, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a login for a ledger identity",
		Long: `Create a login for a ledger identity and print its generated password.

Identities are never reused: once created, an identity stays reserved even
after its account is deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			if identity == "" || model.Identity(identity) == model.NullIdentity {
				return fmt.Errorf("invalid identity %q", identity)
			}

			if _, err := os.Stat(cfg.DBPath); err != nil {
				return fmt.Errorf("database not found: %s", cfg.DBPath)
			}
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()
			if err := db.Migrate(database); err != nil {
				return err
			}

			password, err := createAccount(cmd.Context(), database, model.Identity(identity), role)
			if err != nil {
				return fmt.Errorf("creating account %s: %w", identity, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Account created:")
			fmt.Fprintf(out, "  Identity: %s\n", identity)
			fmt.Fprintf(out, "  Role:     %s\n", role)
			fmt.Fprintf(out, "  Password: %s\n", password)
			return nil
		},
	}

	cmd.Flags().StringVarP(&identity, "identity", "i", "", "ledger identity")
	cmd.Flags().StringVarP(&role, "role", "r", model.RoleMember, "account role (member|admin)")
	cmd.MarkFlagRequired("identity")

	return cmd
}
