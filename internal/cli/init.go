package cli

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/skrbnik/internal/db"
	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	var admin string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("admin") {
				cfg.AdminIdentity = admin
			}

			if _, err := os.Stat(cfg.DBPath); err == nil {
				return fmt.Errorf("database already exists: %s", cfg.DBPath)
			}

			database, password, err := initDatabase(cmd.Context(), cfg.DBPath, model.Identity(cfg.AdminIdentity))
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd.OutOrStdout(), cfg.DBPath, cfg.AdminIdentity, password)
			return nil
		},
	}

	cmd.Flags().StringVarP(&admin, "admin", "u", "", "admin identity (overrides config)")

	return cmd
}

// initDatabase creates a new database, applies the schema and creates the
// admin account. On failure the half-created file is removed.
func initDatabase(ctx context.Context, path string, admin model.Identity) (database *sql.DB, password string, err error) {
	if admin == "" || admin == model.NullIdentity {
		return nil, "", fmt.Errorf("invalid admin identity %q", admin)
	}

	database, err = db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err != nil {
			database.Close()
			os.Remove(path)
		}
	}()

	if err := db.Migrate(database); err != nil {
		return nil, "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err = createAccount(ctx, database, admin, model.RoleAdmin)
	if err != nil {
		return nil, "", fmt.Errorf("creating admin account: %w", err)
	}

	return database, password, nil
}

// createAccount creates a login for identity with a generated password and
// returns the password.
func createAccount(ctx context.Context, database *sql.DB, identity model.Identity, role string) (string, error) {
	if !model.ValidRole(role) {
		return "", fmt.Errorf("invalid role %q", role)
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	existing, err := store.GetAccountByIdentity(ctx, database, identity)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", errors.New("identity already taken")
	}

	if _, err := store.CreateAccount(ctx, database, identity, string(hash), role); err != nil {
		return "", err
	}
	return password, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, identity, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Identity: %s\n", identity)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
