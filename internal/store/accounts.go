package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
)

// CreateAccount creates a login for a ledger identity.
func CreateAccount(ctx context.Context, db Querier, identity model.Identity, passwordHash, role string) (*model.Account, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO accounts (identity, password_hash, role) VALUES (?, ?, ?)`,
		string(identity), passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting account id: %w", err)
	}

	return GetAccount(ctx, db, id)
}

// GetAccount returns an account by ID.
func GetAccount(ctx context.Context, db Querier, id int64) (*model.Account, error) {
	return getAccount(ctx, db, `WHERE id = ?`, id)
}

// GetAccountByIdentity returns an account by identity (including
// soft-deleted ones, for auth checks).
func GetAccountByIdentity(ctx context.Context, db Querier, identity model.Identity) (*model.Account, error) {
	return getAccount(ctx, db, `WHERE identity = ?`, string(identity))
}

func getAccount(ctx context.Context, db Querier, where string, arg any) (*model.Account, error) {
	a := &model.Account{}
	var identity string
	err := db.QueryRowContext(ctx,
		`SELECT id, identity, password_hash, role, created_at, deleted_at
		 FROM accounts `+where, arg,
	).Scan(&a.ID, &identity, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	a.Identity = model.Identity(identity)
	return a, nil
}

// ListAccounts returns all non-deleted accounts.
func ListAccounts(ctx context.Context, db Querier) ([]model.Account, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, identity, password_hash, role, created_at, deleted_at
		 FROM accounts WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var identity string
		if err := rows.Scan(&a.ID, &identity, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Identity = model.Identity(identity)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateAccountPassword updates an account's password hash.
func UpdateAccountPassword(ctx context.Context, db Querier, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating account password: %w", err)
	}
	return nil
}

// DeleteAccount soft-deletes an account. The identity stays reserved so it
// can never be handed to someone else.
func DeleteAccount(ctx context.Context, db Querier, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE accounts SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	return nil
}
