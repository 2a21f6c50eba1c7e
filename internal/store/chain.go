package store

import (
	"context"
	"fmt"
)

// Height returns the current ledger height.
func Height(ctx context.Context, db Querier) (uint64, error) {
	var height uint64
	err := db.QueryRowContext(ctx, `SELECT height FROM chain WHERE id = 1`).Scan(&height)
	if err != nil {
		return 0, fmt.Errorf("getting ledger height: %w", err)
	}
	return height, nil
}

// AdvanceHeight moves the ledger height forward by n blocks and returns the
// new height. The height never decreases.
func AdvanceHeight(ctx context.Context, db Querier, n uint64) (uint64, error) {
	if n == 0 {
		return Height(ctx, db)
	}
	var height uint64
	err := db.QueryRowContext(ctx,
		`UPDATE chain SET height = height + ? WHERE id = 1 RETURNING height`, int64(n),
	).Scan(&height)
	if err != nil {
		return 0, fmt.Errorf("advancing ledger height: %w", err)
	}
	return height, nil
}
