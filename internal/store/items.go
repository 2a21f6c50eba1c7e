package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
)

const itemColumns = `id, title, details, creator, lot, created_height, status, category, origin,
	keeper, destination, arrival_height, metadata, checkpoint_count, transfer_count,
	custody_seq, created_at, updated_at`

// NextItemID returns the id the next registered item will get. Ids are
// dense and start at 0.
func NextItemID(ctx context.Context, db Querier) (uint64, error) {
	var next uint64
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id) + 1, 0) FROM items`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocating item id: %w", err)
	}
	return next, nil
}

// InsertItem stores a newly registered item.
func InsertItem(ctx context.Context, db Querier, item *model.Item) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, title, details, creator, lot, created_height, status, category,
		                    origin, keeper, metadata, checkpoint_count, transfer_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(item.ID), item.Title, item.Details, string(item.Creator), item.Lot,
		int64(item.CreatedHeight), item.Status, item.Category, item.Origin,
		string(item.Keeper), nullString(item.Metadata),
		int64(item.CheckpointCount), int64(item.TransferCount),
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db Querier, id uint64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, int64(id),
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items ordered by id, optionally filtered.
func ListItems(ctx context.Context, db Querier, f model.ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any

	if f.Keeper != "" {
		query += ` AND keeper = ?`
		args = append(args, string(f.Keeper))
	}
	if f.Creator != "" {
		query += ` AND creator = ?`
		args = append(args, string(f.Creator))
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}

	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// SaveItem writes the mutable fields of an item snapshot back. Identity,
// creator and registration data are never rewritten.
func SaveItem(ctx context.Context, db Querier, item *model.Item) error {
	var arrival sql.NullInt64
	if item.ArrivalHeight != nil {
		arrival = sql.NullInt64{Int64: int64(*item.ArrivalHeight), Valid: true}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, keeper = ?, destination = ?, arrival_height = ?,
		        checkpoint_count = ?, transfer_count = ?, custody_seq = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND checkpoint_count <= ? AND transfer_count <= ?`,
		item.Status, string(item.Keeper), nullString(item.Destination), arrival,
		int64(item.CheckpointCount), int64(item.TransferCount), int64(item.CustodySeq),
		int64(item.ID), int64(item.CheckpointCount), int64(item.TransferCount),
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("updating item %d: counters would decrease or item missing", item.ID)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var creator, keeper string
	var destination, metadata sql.NullString
	var arrival sql.NullInt64
	err := s.Scan(&item.ID, &item.Title, &item.Details, &creator, &item.Lot, &item.CreatedHeight,
		&item.Status, &item.Category, &item.Origin, &keeper, &destination, &arrival, &metadata,
		&item.CheckpointCount, &item.TransferCount, &item.CustodySeq, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Creator = model.Identity(creator)
	item.Keeper = model.Identity(keeper)
	item.Destination = destination.String
	item.Metadata = metadata.String
	if arrival.Valid {
		h := uint64(arrival.Int64)
		item.ArrivalHeight = &h
	}
	return item, nil
}
