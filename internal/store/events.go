package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
)

const eventColumns = `item_id, seq, kind, event_id, type, location, height, actor, from_keeper,
	to_keeper, temperature, humidity, notes, hash, status, created_at`

// InsertEvent appends an event. Events are never updated except for the
// single pending -> terminal status transition.
func InsertEvent(ctx context.Context, db Querier, e *model.Event) error {
	var temp, humidity sql.NullInt64
	if e.Temperature != nil {
		temp = sql.NullInt64{Int64: int64(*e.Temperature), Valid: true}
	}
	if e.Humidity != nil {
		humidity = sql.NullInt64{Int64: int64(*e.Humidity), Valid: true}
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO events (item_id, seq, kind, event_id, type, location, height, actor,
		                     from_keeper, to_keeper, temperature, humidity, notes, hash, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(e.ItemID), int64(e.Seq), e.Kind, int64(e.EventID), e.Type, e.Location,
		int64(e.Height), string(e.Actor), nullString(string(e.FromKeeper)),
		nullString(string(e.ToKeeper)), temp, humidity, nullString(e.Notes), e.Hash, e.Status,
	)
	if err != nil {
		return fmt.Errorf("recording event: %w", err)
	}
	return nil
}

// GetEvent returns an event by its per-kind id.
func GetEvent(ctx context.Context, db Querier, itemID uint64, kind string, eventID uint64) (*model.Event, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE item_id = ? AND kind = ? AND event_id = ?`,
		int64(itemID), kind, int64(eventID),
	)
	return getEvent(row)
}

// LatestEvent returns the most recently appended event of an item.
func LatestEvent(ctx context.Context, db Querier, itemID uint64) (*model.Event, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE item_id = ? ORDER BY seq DESC LIMIT 1`,
		int64(itemID),
	)
	return getEvent(row)
}

// ListEvents returns the full history of an item, oldest first.
func ListEvents(ctx context.Context, db Querier, itemID uint64) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE item_id = ? ORDER BY seq`, int64(itemID),
	)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListPendingTransfers returns transfers waiting for the given recipient.
func ListPendingTransfers(ctx context.Context, db Querier, recipient model.Identity) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE to_keeper = ? AND status = ?
		 ORDER BY item_id, seq`,
		string(recipient), model.EventStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending transfers: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ResolveEvent moves a pending event to a terminal status. It fails if the
// event is no longer pending.
func ResolveEvent(ctx context.Context, db Querier, itemID, seq uint64, status string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE events SET status = ? WHERE item_id = ? AND seq = ? AND status = ?`,
		status, int64(itemID), int64(seq), model.EventStatusPending,
	)
	if err != nil {
		return fmt.Errorf("resolving event: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolving event: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("resolving event %d/%d: not pending", itemID, seq)
	}
	return nil
}

func getEvent(row *sql.Row) (*model.Event, error) {
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting event: %w", err)
	}
	return e, nil
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func scanEvent(s scanner) (*model.Event, error) {
	e := &model.Event{}
	var actor string
	var from, to, notes sql.NullString
	var temp, humidity sql.NullInt64
	err := s.Scan(&e.ItemID, &e.Seq, &e.Kind, &e.EventID, &e.Type, &e.Location, &e.Height,
		&actor, &from, &to, &temp, &humidity, &notes, &e.Hash, &e.Status, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = model.Identity(actor)
	e.FromKeeper = model.Identity(from.String)
	e.ToKeeper = model.Identity(to.String)
	e.Notes = notes.String
	if temp.Valid {
		v := int(temp.Int64)
		e.Temperature = &v
	}
	if humidity.Valid {
		v := uint(humidity.Int64)
		e.Humidity = &v
	}
	return e, nil
}
