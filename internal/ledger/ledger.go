// Package ledger is the custody state machine. Every exported mutating
// method is one atomic unit: it re-reads the entities it needs inside a
// fresh transaction, checks authorization and state, writes new snapshots
// and commits, or returns a typed error having written nothing.
package ledger

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// HashFunc is the content-hash primitive. It must be deterministic.
type HashFunc func([]byte) [32]byte

// Observer receives the outcome of every ledger operation. result is "ok"
// or the error code from Code.
type Observer interface {
	ObserveOperation(op, result string)
	ObserveHeight(height uint64)
}

// Ledger applies custody operations to the shared store.
type Ledger struct {
	db       *sql.DB
	logger   *slog.Logger
	observer Observer
	hash     HashFunc
}

// New returns a ledger over db. logger and observer may be nil.
func New(db *sql.DB, logger *slog.Logger, observer Observer) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		db:       db,
		logger:   logger.With("component", "ledger"),
		observer: observer,
		hash:     sha256.Sum256,
	}
}

// Height returns the current ledger height.
func (l *Ledger) Height(ctx context.Context) (uint64, error) {
	return store.Height(ctx, l.db)
}

// update runs fn as one atomic read-modify-write unit on behalf of caller.
func (l *Ledger) update(ctx context.Context, op string, caller model.Identity, fn func(tx *sql.Tx, height uint64) error) (err error) {
	defer func() { l.observe(op, caller, err) }()

	if err := checkCaller(caller); err != nil {
		return err
	}
	return l.inTx(ctx, op, fn)
}

// view runs fn inside a transaction for a consistent multi-row read.
func (l *Ledger) view(ctx context.Context, op string, fn func(tx *sql.Tx, height uint64) error) (err error) {
	defer func() { l.observe(op, "", err) }()
	return l.inTx(ctx, op, fn)
}

func (l *Ledger) inTx(ctx context.Context, op string, fn func(tx *sql.Tx, height uint64) error) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning %s: %w", op, err)
	}
	defer tx.Rollback()

	height, err := store.Height(ctx, tx)
	if err != nil {
		return err
	}

	if err := fn(tx, height); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", op, err)
	}
	return nil
}

func (l *Ledger) observe(op string, caller model.Identity, err error) {
	result := "ok"
	if err != nil {
		result = Code(err)
		if result == "" {
			result = "error"
			l.logger.Error("ledger operation failed", "op", op, "caller", caller, "error", err)
		} else if result == CodeNotAuthorized || result == CodeOnlyCreator || result == CodeNotAuthority {
			l.logger.Warn("ledger operation refused", "op", op, "caller", caller, "code", result)
		} else {
			l.logger.Debug("ledger operation rejected", "op", op, "caller", caller, "error", err)
		}
	}
	if l.observer != nil {
		l.observer.ObserveOperation(op, result)
	}
}

// loadItem reads an item or fails with ErrItemNotFound.
func loadItem(ctx context.Context, db store.Querier, id uint64) (*model.Item, error) {
	item, err := store.GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	return item, nil
}

// loadLiveItem is loadItem for operations a recall shuts off.
func loadLiveItem(ctx context.Context, db store.Querier, id uint64) (*model.Item, error) {
	item, err := loadItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item.Status == model.ItemStatusRecalled {
		return nil, fmt.Errorf("%w: %d", ErrItemRecalled, id)
	}
	return item, nil
}
