package ledger

import (
	"context"

	"github.com/erazemk/skrbnik/internal/store"
)

// Advance produces n blocks, moving the ledger height forward.
func (l *Ledger) Advance(ctx context.Context, n uint64) (uint64, error) {
	height, err := store.AdvanceHeight(ctx, l.db, n)
	if err != nil {
		return 0, err
	}
	if l.observer != nil {
		l.observer.ObserveHeight(height)
	}
	return height, nil
}
