package ledger

import (
	"context"

	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// authorized reports whether actor may act on behalf of subject: actor is
// subject itself, or an inspector subject has authorized and not revoked.
//
// Events, delivery and sale pass the item's keeper as subject;
// certifications pass its creator.
func authorized(ctx context.Context, db store.Querier, subject, actor model.Identity) (bool, error) {
	if actor == "" {
		return false, nil
	}
	if actor == subject {
		return true, nil
	}
	in, err := store.GetInspector(ctx, db, subject, actor)
	if err != nil {
		return false, err
	}
	return in != nil && in.Active(), nil
}

// IsAuthorized reports whether actor may act for subject. Lookup failures
// read as false.
func (l *Ledger) IsAuthorized(ctx context.Context, subject, actor model.Identity) bool {
	ok, err := authorized(ctx, l.db, subject, actor)
	if err != nil {
		l.logger.Error("authorization lookup failed", "subject", subject, "actor", actor, "error", err)
		return false
	}
	return ok
}
