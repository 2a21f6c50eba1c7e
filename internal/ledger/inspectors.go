package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// AuthorizeInspector lets inspector act on behalf of caller's organization.
// Re-authorizing a revoked inspector reactivates the same record.
func (l *Ledger) AuthorizeInspector(ctx context.Context, caller, inspector model.Identity, name, role string) (*model.Inspector, error) {
	var rec *model.Inspector
	err := l.update(ctx, "authorize_inspector", caller, func(tx *sql.Tx, height uint64) error {
		if err := checkIdentity("inspector", inspector); err != nil {
			return err
		}
		if err := requireText("name", name, MaxNameLen); err != nil {
			return err
		}
		if err := requireText("role", role, MaxRoleLen); err != nil {
			return err
		}

		err := store.UpsertInspector(ctx, tx, &model.Inspector{
			Organization:     caller,
			Inspector:        inspector,
			Name:             name,
			Role:             role,
			State:            model.StateActive,
			AuthorizedHeight: height,
			UpdatedHeight:    height,
		})
		if err != nil {
			return err
		}
		rec, err = store.GetInspector(ctx, tx, caller, inspector)
		return err
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("inspector authorized", "organization", caller, "inspector", inspector, "role", role)
	return rec, nil
}

// RevokeInspector withdraws caller's delegation to inspector. The record is
// kept, marked revoked.
func (l *Ledger) RevokeInspector(ctx context.Context, caller, inspector model.Identity) error {
	err := l.update(ctx, "revoke_inspector", caller, func(tx *sql.Tx, height uint64) error {
		rec, err := store.GetInspector(ctx, tx, caller, inspector)
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("%w: inspector %s of %s", ErrNotFound, inspector, caller)
		}
		return store.SetInspectorState(ctx, tx, caller, inspector, model.StateRevoked, height)
	})
	if err != nil {
		return err
	}

	l.logger.Info("inspector revoked", "organization", caller, "inspector", inspector)
	return nil
}

// GetInspector returns one delegation record of organization.
func (l *Ledger) GetInspector(ctx context.Context, organization, inspector model.Identity) (*model.Inspector, error) {
	rec, err := store.GetInspector(ctx, l.db, organization, inspector)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: inspector %s of %s", ErrNotFound, inspector, organization)
	}
	return rec, nil
}

// ListInspectors returns every delegation record of organization.
func (l *Ledger) ListInspectors(ctx context.Context, organization model.Identity) ([]model.Inspector, error) {
	return store.ListInspectors(ctx, l.db, organization)
}
