package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
)

// UpsertInspector creates or reactivates a delegation. The original
// authorization height survives reactivation.
func UpsertInspector(ctx context.Context, db Querier, in *model.Inspector) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO inspectors (organization, inspector, name, role, state, authorized_height, updated_height)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (organization, inspector) DO UPDATE SET
		     name = excluded.name, role = excluded.role, state = excluded.state,
		     updated_height = excluded.updated_height`,
		string(in.Organization), string(in.Inspector), in.Name, in.Role, in.State,
		int64(in.AuthorizedHeight), int64(in.UpdatedHeight),
	)
	if err != nil {
		return fmt.Errorf("authorizing inspector: %w", err)
	}
	return nil
}

// GetInspector returns the delegation record of inspector under organization.
func GetInspector(ctx context.Context, db Querier, organization, inspector model.Identity) (*model.Inspector, error) {
	in := &model.Inspector{}
	var org, insp string
	err := db.QueryRowContext(ctx,
		`SELECT organization, inspector, name, role, state, authorized_height, updated_height
		 FROM inspectors WHERE organization = ? AND inspector = ?`,
		string(organization), string(inspector),
	).Scan(&org, &insp, &in.Name, &in.Role, &in.State, &in.AuthorizedHeight, &in.UpdatedHeight)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inspector: %w", err)
	}
	in.Organization = model.Identity(org)
	in.Inspector = model.Identity(insp)
	return in, nil
}

// ListInspectors returns every delegation an organization has recorded,
// revoked ones included.
func ListInspectors(ctx context.Context, db Querier, organization model.Identity) ([]model.Inspector, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT organization, inspector, name, role, state, authorized_height, updated_height
		 FROM inspectors WHERE organization = ? ORDER BY inspector`,
		string(organization),
	)
	if err != nil {
		return nil, fmt.Errorf("listing inspectors: %w", err)
	}
	defer rows.Close()

	var inspectors []model.Inspector
	for rows.Next() {
		var in model.Inspector
		var org, insp string
		if err := rows.Scan(&org, &insp, &in.Name, &in.Role, &in.State, &in.AuthorizedHeight, &in.UpdatedHeight); err != nil {
			return nil, fmt.Errorf("scanning inspector: %w", err)
		}
		in.Organization = model.Identity(org)
		in.Inspector = model.Identity(insp)
		inspectors = append(inspectors, in)
	}
	return inspectors, rows.Err()
}

// SetInspectorState changes the recorded state of a delegation.
func SetInspectorState(ctx context.Context, db Querier, organization, inspector model.Identity, state string, height uint64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE inspectors SET state = ?, updated_height = ? WHERE organization = ? AND inspector = ?`,
		state, int64(height), string(organization), string(inspector),
	)
	if err != nil {
		return fmt.Errorf("updating inspector: %w", err)
	}
	return nil
}
