package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
)

const certColumns = `item_id, standard, authority, issued_height, expires_height, hash, url, state`

// UpsertCertification stores a certification, replacing any earlier record
// for the same standard.
func UpsertCertification(ctx context.Context, db Querier, c *model.Certification) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO certifications (item_id, standard, authority, issued_height, expires_height, hash, url, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (item_id, standard) DO UPDATE SET
		     authority = excluded.authority, issued_height = excluded.issued_height,
		     expires_height = excluded.expires_height, hash = excluded.hash,
		     url = excluded.url, state = excluded.state`,
		int64(c.ItemID), c.Standard, string(c.Authority), int64(c.IssuedHeight),
		int64(c.ExpiresHeight), c.Hash, nullString(c.URL), c.State,
	)
	if err != nil {
		return fmt.Errorf("storing certification: %w", err)
	}
	return nil
}

// GetCertification returns the certification of an item for a standard.
func GetCertification(ctx context.Context, db Querier, itemID uint64, standard string) (*model.Certification, error) {
	c, err := scanCertification(db.QueryRowContext(ctx,
		`SELECT `+certColumns+` FROM certifications WHERE item_id = ? AND standard = ?`,
		int64(itemID), standard,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting certification: %w", err)
	}
	return c, nil
}

// ListCertifications returns all certifications recorded for an item.
func ListCertifications(ctx context.Context, db Querier, itemID uint64) ([]model.Certification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+certColumns+` FROM certifications WHERE item_id = ? ORDER BY standard`,
		int64(itemID),
	)
	if err != nil {
		return nil, fmt.Errorf("listing certifications: %w", err)
	}
	defer rows.Close()

	var certs []model.Certification
	for rows.Next() {
		c, err := scanCertification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning certification: %w", err)
		}
		certs = append(certs, *c)
	}
	return certs, rows.Err()
}

// SetCertificationState changes the recorded state of a certification.
func SetCertificationState(ctx context.Context, db Querier, itemID uint64, standard, state string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE certifications SET state = ? WHERE item_id = ? AND standard = ?`,
		state, int64(itemID), standard,
	)
	if err != nil {
		return fmt.Errorf("updating certification: %w", err)
	}
	return nil
}

func scanCertification(s scanner) (*model.Certification, error) {
	c := &model.Certification{}
	var authority string
	var url sql.NullString
	err := s.Scan(&c.ItemID, &c.Standard, &authority, &c.IssuedHeight, &c.ExpiresHeight, &c.Hash, &url, &c.State)
	if err != nil {
		return nil, err
	}
	c.Authority = model.Identity(authority)
	c.URL = url.String
	return c, nil
}
