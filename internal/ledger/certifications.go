package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// CertInput describes a certification to attach to an item.
type CertInput struct {
	Standard string       `json:"standard"`
	Expires  uint64       `json:"expires"`
	Hash     model.Digest `json:"hash"`
	URL      string       `json:"url,omitempty"`
}

func (in CertInput) validate() error {
	if err := requireText("standard", in.Standard, MaxStandardLen); err != nil {
		return err
	}
	if err := checkHash("hash", in.Hash); err != nil {
		return err
	}
	if err := checkHeight("expires", in.Expires); err != nil {
		return err
	}
	return optionalText("url", in.URL, MaxURLLen)
}

// AddCert attaches a certification to an item with caller as the issuing
// authority. Caller must act for the item's creator. An existing record for
// the same standard is replaced and becomes active again.
func (l *Ledger) AddCert(ctx context.Context, caller model.Identity, itemID uint64, in CertInput) (*model.Certification, error) {
	var cert *model.Certification
	err := l.update(ctx, "add_cert", caller, func(tx *sql.Tx, height uint64) error {
		if err := in.validate(); err != nil {
			return err
		}

		item, err := loadLiveItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if ok, err := authorized(ctx, tx, item.Creator, caller); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("%w: %s does not act for creator of item %d", ErrNotAuthorized, caller, itemID)
		}
		if in.Expires <= height {
			return fmt.Errorf("%w: expires %d, height %d", ErrInvalidExpiry, in.Expires, height)
		}

		cert = &model.Certification{
			ItemID:        itemID,
			Standard:      in.Standard,
			Authority:     caller,
			IssuedHeight:  height,
			ExpiresHeight: in.Expires,
			Hash:          in.Hash,
			URL:           in.URL,
			State:         model.StateActive,
		}
		return store.UpsertCertification(ctx, tx, cert)
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("certification added", "item", itemID, "standard", in.Standard, "authority", caller, "expires", in.Expires)
	return cert, nil
}

// RevokeCert marks a certification revoked. Only its issuing authority may
// do so.
func (l *Ledger) RevokeCert(ctx context.Context, caller model.Identity, itemID uint64, standard string) error {
	err := l.update(ctx, "revoke_cert", caller, func(tx *sql.Tx, height uint64) error {
		cert, err := store.GetCertification(ctx, tx, itemID, standard)
		if err != nil {
			return err
		}
		if cert == nil {
			return fmt.Errorf("%w: certification %q of item %d", ErrNotFound, standard, itemID)
		}
		if cert.Authority != caller {
			return fmt.Errorf("%w: certification %q of item %d", ErrNotAuthority, standard, itemID)
		}
		return store.SetCertificationState(ctx, tx, itemID, standard, model.StateRevoked)
	})
	if err != nil {
		return err
	}

	l.logger.Info("certification revoked", "item", itemID, "standard", standard, "authority", caller)
	return nil
}

// GetCert returns the certification of an item for a standard.
func (l *Ledger) GetCert(ctx context.Context, itemID uint64, standard string) (*model.Certification, error) {
	cert, err := store.GetCertification(ctx, l.db, itemID, standard)
	if err != nil {
		return nil, err
	}
	if cert == nil {
		return nil, fmt.Errorf("%w: certification %q of item %d", ErrNotFound, standard, itemID)
	}
	return cert, nil
}

// ListCerts returns every certification recorded for an item.
func (l *Ledger) ListCerts(ctx context.Context, itemID uint64) ([]model.Certification, error) {
	var certs []model.Certification
	err := l.view(ctx, "list_certs", func(tx *sql.Tx, height uint64) error {
		if _, err := loadItem(ctx, tx, itemID); err != nil {
			return err
		}
		var err error
		certs, err = store.ListCertifications(ctx, tx, itemID)
		return err
	})
	return certs, err
}

// IsCertValid reports whether an item holds an unrevoked, unexpired
// certification for standard. Any lookup failure reads as false.
func (l *Ledger) IsCertValid(ctx context.Context, itemID uint64, standard string) bool {
	var valid bool
	err := l.view(ctx, "is_cert_valid", func(tx *sql.Tx, height uint64) error {
		cert, err := store.GetCertification(ctx, tx, itemID, standard)
		if err != nil {
			return err
		}
		valid = cert != nil && cert.ValidAt(height)
		return nil
	})
	if err != nil {
		return false
	}
	return valid
}
