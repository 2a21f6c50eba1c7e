package model

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
)

// Digest is a content hash. It travels as hex in JSON and as a blob in the
// database.
type Digest []byte

func (d Digest) String() string { return hex.EncodeToString(d) }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(d)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("digest must be hex: %w", err)
	}
	*d = b
	return nil
}

// Value implements driver.Valuer.
func (d Digest) Value() (driver.Value, error) {
	return []byte(d), nil
}

// Scan implements sql.Scanner.
func (d *Digest) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		*d = append(Digest(nil), v...)
	case nil:
		*d = nil
	default:
		return fmt.Errorf("cannot scan %T into Digest", src)
	}
	return nil
}
