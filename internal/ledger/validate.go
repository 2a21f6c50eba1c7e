package ledger

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/erazemk/skrbnik/internal/model"
)

// Field limits, in characters.
const (
	MaxTitleLen       = 128
	MaxDetailsLen     = 1024
	MaxLotLen         = 64
	MaxCategoryLen    = 64
	MaxLocationLen    = 128
	MaxMetadataLen    = 256
	MaxNotesLen       = 512
	MaxNameLen        = 128
	MaxRoleLen        = 64
	MaxStandardLen    = 64
	MaxURLLen         = 256
	MaxDestinationLen = 128
	MaxIdentityLen    = 128

	MinTemperature = -100
	MaxTemperature = 100
	MaxHumidity    = 100

	HashSize = 32

	// MaxHeight is the largest height a stored record can refer to.
	MaxHeight = math.MaxInt64
)

func requireText(field, v string, max int) error {
	if v == "" {
		return fmt.Errorf("%w: %s required", ErrInvalidInput, field)
	}
	return optionalText(field, v, max)
}

func optionalText(field, v string, max int) error {
	if !utf8.ValidString(v) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, field)
	}
	if n := utf8.RuneCountInString(v); n > max {
		return fmt.Errorf("%w: %s too long (%d > %d)", ErrInvalidInput, field, n, max)
	}
	return nil
}

// checkIdentity validates an identity named as the target of a delegation
// or transfer.
func checkIdentity(field string, id model.Identity) error {
	if id == model.NullIdentity {
		return fmt.Errorf("%w: %s may not be the null identity", ErrInvalidInput, field)
	}
	return requireText(field, string(id), MaxIdentityLen)
}

func checkCaller(caller model.Identity) error {
	if caller == "" || caller == model.NullIdentity {
		return fmt.Errorf("%w: no caller identity", ErrNotAuthorized)
	}
	return nil
}

func checkHeight(field string, h uint64) error {
	if h > MaxHeight {
		return fmt.Errorf("%w: %s %d out of range", ErrInvalidInput, field, h)
	}
	return nil
}

func checkHash(field string, h []byte) error {
	if len(h) != HashSize {
		return fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidInput, field, HashSize, len(h))
	}
	return nil
}
