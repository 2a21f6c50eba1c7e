package ledger

import "errors"

// Ledger failures. Every failure leaves the store untouched.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrItemNotFound  = errors.New("item not found")
	ErrNotFound      = errors.New("record not found") // events, inspector records, certifications
	ErrNotAuthorized = errors.New("not authorized")
	ErrItemRecalled  = errors.New("item recalled")
	ErrNotRecipient  = errors.New("not the transfer recipient")
	ErrNotPending    = errors.New("transfer not pending")
	ErrInvalidExpiry = errors.New("expiry not in the future")
	ErrNotAuthority  = errors.New("not the issuing authority")
	ErrOnlyCreator   = errors.New("only the item creator may do this")
)

// Stable error codes, safe to show to callers.
const (
	CodeInvalidInput  = "invalid_input"
	CodeItemNotFound  = "item_not_found"
	CodeNotFound      = "not_found"
	CodeNotAuthorized = "not_authorized"
	CodeItemRecalled  = "item_recalled"
	CodeNotRecipient  = "not_recipient"
	CodeNotPending    = "not_pending"
	CodeInvalidExpiry = "invalid_expiry"
	CodeNotAuthority  = "not_authority"
	CodeOnlyCreator   = "only_creator"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidInput, CodeInvalidInput},
	{ErrItemNotFound, CodeItemNotFound},
	{ErrNotFound, CodeNotFound},
	{ErrNotAuthorized, CodeNotAuthorized},
	{ErrItemRecalled, CodeItemRecalled},
	{ErrNotRecipient, CodeNotRecipient},
	{ErrNotPending, CodeNotPending},
	{ErrInvalidExpiry, CodeInvalidExpiry},
	{ErrNotAuthority, CodeNotAuthority},
	{ErrOnlyCreator, CodeOnlyCreator},
}

// Code returns the stable code of a ledger error, or "" if err is not one.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}
