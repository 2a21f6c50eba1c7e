package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/skrbnik/internal/ledger"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

var statusByCode = map[string]int{
	ledger.CodeInvalidInput:  http.StatusBadRequest,
	ledger.CodeInvalidExpiry: http.StatusBadRequest,
	ledger.CodeItemNotFound:  http.StatusNotFound,
	ledger.CodeNotFound:      http.StatusNotFound,
	ledger.CodeNotAuthorized: http.StatusForbidden,
	ledger.CodeNotRecipient:  http.StatusForbidden,
	ledger.CodeNotAuthority:  http.StatusForbidden,
	ledger.CodeOnlyCreator:   http.StatusForbidden,
	ledger.CodeItemRecalled:  http.StatusConflict,
	ledger.CodeNotPending:    http.StatusConflict,
}

// ledgerError writes a failed ledger operation. Errors without a ledger
// code are logged and hidden behind a 500.
func ledgerError(w http.ResponseWriter, r *http.Request, err error) {
	code := ledger.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	jsonResponse(w, status, errorBody{Error: err.Error(), Code: code})
}

// pathUint parses a numeric path segment. Failures carry ErrInvalidInput so
// they render like any other ledger validation error.
func pathUint(r *http.Request, name string) (uint64, error) {
	v, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a valid id", ledger.ErrInvalidInput, name, r.PathValue(name))
	}
	return v, nil
}

// emptyIfNil keeps list endpoints returning [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
