package api

import (
	"context"
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/model"
)

type resolveFunc func(ctx context.Context, caller model.Identity, itemID, eventID uint64) (*model.Event, error)

// TransfersHandler handles the recipient side of custody transfers.
type TransfersHandler struct {
	Ledger *ledger.Ledger
}

// Accept handles POST /api/items/{id}/transfers/{eventID}/accept.
func (h *TransfersHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Ledger.AcceptTransfer)
}

// Reject handles POST /api/items/{id}/transfers/{eventID}/reject.
func (h *TransfersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.Ledger.RejectTransfer)
}

func (h *TransfersHandler) resolve(w http.ResponseWriter, r *http.Request, op resolveFunc) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	eventID, err := pathUint(r, "eventID")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	event, err := op(r.Context(), caller(r), id, eventID)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, event)
}

// Pending handles GET /api/transfers/pending: transfers waiting for the
// caller to accept or reject them.
func (h *TransfersHandler) Pending(w http.ResponseWriter, r *http.Request) {
	events, err := h.Ledger.PendingTransfers(r.Context(), caller(r))
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(events))
}
