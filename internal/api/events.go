package api

import (
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
)

// EventsHandler handles an item's event history.
type EventsHandler struct {
	Ledger *ledger.Ledger
}

// List handles GET /api/items/{id}/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	events, err := h.Ledger.ListEvents(r.Context(), id)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(events))
}

// Add handles POST /api/items/{id}/events.
func (h *EventsHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	var req ledger.EventInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Ledger.AddEvent(r.Context(), caller(r), id, req)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, event)
}

// Get handles GET /api/items/{id}/events/{kind}/{eventID}.
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	event, err := h.Ledger.GetEvent(r.Context(), id, r.PathValue("kind"), eventID)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, event)
}
