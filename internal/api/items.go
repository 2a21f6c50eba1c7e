package api

import (
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/model"
)

// ItemsHandler handles item registry endpoints.
type ItemsHandler struct {
	Ledger *ledger.Ledger
}

type deliveryRequest struct {
	Destination string `json:"destination"`
	Arrival     uint64 `json:"arrival"`
}

type recallRequest struct {
	Reason string `json:"reason"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.Ledger.ListItems(r.Context(), model.ItemFilter{
		Keeper:  model.Identity(q.Get("keeper")),
		Creator: model.Identity(q.Get("creator")),
		Status:  q.Get("status"),
	})
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}

// Register handles POST /api/items.
func (h *ItemsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req ledger.Registration
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Ledger.Register(r.Context(), caller(r), req)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	item, err := h.Ledger.GetItem(r.Context(), id)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Verify handles GET /api/items/{id}/verify. It needs no token.
func (h *ItemsHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	v, err := h.Ledger.VerifyItem(r.Context(), id)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, v)
}

// SetDelivery handles PUT /api/items/{id}/delivery.
func (h *ItemsHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	var req deliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Ledger.SetDelivery(r.Context(), caller(r), id, req.Destination, req.Arrival)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Recall handles POST /api/items/{id}/recall.
func (h *ItemsHandler) Recall(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	var req recallRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.Ledger.Recall(r.Context(), caller(r), id, req.Reason)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, event)
}

// MarkSold handles POST /api/items/{id}/sold.
func (h *ItemsHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	item, err := h.Ledger.MarkSold(r.Context(), caller(r), id)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}
