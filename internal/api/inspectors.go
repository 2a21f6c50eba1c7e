package api

import (
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/model"
)

// InspectorsHandler handles the caller's delegations. The caller is always
// the organization.
type InspectorsHandler struct {
	Ledger *ledger.Ledger
}

type authorizeInspectorRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// List handles GET /api/inspectors.
func (h *InspectorsHandler) List(w http.ResponseWriter, r *http.Request) {
	inspectors, err := h.Ledger.ListInspectors(r.Context(), caller(r))
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(inspectors))
}

// Authorize handles PUT /api/inspectors/{identity}.
func (h *InspectorsHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req authorizeInspectorRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inspector := model.Identity(r.PathValue("identity"))
	rec, err := h.Ledger.AuthorizeInspector(r.Context(), caller(r), inspector, req.Name, req.Role)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// Revoke handles DELETE /api/inspectors/{identity}.
func (h *InspectorsHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	inspector := model.Identity(r.PathValue("identity"))
	if err := h.Ledger.RevokeInspector(r.Context(), caller(r), inspector); err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "inspector revoked"})
}
