package api

import (
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/model"
)

// CertsHandler handles item certifications.
type CertsHandler struct {
	Ledger *ledger.Ledger
}

type addCertRequest struct {
	Expires uint64       `json:"expires"`
	Hash    model.Digest `json:"hash"`
	URL     string       `json:"url"`
}

type certValidResponse struct {
	ItemID   uint64 `json:"item_id"`
	Standard string `json:"standard"`
	Valid    bool   `json:"valid"`
}

// List handles GET /api/items/{id}/certs.
func (h *CertsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	certs, err := h.Ledger.ListCerts(r.Context(), id)
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(certs))
}

// Get handles GET /api/items/{id}/certs/{standard}.
func (h *CertsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	cert, err := h.Ledger.GetCert(r.Context(), id, r.PathValue("standard"))
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, cert)
}

// Add handles PUT /api/items/{id}/certs/{standard}.
func (h *CertsHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	var req addCertRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cert, err := h.Ledger.AddCert(r.Context(), caller(r), id, ledger.CertInput{
		Standard: r.PathValue("standard"),
		Expires:  req.Expires,
		Hash:     req.Hash,
		URL:      req.URL,
	})
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, cert)
}

// Revoke handles DELETE /api/items/{id}/certs/{standard}.
func (h *CertsHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	if err := h.Ledger.RevokeCert(r.Context(), caller(r), id, r.PathValue("standard")); err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "certification revoked"})
}

// Valid handles GET /api/items/{id}/certs/{standard}/valid. It needs no
// token and answers false for anything it cannot find.
func (h *CertsHandler) Valid(w http.ResponseWriter, r *http.Request) {
	id, err := pathUint(r, "id")
	if err != nil {
		ledgerError(w, r, err)
		return
	}

	standard := r.PathValue("standard")
	jsonResponse(w, http.StatusOK, certValidResponse{
		ItemID:   id,
		Standard: standard,
		Valid:    h.Ledger.IsCertValid(r.Context(), id, standard),
	})
}
