package api

import (
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
)

// ChainHandler reports ledger-wide state.
type ChainHandler struct {
	Ledger *ledger.Ledger
}

// Get handles GET /api/chain.
func (h *ChainHandler) Get(w http.ResponseWriter, r *http.Request) {
	height, err := h.Ledger.Height(r.Context())
	if err != nil {
		ledgerError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]uint64{"height": height})
}
