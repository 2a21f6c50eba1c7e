package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/model"
	"github.com/erazemk/skrbnik/internal/store"
)

// AccountsHandler handles account management endpoints (admin only).
type AccountsHandler struct {
	DB *sql.DB
}

type createAccountRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.ListAccounts(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list accounts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(accounts))
}

// Create handles POST /api/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Identity == "" || req.Password == "" || req.Role == "" {
		jsonError(w, http.StatusBadRequest, "identity, password, and role required")
		return
	}
	if model.Identity(req.Identity) == model.NullIdentity || len([]rune(req.Identity)) > ledger.MaxIdentityLen {
		jsonError(w, http.StatusBadRequest, "invalid identity")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	account, err := store.CreateAccount(r.Context(), h.DB, model.Identity(req.Identity), string(hash), req.Role)
	if err != nil {
		// Identities stay reserved after deletion, so this also covers reuse.
		jsonError(w, http.StatusConflict, "identity already taken")
		return
	}

	slog.Info("account created", "identity", caller(r), "new_identity", account.Identity, "role", account.Role)
	jsonResponse(w, http.StatusCreated, account)
}

// Delete handles DELETE /api/accounts/{id}.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	claims := GetClaims(r.Context())
	if claims != nil && claims.AccountID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	target, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}
	if target == nil || target.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := store.DeleteAccount(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete account", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}

	slog.Info("account deleted", "identity", caller(r), "deleted_identity", target.Identity)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "account deleted"})
}
