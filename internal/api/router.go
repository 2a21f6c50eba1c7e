package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/skrbnik/internal/ledger"
	"github.com/erazemk/skrbnik/internal/model"
)

// NewRouter creates the API router with all endpoints registered. metrics
// is mounted at /metrics when non-nil.
func NewRouter(db *sql.DB, l *ledger.Ledger, jwtSecret string, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	accountsHandler := &AccountsHandler{DB: db}
	chainHandler := &ChainHandler{Ledger: l}
	itemsHandler := &ItemsHandler{Ledger: l}
	eventsHandler := &EventsHandler{Ledger: l}
	transfersHandler := &TransfersHandler{Ledger: l}
	inspectorsHandler := &InspectorsHandler{Ledger: l}
	certsHandler := &CertsHandler{Ledger: l}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login and the public-trust reads.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items/{id}/verify", itemsHandler.Verify)
	mux.HandleFunc("GET /api/items/{id}/certs/{standard}/valid", certsHandler.Valid)

	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Accounts (admin only).
	mux.Handle("GET /api/accounts", authMW(requireAdmin(http.HandlerFunc(accountsHandler.List))))
	mux.Handle("POST /api/accounts", authMW(requireAdmin(http.HandlerFunc(accountsHandler.Create))))
	mux.Handle("DELETE /api/accounts/{id}", authMW(requireAdmin(http.HandlerFunc(accountsHandler.Delete))))

	mux.Handle("GET /api/chain", authed(chainHandler.Get))

	// Items. Ledger authorization is per identity, not per account role.
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("POST /api/items", authed(itemsHandler.Register))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}/delivery", authed(itemsHandler.SetDelivery))
	mux.Handle("POST /api/items/{id}/recall", authed(itemsHandler.Recall))
	mux.Handle("POST /api/items/{id}/sold", authed(itemsHandler.MarkSold))

	// Events and transfers.
	mux.Handle("GET /api/items/{id}/events", authed(eventsHandler.List))
	mux.Handle("POST /api/items/{id}/events", authed(eventsHandler.Add))
	mux.Handle("GET /api/items/{id}/events/{kind}/{eventID}", authed(eventsHandler.Get))
	mux.Handle("POST /api/items/{id}/transfers/{eventID}/accept", authed(transfersHandler.Accept))
	mux.Handle("POST /api/items/{id}/transfers/{eventID}/reject", authed(transfersHandler.Reject))
	mux.Handle("GET /api/transfers/pending", authed(transfersHandler.Pending))

	// Inspectors of the calling organization.
	mux.Handle("GET /api/inspectors", authed(inspectorsHandler.List))
	mux.Handle("PUT /api/inspectors/{identity}", authed(inspectorsHandler.Authorize))
	mux.Handle("DELETE /api/inspectors/{identity}", authed(inspectorsHandler.Revoke))

	// Certifications.
	mux.Handle("GET /api/items/{id}/certs", authed(certsHandler.List))
	mux.Handle("GET /api/items/{id}/certs/{standard}", authed(certsHandler.Get))
	mux.Handle("PUT /api/items/{id}/certs/{standard}", authed(certsHandler.Add))
	mux.Handle("DELETE /api/items/{id}/certs/{standard}", authed(certsHandler.Revoke))

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return mux
}
