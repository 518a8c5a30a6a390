package http

import (
	"net/http"

	"github.com/atinyakov/GophVault/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the vault API.
//
// Routes:
//
//	POST   /add                  → credentialHandler.AddEntry
//	GET    /entries/{owner}      → credentialHandler.GetEntries
//	DELETE /delete/{owner}/{name} → credentialHandler.DeleteEntry
//
// Middleware chain (applied in order):
//  1. RequestID                          — tags each request for the logs
//  2. WithRequestLogging(logger)         — logs incoming requests
//  3. recoverer(logger)                  — turns handler panics into 500 envelopes
//  4. requireJSON                        — rejects non-JSON request bodies with 415
func NewRouter(credentialHandler *CredentialHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(recoverer(logger))
	r.Use(requireJSON)

	r.Post("/add", credentialHandler.AddEntry)
	r.Get("/entries/{owner}", credentialHandler.GetEntries)
	r.Delete("/delete/{owner}/{name}", credentialHandler.DeleteEntry)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
