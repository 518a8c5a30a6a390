// Package http provides the HTTP handlers of the vault API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/atinyakov/GophVault/internal/models"
	"github.com/atinyakov/GophVault/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CredentialService defines the vault operations required by the handlers.
type CredentialService interface {
	// Create stores a record whose password is already a digest.
	Create(ctx context.Context, e models.NewEntry) (models.CredentialRecord, error)
	// ListByOwner returns all records of owner; empty is not an error.
	ListByOwner(ctx context.Context, owner string) ([]models.CredentialRecord, error)
	// ConditionalDelete removes all records matching the pair and returns the count.
	ConditionalDelete(ctx context.Context, owner, name string) (int64, error)
}

// CredentialHandler serves /add, /entries and /delete.
type CredentialHandler struct {
	// CredentialService performs the underlying vault operations.
	CredentialService CredentialService
	// Logger records storage failures. A nil Logger disables logging.
	Logger *zap.Logger
}

// AddEntry handles POST /add. The body is {owner, name, username, password}
// with password already hashed by the client.
func (h *CredentialHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req models.NewEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	rec, err := h.CredentialService.Create(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrInvalidEntry), errors.Is(err, service.ErrPlaintextPassword):
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		h.logger().Error("failed to add record", zap.String("owner", req.Owner), zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, "Failed to add record", nil)
		return
	}

	writeEnvelope(w, http.StatusCreated, "Record added successfully", rec)
}

// GetEntries handles GET /entries/{owner}.
func (h *CredentialHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	owner := pathParam(r, "owner")

	records, err := h.CredentialService.ListByOwner(r.Context(), owner)
	switch {
	case errors.Is(err, service.ErrInvalidEntry):
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		h.logger().Error("failed to retrieve records", zap.String("owner", owner), zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, "Failed to retrieve entries", nil)
		return
	}

	if len(records) == 0 {
		writeEnvelope(w, http.StatusOK, "Entries retrieved successfully", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "Entries retrieved successfully", records)
}

// DeleteEntry handles DELETE /delete/{owner}/{name}. The caller is trusted to
// have verified a plaintext against the stored digest beforehand.
func (h *CredentialHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	owner, name := pathParam(r, "owner"), pathParam(r, "name")

	n, err := h.CredentialService.ConditionalDelete(r.Context(), owner, name)
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeEnvelope(w, http.StatusNotFound, "No matching records found.", nil)
		return
	case errors.Is(err, service.ErrInvalidEntry):
		writeEnvelope(w, http.StatusBadRequest, err.Error(), nil)
		return
	case err != nil:
		h.logger().Error("failed to delete record", zap.String("owner", owner), zap.Error(err))
		writeEnvelope(w, http.StatusInternalServerError, "Failed to delete record", nil)
		return
	}

	if n > 1 {
		h.logger().Warn("delete removed several records", zap.String("owner", owner), zap.Int64("count", n))
	}
	writeEnvelope(w, http.StatusOK, "Record deleted successfully", nil)
}

func (h *CredentialHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// pathParam returns the decoded URL parameter. chi matches on the raw path
// when the request carried escaped characters, so those need unescaping.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(models.Envelope{
		Message:  message,
		HTTPCode: status,
		Data:     data,
	})
}
