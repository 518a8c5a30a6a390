package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/GophVault/internal/models"
	handler "github.com/atinyakov/GophVault/internal/server/handler/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// panickingService blows up on every list call.
type panickingService struct {
	fakeCredentialService
}

func (*panickingService) ListByOwner(context.Context, string) ([]models.CredentialRecord, error) {
	panic("boom")
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %q", rec.Body.String())
	assert.Equal(t, rec.Code, env.HTTPCode)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	return env
}

func TestRouter_UnsupportedContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantCode    int
	}{
		{"missing", "", http.StatusUnsupportedMediaType},
		{"form", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"text", "text/plain; charset=utf-8", http.StatusUnsupportedMediaType},
		{"json with charset", "application/json; charset=utf-8", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCredentialService{}
			router := handler.NewRouter(&handler.CredentialHandler{CredentialService: svc, Logger: zap.NewNop()}, zap.NewNop())

			req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(`{"owner":"Andrew"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			env := decodeEnvelope(t, rec)
			if tt.wantCode == http.StatusUnsupportedMediaType {
				assert.Equal(t, "unsupported content type", env.Message)
				assert.Empty(t, svc.created.Owner, "handler must not run")
			}
		})
	}
}

func TestRouter_PanicBecomesEnvelope(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := zap.New(core)
	router := handler.NewRouter(&handler.CredentialHandler{CredentialService: &panickingService{}, Logger: logger}, logger)

	req := httptest.NewRequest(http.MethodGet, "/entries/Andrew", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "internal error", env.Message)
	assert.Empty(t, env.Data)
	assert.Equal(t, 1, logs.FilterMessage("handler panic").Len())
}
