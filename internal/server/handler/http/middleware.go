package http

import (
	"mime"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// recoverer turns a handler panic into a 500 envelope and logs it with the
// stack. http.ErrAbortHandler is re-raised so net/http can abort the response.
func recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.Error("handler panic",
					zap.Any("panic", rvr),
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.Stack("stack"),
				)
				writeEnvelope(w, http.StatusInternalServerError, "internal error", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// requireJSON rejects request bodies that are not declared as JSON with a
// 415 envelope. Bodyless requests pass through.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeEnvelope(w, http.StatusUnsupportedMediaType, "unsupported content type", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
