// Package apikey guards service-to-service endpoints with a shared key header.
package apikey

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"zkid/pkg/requestcontext"
)

// Header carries the shared key on service-to-service calls.
const Header = "X-API-Key"

// Require rejects requests whose X-API-Key does not match expected.
// An empty expected key disables the check (local development).
func Require(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(Header)
			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "api key mismatch",
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"api key required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
