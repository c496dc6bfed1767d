// Package auth turns a bearer token into the caller principal stored in the
// request context. Whether that principal may act is decided by the services.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "zkid/pkg/domain"
	"zkid/pkg/platform/httputil"
	"zkid/pkg/requestcontext"
)

// Authenticator resolves a bearer token to the principal it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (id.Principal, error)
}

// RequirePrincipal answers 401 when the Authorization header is missing, is
// not a bearer token, or does not authenticate.
func RequirePrincipal(authn Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				reject(ctx, w, logger, "missing bearer token", nil)
				return
			}
			principal, err := authn.Authenticate(ctx, token)
			if err != nil {
				reject(ctx, w, logger, "token rejected", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}

// bearer extracts the token from "Bearer <token>"; the scheme is
// case-insensitive per RFC 6750.
func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func reject(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, reason string, err error) {
	attrs := []any{"reason", reason, "request_id", requestcontext.RequestID(ctx)}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	logger.WarnContext(ctx, "unauthenticated request", attrs...)

	w.Header().Set("WWW-Authenticate", `Bearer realm="zkid"`)
	httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthenticated",
		"error_description": "a valid bearer token is required",
	})
}
