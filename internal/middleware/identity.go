// Package middleware provides the HTTP middleware chain: identity
// extraction, tracing/logging, metrics, rate limiting and CORS.
package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	installIDKey contextKey = "install_id"
)

// Inbound identity headers. The user ID is an upstream authentication claim
// forwarded by the gateway; the install ID identifies one app install and
// keys the free-tier counter.
const (
	UserIDHeader    = "X-User-ID"
	InstallIDHeader = "X-Install-ID"
)

// IdentityMiddleware copies the identity headers onto the request context.
// Both are optional; handlers that require one reject the request themselves.
func IdentityMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := r.Header.Get(UserIDHeader); userID != "" {
				ctx = context.WithValue(ctx, userIDKey, userID)
			}
			if installID := r.Header.Get(InstallIDHeader); installID != "" {
				ctx = context.WithValue(ctx, installIDKey, installID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user ID from the context, or "".
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// GetInstallID returns the install ID from the context, or "".
func GetInstallID(ctx context.Context) string {
	if v, ok := ctx.Value(installIDKey).(string); ok {
		return v
	}
	return ""
}
