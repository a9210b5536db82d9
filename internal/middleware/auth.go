package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pathwise/pathwise/internal/auth"
	"github.com/pathwise/pathwise/internal/model"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	// Secret verifies provider-issued session tokens.
	Secret []byte
}

// Auth returns a middleware that authenticates API requests.
// It extracts the session token from the Authorization header, verifies
// it, and injects the caller Identity into the request context. Absence
// of a valid token fails fast before any downstream I/O.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			externalID, err := auth.ParseSessionToken(token, cfg.Secret)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			ident := &model.Identity{ExternalID: externalID}
			ctx := auth.ContextWithIdentity(r.Context(), ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken extracts the bearer token from the request.
func extractSessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing session token"}}`))
}
