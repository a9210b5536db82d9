package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pathwise/pathwise/internal/auth"
	"github.com/pathwise/pathwise/internal/cache"
)

// RateLimitConfig holds configuration for the rate limit middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Cache   *cache.Cache
	Enabled bool
	// RPM is the sustained request rate per caller per minute.
	RPM   int
	Burst int
}

// RateLimit returns a middleware that throttles mutations per caller.
// Profile updates can trigger an expensive insight computation, so the
// budget is deliberately low. Redis failures fail open.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			externalID := auth.ExternalIDFromContext(r.Context())
			if externalID == "" {
				// Auth middleware rejects these; nothing to key on here.
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Cache.CheckCallerRateLimit(r.Context(), externalID, cfg.RPM, cfg.Burst)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":{"code":"RATE_LIMITED","message":"Too many requests"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
