package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"scamtrap-lab/internal/config"
	"scamtrap-lab/pkg/logger"
)

// ContextKey is a type for context keys
type ContextKey string

// ContextKeyAuthenticated marks requests that presented the real key.
const ContextKeyAuthenticated ContextKey = "authenticated"

// decoyReplies are returned to callers probing with a wrong API key.
// The shape matches a real analyze response so the caller cannot tell
// the request was rejected.
var decoyReplies = []string{
	"Hello? Sorry, I think the connection dropped for a moment.",
	"I'm here, can you repeat that last part?",
	"One second, my phone is acting up.",
}

// APIKeyAuth validates the honeypot API key. Unlike a normal service,
// an invalid key is never answered with 401: adversaries probing the
// endpoint get a decoy success, so the real key cannot be discovered by
// observing status codes. Only requests carrying the real key reach the
// engine.
func APIKeyAuth(cfg config.AuthConfig, log *logger.Logger) func(next http.Handler) http.Handler {
	log = log.WithComponent("auth")
	header := cfg.HeaderName
	if header == "" {
		header = "X-API-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for OPTIONS requests (CORS preflight)
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// No key configured means auth is disabled (dev mode)
			if cfg.APIKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get(header) == cfg.APIKey {
				ctx := context.WithValue(r.Context(), ContextKeyAuthenticated, true)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			log.Warn().
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("invalid API key, serving decoy response")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "success",
				"reply":  decoyReplies[len(r.URL.Path)%len(decoyReplies)],
			})
		})
	}
}

// IsAuthenticated reports whether the request carried the real key.
func IsAuthenticated(ctx context.Context) bool {
	v, ok := ctx.Value(ContextKeyAuthenticated).(bool)
	return ok && v
}
