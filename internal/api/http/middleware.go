package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"buyback-backend/internal/logger"
	"buyback-backend/internal/security"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// requireRole verifies the bearer token and checks its role claim. Identity
// issuing lives outside this service; we only validate.
func requireRole(tokens security.TokenManager, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
				return
			}
			if role != "" && claims.Role != role {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient role"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// claimsFrom returns the validated claims attached by requireRole, if any.
func claimsFrom(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*security.Claims)
	return claims, ok
}

// actorFrom names the caller for status history entries. Unauthenticated
// routes (submission, customer actions via signed links) act as "customer".
func actorFrom(ctx context.Context) string {
	if claims, ok := claimsFrom(ctx); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "customer"
}

// requestLogging logs each request with its duration.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
