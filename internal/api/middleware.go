package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/terra-clan/learning-tracker/internal/auth"
)

// TokenVerifier resolves a bearer token to its claims
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware handles bearer token authentication
type AuthMiddleware struct {
	verifier TokenVerifier
}

// NewAuthMiddleware creates new auth middleware
func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate verifies the token from the Authorization header
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, false)
}

// AuthenticateStream also accepts ?token=, since browsers cannot set headers
// on websocket handshakes.
func (m *AuthMiddleware) AuthenticateStream(next http.Handler) http.Handler {
	return m.authenticate(next, true)
}

func (m *AuthMiddleware) authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r, allowQuery)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "provide Authorization header with a Bearer token")
			return
		}

		claims, err := m.verifier.Authenticate(r.Context(), token)
		if err != nil {
			var authErr *auth.Error
			if errors.As(err, &authErr) {
				slog.Debug("rejected token", "code", authErr.Code, "remote_addr", r.RemoteAddr)
				respondError(w, http.StatusUnauthorized, authErr.Code, authErr.Message)
				return
			}
			slog.Error("failed to authenticate request", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", unexpectedMessage)
			return
		}

		ctx := ContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken reads "Bearer <jwt>" from the Authorization header
func extractToken(r *http.Request, allowQuery bool) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
		return ""
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}
