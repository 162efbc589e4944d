package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go-auth-service/internal/model"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.Claims, error)
}

type revocationChecker interface {
	IsRevoked(key string) bool
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthMiddleware is the request-time authentication gate: it extracts the
// bearer token, verifies it, checks the revocation store, and attaches the
// resolved identity to the request context. It mutates no state.
type AuthMiddleware struct {
	verifier    tokenVerifier
	revocations revocationChecker
}

func NewAuthMiddleware(verifier tokenVerifier, revocations revocationChecker) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, revocations: revocations}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid authorization header")
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			// The reason (malformed/expired/bad signature) stays in the
			// logs; the client sees one generic 401.
			slog.Debug("token rejected", "reason", err, "path", r.URL.Path)
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		if m.revocations.IsRevoked(claims.RevocationKey()) {
			slog.Debug("token rejected", "reason", model.ErrTokenRevoked, "path", r.URL.Path)
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles authorizes the resolved identity against a route's required
// role set. Admin passes every role-gated route.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			if claims.Role != model.RoleAdmin {
				if _, allowed := roleSet[claims.Role]; !allowed {
					writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.Claims)
	return claims, ok
}

// BearerToken extracts the token from the Authorization header. The scheme
// comparison is case-insensitive.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, status int, code string, message string) {
	writeJSONError(w, status, model.APIError{Code: code, Message: message})
}
