// Package middleware holds the HTTP middleware shared by the dashboard API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ukydev/fleet-tracking/internal/auth"
	"github.com/ukydev/fleet-tracking/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	UserContextKey contextKey = "user"
)

// AuthMiddleware provides JWT authentication. A nil service disables
// authentication and every permission check passes.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Enabled reports whether requests are authenticated.
func (m *AuthMiddleware) Enabled() bool {
	return m != nil && m.authService != nil
}

// Authenticate validates JWT tokens and adds the claims to the request
// context. Public paths never require a token, but a valid one still
// identifies the caller.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			if claims, err := m.authService.ValidateToken(r.Header.Get("Authorization")); err == nil {
				r = withUser(r, claims)
			}
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(authHeader)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, withUser(r, claims))
	})
}

// RequirePermission rejects requests whose role lacks the permission.
func (m *AuthMiddleware) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "User context not found", http.StatusUnauthorized)
				return
			}
			if !claims.Role.Allows(permission) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// withUser stores claims on the request and reports them to an enclosing
// RequestLogger.
func withUser(r *http.Request, claims *models.Claims) *http.Request {
	if c, ok := r.Context().Value(callerKey{}).(*caller); ok {
		c.claims = claims
	}
	return r.WithContext(context.WithValue(r.Context(), UserContextKey, claims))
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

var (
	publicPaths = map[string]bool{
		"/":                  true,
		"/dashboard":         true,
		"/api":               true,
		"/health":            true,
		"/api/auth/login":    true,
		"/api/auth/register": true,
	}
	publicPrefixes = []string{"/static/"}
)

// isPublicPath reports whether path is served without a token.
func isPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
