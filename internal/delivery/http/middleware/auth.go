package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

type contextKey string

const claimsKey contextKey = "claims"

// Cookie names carrying signed tokens.
const (
	UserTokenCookie  = "auth_token"
	AdminTokenCookie = "admin_token"
)

// SetClaims returns a context carrying the authenticated principal's claims.
func SetClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the authenticated claims from the context, if present.
func ClaimsFromContext(ctx context.Context) (*domain.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*domain.Claims)
	return c, ok && c != nil
}

// UserIDFromContext returns the authenticated subject from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}

// RequireUser validates an end-user token from the Bearer header or the auth_token cookie.
// Missing or invalid tokens get a 401; tokens with any role other than user get a 403.
func RequireUser(verifier domain.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(verifier, logger, domain.RoleUser, func(r *http.Request) (string, string) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) {
				return "", "invalid authorization format"
			}
			return strings.TrimSpace(auth[len(prefix):]), "missing token"
		}
		if c, err := r.Cookie(UserTokenCookie); err == nil {
			return c.Value, "missing token"
		}
		return "", "missing authorization header"
	})
}

// RequireAdmin validates the admin token carried in the HTTP-only admin_token cookie.
func RequireAdmin(verifier domain.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(verifier, logger, domain.RoleAdmin, func(r *http.Request) (string, string) {
		c, err := r.Cookie(AdminTokenCookie)
		if err != nil {
			return "", "missing admin token"
		}
		return c.Value, "missing admin token"
	})
}

// extractFunc returns the raw token and the message to report when it is empty.
type extractFunc func(r *http.Request) (token, emptyMsg string)

func requireRole(verifier domain.TokenVerifier, logger *slog.Logger, role string, extract extractFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, emptyMsg := extract(r)
			if token == "" {
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, emptyMsg)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, sl.Err(err))
				helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			if claims.Role != role {
				helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), claims)))
		})
	}
}
