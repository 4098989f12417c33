package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	claims *domain.Claims
	err    error
	got    string
}

func (f *fakeTokenVerifier) Verify(token string) (*domain.Claims, error) {
	f.got = token
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRequireUser(t *testing.T) {
	userClaims := &domain.Claims{Subject: "user-123", Email: "a@example.com", Role: domain.RoleUser}
	adminClaims := &domain.Claims{Subject: "admin-1", Role: domain.RoleAdmin}

	tests := []struct {
		name          string
		authHeader    string
		cookie        string
		verifier      *fakeTokenVerifier
		wantStatus    int
		wantBodyCode  string
		wantContextID string
		wantToken     string
	}{
		{
			name:          "valid bearer token sets context and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{claims: userClaims},
			wantStatus:    http.StatusOK,
			wantContextID: "user-123",
			wantToken:     "valid-token",
		},
		{
			name:          "cookie token",
			cookie:        "cookie-token",
			verifier:      &fakeTokenVerifier{claims: userClaims},
			wantStatus:    http.StatusOK,
			wantContextID: "user-123",
			wantToken:     "cookie-token",
		},
		{
			name:         "missing credentials",
			verifier:     &fakeTokenVerifier{claims: userClaims},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			verifier:     &fakeTokenVerifier{claims: userClaims},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     &fakeTokenVerifier{claims: userClaims},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.New("token is expired")},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "admin token on user route",
			authHeader:   "Bearer admin-token",
			verifier:     &fakeTokenVerifier{claims: adminClaims},
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				capturedUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireUser(tt.verifier, testLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: UserTokenCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.wantStatus == http.StatusOK, nextCalled, "next handler called")
			if tt.wantContextID != "" {
				assert.Equal(t, tt.wantContextID, capturedUserID, "user ID in context")
				assert.Equal(t, tt.wantToken, tt.verifier.got)
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				assert.False(t, envelope.Success)
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Code)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		cookie     string
		bearer     string
		verifier   *fakeTokenVerifier
		wantStatus int
	}{
		{
			name:       "admin cookie",
			cookie:     "admin-token",
			verifier:   &fakeTokenVerifier{claims: &domain.Claims{Subject: "admin-1", Role: domain.RoleAdmin}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "bearer header is not accepted",
			bearer:     "Bearer admin-token",
			verifier:   &fakeTokenVerifier{claims: &domain.Claims{Subject: "admin-1", Role: domain.RoleAdmin}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong role",
			cookie:     "user-token",
			verifier:   &fakeTokenVerifier{claims: &domain.Claims{Subject: "user-1", Role: domain.RoleUser}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "expired",
			cookie:     "old",
			verifier:   &fakeTokenVerifier{err: errors.New("token is expired")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var claims *domain.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, _ = ClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "http://test/admin/auth/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AdminTokenCookie, Value: tt.cookie})
			}
			if tt.bearer != "" {
				req.Header.Set("Authorization", tt.bearer)
			}
			rr := httptest.NewRecorder()
			RequireAdmin(tt.verifier, testLogger())(next).ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, claims)
				assert.Equal(t, "admin-1", claims.Subject)
			}
		})
	}
}
