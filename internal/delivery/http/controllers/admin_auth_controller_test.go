package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

func TestAdminAuthController_Login(t *testing.T) {
	t.Run("sets admin cookie without exposing token", func(t *testing.T) {
		fake := &fakeAdminAuthService{admin: &domain.AdminUser{ID: "adm-1", Email: "ops@example.com", Role: domain.RoleAdmin}, token: "admin.jwt", expiry: 24 * time.Hour}
		ctrl := NewAdminAuthController(testLogger, fake, CookieOptions{})

		rr := httptest.NewRecorder()
		ctrl.Login(rr, newRequest(t, http.MethodPost, "/admin/auth/login", map[string]any{"email": "ops@example.com", "password": "pw"}))

		require.Equal(t, http.StatusOK, rr.Code)
		c := findCookie(rr, middleware.AdminTokenCookie)
		require.NotNil(t, c)
		assert.Equal(t, "admin.jwt", c.Value)
		assert.Equal(t, 86400, c.MaxAge)
		assert.NotContains(t, rr.Body.String(), "admin.jwt")
	})

	t.Run("invalid credentials", func(t *testing.T) {
		ctrl := NewAdminAuthController(testLogger, &fakeAdminAuthService{err: domain.ErrInvalidCredentials}, CookieOptions{})

		rr := httptest.NewRecorder()
		ctrl.Login(rr, newRequest(t, http.MethodPost, "/admin/auth/login", map[string]any{"email": "ops@example.com", "password": "pw"}))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAdminAuthController_MeAndRefresh(t *testing.T) {
	fake := &fakeAdminAuthService{admin: &domain.AdminUser{ID: "adm-1"}, token: "fresh.jwt", expiry: time.Hour}
	ctrl := NewAdminAuthController(testLogger, fake, CookieOptions{})

	rr := httptest.NewRecorder()
	ctrl.Me(rr, newRequest(t, http.MethodGet, "/admin/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	ctrl.Me(rr, withAdmin(newRequest(t, http.MethodGet, "/admin/auth/me", nil), "adm-1"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "adm-1", fake.lastID)

	rr = httptest.NewRecorder()
	ctrl.Refresh(rr, withAdmin(newRequest(t, http.MethodPost, "/admin/auth/refresh", nil), "adm-1"))
	require.Equal(t, http.StatusOK, rr.Code)
	c := findCookie(rr, middleware.AdminTokenCookie)
	require.NotNil(t, c)
	assert.Equal(t, "fresh.jwt", c.Value)
}

func TestAdminAuthController_Logout(t *testing.T) {
	ctrl := NewAdminAuthController(testLogger, &fakeAdminAuthService{}, CookieOptions{})

	rr := httptest.NewRecorder()
	ctrl.Logout(rr, newRequest(t, http.MethodPost, "/admin/auth/logout", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	c := findCookie(rr, middleware.AdminTokenCookie)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestAdminAuthController_CreateAdmin(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
	}{
		{name: "success", body: map[string]any{"email": "New@Example.com", "password": "longenough", "name": " Ops "}, wantStatus: http.StatusCreated},
		{name: "missing name", body: map[string]any{"email": "new@example.com", "password": "longenough"}, wantStatus: http.StatusBadRequest},
		{name: "duplicate", body: map[string]any{"email": "new@example.com", "password": "longenough", "name": "Ops"}, svcErr: domain.ErrDuplicateEmail, wantStatus: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAdminAuthService{admin: &domain.AdminUser{ID: "adm-2"}, err: tt.svcErr}
			ctrl := NewAdminAuthController(testLogger, fake, CookieOptions{})

			rr := httptest.NewRecorder()
			ctrl.CreateAdmin(rr, newRequest(t, http.MethodPost, "/admin/auth/admins", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "new@example.com", fake.lastEmail)
				assert.Equal(t, "Ops", fake.lastName)
			}
		})
	}
}
