package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

func sampleUser() *domain.User {
	now := time.Now()
	return &domain.User{ID: testUserID, Email: "a@b.com", Name: "Alice", IsActive: true, CreatedAt: now, UpdatedAt: now}
}

func TestUserController_SignUp(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		svcErr     error
		wantStatus int
		wantCode   string
		wantErrors []string
	}{
		{
			name:       "padded email rejected",
			body:       map[string]any{"email": " Alice@B.com ", "password": "hunter2hunter2", "name": " Alice "},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"email must be a valid email address"},
		},
		{
			name:       "success",
			body:       map[string]any{"email": "Alice@B.com", "password": "hunter2hunter2", "name": " Alice ", "referral_code": "AB12CD34"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       map[string]any{"email": "a@b.com", "password": "short"},
			wantStatus: http.StatusBadRequest,
			wantErrors: []string{"password must be at least 8 characters"},
		},
		{
			name:       "unknown referral code",
			body:       map[string]any{"email": "a@b.com", "password": "hunter2hunter2", "referral_code": "ZZZZZZZZ"},
			svcErr:     domain.ErrInvalidReferral,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "duplicate email",
			body:       map[string]any{"email": "a@b.com", "password": "hunter2hunter2"},
			svcErr:     domain.ErrDuplicateEmail,
			wantStatus: http.StatusConflict,
			wantCode:   helpers.ErrCodeConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{user: sampleUser(), err: tt.svcErr}
			ctrl := NewUserController(testLogger, fake, CookieOptions{}, time.Hour)

			rr := httptest.NewRecorder()
			ctrl.SignUp(rr, newRequest(t, http.MethodPost, "/auth/signup", tt.body))

			require.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Code)
			}
			if tt.wantErrors != nil {
				assert.Equal(t, tt.wantErrors, env.Errors)
			}
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "alice@b.com", fake.lastEmail)
				assert.Equal(t, "Alice", fake.lastName)
				assert.Equal(t, "AB12CD34", fake.lastReferral)
			}
		})
	}
}

func TestUserController_Login(t *testing.T) {
	t.Run("sets cookie and returns token", func(t *testing.T) {
		fake := &fakeUserService{user: sampleUser(), token: "signed.jwt.token"}
		ctrl := NewUserController(testLogger, fake, CookieOptions{Secure: true}, 2*time.Hour)

		rr := httptest.NewRecorder()
		ctrl.Login(rr, newRequest(t, http.MethodPost, "/auth/login", map[string]any{"email": "a@b.com", "password": "pw"}))

		require.Equal(t, http.StatusOK, rr.Code)
		var got LoginResponse
		decodeData(t, decodeEnvelope(t, rr), &got)
		assert.Equal(t, "signed.jwt.token", got.Token)
		assert.Equal(t, "Bearer", got.TokenType)
		assert.Equal(t, 7200, got.ExpiresIn)

		c := findCookie(rr, middleware.UserTokenCookie)
		require.NotNil(t, c)
		assert.Equal(t, "signed.jwt.token", c.Value)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
	})

	t.Run("bad credentials", func(t *testing.T) {
		fake := &fakeUserService{err: domain.ErrInvalidCredentials}
		ctrl := NewUserController(testLogger, fake, CookieOptions{}, time.Hour)

		rr := httptest.NewRecorder()
		ctrl.Login(rr, newRequest(t, http.MethodPost, "/auth/login", map[string]any{"email": "a@b.com", "password": "pw"}))

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, findCookie(rr, middleware.UserTokenCookie))
	})
}

func TestUserController_Logout(t *testing.T) {
	ctrl := NewUserController(testLogger, &fakeUserService{}, CookieOptions{}, time.Hour)

	rr := httptest.NewRecorder()
	ctrl.Logout(rr, newRequest(t, http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	c := findCookie(rr, middleware.UserTokenCookie)
	require.NotNil(t, c)
	assert.Less(t, c.MaxAge, 0)
}

func TestUserController_GetMe(t *testing.T) {
	tests := []struct {
		name          string
		contextUserID string
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
	}{
		{name: "success", contextUserID: testUserID, wantStatus: http.StatusOK},
		{name: "no user in context", wantStatus: http.StatusUnauthorized, wantBodyCode: helpers.ErrCodeUnauthorized},
		{name: "user not found", contextUserID: testUserID, fakeErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantBodyCode: helpers.ErrCodeNotFound},
		{name: "service error", contextUserID: testUserID, fakeErr: assert.AnError, wantStatus: http.StatusInternalServerError, wantBodyCode: helpers.ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeUserService{user: sampleUser(), err: tt.fakeErr}
			ctrl := NewUserController(testLogger, fake, CookieOptions{}, time.Hour)

			req := newRequest(t, http.MethodGet, "/auth/me", nil)
			if tt.contextUserID != "" {
				req = withUser(req, tt.contextUserID)
			}
			rr := httptest.NewRecorder()
			ctrl.GetMe(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			env := decodeEnvelope(t, rr)
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, env.Error)
				var u domain.User
				decodeData(t, env, &u)
				assert.Equal(t, "a@b.com", u.Email)
				return
			}
			assert.Equal(t, tt.wantBodyCode, env.Code)
		})
	}
}

func TestUserController_AdminReports(t *testing.T) {
	fake := &fakeUserService{
		user:  sampleUser(),
		page:  domain.Page[*domain.User]{Items: []*domain.User{sampleUser()}, Total: 1},
		stats: &domain.UserStats{Total: 1, Active: 1},
	}
	ctrl := NewUserController(testLogger, fake, CookieOptions{}, time.Hour)

	rr := httptest.NewRecorder()
	ctrl.AdminList(rr, newRequest(t, http.MethodGet, "/admin/users?reseller_id=r1&is_active=false&search=ali", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "r1", fake.lastFilter.ResellerID)
	assert.Equal(t, "ali", fake.lastFilter.Search)
	require.NotNil(t, fake.lastFilter.IsActive)
	assert.False(t, *fake.lastFilter.IsActive)

	rr = httptest.NewRecorder()
	ctrl.AdminGet(rr, withParams(newRequest(t, http.MethodGet, "/", nil), "id", testUserID))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, testUserID, fake.lastID)

	rr = httptest.NewRecorder()
	ctrl.AdminStats(rr, newRequest(t, http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var stats domain.UserStats
	decodeData(t, decodeEnvelope(t, rr), &stats)
	assert.Equal(t, 1, stats.Active)
}
