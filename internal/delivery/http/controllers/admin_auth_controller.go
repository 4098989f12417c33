package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

// CreateAdminRequest is the request body for POST /admin/auth/admins
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
}

// AdminLoginResponse is returned by admin login and refresh; the token itself travels in the cookie.
type AdminLoginResponse struct {
	Admin     *domain.AdminUser `json:"admin,omitempty"`
	ExpiresIn int               `json:"expires_in"`
}

// AdminAuthController handles operator authentication.
type AdminAuthController struct {
	Logger  *slog.Logger
	Service domain.AdminAuthService
	Cookies CookieOptions
}

func NewAdminAuthController(logger *slog.Logger, svc domain.AdminAuthService, cookies CookieOptions) *AdminAuthController {
	return &AdminAuthController{Logger: logger, Service: svc, Cookies: cookies}
}

func (c *AdminAuthController) currentAdminID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return id, ok
}

// Login godoc
// @Summary Admin login
// @Description Verifies operator credentials and sets the HTTP-only admin_token cookie.
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 429 {object} helpers.APIResponse "rate limited"
// @Router /admin/auth/login [post]
func (c *AdminAuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, admin, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	expiry := c.Service.TokenExpiry()
	c.Cookies.set(w, middleware.AdminTokenCookie, token, expiry)
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminLoginResponse{Admin: admin, ExpiresIn: int(expiry.Seconds())})
}

// Logout godoc
// @Summary Admin logout
// @Tags admin-auth
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /admin/auth/logout [post]
func (c *AdminAuthController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Cookies.clear(w, middleware.AdminTokenCookie)
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me godoc
// @Summary Current admin
// @Tags admin-auth
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/auth/me [get]
func (c *AdminAuthController) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := c.currentAdminID(w, r)
	if !ok {
		return
	}
	admin, err := c.Service.Me(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, admin)
}

// Refresh godoc
// @Summary Refresh admin session
// @Description Re-issues the admin_token cookie with a fresh expiry.
// @Tags admin-auth
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/auth/refresh [post]
func (c *AdminAuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := c.currentAdminID(w, r)
	if !ok {
		return
	}
	token, err := c.Service.Refresh(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	expiry := c.Service.TokenExpiry()
	c.Cookies.set(w, middleware.AdminTokenCookie, token, expiry)
	helpers.WriteJSONSuccess(w, http.StatusOK, AdminLoginResponse{ExpiresIn: int(expiry.Seconds())})
}

// CreateAdmin godoc
// @Summary Create an admin account
// @Tags admin-auth
// @Accept json
// @Produce json
// @Param body body CreateAdminRequest true "New admin"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 409 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/auth/admins [post]
func (c *AdminAuthController) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	admin, err := c.Service.CreateAdmin(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password, strings.TrimSpace(req.Name))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, admin)
}
