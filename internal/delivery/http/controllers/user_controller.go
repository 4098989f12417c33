package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

// SignUpRequest is the request body for POST /auth/signup
type SignUpRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	Name         string `json:"name" validate:"max=120"`
	ReferralCode string `json:"referral_code" validate:"omitempty,len=8,alphanum"`
}

// LoginRequest is the request body for POST /auth/login and POST /admin/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the response body for POST /auth/login
type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
	User      *domain.User `json:"user"`
}

// CookieOptions controls the attributes of auth cookies.
type CookieOptions struct {
	Secure bool
}

func (o CookieOptions) set(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (o CookieOptions) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserController handles end-user authentication and the admin user reports.
type UserController struct {
	Logger      *slog.Logger
	Service     domain.UserService
	Cookies     CookieOptions
	TokenExpiry time.Duration
}

// NewUserController creates a UserController with the given logger and service.
func NewUserController(logger *slog.Logger, svc domain.UserService, cookies CookieOptions, tokenExpiry time.Duration) *UserController {
	return &UserController{
		Logger:      logger,
		Service:     svc,
		Cookies:     cookies,
		TokenExpiry: tokenExpiry,
	}
}

// SignUp godoc
// @Summary Sign up a new user
// @Description Create a user with email, password and name. An optional referral_code attributes the user to a reseller; unknown or inactive codes are rejected.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains the created user"
// @Failure 400 {object} helpers.APIResponse
// @Failure 409 {object} helpers.APIResponse "email already registered"
// @Failure 429 {object} helpers.APIResponse "rate limited"
// @Router /auth/signup [post]
func (c *UserController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	user, err := c.Service.SignUp(r.Context(), email, req.Password, strings.TrimSpace(req.Name), req.ReferralCode)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a bearer token and also sets it in the HTTP-only auth_token cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type, and user"
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 429 {object} helpers.APIResponse "rate limited"
// @Router /auth/login [post]
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, user, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.Cookies.set(w, middleware.UserTokenCookie, token, c.TokenExpiry)
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(c.TokenExpiry.Seconds()),
		User:      user,
	})
}

// Logout clears the auth_token cookie.
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Router /auth/logout [post]
func (c *UserController) Logout(w http.ResponseWriter, r *http.Request) {
	c.Cookies.clear(w, middleware.UserTokenCookie)
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// GetMe godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 403 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /auth/me [get]
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Service.GetByID(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// AdminList godoc
// @Summary List users
// @Tags admin-users
// @Produce json
// @Param search query string false "Matches email or name"
// @Param reseller_id query string false "Reseller id"
// @Param is_active query bool false "Active flag"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/users [get]
func (c *UserController) AdminList(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	q := r.URL.Query()
	filter := domain.UserFilter{
		Search:     q.Get("search"),
		ResellerID: q.Get("reseller_id"),
		IsActive:   helpers.QueryBool(r, "is_active"),
	}
	page, err := c.Service.List(r.Context(), filter, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONPage(w, page.Items, helpers.NewPaginationMeta(params, page.Total))
}

// AdminGet godoc
// @Summary Get a user
// @Tags admin-users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/users/{id} [get]
func (c *UserController) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	user, err := c.Service.GetByID(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// AdminStats godoc
// @Summary User statistics
// @Tags admin-users
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/users/stats [get]
func (c *UserController) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
