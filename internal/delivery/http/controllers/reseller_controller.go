package controllers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
)

// CreateResellerRequest is the request body for POST /admin/resellers
type CreateResellerRequest struct {
	Name    string              `json:"name" validate:"required,max=120"`
	Email   string              `json:"email" validate:"required,email"`
	Company string              `json:"company" validate:"max=120"`
	Phone   string              `json:"phone" validate:"max=40"`
	Type    domain.ResellerType `json:"type" validate:"omitempty,oneof=FREE PREMIUM"`
}

// UpdateResellerRequest is the request body for PATCH /admin/resellers/{id}
type UpdateResellerRequest struct {
	Name     *string              `json:"name" validate:"omitempty,max=120"`
	Email    *string              `json:"email" validate:"omitempty,email"`
	Company  *string              `json:"company" validate:"omitempty,max=120"`
	Phone    *string              `json:"phone" validate:"omitempty,max=40"`
	Type     *domain.ResellerType `json:"type" validate:"omitempty,oneof=FREE PREMIUM"`
	IsActive *bool                `json:"is_active"`
}

type ResellerController struct {
	Logger  *slog.Logger
	Service domain.ResellerService
}

func NewResellerController(logger *slog.Logger, svc domain.ResellerService) *ResellerController {
	return &ResellerController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List resellers
// @Tags admin
// @Produce json
// @Param search query string false "Matches name, email or company"
// @Param type query string false "FREE or PREMIUM"
// @Param is_active query bool false "Active flag"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/resellers [get]
func (c *ResellerController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	q := r.URL.Query()
	page, err := c.Service.List(r.Context(), domain.ResellerFilter{
		Search:   q.Get("search"),
		Type:     domain.ResellerType(q.Get("type")),
		IsActive: helpers.QueryBool(r, "is_active"),
	}, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONPage(w, page.Items, helpers.NewPaginationMeta(params, page.Total))
}

// Get godoc
// @Summary Get a reseller
// @Tags admin
// @Produce json
// @Param id path string true "Reseller id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/resellers/{id} [get]
func (c *ResellerController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	res, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// GetByReferralCode godoc
// @Summary Find a reseller by referral code
// @Tags admin
// @Produce json
// @Param code path string true "Referral code"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/resellers/referral/{code} [get]
func (c *ResellerController) GetByReferralCode(w http.ResponseWriter, r *http.Request) {
	res, err := c.Service.GetByReferralCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// Create godoc
// @Summary Create a reseller
// @Description Generates a unique 8-character referral code.
// @Tags admin
// @Accept json
// @Produce json
// @Param body body CreateResellerRequest true "Reseller"
// @Success 201 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 409 {object} helpers.APIResponse "email already registered"
// @Security AdminCookie
// @Router /admin/resellers [post]
func (c *ResellerController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateResellerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.Create(r.Context(), domain.CreateResellerInput{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Phone:   req.Phone,
		Type:    req.Type,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, res)
}

// Update godoc
// @Summary Update a reseller
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Reseller id"
// @Param body body UpdateResellerRequest true "Changes"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/resellers/{id} [patch]
func (c *ResellerController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateResellerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.Update(r.Context(), id, domain.ResellerPatch{
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Phone:    req.Phone,
		Type:     req.Type,
		IsActive: req.IsActive,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, res)
}

// Delete godoc
// @Summary Delete a reseller
// @Tags admin
// @Param id path string true "Reseller id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/resellers/{id} [delete]
func (c *ResellerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// Stats godoc
// @Summary Reseller statistics
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/resellers/stats [get]
func (c *ResellerController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
