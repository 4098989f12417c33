package controllers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
)

// SetStatusRequest is the request body for PATCH /admin/invitations/{id}/status
type SetStatusRequest struct {
	Status domain.InvitationStatus `json:"status" validate:"required,oneof=draft published archived expired"`
}

// AdminInvitationController gives admins unscoped access to every invitation.
type AdminInvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewAdminInvitationController(logger *slog.Logger, svc domain.InvitationService) *AdminInvitationController {
	return &AdminInvitationController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List all invitations
// @Tags admin
// @Produce json
// @Param user_id query string false "Owner id"
// @Param status query string false "draft, published, archived or expired"
// @Param category query string false "Invitation category"
// @Param search query string false "Matches title, slug or venue"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/invitations [get]
func (c *AdminInvitationController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	q := r.URL.Query()
	page, err := c.Service.List(r.Context(), domain.InvitationFilter{
		UserID:   q.Get("user_id"),
		Status:   domain.InvitationStatus(q.Get("status")),
		Category: domain.Category(q.Get("category")),
		Search:   q.Get("search"),
	}, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONPage(w, page.Items, helpers.NewPaginationMeta(params, page.Total))
}

// Stats godoc
// @Summary Invitation statistics across all users
// @Tags admin
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/invitations/stats [get]
func (c *AdminInvitationController) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.Stats(r.Context(), "")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// GetBySlug godoc
// @Summary Find an invitation by slug, whatever its status
// @Tags admin
// @Produce json
// @Param slug path string true "Slug"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/invitations/slug/{slug} [get]
func (c *AdminInvitationController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	inv, err := c.Service.AdminGetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Get godoc
// @Summary Get any invitation
// @Tags admin
// @Produce json
// @Param id path string true "Invitation id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/invitations/{id} [get]
func (c *AdminInvitationController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	inv, err := c.Service.AdminGet(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// SetStatus godoc
// @Summary Force an invitation status
// @Description Moving away from published clears published_at.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Invitation id"
// @Param body body SetStatusRequest true "Status"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/invitations/{id}/status [patch]
func (c *AdminInvitationController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req SetStatusRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.AdminSetStatus(r.Context(), id, req.Status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Delete godoc
// @Summary Delete any invitation
// @Tags admin
// @Param id path string true "Invitation id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Security AdminCookie
// @Router /admin/invitations/{id} [delete]
func (c *AdminInvitationController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.AdminDelete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}
