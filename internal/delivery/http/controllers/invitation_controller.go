package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/delivery/http/middleware"
	"invitationadmin/internal/domain"
)

// CreateInvitationRequest is the request body for POST /invitations
type CreateInvitationRequest struct {
	Title      string          `json:"title" validate:"required,max=200"`
	Category   domain.Category `json:"category" validate:"required"`
	FormData   map[string]any  `json:"form_data"`
	TemplateID *string         `json:"template_id" validate:"omitempty,uuid"`
}

// UpdateInvitationRequest is the request body for PATCH /invitations/{id}.
// Category is accepted for client convenience but never changes the invitation.
type UpdateInvitationRequest struct {
	Title      *string        `json:"title" validate:"omitempty,max=200"`
	Category   *string        `json:"category"`
	FormData   map[string]any `json:"form_data"`
	TemplateID *string        `json:"template_id"`
}

// Validate implements helpers.Validator. An empty template_id clears the template.
func (u UpdateInvitationRequest) Validate() []string {
	if u.TemplateID != nil && *u.TemplateID != "" {
		if _, err := uuid.Parse(*u.TemplateID); err != nil {
			return []string{"template_id must be a valid id"}
		}
	}
	return nil
}

// PublishRequest is the optional request body for POST /invitations/{id}/publish
type PublishRequest struct {
	ExpiresAt       *time.Time `json:"expires_at"`
	MetaTitle       *string    `json:"meta_title" validate:"omitempty,max=120"`
	MetaDescription *string    `json:"meta_description" validate:"omitempty,max=300"`
}

// DuplicateRequest is the optional request body for POST /invitations/{id}/duplicate
type DuplicateRequest struct {
	Title *string `json:"title" validate:"omitempty,max=200"`
}

// InvitationController serves the owner-scoped invitation API.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{Logger: logger, Service: svc}
}

func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	}
	return id, ok
}

// ownedID resolves the authenticated user and the invitation id path parameter.
func ownedID(w http.ResponseWriter, r *http.Request) (id, userID string, ok bool) {
	if userID, ok = currentUserID(w, r); !ok {
		return "", "", false
	}
	if id, ok = helpers.PathID(w, r, "id"); !ok {
		return "", "", false
	}
	return id, userID, true
}

// Create godoc
// @Summary Create an invitation
// @Description Validates form_data for the category, derives event date and venue, and assigns a unique slug. The invitation starts as a draft.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateInvitationRequest true "Invitation"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "template not found or inactive"
// @Router /invitations [post]
func (c *InvitationController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Create(r.Context(), userID, domain.CreateInvitationInput{
		Title:      req.Title,
		Category:   req.Category,
		FormData:   req.FormData,
		TemplateID: req.TemplateID,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// List godoc
// @Summary List my invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft, published, archived or expired"
// @Param category query string false "Invitation category"
// @Param search query string false "Matches title, slug or venue"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations [get]
func (c *InvitationController) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	q := r.URL.Query()
	page, err := c.Service.List(r.Context(), domain.InvitationFilter{
		UserID:   userID,
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

// Get godoc
// @Summary Get one of my invitations
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /invitations/{id} [get]
func (c *InvitationController) Get(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	inv, err := c.Service.Get(r.Context(), id, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Update godoc
// @Summary Update an invitation
// @Description form_data is shallow-merged into the stored data and validated against the stored category. The slug never changes.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param body body UpdateInvitationRequest true "Changes"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /invitations/{id} [patch]
func (c *InvitationController) Update(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	var req UpdateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Update(r.Context(), id, userID, domain.InvitationPatch{
		Title:      req.Title,
		TemplateID: req.TemplateID,
		FormData:   req.FormData,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Delete godoc
// @Summary Delete an invitation
// @Tags invitations
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /invitations/{id} [delete]
func (c *InvitationController) Delete(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": id})
}

// Publish godoc
// @Summary Publish an invitation
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param body body PublishRequest false "Optional expiry and meta fields"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /invitations/{id}/publish [post]
func (c *InvitationController) Publish(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	var req PublishRequest
	if !helpers.DecodeOptionalAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Publish(r.Context(), id, userID, domain.PublishOptions{
		ExpiresAt:       req.ExpiresAt,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Unpublish godoc
// @Summary Unpublish an invitation
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/unpublish [post]
func (c *InvitationController) Unpublish(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	inv, err := c.Service.Unpublish(r.Context(), id, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// Duplicate godoc
// @Summary Duplicate an invitation
// @Description Creates a new draft with the same category, form data and template. The title defaults to "<original> (Copy)".
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param body body DuplicateRequest false "Optional title"
// @Success 201 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/duplicate [post]
func (c *InvitationController) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	var req DuplicateRequest
	if !helpers.DecodeOptionalAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Duplicate(r.Context(), id, userID, req.Title)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// Stats godoc
// @Summary My invitation statistics
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/stats [get]
func (c *InvitationController) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	stats, err := c.Service.Stats(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
