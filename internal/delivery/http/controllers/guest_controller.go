package controllers

import (
	"log/slog"
	"net/http"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
)

// AddGuestRequest is the request body for POST /invitations/{id}/guests
type AddGuestRequest struct {
	Name     string               `json:"name" validate:"required,max=120"`
	Email    string               `json:"email" validate:"omitempty,email"`
	Phone    string               `json:"phone" validate:"max=40"`
	Response domain.GuestResponse `json:"response"`
	PlusOnes int                  `json:"plus_ones" validate:"min=0"`
	Message  string               `json:"message" validate:"max=1000"`
}

// UpdateGuestRequest is the request body for PATCH /invitations/{id}/guests/{guestID}
type UpdateGuestRequest struct {
	Name     *string               `json:"name" validate:"omitempty,max=120"`
	Email    *string               `json:"email" validate:"omitempty,email"`
	Phone    *string               `json:"phone" validate:"omitempty,max=40"`
	Response *domain.GuestResponse `json:"response"`
	PlusOnes *int                  `json:"plus_ones" validate:"omitempty,min=0"`
	Message  *string               `json:"message" validate:"omitempty,max=1000"`
}

// GuestController serves the owner-scoped guest list of an invitation.
type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{Logger: logger, Service: svc}
}

// List godoc
// @Summary List guests
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param response query string false "pending, attending, not_attending or maybe"
// @Param page query int false "Page (1-based)"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/guests [get]
func (c *GuestController) List(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	response := domain.GuestResponse(r.URL.Query().Get("response"))
	page, err := c.Service.List(r.Context(), id, userID, response, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONPage(w, page.Items, helpers.NewPaginationMeta(params, page.Total))
}

// Add godoc
// @Summary Add a guest
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param body body AddGuestRequest true "Guest"
// @Success 201 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/guests [post]
func (c *GuestController) Add(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	var req AddGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	g := &domain.InvitationGuest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Response: req.Response,
		PlusOnes: req.PlusOnes,
		Message:  req.Message,
	}
	if err := c.Service.Add(r.Context(), id, userID, g); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, g)
}

// Update godoc
// @Summary Update a guest
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param guestID path string true "Guest id"
// @Param body body UpdateGuestRequest true "Changes"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/guests/{guestID} [patch]
func (c *GuestController) Update(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	guestID, ok := helpers.PathID(w, r, "guestID")
	if !ok {
		return
	}
	var req UpdateGuestRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	g, err := c.Service.Update(r.Context(), id, guestID, userID, domain.GuestPatch{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Response: req.Response,
		PlusOnes: req.PlusOnes,
		Message:  req.Message,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, g)
}

// Remove godoc
// @Summary Remove a guest
// @Tags guests
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Param guestID path string true "Guest id"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/guests/{guestID} [delete]
func (c *GuestController) Remove(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	guestID, ok := helpers.PathID(w, r, "guestID")
	if !ok {
		return
	}
	if err := c.Service.Remove(r.Context(), id, guestID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"id": guestID})
}

// Send godoc
// @Summary Email the invitation to every guest with an address
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invitation id"
// @Success 200 {object} helpers.APIResponse "data contains sent count and failed addresses"
// @Failure 400 {object} helpers.APIResponse "invitation not published"
// @Failure 401 {object} helpers.APIResponse
// @Failure 403 {object} helpers.APIResponse
// @Router /invitations/{id}/guests/send [post]
func (c *GuestController) Send(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := ownedID(w, r)
	if !ok {
		return
	}
	result, err := c.Service.SendInvitations(r.Context(), id, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
