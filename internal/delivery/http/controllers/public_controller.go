package controllers

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"invitationadmin/internal/delivery/http/helpers"
	"invitationadmin/internal/domain"
)

// RSVPRequest is the request body for POST /public/invitations/{slug}/rsvp
type RSVPRequest struct {
	Name     string               `json:"name" validate:"required,max=120"`
	Email    string               `json:"email" validate:"omitempty,email"`
	Phone    string               `json:"phone" validate:"max=40"`
	Response domain.GuestResponse `json:"response" validate:"required,oneof=attending not_attending maybe"`
	PlusOnes int                  `json:"plus_ones" validate:"min=0"`
	Message  string               `json:"message" validate:"max=1000"`
}

// PublicController serves published invitations and RSVPs without authentication.
type PublicController struct {
	Logger      *slog.Logger
	Invitations domain.InvitationService
	Guests      domain.GuestService
}

func NewPublicController(logger *slog.Logger, invitations domain.InvitationService, guests domain.GuestService) *PublicController {
	return &PublicController{Logger: logger, Invitations: invitations, Guests: guests}
}

// visitorHash identifies a visitor without storing the address itself.
func visitorHash(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	sum := sha256.Sum256([]byte(host + "|" + r.UserAgent()))
	return hex.EncodeToString(sum[:])
}

// GetBySlug godoc
// @Summary Get a published invitation
// @Description Returns the invitation when it is published and not expired, and records a view.
// @Tags public
// @Produce json
// @Param slug path string true "Invitation slug"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Router /public/invitations/{slug} [get]
func (c *PublicController) GetBySlug(w http.ResponseWriter, r *http.Request) {
	inv, err := c.Invitations.GetPublished(r.Context(), chi.URLParam(r, "slug"), visitorHash(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// RSVP godoc
// @Summary Respond to a published invitation
// @Tags public
// @Accept json
// @Produce json
// @Param slug path string true "Invitation slug"
// @Param body body RSVPRequest true "Response"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse
// @Failure 429 {object} helpers.APIResponse "rate limited"
// @Router /public/invitations/{slug}/rsvp [post]
func (c *PublicController) RSVP(w http.ResponseWriter, r *http.Request) {
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	g, err := c.Guests.RSVP(r.Context(), chi.URLParam(r, "slug"), domain.RSVPInput{
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
	helpers.WriteJSONSuccess(w, http.StatusCreated, g)
}
