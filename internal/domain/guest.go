package domain

import (
	"context"
	"time"
)

// GuestResponse is a guest's RSVP answer.
type GuestResponse string

const (
	ResponsePending      GuestResponse = "pending"
	ResponseAttending    GuestResponse = "attending"
	ResponseNotAttending GuestResponse = "not_attending"
	ResponseMaybe        GuestResponse = "maybe"
)

// Valid reports whether r is a known response.
func (r GuestResponse) Valid() bool {
	switch r {
	case ResponsePending, ResponseAttending, ResponseNotAttending, ResponseMaybe:
		return true
	}
	return false
}

// InvitationGuest is one invited person. It is deleted together with its invitation.
// swagger:model InvitationGuest
type InvitationGuest struct {
	ID           string        `json:"id"`
	InvitationID string        `json:"invitation_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Response     GuestResponse `json:"response"`
	PlusOnes     int           `json:"plus_ones"`
	Message      string        `json:"message"`
	RespondedAt  *time.Time    `json:"responded_at"`
	InvitedAt    *time.Time    `json:"invited_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// GuestPatch holds owner-editable guest fields. Nil fields are unchanged.
type GuestPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Response *GuestResponse
	PlusOnes *int
	Message  *string
}

// GuestRepository defines storage for invitation guests. All methods are scoped by invitation.
type GuestRepository interface {
	Create(ctx context.Context, g *InvitationGuest) error
	GetByID(ctx context.Context, invitationID, guestID string) (*InvitationGuest, error)
	List(ctx context.Context, invitationID string, response GuestResponse, params PaginationParams) (Page[*InvitationGuest], error)
	ListWithEmail(ctx context.Context, invitationID string) ([]*InvitationGuest, error)
	Update(ctx context.Context, g *InvitationGuest) error
	MarkInvited(ctx context.Context, guestIDs []string, at time.Time) error
	Delete(ctx context.Context, invitationID, guestID string) error
}

// RSVPInput is a public RSVP submitted against a published invitation.
type RSVPInput struct {
	Name     string
	Email    string
	Phone    string
	Response GuestResponse
	PlusOnes int
	Message  string
}

// SendInvitationsResult reports the outcome of emailing guests.
type SendInvitationsResult struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// GuestService manages guests of an owner's invitation and public RSVPs.
type GuestService interface {
	List(ctx context.Context, invitationID, userID string, response GuestResponse, params PaginationParams) (Page[*InvitationGuest], error)
	Add(ctx context.Context, invitationID, userID string, g *InvitationGuest) error
	Update(ctx context.Context, invitationID, guestID, userID string, patch GuestPatch) (*InvitationGuest, error)
	Remove(ctx context.Context, invitationID, guestID, userID string) error
	SendInvitations(ctx context.Context, invitationID, userID string) (*SendInvitationsResult, error)
	RSVP(ctx context.Context, slug string, in RSVPInput) (*InvitationGuest, error)
}
