package domain

import (
	"context"
	"time"
)

// Analytics event types.
const (
	EventView = "view"
	EventRSVP = "rsvp"
)

// AnalyticsEvent is one recorded interaction with a published invitation.
type AnalyticsEvent struct {
	ID           string    `json:"id"`
	InvitationID string    `json:"invitation_id"`
	EventType    string    `json:"event_type"`
	VisitorHash  string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalyticsRepository stores analytics events.
type AnalyticsRepository interface {
	Record(ctx context.Context, ev *AnalyticsEvent) error
	// CountView increments the invitation's view counters and remembers a non-empty visitor hash
	// atomically. It reports whether the visitor was seen for the first time.
	CountView(ctx context.Context, invitationID, visitorHash string) (firstVisit bool, err error)
}
