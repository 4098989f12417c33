package domain

import (
	"context"
	"time"
)

// Category discriminates the shape of an invitation's form data.
type Category string

const (
	CategoryWedding     Category = "wedding"
	CategoryBirthday    Category = "birthday"
	CategoryGraduation  Category = "graduation"
	CategoryBabyShower  Category = "baby_shower"
	CategoryBusiness    Category = "business"
	CategoryAnniversary Category = "anniversary"
	CategoryParty       Category = "party"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryWedding,
	CategoryBirthday,
	CategoryGraduation,
	CategoryBabyShower,
	CategoryBusiness,
	CategoryAnniversary,
	CategoryParty,
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	StatusDraft     InvitationStatus = "draft"
	StatusPublished InvitationStatus = "published"
	StatusArchived  InvitationStatus = "archived"
	StatusExpired   InvitationStatus = "expired"
)

// Valid reports whether s is a known status.
func (s InvitationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusExpired:
		return true
	}
	return false
}

// FormData is the semi-structured, category-dependent payload of an invitation.
type FormData map[string]any

// Merge returns a shallow merge of d and patch: keys in patch override, others are kept.
func (d FormData) Merge(patch FormData) FormData {
	out := make(FormData, len(d)+len(patch))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of d.
func (d FormData) Clone() FormData {
	return d.Merge(nil)
}

// Invitation is an invitation owned by a single user.
// swagger:model Invitation
type Invitation struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	TemplateID      *string          `json:"template_id"`
	Title           string           `json:"title"`
	Category        Category         `json:"category"`
	Status          InvitationStatus `json:"status"`
	FormData        FormData         `json:"form_data"`
	EventDate       *time.Time       `json:"event_date"`
	VenueName       *string          `json:"venue_name"`
	VenueAddress    *string          `json:"venue_address"`
	Slug            string           `json:"slug"`
	IsPublished     bool             `json:"is_published"`
	PublishedAt     *time.Time       `json:"published_at"`
	ExpiresAt       *time.Time       `json:"expires_at"`
	MetaTitle       *string          `json:"meta_title"`
	MetaDescription *string          `json:"meta_description"`
	ViewCount       int              `json:"view_count"`
	UniqueViewCount int              `json:"unique_view_count"`
	RSVPCount       int              `json:"rsvp_count"`
	ConfirmedCount  int              `json:"confirmed_count"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewInvitation returns a draft invitation with zeroed counters. ID and slug are assigned on create.
func NewInvitation(userID, title string, category Category, formData FormData, templateID *string, now time.Time) *Invitation {
	if formData == nil {
		formData = FormData{}
	}
	return &Invitation{
		UserID:     userID,
		TemplateID: templateID,
		Title:      title,
		Category:   category,
		Status:     StatusDraft,
		FormData:   formData,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// InvitationFilter narrows invitation list queries. Empty fields are ignored.
type InvitationFilter struct {
	UserID   string
	Status   InvitationStatus
	Category Category
	Search   string
}

// InvitationPatch holds the owner-editable fields of an update. Nil fields are unchanged.
type InvitationPatch struct {
	Title      *string
	TemplateID *string
	FormData   FormData
}

// PublishOptions are the optional fields a caller may supply when publishing.
type PublishOptions struct {
	ExpiresAt       *time.Time
	MetaTitle       *string
	MetaDescription *string
}

// InvitationStats aggregates an owner's (or, for admins, every) invitation.
type InvitationStats struct {
	Total          int           `json:"total"`
	Draft          int           `json:"draft"`
	Published      int           `json:"published"`
	Archived       int           `json:"archived"`
	Expired        int           `json:"expired"`
	TotalViews     int           `json:"total_views"`
	UniqueViews    int           `json:"unique_views"`
	TotalRSVPs     int           `json:"total_rsvps"`
	TotalConfirmed int           `json:"total_confirmed"`
	CreatedLast7   int           `json:"created_last_7_days"`
	CreatedLast30  int           `json:"created_last_30_days"`
	ByCategory     []CountBucket `json:"by_category"`
}

// InvitationRepository defines storage for invitations.
// Owner-scoped methods return ErrNotFound for invitations the owner does not own.
type InvitationRepository interface {
	// Create inserts the invitation. Returns ErrDuplicateSlug when the slug is already taken.
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	GetByIDForOwner(ctx context.Context, id, userID string) (*Invitation, error)
	GetBySlug(ctx context.Context, slug string) (*Invitation, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter InvitationFilter, params PaginationParams) (Page[*Invitation], error)
	// Update persists title, template, form data, derived fields, status and publishing metadata.
	Update(ctx context.Context, inv *Invitation) error
	DeleteForOwner(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
	IncrementViewCount(ctx context.Context, id string, unique bool) error
	IncrementRSVPCount(ctx context.Context, id string, confirmed bool) error
	Stats(ctx context.Context, userID string) (*InvitationStats, error)
}

// CreateInvitationInput is the owner-supplied data for a new invitation.
type CreateInvitationInput struct {
	Title      string
	Category   Category
	FormData   FormData
	TemplateID *string
}

// PageView identifies one view of a published invitation.
type PageView struct {
	InvitationID string
	VisitorHash  string
	ViewedAt     time.Time
}

// ViewTracker records page views without blocking the caller.
type ViewTracker interface {
	Track(view PageView)
}

// InvitationService is the invitation lifecycle manager.
type InvitationService interface {
	Create(ctx context.Context, userID string, in CreateInvitationInput) (*Invitation, error)
	Get(ctx context.Context, id, userID string) (*Invitation, error)
	List(ctx context.Context, filter InvitationFilter, params PaginationParams) (Page[*Invitation], error)
	Update(ctx context.Context, id, userID string, patch InvitationPatch) (*Invitation, error)
	Publish(ctx context.Context, id, userID string, opts PublishOptions) (*Invitation, error)
	Unpublish(ctx context.Context, id, userID string) (*Invitation, error)
	Delete(ctx context.Context, id, userID string) error
	Duplicate(ctx context.Context, id, userID string, title *string) (*Invitation, error)
	Stats(ctx context.Context, userID string) (*InvitationStats, error)
	// GetPublished returns a published invitation by slug and records a view.
	GetPublished(ctx context.Context, slug, visitorHash string) (*Invitation, error)
	// TrackView records a view; failures are logged and never returned.
	TrackView(ctx context.Context, id, visitorHash string)

	// Admin operations, not owner-scoped.
	AdminGet(ctx context.Context, id string) (*Invitation, error)
	AdminGetBySlug(ctx context.Context, slug string) (*Invitation, error)
	AdminSetStatus(ctx context.Context, id string, status InvitationStatus) (*Invitation, error)
	AdminDelete(ctx context.Context, id string) error
}
