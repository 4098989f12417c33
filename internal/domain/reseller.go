package domain

import (
	"context"
	"time"
)

// ResellerType is the commercial tier of a reseller.
type ResellerType string

const (
	ResellerFree    ResellerType = "FREE"
	ResellerPremium ResellerType = "PREMIUM"
)

// Valid reports whether t is a known reseller type.
func (t ResellerType) Valid() bool {
	return t == ResellerFree || t == ResellerPremium
}

// Reseller is a partner account that attributes new users via its referral code.
// swagger:model Reseller
type Reseller struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Company      string       `json:"company"`
	Phone        string       `json:"phone"`
	ReferralCode string       `json:"referral_code"`
	Type         ResellerType `json:"type"`
	IsActive     bool         `json:"is_active"`
	UserCount    int          `json:"user_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ResellerFilter narrows reseller list queries. Empty fields are ignored.
type ResellerFilter struct {
	Search   string
	Type     ResellerType
	IsActive *bool
}

// ResellerPatch holds admin-editable reseller fields. Nil fields are unchanged.
type ResellerPatch struct {
	Name     *string
	Email    *string
	Company  *string
	Phone    *string
	Type     *ResellerType
	IsActive *bool
}

// ResellerStats aggregates reseller counts for the admin dashboard.
type ResellerStats struct {
	Total           int           `json:"total"`
	Active          int           `json:"active"`
	AttributedUsers int           `json:"attributed_users"`
	CreatedLast30   int           `json:"created_last_30_days"`
	ByType          []CountBucket `json:"by_type"`
}

// ResellerRepository defines storage for resellers.
type ResellerRepository interface {
	// Create inserts the reseller. Returns ErrDuplicateCode when the referral code is taken
	// and ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, r *Reseller) error
	GetByID(ctx context.Context, id string) (*Reseller, error)
	GetByReferralCode(ctx context.Context, code string) (*Reseller, error)
	ReferralCodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, filter ResellerFilter, params PaginationParams) (Page[*Reseller], error)
	Update(ctx context.Context, r *Reseller) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ResellerStats, error)
}

// CreateResellerInput is the admin-supplied data for a new reseller.
type CreateResellerInput struct {
	Name    string
	Email   string
	Company string
	Phone   string
	Type    ResellerType
}

// ResellerService manages resellers and their referral codes.
type ResellerService interface {
	Create(ctx context.Context, in CreateResellerInput) (*Reseller, error)
	Get(ctx context.Context, id string) (*Reseller, error)
	GetByReferralCode(ctx context.Context, code string) (*Reseller, error)
	List(ctx context.Context, filter ResellerFilter, params PaginationParams) (Page[*Reseller], error)
	Update(ctx context.Context, id string, patch ResellerPatch) (*Reseller, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ResellerStats, error)
}
