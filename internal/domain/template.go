package domain

import (
	"context"
	"time"
)

// TemplateStyle is the visual style of a template.
type TemplateStyle string

const (
	StyleClassic    TemplateStyle = "classic"
	StyleModern     TemplateStyle = "modern"
	StyleElegant    TemplateStyle = "elegant"
	StyleFloral     TemplateStyle = "floral"
	StyleMinimalist TemplateStyle = "minimalist"
	StyleRustic     TemplateStyle = "rustic"
	StyleVintage    TemplateStyle = "vintage"
	StyleTropical   TemplateStyle = "tropical"
)

// Styles lists every supported template style.
var Styles = []TemplateStyle{
	StyleClassic, StyleModern, StyleElegant, StyleFloral,
	StyleMinimalist, StyleRustic, StyleVintage, StyleTropical,
}

// Valid reports whether s is a known style.
func (s TemplateStyle) Valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// Template is a reusable presentation definition for invitations.
// swagger:model Template
type Template struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Category        Category       `json:"category"`
	Style           TemplateStyle  `json:"style"`
	PreviewImageURL string         `json:"preview_image_url"`
	Config          map[string]any `json:"config"`
	IsPremium       bool           `json:"is_premium"`
	Price           float64        `json:"price"`
	IsActive        bool           `json:"is_active"`
	PopularityScore int            `json:"popularity_score"`
	UsageCount      int            `json:"usage_count"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// TemplateFilter narrows template list queries. Nil or empty fields are ignored.
type TemplateFilter struct {
	Category  Category
	Style     TemplateStyle
	IsPremium *bool
	IsActive  *bool
	Search    string
}

// TemplatePatch holds admin-editable template fields. Nil fields are unchanged.
type TemplatePatch struct {
	Name            *string
	Description     *string
	Style           *TemplateStyle
	PreviewImageURL *string
	Config          map[string]any
	IsPremium       *bool
	Price           *float64
	IsActive        *bool
}

// TemplateStats aggregates template counts for the admin dashboard.
type TemplateStats struct {
	Total      int           `json:"total"`
	Active     int           `json:"active"`
	Premium    int           `json:"premium"`
	TotalUsage int           `json:"total_usage"`
	ByCategory []CountBucket `json:"by_category"`
	ByStyle    []CountBucket `json:"by_style"`
}

// TemplateRepository defines storage for templates.
type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, filter TemplateFilter, params PaginationParams) (Page[*Template], error)
	Popular(ctx context.Context, limit int) ([]*Template, error)
	Related(ctx context.Context, t *Template, limit int) ([]*Template, error)
	CountByCategory(ctx context.Context) ([]CountBucket, error)
	CountByStyle(ctx context.Context) ([]CountBucket, error)
	Update(ctx context.Context, t *Template) error
	// Delete removes the template. Returns ErrTemplateInUse when invitations reference it.
	Delete(ctx context.Context, id string) error
	// IncrementUsage atomically bumps usage_count and popularity_score.
	IncrementUsage(ctx context.Context, id string) error
	Stats(ctx context.Context) (*TemplateStats, error)
}

// TemplateService exposes public template browsing and admin management.
type TemplateService interface {
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, filter TemplateFilter, params PaginationParams) (Page[*Template], error)
	Popular(ctx context.Context, limit int) ([]*Template, error)
	Related(ctx context.Context, id string, limit int) ([]*Template, error)
	CategoriesWithCounts(ctx context.Context) ([]CountBucket, error)
	StylesWithCounts(ctx context.Context) ([]CountBucket, error)
	Create(ctx context.Context, t *Template) error
	Update(ctx context.Context, id string, patch TemplatePatch) (*Template, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*TemplateStats, error)
}
