package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"invitationadmin/internal/domain"
)

const templateColumns = `
	id, name, description, category, style, preview_image_url, config,
	is_premium, price, is_active, popularity_score, usage_count, created_at, updated_at`

type templateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{DB: db}
}

func scanTemplate(row rowScanner) (*domain.Template, error) {
	t := &domain.Template{}
	var config []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Category, &t.Style, &t.PreviewImageURL, &config,
		&t.IsPremium, &t.Price, &t.IsActive, &t.PopularityScore, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Config = map[string]any{}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &t.Config); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	return t, nil
}

func (r *templateRepository) queryTemplates(ctx context.Context, query string, args ...any) ([]*domain.Template, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *templateRepository) Create(ctx context.Context, t *domain.Template) error {
	config, err := encodeJSON(t.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	query := `
		INSERT INTO templates (
			name, description, category, style, preview_image_url, config,
			is_premium, price, is_active, popularity_score, usage_count, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.Name, t.Description, t.Category, t.Style, t.PreviewImageURL, config,
		t.IsPremium, t.Price, t.IsActive, t.PopularityScore, t.UsageCount, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *templateRepository) List(ctx context.Context, filter domain.TemplateFilter, params domain.PaginationParams) (domain.Page[*domain.Template], error) {
	var c conditions
	if filter.Category != "" {
		c.add("category = $%d", filter.Category)
	}
	if filter.Style != "" {
		c.add("style = $%d", filter.Style)
	}
	if filter.IsPremium != nil {
		c.add("is_premium = $%d", *filter.IsPremium)
	}
	if filter.IsActive != nil {
		c.add("is_active = $%d", *filter.IsActive)
	}
	if filter.Search != "" {
		c.add("(name ILIKE $%[1]d OR description ILIKE $%[1]d)", likePattern(filter.Search))
	}

	var page domain.Page[*domain.Template]
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`+c.where(), c.args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count templates: %w", err)
	}
	limit, args := c.page(params.Limit, params.Offset())
	items, err := r.queryTemplates(ctx,
		`SELECT `+templateColumns+` FROM templates`+c.where()+` ORDER BY popularity_score DESC, created_at DESC, id`+limit, args...)
	if err != nil {
		return page, err
	}
	page.Items = items
	return page, nil
}

func (r *templateRepository) Popular(ctx context.Context, limit int) ([]*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
		WHERE is_active
		ORDER BY popularity_score DESC, usage_count DESC, id
		LIMIT $1`
	return r.queryTemplates(ctx, query, limit)
}

// Related returns active templates sharing t's category or style, same-category first.
func (r *templateRepository) Related(ctx context.Context, t *domain.Template, limit int) ([]*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates
		WHERE is_active AND id <> $1 AND (category = $2 OR style = $3)
		ORDER BY (category = $2) DESC, popularity_score DESC, id
		LIMIT $4`
	return r.queryTemplates(ctx, query, t.ID, t.Category, t.Style, limit)
}

func (r *templateRepository) CountByCategory(ctx context.Context) ([]domain.CountBucket, error) {
	return countBuckets(ctx, r.DB, `SELECT category, COUNT(*) FROM templates WHERE is_active GROUP BY category ORDER BY category`)
}

func (r *templateRepository) CountByStyle(ctx context.Context) ([]domain.CountBucket, error) {
	return countBuckets(ctx, r.DB, `SELECT style, COUNT(*) FROM templates WHERE is_active GROUP BY style ORDER BY style`)
}

func (r *templateRepository) Update(ctx context.Context, t *domain.Template) error {
	config, err := encodeJSON(t.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	query := `
		UPDATE templates
		SET name = $2, description = $3, style = $4, preview_image_url = $5, config = $6,
			is_premium = $7, price = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.Style, t.PreviewImageURL, config,
		t.IsPremium, t.Price, t.IsActive, t.UpdatedAt,
	)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTemplateInUse
		}
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *templateRepository) IncrementUsage(ctx context.Context, id string) error {
	query := `
		UPDATE templates
		SET usage_count = usage_count + 1, popularity_score = popularity_score + 1
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *templateRepository) Stats(ctx context.Context) (*domain.TemplateStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE is_premium),
			COALESCE(SUM(usage_count), 0)
		FROM templates
	`
	s := &domain.TemplateStats{}
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.Total, &s.Active, &s.Premium, &s.TotalUsage); err != nil {
		return nil, fmt.Errorf("template totals: %w", err)
	}
	var err error
	if s.ByCategory, err = countBuckets(ctx, r.DB, `SELECT category, COUNT(*) FROM templates GROUP BY category ORDER BY category`); err != nil {
		return nil, fmt.Errorf("templates by category: %w", err)
	}
	if s.ByStyle, err = countBuckets(ctx, r.DB, `SELECT style, COUNT(*) FROM templates GROUP BY style ORDER BY style`); err != nil {
		return nil, fmt.Errorf("templates by style: %w", err)
	}
	return s, nil
}
