package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"invitationadmin/internal/domain"
)

const invitationColumns = `
	id, user_id, template_id, title, category, status, form_data,
	event_date, venue_name, venue_address, slug, is_published, published_at, expires_at,
	meta_title, meta_description, view_count, unique_view_count, rsvp_count, confirmed_count,
	created_at, updated_at`

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func scanInvitation(row rowScanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var formData []byte
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.TemplateID, &inv.Title, &inv.Category, &inv.Status, &formData,
		&inv.EventDate, &inv.VenueName, &inv.VenueAddress, &inv.Slug, &inv.IsPublished, &inv.PublishedAt, &inv.ExpiresAt,
		&inv.MetaTitle, &inv.MetaDescription, &inv.ViewCount, &inv.UniqueViewCount, &inv.RSVPCount, &inv.ConfirmedCount,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.FormData = domain.FormData{}
	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &inv.FormData); err != nil {
			return nil, fmt.Errorf("decode form_data: %w", err)
		}
	}
	return inv, nil
}

// encodeJSON returns v as a string so lib/pq sends it as text rather than bytea.
func encodeJSON(v any) (string, error) {
	if v == nil {
		return "{}", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	formData, err := encodeJSON(inv.FormData)
	if err != nil {
		return fmt.Errorf("encode form_data: %w", err)
	}
	query := `
		INSERT INTO invitations (
			user_id, template_id, title, category, status, form_data,
			event_date, venue_name, venue_address, slug, is_published, published_at, expires_at,
			meta_title, meta_description, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	err = r.DB.QueryRowContext(ctx, query,
		inv.UserID, inv.TemplateID, inv.Title, inv.Category, inv.Status, formData,
		inv.EventDate, inv.VenueName, inv.VenueAddress, inv.Slug, inv.IsPublished, inv.PublishedAt, inv.ExpiresAt,
		inv.MetaTitle, inv.MetaDescription, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		if isUniqueViolation(err, "invitations_slug_key") {
			return domain.ErrDuplicateSlug
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *invitationRepository) getOne(ctx context.Context, where string, args ...any) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE ` + where
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *invitationRepository) GetByIDForOwner(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	return r.getOne(ctx, `id = $1 AND user_id = $2`, id, userID)
}

func (r *invitationRepository) GetBySlug(ctx context.Context, slug string) (*domain.Invitation, error) {
	return r.getOne(ctx, `slug = $1`, slug)
}

func (r *invitationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invitations WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *invitationRepository) List(ctx context.Context, filter domain.InvitationFilter, params domain.PaginationParams) (domain.Page[*domain.Invitation], error) {
	var c conditions
	if filter.UserID != "" {
		c.add("user_id = $%d", filter.UserID)
	}
	if filter.Status != "" {
		c.add("status = $%d", filter.Status)
	}
	if filter.Category != "" {
		c.add("category = $%d", filter.Category)
	}
	if filter.Search != "" {
		c.add("(title ILIKE $%[1]d OR slug ILIKE $%[1]d OR venue_name ILIKE $%[1]d)", likePattern(filter.Search))
	}

	var page domain.Page[*domain.Invitation]
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitations`+c.where(), c.args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count invitations: %w", err)
	}

	limit, args := c.page(params.Limit, params.Offset())
	query := `SELECT ` + invitationColumns + ` FROM invitations` + c.where() + ` ORDER BY created_at DESC, id` + limit
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	page.Items = []*domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, inv)
	}
	return page, rows.Err()
}

func (r *invitationRepository) Update(ctx context.Context, inv *domain.Invitation) error {
	formData, err := encodeJSON(inv.FormData)
	if err != nil {
		return fmt.Errorf("encode form_data: %w", err)
	}
	query := `
		UPDATE invitations
		SET title = $2, template_id = $3, form_data = $4, event_date = $5, venue_name = $6, venue_address = $7,
			status = $8, is_published = $9, published_at = $10, expires_at = $11,
			meta_title = $12, meta_description = $13, updated_at = $14
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query,
		inv.ID, inv.TemplateID, inv.Title, formData, inv.EventDate, inv.VenueName, inv.VenueAddress,
		inv.Status, inv.IsPublished, inv.PublishedAt, inv.ExpiresAt,
		inv.MetaTitle, inv.MetaDescription, inv.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *invitationRepository) DeleteForOwner(ctx context.Context, id, userID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *invitationRepository) IncrementViewCount(ctx context.Context, id string, unique bool) error {
	query := `
		UPDATE invitations
		SET view_count = view_count + 1,
			unique_view_count = unique_view_count + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, unique)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *invitationRepository) IncrementRSVPCount(ctx context.Context, id string, confirmed bool) error {
	query := `
		UPDATE invitations
		SET rsvp_count = rsvp_count + 1,
			confirmed_count = confirmed_count + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, id, confirmed)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

// Stats aggregates the invitations of userID, or of every user when userID is empty.
func (r *invitationRepository) Stats(ctx context.Context, userID string) (*domain.InvitationStats, error) {
	var c conditions
	if userID != "" {
		c.add("user_id = $%d", userID)
	}
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'archived'),
			COUNT(*) FILTER (WHERE status = 'expired'),
			COALESCE(SUM(view_count), 0),
			COALESCE(SUM(unique_view_count), 0),
			COALESCE(SUM(rsvp_count), 0),
			COALESCE(SUM(confirmed_count), 0),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM invitations` + c.where()
	s := &domain.InvitationStats{}
	err := r.DB.QueryRowContext(ctx, query, c.args...).Scan(
		&s.Total, &s.Draft, &s.Published, &s.Archived, &s.Expired,
		&s.TotalViews, &s.UniqueViews, &s.TotalRSVPs, &s.TotalConfirmed,
		&s.CreatedLast7, &s.CreatedLast30,
	)
	if err != nil {
		return nil, fmt.Errorf("invitation totals: %w", err)
	}
	s.ByCategory, err = countBuckets(ctx, r.DB,
		`SELECT category, COUNT(*) FROM invitations`+c.where()+` GROUP BY category ORDER BY category`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("invitations by category: %w", err)
	}
	return s, nil
}

func countBuckets(ctx context.Context, db *sql.DB, query string, args ...any) ([]domain.CountBucket, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	buckets := []domain.CountBucket{}
	for rows.Next() {
		var b domain.CountBucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}
