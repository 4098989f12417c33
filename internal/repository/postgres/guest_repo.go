package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"invitationadmin/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

const guestColumns = `
	id, invitation_id, name, email, phone, response, plus_ones, message,
	responded_at, invited_at, created_at, updated_at`

func scanGuest(row rowScanner) (*domain.InvitationGuest, error) {
	g := &domain.InvitationGuest{}
	err := row.Scan(&g.ID, &g.InvitationID, &g.Name, &g.Email, &g.Phone, &g.Response, &g.PlusOnes, &g.Message,
		&g.RespondedAt, &g.InvitedAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) queryGuests(ctx context.Context, query string, args ...any) ([]*domain.InvitationGuest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.InvitationGuest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *guestRepository) Create(ctx context.Context, g *domain.InvitationGuest) error {
	query := `
		INSERT INTO invitation_guests (
			invitation_id, name, email, phone, response, plus_ones, message,
			responded_at, invited_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		g.InvitationID, g.Name, g.Email, g.Phone, g.Response, g.PlusOnes, g.Message,
		g.RespondedAt, g.InvitedAt, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *guestRepository) GetByID(ctx context.Context, invitationID, guestID string) (*domain.InvitationGuest, error) {
	query := `SELECT ` + guestColumns + ` FROM invitation_guests WHERE id = $1 AND invitation_id = $2`
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, guestID, invitationID))
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

func (r *guestRepository) List(ctx context.Context, invitationID string, response domain.GuestResponse, params domain.PaginationParams) (domain.Page[*domain.InvitationGuest], error) {
	var c conditions
	c.add("invitation_id = $%d", invitationID)
	if response != "" {
		c.add("response = $%d", response)
	}

	var page domain.Page[*domain.InvitationGuest]
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM invitation_guests`+c.where(), c.args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count guests: %w", err)
	}
	limit, args := c.page(params.Limit, params.Offset())
	items, err := r.queryGuests(ctx, `SELECT `+guestColumns+` FROM invitation_guests`+c.where()+` ORDER BY created_at, id`+limit, args...)
	if err != nil {
		return page, err
	}
	page.Items = items
	return page, nil
}

func (r *guestRepository) ListWithEmail(ctx context.Context, invitationID string) ([]*domain.InvitationGuest, error) {
	query := `SELECT ` + guestColumns + ` FROM invitation_guests
		WHERE invitation_id = $1 AND email <> ''
		ORDER BY created_at, id`
	return r.queryGuests(ctx, query, invitationID)
}

func (r *guestRepository) Update(ctx context.Context, g *domain.InvitationGuest) error {
	query := `
		UPDATE invitation_guests
		SET name = $3, email = $4, phone = $5, response = $6, plus_ones = $7, message = $8,
			responded_at = $9, updated_at = $10
		WHERE id = $1 AND invitation_id = $2
	`
	res, err := r.DB.ExecContext(ctx, query,
		g.ID, g.InvitationID, g.Name, g.Email, g.Phone, g.Response, g.PlusOnes, g.Message, g.RespondedAt, g.UpdatedAt,
	)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *guestRepository) MarkInvited(ctx context.Context, guestIDs []string, at time.Time) error {
	if len(guestIDs) == 0 {
		return nil
	}
	query := `UPDATE invitation_guests SET invited_at = $1, updated_at = $1 WHERE id = ANY($2)`
	_, err := r.DB.ExecContext(ctx, query, at, pq.Array(guestIDs))
	return err
}

func (r *guestRepository) Delete(ctx context.Context, invitationID, guestID string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitation_guests WHERE id = $1 AND invitation_id = $2`, guestID, invitationID)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}
