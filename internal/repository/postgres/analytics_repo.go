package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"invitationadmin/internal/domain"
)

type analyticsRepository struct {
	DB *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) domain.AnalyticsRepository {
	return &analyticsRepository{DB: db}
}

func (r *analyticsRepository) Record(ctx context.Context, ev *domain.AnalyticsEvent) error {
	query := `
		INSERT INTO analytics_events (invitation_id, event_type, visitor_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, ev.InvitationID, ev.EventType, ev.VisitorHash, ev.CreatedAt).Scan(&ev.ID)
	if err != nil && isForeignKeyViolation(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *analyticsRepository) CountView(ctx context.Context, invitationID, visitorHash string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	first, err := countView(ctx, tx, invitationID, visitorHash)
	if err != nil {
		_ = tx.Rollback()
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return first, nil
}

func countView(ctx context.Context, tx *sql.Tx, invitationID, visitorHash string) (bool, error) {
	first := false
	if visitorHash != "" {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO invitation_visitors (invitation_id, visitor_hash)
			VALUES ($1, $2)
			ON CONFLICT (invitation_id, visitor_hash) DO NOTHING
		`, invitationID, visitorHash)
		if err != nil {
			if isForeignKeyViolation(err) {
				return false, domain.ErrNotFound
			}
			return false, notFound(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		first = n == 1
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET view_count = view_count + 1,
			unique_view_count = unique_view_count + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $1
	`, invitationID, first)
	if err != nil {
		return false, notFound(err)
	}
	if err := requireAffected(res); err != nil {
		return false, err
	}
	return first, nil
}
