package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"invitationadmin/internal/domain"
)

type resellerRepository struct {
	DB *sql.DB
}

func NewResellerRepository(db *sql.DB) domain.ResellerRepository {
	return &resellerRepository{DB: db}
}

const resellerColumns = `
	r.id, r.name, r.email, r.company, r.phone, r.referral_code, r.type, r.is_active,
	(SELECT COUNT(*) FROM users u WHERE u.reseller_id = r.id),
	r.created_at, r.updated_at`

func scanReseller(row rowScanner) (*domain.Reseller, error) {
	rs := &domain.Reseller{}
	err := row.Scan(&rs.ID, &rs.Name, &rs.Email, &rs.Company, &rs.Phone, &rs.ReferralCode, &rs.Type, &rs.IsActive,
		&rs.UserCount, &rs.CreatedAt, &rs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func resellerWriteError(err error) error {
	switch {
	case isUniqueViolation(err, "resellers_referral_code_key"):
		return domain.ErrDuplicateCode
	case isUniqueViolation(err, "resellers_email_key"):
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *resellerRepository) Create(ctx context.Context, rs *domain.Reseller) error {
	query := `
		INSERT INTO resellers (name, email, company, phone, referral_code, type, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		rs.Name, rs.Email, rs.Company, rs.Phone, rs.ReferralCode, rs.Type, rs.IsActive, rs.CreatedAt, rs.UpdatedAt,
	).Scan(&rs.ID)
	if err != nil {
		return resellerWriteError(err)
	}
	return nil
}

func (r *resellerRepository) GetByID(ctx context.Context, id string) (*domain.Reseller, error) {
	rs, err := scanReseller(r.DB.QueryRowContext(ctx, `SELECT `+resellerColumns+` FROM resellers r WHERE r.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return rs, nil
}

func (r *resellerRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Reseller, error) {
	rs, err := scanReseller(r.DB.QueryRowContext(ctx, `SELECT `+resellerColumns+` FROM resellers r WHERE r.referral_code = $1`, code))
	if err != nil {
		return nil, notFound(err)
	}
	return rs, nil
}

func (r *resellerRepository) ReferralCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resellers WHERE referral_code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *resellerRepository) List(ctx context.Context, filter domain.ResellerFilter, params domain.PaginationParams) (domain.Page[*domain.Reseller], error) {
	var c conditions
	if filter.Search != "" {
		c.add("(r.name ILIKE $%[1]d OR r.email ILIKE $%[1]d OR r.company ILIKE $%[1]d OR r.referral_code ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.Type != "" {
		c.add("r.type = $%d", filter.Type)
	}
	if filter.IsActive != nil {
		c.add("r.is_active = $%d", *filter.IsActive)
	}

	var page domain.Page[*domain.Reseller]
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM resellers r`+c.where(), c.args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count resellers: %w", err)
	}
	limit, args := c.page(params.Limit, params.Offset())
	rows, err := r.DB.QueryContext(ctx, `SELECT `+resellerColumns+` FROM resellers r`+c.where()+` ORDER BY r.created_at DESC, r.id`+limit, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	page.Items = []*domain.Reseller{}
	for rows.Next() {
		rs, err := scanReseller(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, rs)
	}
	return page, rows.Err()
}

func (r *resellerRepository) Update(ctx context.Context, rs *domain.Reseller) error {
	query := `
		UPDATE resellers
		SET name = $2, email = $3, company = $4, phone = $5, type = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.DB.ExecContext(ctx, query, rs.ID, rs.Name, rs.Email, rs.Company, rs.Phone, rs.Type, rs.IsActive, rs.UpdatedAt)
	if err != nil {
		return notFound(resellerWriteError(err))
	}
	return requireAffected(res)
}

func (r *resellerRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM resellers WHERE id = $1`, id)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}

func (r *resellerRepository) Stats(ctx context.Context) (*domain.ResellerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			(SELECT COUNT(*) FROM users WHERE reseller_id IS NOT NULL),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM resellers
	`
	s := &domain.ResellerStats{}
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.Total, &s.Active, &s.AttributedUsers, &s.CreatedLast30); err != nil {
		return nil, fmt.Errorf("reseller totals: %w", err)
	}
	var err error
	if s.ByType, err = countBuckets(ctx, r.DB, `SELECT type, COUNT(*) FROM resellers GROUP BY type ORDER BY type`); err != nil {
		return nil, fmt.Errorf("resellers by type: %w", err)
	}
	return s, nil
}
