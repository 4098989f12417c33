package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"invitationadmin/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, email, name, password_hash, reseller_id, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.ResellerID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, reseller_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.Name, u.PasswordHash, u.ResellerID, u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (r *userRepository) List(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) (domain.Page[*domain.User], error) {
	var c conditions
	if filter.Search != "" {
		c.add("(email ILIKE $%[1]d OR name ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.ResellerID != "" {
		c.add("reseller_id = $%d", filter.ResellerID)
	}
	if filter.IsActive != nil {
		c.add("is_active = $%d", *filter.IsActive)
	}

	var page domain.Page[*domain.User]
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+c.where(), c.args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count users: %w", err)
	}
	limit, args := c.page(params.Limit, params.Offset())
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users`+c.where()+` ORDER BY created_at DESC, id`+limit, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	page.Items = []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, u)
	}
	return page, rows.Err()
}

func (r *userRepository) Stats(ctx context.Context) (*domain.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE reseller_id IS NOT NULL),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '7 days'),
			COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM users
	`
	s := &domain.UserStats{}
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.Total, &s.Active, &s.WithReseller, &s.CreatedLast7, &s.CreatedLast30); err != nil {
		return nil, fmt.Errorf("user totals: %w", err)
	}
	var err error
	s.ByReseller, err = countBuckets(ctx, r.DB, `
		SELECT r.name, COUNT(u.id)
		FROM users u
		JOIN resellers r ON r.id = u.reseller_id
		GROUP BY r.id, r.name
		ORDER BY COUNT(u.id) DESC, r.name
	`)
	if err != nil {
		return nil, fmt.Errorf("users by reseller: %w", err)
	}
	return s, nil
}
