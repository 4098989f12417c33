package postgres

import (
	"context"
	"database/sql"
	"time"

	"invitationadmin/internal/domain"
)

type adminUserRepository struct {
	DB *sql.DB
}

func NewAdminUserRepository(db *sql.DB) domain.AdminUserRepository {
	return &adminUserRepository{DB: db}
}

const adminUserColumns = `id, email, name, password_hash, role, is_active, last_login_at, created_at, updated_at`

func scanAdminUser(row rowScanner) (*domain.AdminUser, error) {
	a := &domain.AdminUser{}
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &a.Role, &a.IsActive, &a.LastLoginAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *adminUserRepository) Create(ctx context.Context, a *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (email, name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.Email, a.Name, a.PasswordHash, a.Role, a.IsActive, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err, "admin_users_email_key") {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	a, err := scanAdminUser(r.DB.QueryRowContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *adminUserRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	a, err := scanAdminUser(r.DB.QueryRowContext(ctx, `SELECT `+adminUserColumns+` FROM admin_users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *adminUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE admin_users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return notFound(err)
	}
	return requireAffected(res)
}
