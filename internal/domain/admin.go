package domain

import (
	"context"
	"time"
)

// AdminUser is an operator account, authenticated separately from end users.
// swagger:model AdminUser
type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AdminUserRepository defines storage for admin accounts.
type AdminUserRepository interface {
	// Create inserts the admin. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, admin *AdminUser) error
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	GetByID(ctx context.Context, id string) (*AdminUser, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// AdminAuthService authenticates operators and manages admin accounts.
type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (token string, admin *AdminUser, err error)
	Me(ctx context.Context, id string) (*AdminUser, error)
	Refresh(ctx context.Context, id string) (string, error)
	CreateAdmin(ctx context.Context, email, password, name string) (*AdminUser, error)
	TokenExpiry() time.Duration
}
