package domain

import (
	"context"
	"time"
)

// Token roles carried in the role claim.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an end-user account that owns invitations.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	ResellerID   *string   `json:"reseller_id"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new active User with the given fields. ID is typically set by the repository on create.
func NewUser(email, name, passwordHash string, resellerID *string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		ResellerID:   resellerID,
		IsActive:     true,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// UserFilter narrows user list queries. Empty fields are ignored.
type UserFilter struct {
	Search     string
	ResellerID string
	IsActive   *bool
}

// UserStats aggregates user counts for the admin dashboard.
type UserStats struct {
	Total         int           `json:"total"`
	Active        int           `json:"active"`
	WithReseller  int           `json:"with_reseller"`
	CreatedLast7  int           `json:"created_last_7_days"`
	CreatedLast30 int           `json:"created_last_30_days"`
	ByReseller    []CountBucket `json:"by_reseller"`
}

// Claims is the verified content of a signed token.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues signed tokens for an authenticated principal.
type TokenIssuer interface {
	Issue(claims Claims, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	// Create inserts the user. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter, params PaginationParams) (Page[*User], error)
	Stats(ctx context.Context) (*UserStats, error)
}

// UserService defines end-user authentication and admin user reporting.
type UserService interface {
	SignUp(ctx context.Context, email, password, name, referralCode string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter UserFilter, params PaginationParams) (Page[*User], error)
	Stats(ctx context.Context) (*UserStats, error)
}
