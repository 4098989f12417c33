package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

type adminAuthService struct {
	repo           domain.AdminUserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAdminAuthService creates the operator authentication service. Tokens it issues
// carry the admin role and must be signed with a secret distinct from end-user tokens.
func NewAdminAuthService(repo domain.AdminUserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, tokenExpiry time.Duration, logger *slog.Logger, timeout time.Duration) domain.AdminAuthService {
	if timeout <= 0 {
		timeout = defaultServiceTimeout
	}
	return &adminAuthService{
		repo:           repo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		logger:         logger.With(sl.Module("admin_auth")),
		contextTimeout: timeout,
	}
}

func (s *adminAuthService) TokenExpiry() time.Duration {
	return s.tokenExpiry
}

func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	admin, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if !admin.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.issue(admin)
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	if err := s.repo.TouchLastLogin(ctx, admin.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record admin login", "admin_id", admin.ID, sl.Err(err))
	} else {
		admin.LastLoginAt = &now
	}
	s.logger.InfoContext(ctx, "admin logged in", "admin_id", admin.ID)
	return token, admin, nil
}

func (s *adminAuthService) Me(ctx context.Context, id string) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.activeAdmin(ctx, id)
}

func (s *adminAuthService) Refresh(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	admin, err := s.activeAdmin(ctx, id)
	if err != nil {
		return "", err
	}
	return s.issue(admin)
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, email, password, name string) (*domain.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	var errs []string
	if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if len(password) < minPasswordLen {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if name == "" {
		errs = append(errs, "name is required")
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	admin := &domain.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	s.logger.InfoContext(ctx, "admin created", "admin_id", admin.ID)
	return admin, nil
}

// activeAdmin maps missing and deactivated accounts to ErrUnauthorized so a
// still-valid token for a removed operator stops working.
func (s *adminAuthService) activeAdmin(ctx context.Context, id string) (*domain.AdminUser, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	if !admin.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return admin, nil
}

func (s *adminAuthService) issue(admin *domain.AdminUser) (string, error) {
	token, err := s.tokenIssuer.Issue(domain.Claims{
		Subject: admin.ID,
		Email:   admin.Email,
		Name:    admin.Name,
		Role:    domain.RoleAdmin,
	}, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
