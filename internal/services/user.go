package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// UserDeps groups the collaborators of the user service.
type UserDeps struct {
	Users        domain.UserRepository
	Resellers    domain.ResellerRepository
	Hasher       domain.PasswordHasher
	Tokens       domain.TokenIssuer
	TokenExpiry  time.Duration
	EmailService domain.EmailService
	Logger       *slog.Logger
	Timeout      time.Duration
}

type userService struct {
	userRepo       domain.UserRepository
	resellerRepo   domain.ResellerRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService creates a UserService with the given repositories and auth ports.
func NewUserService(deps UserDeps) domain.UserService {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultServiceTimeout
	}
	return &userService{
		userRepo:       deps.Users,
		resellerRepo:   deps.Resellers,
		hasher:         deps.Hasher,
		tokenIssuer:    deps.Tokens,
		tokenExpiry:    deps.TokenExpiry,
		emailService:   deps.EmailService,
		logger:         deps.Logger.With(sl.Module("users")),
		contextTimeout: deps.Timeout,
	}
}

func (s *userService) SignUp(ctx context.Context, email, password, name, referralCode string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email = strings.TrimSpace(strings.ToLower(email))
	var errs []string
	if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if len(password) < minPasswordLen {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}

	var resellerID *string
	if code := strings.ToUpper(strings.TrimSpace(referralCode)); code != "" {
		reseller, err := s.resellerRepo.GetByReferralCode(ctx, code)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrInvalidReferral
			}
			return nil, fmt.Errorf("get reseller by referral code: %w", err)
		}
		if !reseller.IsActive {
			return nil, domain.ErrInvalidReferral
		}
		resellerID = &reseller.ID
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := domain.NewUser(email, strings.TrimSpace(name), hash, resellerID, now, now)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, FirstName: firstName(user.Name)}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "failed to send welcome email", "user_id", user.ID, sl.Err(err))
		}
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(domain.Claims{
		Subject: user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Role:    domain.RoleUser,
	}, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) (domain.Page[*domain.User], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Search = strings.TrimSpace(filter.Search)
	page, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return domain.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	if page.Items == nil {
		page.Items = []*domain.User{}
	}
	return page, nil
}

func (s *userService) Stats(ctx context.Context) (*domain.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.userRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
