package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

const (
	referralCodeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeLength      = 8
	maxReferralCodeAttempts = 10
)

type resellerService struct {
	repo           domain.ResellerRepository
	logger         *slog.Logger
	contextTimeout time.Duration
	newCode        func() (string, error)
}

// NewResellerService creates a ResellerService backed by repo.
func NewResellerService(repo domain.ResellerRepository, logger *slog.Logger, timeout time.Duration) domain.ResellerService {
	if timeout <= 0 {
		timeout = defaultServiceTimeout
	}
	return &resellerService{
		repo:           repo,
		logger:         logger.With(sl.Module("resellers")),
		contextTimeout: timeout,
		newCode:        generateReferralCode,
	}
}

func generateReferralCode() (string, error) {
	return gonanoid.Generate(referralCodeAlphabet, referralCodeLength)
}

func (s *resellerService) Create(ctx context.Context, in domain.CreateResellerInput) (*domain.Reseller, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Type == "" {
		in.Type = domain.ResellerFree
	}
	if errs := validateReseller(in.Name, in.Email, in.Type); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}

	now := time.Now()
	r := &domain.Reseller{
		Name:      in.Name,
		Email:     in.Email,
		Company:   strings.TrimSpace(in.Company),
		Phone:     strings.TrimSpace(in.Phone),
		Type:      in.Type,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for attempt := 1; attempt <= maxReferralCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate referral code: %w", err)
		}
		exists, err := s.repo.ReferralCodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check referral code: %w", err)
		}
		if exists {
			continue
		}
		r.ReferralCode = code
		err = s.repo.Create(ctx, r)
		if err == nil {
			s.logger.InfoContext(ctx, "reseller created", "reseller_id", r.ID, "referral_code", r.ReferralCode)
			return r, nil
		}
		if errors.Is(err, domain.ErrDuplicateCode) {
			continue
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create reseller: %w", err)
	}
	s.logger.ErrorContext(ctx, "referral code attempts exhausted", "attempts", maxReferralCodeAttempts)
	return nil, domain.ErrCodeGeneration
}

func (s *resellerService) Get(ctx context.Context, id string) (*domain.Reseller, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reseller: %w", err)
	}
	return r, nil
}

func (s *resellerService) GetByReferralCode(ctx context.Context, code string) (*domain.Reseller, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.repo.GetByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reseller by referral code: %w", err)
	}
	return r, nil
}

func (s *resellerService) List(ctx context.Context, filter domain.ResellerFilter, params domain.PaginationParams) (domain.Page[*domain.Reseller], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Type != "" && !filter.Type.Valid() {
		return domain.Page[*domain.Reseller]{}, domain.NewValidationError("type must be one of: FREE, PREMIUM")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return domain.Page[*domain.Reseller]{}, fmt.Errorf("list resellers: %w", err)
	}
	if page.Items == nil {
		page.Items = []*domain.Reseller{}
	}
	return page, nil
}

func (s *resellerService) Update(ctx context.Context, id string, patch domain.ResellerPatch) (*domain.Reseller, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get reseller: %w", err)
	}
	if patch.Name != nil {
		r.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		r.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Company != nil {
		r.Company = strings.TrimSpace(*patch.Company)
	}
	if patch.Phone != nil {
		r.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Type != nil {
		r.Type = *patch.Type
	}
	if patch.IsActive != nil {
		r.IsActive = *patch.IsActive
	}
	if errs := validateReseller(r.Name, r.Email, r.Type); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	r.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update reseller: %w", err)
	}
	return r, nil
}

func (s *resellerService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete reseller: %w", err)
	}
	return nil
}

func (s *resellerService) Stats(ctx context.Context) (*domain.ResellerStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reseller stats: %w", err)
	}
	return stats, nil
}

func validateReseller(name, email string, typ domain.ResellerType) []string {
	var errs []string
	if name == "" {
		errs = append(errs, "name is required")
	}
	if !emailRegexp.MatchString(email) {
		errs = append(errs, "email must be a valid email address")
	}
	if !typ.Valid() {
		errs = append(errs, "type must be one of: FREE, PREMIUM")
	}
	return errs
}
