package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invitationadmin/internal/domain"
)

const (
	defaultPopularLimit = 10
	defaultRelatedLimit = 4
	maxTemplateLimit    = 50
)

type templateService struct {
	repo           domain.TemplateRepository
	contextTimeout time.Duration
}

// NewTemplateService creates a TemplateService backed by repo.
func NewTemplateService(repo domain.TemplateRepository, timeout time.Duration) domain.TemplateService {
	if timeout <= 0 {
		timeout = defaultServiceTimeout
	}
	return &templateService{repo: repo, contextTimeout: timeout}
}

func (s *templateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *templateService) List(ctx context.Context, filter domain.TemplateFilter, params domain.PaginationParams) (domain.Page[*domain.Template], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Category != "" && !filter.Category.Valid() {
		return domain.Page[*domain.Template]{}, domain.NewValidationError("category is invalid")
	}
	if filter.Style != "" && !filter.Style.Valid() {
		return domain.Page[*domain.Template]{}, domain.NewValidationError("style is invalid")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return domain.Page[*domain.Template]{}, fmt.Errorf("list templates: %w", err)
	}
	if page.Items == nil {
		page.Items = []*domain.Template{}
	}
	return page, nil
}

func (s *templateService) Popular(ctx context.Context, limit int) ([]*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	items, err := s.repo.Popular(ctx, clampLimit(limit, defaultPopularLimit))
	if err != nil {
		return nil, fmt.Errorf("popular templates: %w", err)
	}
	if items == nil {
		items = []*domain.Template{}
	}
	return items, nil
}

func (s *templateService) Related(ctx context.Context, id string, limit int) ([]*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	items, err := s.repo.Related(ctx, t, clampLimit(limit, defaultRelatedLimit))
	if err != nil {
		return nil, fmt.Errorf("related templates: %w", err)
	}
	if items == nil {
		items = []*domain.Template{}
	}
	return items, nil
}

func (s *templateService) CategoriesWithCounts(ctx context.Context) ([]domain.CountBucket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count templates by category: %w", err)
	}
	return fillBuckets(counts, categoryKeys()), nil
}

func (s *templateService) StylesWithCounts(ctx context.Context) ([]domain.CountBucket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	counts, err := s.repo.CountByStyle(ctx)
	if err != nil {
		return nil, fmt.Errorf("count templates by style: %w", err)
	}
	keys := make([]string, len(domain.Styles))
	for i, st := range domain.Styles {
		keys[i] = string(st)
	}
	return fillBuckets(counts, keys), nil
}

func (s *templateService) Create(ctx context.Context, t *domain.Template) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t.Name = strings.TrimSpace(t.Name)
	if errs := validateTemplate(t); len(errs) > 0 {
		return domain.NewValidationError(errs...)
	}
	if t.Config == nil {
		t.Config = map[string]any{}
	}
	now := time.Now()
	t.PopularityScore = 0
	t.UsageCount = 0
	t.CreatedAt = now
	t.UpdatedAt = now
	if err := s.repo.Create(ctx, t); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (s *templateService) Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	if patch.Name != nil {
		t.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Style != nil {
		t.Style = *patch.Style
	}
	if patch.PreviewImageURL != nil {
		t.PreviewImageURL = *patch.PreviewImageURL
	}
	if patch.Config != nil {
		t.Config = patch.Config
	}
	if patch.IsPremium != nil {
		t.IsPremium = *patch.IsPremium
	}
	if patch.Price != nil {
		t.Price = *patch.Price
	}
	if patch.IsActive != nil {
		t.IsActive = *patch.IsActive
	}
	if errs := validateTemplate(t); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	t.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

func (s *templateService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrTemplateInUse) {
			return err
		}
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *templateService) Stats(ctx context.Context) (*domain.TemplateStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("template stats: %w", err)
	}
	return stats, nil
}

func validateTemplate(t *domain.Template) []string {
	var errs []string
	if t.Name == "" {
		errs = append(errs, "name is required")
	}
	if !t.Category.Valid() {
		errs = append(errs, "category is invalid")
	}
	if !t.Style.Valid() {
		errs = append(errs, "style is invalid")
	}
	if t.Price < 0 {
		errs = append(errs, "price must be a non-negative number")
	}
	if !t.IsPremium && t.Price > 0 {
		errs = append(errs, "price must be 0 for free templates")
	}
	return errs
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxTemplateLimit {
		return maxTemplateLimit
	}
	return limit
}

func categoryKeys() []string {
	keys := make([]string, len(domain.Categories))
	for i, c := range domain.Categories {
		keys[i] = string(c)
	}
	return keys
}

// fillBuckets returns one bucket per key in order, with zero counts for keys the store did not report.
func fillBuckets(counts []domain.CountBucket, keys []string) []domain.CountBucket {
	byKey := make(map[string]int, len(counts))
	for _, c := range counts {
		byKey[c.Key] = c.Count
	}
	out := make([]domain.CountBucket, len(keys))
	for i, k := range keys {
		out[i] = domain.CountBucket{Key: k, Count: byKey[k]}
	}
	return out
}
