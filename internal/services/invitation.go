package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/formdata"
	"invitationadmin/internal/lib/sl"
	"invitationadmin/internal/slug"
)

// slugInsertAttempts bounds how often Create regenerates the slug after the store
// rejected it as a duplicate.
const slugInsertAttempts = 3

const defaultServiceTimeout = 10 * time.Second

// InvitationOptions configures an invitation service.
type InvitationOptions struct {
	Timeout time.Duration
	// RequireCompleteOnPublish rejects publishing while required fields are empty.
	RequireCompleteOnPublish bool
}

type invitationService struct {
	repo            domain.InvitationRepository
	templateRepo    domain.TemplateRepository
	slugs           *slug.Generator
	tracker         domain.ViewTracker
	logger          *slog.Logger
	contextTimeout  time.Duration
	requireComplete bool
}

// NewInvitationService creates the invitation lifecycle manager.
func NewInvitationService(
	repo domain.InvitationRepository,
	templateRepo domain.TemplateRepository,
	slugs *slug.Generator,
	tracker domain.ViewTracker,
	logger *slog.Logger,
	opts InvitationOptions,
) domain.InvitationService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultServiceTimeout
	}
	return &invitationService{
		repo:            repo,
		templateRepo:    templateRepo,
		slugs:           slugs,
		tracker:         tracker,
		logger:          logger.With(sl.Module("invitations")),
		contextTimeout:  opts.Timeout,
		requireComplete: opts.RequireCompleteOnPublish,
	}
}

func (s *invitationService) Create(ctx context.Context, userID string, in domain.CreateInvitationInput) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if errs := formdata.Validate(in.Category, in.FormData); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	templateID := normalizeTemplateID(in.TemplateID)
	if templateID != nil {
		if err := s.ensureTemplateUsable(ctx, *templateID); err != nil {
			return nil, err
		}
	}

	inv := domain.NewInvitation(userID, title, in.Category, in.FormData.Clone(), templateID, time.Now())
	formdata.Apply(inv)
	if err := s.insert(ctx, inv); err != nil {
		return nil, err
	}

	if templateID != nil {
		if err := s.templateRepo.IncrementUsage(ctx, *templateID); err != nil {
			s.logger.WarnContext(ctx, "failed to increment template usage", "template_id", *templateID, sl.Err(err))
		}
	}
	s.logger.InfoContext(ctx, "invitation created", "invitation_id", inv.ID, "slug", inv.Slug, "category", inv.Category)
	return inv, nil
}

// insert assigns a slug and stores inv, regenerating the slug when a concurrent
// create took it between the existence check and the insert.
func (s *invitationService) insert(ctx context.Context, inv *domain.Invitation) error {
	var err error
	for attempt := 1; attempt <= slugInsertAttempts; attempt++ {
		if attempt < slugInsertAttempts {
			inv.Slug = s.slugs.Generate(ctx, inv.Category, inv.FormData)
		} else {
			inv.Slug = slug.Fallback(inv.Category)
		}
		err = s.repo.Create(ctx, inv)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateSlug) {
			return fmt.Errorf("create invitation: %w", err)
		}
		s.logger.WarnContext(ctx, "slug taken on insert, retrying", "slug", inv.Slug, "attempt", attempt)
	}
	return err
}

func (s *invitationService) ensureTemplateUsable(ctx context.Context, templateID string) error {
	t, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("template: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("get template: %w", err)
	}
	if !t.IsActive {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, domain.ErrTemplateInactive)
	}
	return nil
}

func normalizeTemplateID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

func (s *invitationService) Get(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getOwned(ctx, id, userID)
}

func (s *invitationService) getOwned(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	inv, err := s.repo.GetByIDForOwner(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) List(ctx context.Context, filter domain.InvitationFilter, params domain.PaginationParams) (domain.Page[*domain.Invitation], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var errs []string
	if filter.Status != "" && !filter.Status.Valid() {
		errs = append(errs, "status must be one of: draft, published, archived, expired")
	}
	if filter.Category != "" && !filter.Category.Valid() {
		errs = append(errs, "Invalid invitation type")
	}
	if len(errs) > 0 {
		return domain.Page[*domain.Invitation]{}, domain.NewValidationError(errs...)
	}
	filter.Search = strings.TrimSpace(filter.Search)
	page, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return domain.Page[*domain.Invitation]{}, fmt.Errorf("list invitations: %w", err)
	}
	if page.Items == nil {
		page.Items = []*domain.Invitation{}
	}
	return page, nil
}

func (s *invitationService) Update(ctx context.Context, id, userID string, patch domain.InvitationPatch) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.NewValidationError("title cannot be empty")
		}
		inv.Title = title
	}
	if patch.TemplateID != nil {
		templateID := normalizeTemplateID(patch.TemplateID)
		if templateID != nil && (inv.TemplateID == nil || *inv.TemplateID != *templateID) {
			if err := s.ensureTemplateUsable(ctx, *templateID); err != nil {
				return nil, err
			}
		}
		inv.TemplateID = templateID
	}
	if patch.FormData != nil {
		merged := inv.FormData.Merge(patch.FormData)
		// Category comes from the stored record, never from the request.
		if errs := formdata.Validate(inv.Category, merged); len(errs) > 0 {
			return nil, domain.NewValidationError(errs...)
		}
		inv.FormData = merged
		formdata.Apply(inv)
	}
	inv.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) Publish(ctx context.Context, id, userID string, opts domain.PublishOptions) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if s.requireComplete {
		if missing := formdata.Missing(inv.Category, inv.FormData); len(missing) > 0 {
			return nil, domain.NewValidationError(missing...)
		}
	}
	now := time.Now()
	if opts.ExpiresAt != nil && !opts.ExpiresAt.After(now) {
		return nil, domain.NewValidationError("expires_at must be in the future")
	}

	inv.Status = domain.StatusPublished
	inv.IsPublished = true
	inv.PublishedAt = &now
	if opts.ExpiresAt != nil {
		exp := opts.ExpiresAt.UTC()
		inv.ExpiresAt = &exp
	}
	if opts.MetaTitle != nil {
		inv.MetaTitle = opts.MetaTitle
	}
	if opts.MetaDescription != nil {
		inv.MetaDescription = opts.MetaDescription
	}
	inv.UpdatedAt = now

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("publish invitation: %w", err)
	}
	s.logger.InfoContext(ctx, "invitation published", "invitation_id", inv.ID, "slug", inv.Slug)
	return inv, nil
}

func (s *invitationService) Unpublish(ctx context.Context, id, userID string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.getOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	inv.Status = domain.StatusDraft
	inv.IsPublished = false
	inv.PublishedAt = nil
	inv.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("unpublish invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.DeleteForOwner(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}

func (s *invitationService) Duplicate(ctx context.Context, id, userID string, title *string) (*domain.Invitation, error) {
	original, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	newTitle := original.Title + " (Copy)"
	if title != nil && strings.TrimSpace(*title) != "" {
		newTitle = *title
	}
	return s.Create(ctx, userID, domain.CreateInvitationInput{
		Title:      newTitle,
		Category:   original.Category,
		FormData:   original.FormData.Clone(),
		TemplateID: original.TemplateID,
	})
}

func (s *invitationService) Stats(ctx context.Context, userID string) (*domain.InvitationStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("invitation stats: %w", err)
	}
	return stats, nil
}

func (s *invitationService) GetPublished(ctx context.Context, slugValue, visitorHash string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.publishedBySlug(ctx, slugValue)
	if err != nil {
		return nil, err
	}
	s.TrackView(ctx, inv.ID, visitorHash)
	return inv, nil
}

// publishedBySlug hides drafts and invitations past their expiry.
func (s *invitationService) publishedBySlug(ctx context.Context, slugValue string) (*domain.Invitation, error) {
	inv, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slugValue)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by slug: %w", err)
	}
	if !inv.IsPublished || inv.Status != domain.StatusPublished {
		return nil, domain.ErrNotFound
	}
	if inv.ExpiresAt != nil && inv.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrNotFound
	}
	return inv, nil
}

func (s *invitationService) TrackView(ctx context.Context, id, visitorHash string) {
	if s.tracker == nil {
		return
	}
	s.tracker.Track(domain.PageView{InvitationID: id, VisitorHash: visitorHash, ViewedAt: time.Now()})
}

func (s *invitationService) AdminGet(ctx context.Context, id string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *invitationService) AdminGetBySlug(ctx context.Context, slugValue string) (*domain.Invitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slugValue)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by slug: %w", err)
	}
	return inv, nil
}

func (s *invitationService) AdminSetStatus(ctx context.Context, id string, status domain.InvitationStatus) (*domain.Invitation, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status must be one of: draft, published, archived, expired")
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	now := time.Now()
	inv.Status = status
	if status == domain.StatusPublished {
		inv.IsPublished = true
		if inv.PublishedAt == nil {
			inv.PublishedAt = &now
		}
	} else {
		inv.IsPublished = false
		inv.PublishedAt = nil
	}
	inv.UpdatedAt = now
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("set invitation status: %w", err)
	}
	s.logger.InfoContext(ctx, "invitation status changed by admin", "invitation_id", inv.ID, "status", status)
	return inv, nil
}

func (s *invitationService) AdminDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete invitation: %w", err)
	}
	return nil
}
