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

const maxPlusOnes = 20

// GuestDeps groups the collaborators of the guest service.
type GuestDeps struct {
	Guests        domain.GuestRepository
	Invitations   domain.InvitationRepository
	Analytics     domain.AnalyticsRepository
	EmailService  domain.EmailService
	PublicBaseURL string
	Logger        *slog.Logger
	Timeout       time.Duration
}

type guestService struct {
	guestRepo      domain.GuestRepository
	invitationRepo domain.InvitationRepository
	analyticsRepo  domain.AnalyticsRepository
	emailService   domain.EmailService
	publicBaseURL  string
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewGuestService creates a GuestService.
func NewGuestService(deps GuestDeps) domain.GuestService {
	if deps.Timeout <= 0 {
		deps.Timeout = defaultServiceTimeout
	}
	return &guestService{
		guestRepo:      deps.Guests,
		invitationRepo: deps.Invitations,
		analyticsRepo:  deps.Analytics,
		emailService:   deps.EmailService,
		publicBaseURL:  strings.TrimRight(deps.PublicBaseURL, "/"),
		logger:         deps.Logger.With(sl.Module("guests")),
		contextTimeout: deps.Timeout,
	}
}

func (s *guestService) ownedInvitation(ctx context.Context, invitationID, userID string) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByIDForOwner(ctx, invitationID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (s *guestService) List(ctx context.Context, invitationID, userID string, response domain.GuestResponse, params domain.PaginationParams) (domain.Page[*domain.InvitationGuest], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if response != "" && !response.Valid() {
		return domain.Page[*domain.InvitationGuest]{}, domain.NewValidationError("response must be one of: pending, attending, not_attending, maybe")
	}
	if _, err := s.ownedInvitation(ctx, invitationID, userID); err != nil {
		return domain.Page[*domain.InvitationGuest]{}, err
	}
	page, err := s.guestRepo.List(ctx, invitationID, response, params)
	if err != nil {
		return domain.Page[*domain.InvitationGuest]{}, fmt.Errorf("list guests: %w", err)
	}
	if page.Items == nil {
		page.Items = []*domain.InvitationGuest{}
	}
	return page, nil
}

func (s *guestService) Add(ctx context.Context, invitationID, userID string, g *domain.InvitationGuest) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedInvitation(ctx, invitationID, userID); err != nil {
		return err
	}
	normalizeGuest(g)
	if g.Response == "" {
		g.Response = domain.ResponsePending
	}
	if errs := validateGuest(g); len(errs) > 0 {
		return domain.NewValidationError(errs...)
	}
	now := time.Now()
	g.InvitationID = invitationID
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Response != domain.ResponsePending {
		g.RespondedAt = &now
	}
	if err := s.guestRepo.Create(ctx, g); err != nil {
		return fmt.Errorf("create guest: %w", err)
	}
	return nil
}

func (s *guestService) Update(ctx context.Context, invitationID, guestID, userID string, patch domain.GuestPatch) (*domain.InvitationGuest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedInvitation(ctx, invitationID, userID); err != nil {
		return nil, err
	}
	g, err := s.guestRepo.GetByID(ctx, invitationID, guestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Email != nil {
		g.Email = *patch.Email
	}
	if patch.Phone != nil {
		g.Phone = *patch.Phone
	}
	if patch.PlusOnes != nil {
		g.PlusOnes = *patch.PlusOnes
	}
	if patch.Message != nil {
		g.Message = *patch.Message
	}
	now := time.Now()
	if patch.Response != nil && *patch.Response != g.Response {
		g.Response = *patch.Response
		if g.Response == domain.ResponsePending {
			g.RespondedAt = nil
		} else {
			g.RespondedAt = &now
		}
	}
	normalizeGuest(g)
	if errs := validateGuest(g); len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	g.UpdatedAt = now
	if err := s.guestRepo.Update(ctx, g); err != nil {
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return g, nil
}

func (s *guestService) Remove(ctx context.Context, invitationID, guestID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedInvitation(ctx, invitationID, userID); err != nil {
		return err
	}
	if err := s.guestRepo.Delete(ctx, invitationID, guestID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}

func (s *guestService) SendInvitations(ctx context.Context, invitationID, userID string) (*domain.SendInvitationsResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.ownedInvitation(ctx, invitationID, userID)
	if err != nil {
		return nil, err
	}
	if !inv.IsPublished {
		return nil, domain.NewValidationError("invitation must be published before sending")
	}
	if s.emailService == nil {
		return nil, fmt.Errorf("email service is not configured")
	}
	guests, err := s.guestRepo.ListWithEmail(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}

	result := &domain.SendInvitationsResult{Failed: []string{}}
	var sent []string
	for _, g := range guests {
		data := &domain.GuestInvitationEmailData{
			Email:     g.Email,
			GuestName: g.Name,
			Title:     inv.Title,
			PublicURL: s.publicBaseURL + "/i/" + inv.Slug,
		}
		if inv.EventDate != nil {
			data.EventDate = inv.EventDate.Format("Monday, January 2, 2006 3:04 PM")
		}
		if inv.VenueName != nil {
			data.VenueName = *inv.VenueName
		}
		if err := s.emailService.SendGuestInvitation(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "failed to send guest invitation", "guest_id", g.ID, sl.Err(err))
			result.Failed = append(result.Failed, g.Email)
			continue
		}
		sent = append(sent, g.ID)
	}
	result.Sent = len(sent)
	if len(sent) > 0 {
		if err := s.guestRepo.MarkInvited(ctx, sent, time.Now()); err != nil {
			return nil, fmt.Errorf("mark guests invited: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "guest invitations sent", "invitation_id", invitationID, "sent", result.Sent, "failed", len(result.Failed))
	return result, nil
}

func (s *guestService) RSVP(ctx context.Context, slugValue string, in domain.RSVPInput) (*domain.InvitationGuest, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	inv, err := s.invitationRepo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slugValue)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation by slug: %w", err)
	}
	now := time.Now()
	if !inv.IsPublished || (inv.ExpiresAt != nil && inv.ExpiresAt.Before(now)) {
		return nil, domain.ErrNotFound
	}

	g := &domain.InvitationGuest{
		InvitationID: inv.ID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Response:     in.Response,
		PlusOnes:     in.PlusOnes,
		Message:      in.Message,
		RespondedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	normalizeGuest(g)
	errs := validateGuest(g)
	if g.Response == domain.ResponsePending {
		errs = append(errs, "response must be one of: attending, not_attending, maybe")
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationError(errs...)
	}
	if err := s.guestRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}

	confirmed := g.Response == domain.ResponseAttending
	if err := s.invitationRepo.IncrementRSVPCount(ctx, inv.ID, confirmed); err != nil {
		s.logger.WarnContext(ctx, "failed to increment rsvp count", "invitation_id", inv.ID, sl.Err(err))
	}
	if s.analyticsRepo != nil {
		ev := &domain.AnalyticsEvent{InvitationID: inv.ID, EventType: domain.EventRSVP, CreatedAt: now}
		if err := s.analyticsRepo.Record(ctx, ev); err != nil {
			s.logger.WarnContext(ctx, "failed to record rsvp event", "invitation_id", inv.ID, sl.Err(err))
		}
	}
	return g, nil
}

func normalizeGuest(g *domain.InvitationGuest) {
	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.ToLower(strings.TrimSpace(g.Email))
	g.Phone = strings.TrimSpace(g.Phone)
	g.Message = strings.TrimSpace(g.Message)
}

func validateGuest(g *domain.InvitationGuest) []string {
	var errs []string
	if g.Name == "" {
		errs = append(errs, "name is required")
	}
	if g.Email != "" && !emailRegexp.MatchString(g.Email) {
		errs = append(errs, "invalid email format")
	}
	if !g.Response.Valid() {
		errs = append(errs, "response must be one of: pending, attending, not_attending, maybe")
	}
	if g.PlusOnes < 0 || g.PlusOnes > maxPlusOnes {
		errs = append(errs, fmt.Sprintf("plus_ones must be between 0 and %d", maxPlusOnes))
	}
	return errs
}
