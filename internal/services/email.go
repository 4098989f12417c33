package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

// Embedded template names rendered by the email adapter.
const (
	templateGuestInvitation = "guest_invitation"
	templateWelcome         = "welcome"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService renders named templates and hands them to mailer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger.With(sl.Module("email"))}
}

func (s *emailService) SendGuestInvitation(ctx context.Context, data *domain.GuestInvitationEmailData) error {
	if data == nil {
		return errors.New("guest invitation: nil data")
	}
	return s.send(ctx, templateGuestInvitation, data.Email, data)
}

func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return errors.New("welcome message: nil data")
	}
	return s.send(ctx, templateWelcome, data.Email, data)
}

func (s *emailService) send(ctx context.Context, tmpl, to string, data any) error {
	subject, html, text, err := s.renderer.Render(tmpl, data)
	if err != nil {
		return fmt.Errorf("render %s: %w", tmpl, err)
	}
	if err := s.mailer.Send(ctx, to, subject, html, text); err != nil {
		return fmt.Errorf("send %s: %w", tmpl, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", tmpl, "to", to)
	return nil
}
