package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// GuestInvitationEmailData holds data for the guest invitation email.
type GuestInvitationEmailData struct {
	Email     string
	GuestName string
	Title     string
	EventDate string
	VenueName string
	PublicURL string
}

// WelcomeMessageEmailData holds data for the welcome email sent after signup.
type WelcomeMessageEmailData struct {
	Email     string
	FirstName string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendGuestInvitation(ctx context.Context, data *GuestInvitationEmailData) error
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
}
