package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

// Mail providers understood by NewMailer.
const (
	ProviderSES  = "ses"
	ProviderNoop = "noop"
)

const charsetUTF8 = "UTF-8"

// SESConfig holds the region and static credentials for AWS SES.
// Empty credentials fall back to the SDK default chain.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// MailerConfig selects and configures the outgoing mail provider.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
}

type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewMailer builds the mailer named by cfg.Provider. An empty provider means noop.
func NewMailer(cfg MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	logger = logger.With(sl.Module("mailer"))

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderSES:
		if cfg.FromAddress == "" {
			return nil, errors.New("ses mailer requires a from address")
		}
		if cfg.SES.Region == "" {
			return nil, errors.New("ses mailer requires a region")
		}
		from := (&mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}).String()
		return &sesMailer{client: ses.NewFromConfig(sesAWSConfig(cfg.SES)), from: from, logger: logger}, nil
	case ProviderNoop, "":
		return &logMailer{logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

func sesAWSConfig(c SESConfig) aws.Config {
	awsCfg := aws.Config{Region: c.Region}
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		)
	}
	return awsCfg
}

type sesMailer struct {
	client sesSender
	from   string
	logger *slog.Logger
}

func (m *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if to == "" {
		return errors.New("send email: empty recipient")
	}
	body := &types.Body{Html: content(html), Text: content(text)}
	out, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message:     &types.Message{Subject: content(subject), Body: body},
	})
	if err != nil {
		return fmt.Errorf("send email via ses: %w", err)
	}
	m.logger.DebugContext(ctx, "email sent", "message_id", aws.ToString(out.MessageId))
	return nil
}

// content returns nil for empty parts so SES omits them.
func content(s string) *types.Content {
	if s == "" {
		return nil
	}
	return &types.Content{Data: aws.String(s), Charset: aws.String(charsetUTF8)}
}

// logMailer records outgoing mail in the log instead of delivering it.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) Send(ctx context.Context, to, subject, _, _ string) error {
	m.logger.InfoContext(ctx, "email not delivered (noop provider)", "to", to, "subject", subject)
	return nil
}
