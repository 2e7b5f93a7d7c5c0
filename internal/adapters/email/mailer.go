package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"moviemate/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
	// ConfigurationSet routes bounce and complaint events; optional.
	ConfigurationSet string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	ReplyTo     string
	SES         SESConfig
}

// sesAPI is the subset of the SES client the mailer uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// NewMailer picks the outgoing mail provider. "ses" sends through AWS SES,
// "noop" (or empty) only logs, and unknown providers fall back to noop.
func NewMailer(cfg MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	switch cfg.Provider {
	case "ses":
		client, err := newSESClient(cfg.SES, logger)
		if err != nil {
			return nil, err
		}
		return newSESMailer(client, cfg, logger), nil
	case "noop", "":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, party emails will only be logged", "provider", cfg.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

func newSESClient(cfg SESConfig, logger *slog.Logger) (*ses.Client, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("ses mailer: region is required")
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled for SES; use only in development")
	}
	awsCfg := aws.Config{
		Region: cfg.Region,
		HTTPClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cfg.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		},
	}
	if cfg.AccessKeyID != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		)
	}
	return ses.NewFromConfig(awsCfg), nil
}

type sesMailer struct {
	client    sesAPI
	source    string
	replyTo   []string
	configSet *string
	logger    *slog.Logger
}

func newSESMailer(client sesAPI, cfg MailerConfig, logger *slog.Logger) *sesMailer {
	from := mail.Address{Name: cfg.FromName, Address: cfg.FromAddress}
	m := &sesMailer{client: client, source: from.String(), logger: logger}
	if cfg.ReplyTo != "" {
		m.replyTo = []string{cfg.ReplyTo}
	}
	if cfg.SES.ConfigurationSet != "" {
		m.configSet = aws.String(cfg.SES.ConfigurationSet)
	}
	return m
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	body := &types.Body{}
	if html != "" {
		body.Html = utf8Content(html)
	}
	if text != "" {
		body.Text = utf8Content(text)
	}
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:               aws.String(s.source),
		Destination:          &types.Destination{ToAddresses: []string{to}},
		ReplyToAddresses:     s.replyTo,
		ConfigurationSetName: s.configSet,
		Message:              &types.Message{Subject: utf8Content(subject), Body: body},
		Tags:                 []types.MessageTag{{Name: aws.String("app"), Value: aws.String("watch-parties")}},
	})
	if err != nil {
		return fmt.Errorf("send party email via SES: %w", err)
	}
	s.logger.DebugContext(ctx, "party email sent", "message_id", aws.ToString(out.MessageId))
	return nil
}

func utf8Content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String("UTF-8")}
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(ctx context.Context, to, subject, _, _ string) error {
	n.logger.InfoContext(ctx, "party email not sent (noop provider)", "to", to, "subject", subject)
	return nil
}
