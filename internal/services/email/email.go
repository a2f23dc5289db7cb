// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/truefeedback/internal/config"
	"codeberg.org/oliverandrich/truefeedback/internal/i18n"
	"codeberg.org/oliverandrich/truefeedback/internal/templates"
	"github.com/wneessen/go-mail"
)

// Service sends verification codes via SMTP.
type Service struct {
	cfg *config.SMTPConfig
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{cfg: cfg}, nil
}

// SendVerification emails the verification code to toEmail.
// Subject and body follow the locale carried by ctx.
func (s *Service) SendVerification(ctx context.Context, toEmail, username, code string) error {
	msg, err := s.BuildVerification(ctx, toEmail, username, code)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// BuildVerification assembles the verification message without sending it.
func (s *Service) BuildVerification(ctx context.Context, toEmail, username, code string) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return nil, fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(i18n.T(ctx, "email_verification_subject"))
	msg.SetBodyString(mail.TypeTextPlain, verificationText(ctx, username, code))

	var html bytes.Buffer
	if err := templates.VerificationEmail(username, code).Render(ctx, &html); err != nil {
		return nil, fmt.Errorf("rendering email: %w", err)
	}
	msg.AddAlternativeString(mail.TypeTextHTML, html.String())

	return msg, nil
}

func verificationText(ctx context.Context, username, code string) string {
	return fmt.Sprintf("%s\n\n%s\n\n    %s\n\n%s\n%s\n",
		i18n.TData(ctx, "email_verification_greeting", map[string]any{"Username": username}),
		i18n.T(ctx, "email_verification_intro"),
		code,
		i18n.T(ctx, "email_verification_expiry"),
		i18n.T(ctx, "email_verification_ignore"),
	)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(ctx context.Context, msg *mail.Msg) error {
	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}

// LogSender stands in for SMTP during development and logs the code.
type LogSender struct{}

// SendVerification logs the code instead of sending it.
func (LogSender) SendVerification(_ context.Context, toEmail, username, code string) error {
	slog.Debug("verification_email_skipped", "to", toEmail, "username", username, "code", code)
	return nil
}
