// AngelaMos | 2026
// email.go

package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/driveready/driveready-api/internal/config"
)

// Sender delivers account lifecycle emails. Tokens arrive as opaque
// strings; the sender only embeds them into links.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// NewSender picks the SMTP sender when email is enabled, otherwise a
// log-only sender so development environments work without a relay.
func NewSender(cfg config.EmailConfig, baseURL string) Sender {
	if !cfg.Enabled {
		return &LogSender{}
	}
	return NewSMTPSender(cfg, baseURL)
}

type SMTPSender struct {
	config  config.EmailConfig
	baseURL string
	auth    smtp.Auth
}

func NewSMTPSender(cfg config.EmailConfig, baseURL string) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}

	return &SMTPSender{
		config:  cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		auth:    auth,
	}
}

func (s *SMTPSender) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	link := fmt.Sprintf("%s/auth/verify-email/%s", s.baseURL, token)

	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Welcome to DriveReady. Confirm your email address by opening "+
			"the link below:\r\n\r\n%s\r\n\r\n"+
			"The link expires in one hour. If you did not create this "+
			"account, ignore this message.\r\n",
		name, link,
	)

	return s.send(ctx, to, "Confirm your email address", body)
}

func (s *SMTPSender) SendPasswordResetEmail(
	ctx context.Context,
	to, name, token string,
) error {
	link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)

	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"A password reset was requested for your account. Open the "+
			"link below to choose a new password:\r\n\r\n%s\r\n\r\n"+
			"The link expires in one hour and works once. If you did not "+
			"request this, ignore this message and your password stays "+
			"unchanged.\r\n",
		name, link,
	)

	return s.send(ctx, to, "Reset your password", body)
}

func (s *SMTPSender) send(
	ctx context.Context,
	to, subject, body string,
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	from := s.config.From
	fromHeader := from
	if s.config.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.config.FromName, from)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString(`Content-Type: text/plain; charset="UTF-8"` + "\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	if err := smtp.SendMail(
		addr,
		s.auth,
		from,
		[]string{to},
		[]byte(msg.String()),
	); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}

// LogSender writes what would have been sent to the log. Used when no
// SMTP relay is configured.
type LogSender struct{}

func (s *LogSender) SendVerificationEmail(
	ctx context.Context,
	to, name, token string,
) error {
	slog.Info("email sending disabled, skipping verification email",
		"to", to,
		"token", token,
	)
	return nil
}

func (s *LogSender) SendPasswordResetEmail(
	ctx context.Context,
	to, name, token string,
) error {
	slog.Info("email sending disabled, skipping password reset email",
		"to", to,
		"token", token,
	)
	return nil
}
