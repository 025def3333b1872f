package mailer

import (
	"context"
	"fmt"
	"time"

	"forum-server/internal/config"
	"forum-server/internal/interfaces"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Compile-time check to ensure smtpMailer implements Mailer
var _ interfaces.Mailer = (*smtpMailer)(nil)

// smtpMailer delivers notification emails over SMTP.
type smtpMailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
	logger  *zap.Logger
}

// NewSMTPMailer creates an SMTP-backed Mailer from the application config.
func NewSMTPMailer(cfg *config.Config, logger *zap.Logger) interfaces.Mailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &smtpMailer{
		dialer:  dialer,
		from:    cfg.SMTPFrom,
		baseURL: cfg.ResetBaseURL,
		logger:  logger.Named("SMTPMailer"),
	}
}

// SendPasswordResetEmail delivers the reset link to the given address.
func (m *smtpMailer) SendPasswordResetEmail(ctx context.Context, email, token string, expiresAt time.Time) error {
	resetURL := fmt.Sprintf("%s?token=%s", m.baseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Password reset request")
	msg.SetBody("text/plain", fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password:\n%s\n\n"+
			"The link expires at %s. If you did not request this, ignore this email.\n",
		resetURL, expiresAt.UTC().Format(time.RFC1123),
	))

	// gomail не принимает context, уважаем отмену хотя бы до отправки
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send password reset email", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	m.logger.Info("Password reset email sent", zap.String("email", email))
	return nil
}
