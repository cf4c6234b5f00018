package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/models"
)

// Mailer delivers one-time codes.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code, purpose string, ttl time.Duration) error
}

// SMTPMailer sends HTML mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *logger.Logger
}

func NewSMTPMailer(host string, port int, user, pass, from string, log *logger.Logger) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
		log:    log,
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, name, code, purpose string, ttl time.Duration) error {
	subject, body := otpEmail(name, code, purpose, ttl)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		m.log.Info("OTP email sent", "to", MaskEmail(to), "purpose", purpose)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer writes codes to the log instead of sending them. Used when SMTP
// is not configured.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendOTP(_ context.Context, to, _, code, purpose string, ttl time.Duration) error {
	m.log.Warn("SMTP not configured, OTP written to log",
		"to", MaskEmail(to),
		"purpose", purpose,
		"code", code,
		"expiresIn", ttl.String(),
	)
	return nil
}

func otpEmail(name, code, purpose string, ttl time.Duration) (string, string) {
	var subject, intro string
	switch purpose {
	case models.OTPPurposePasswordReset:
		subject = "Password Reset Code"
		intro = "You have requested to reset your password. Use the following code to continue:"
	case models.OTPPurposeEmailVerification:
		subject = "Verify Your Email"
		intro = "Welcome! Use the following code to verify your email address:"
	default:
		subject = "Your Login Code"
		intro = "Use the following code to finish signing in:"
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>%s</h2>
			<p>Hello %s,</p>
			<p>%s</p>
			<h3 style="background-color: #f0f0f0; padding: 10px; font-size: 24px; letter-spacing: 5px; text-align: center;">%s</h3>
			<p>This code will expire in %d minutes.</p>
			<p>If you did not request this code, please ignore this email.</p>
		</body>
		</html>
	`, subject, name, intro, code, int(ttl.Minutes()))
	return subject, body
}

// MaskEmail partially masks an email address for privacy
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return email
	}

	name, domain := parts[0], parts[1]
	if len(name) <= 2 {
		return name[:1] + "***@" + domain
	}
	return name[:2] + strings.Repeat("*", len(name)-2) + "@" + domain
}
