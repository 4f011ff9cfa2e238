// Package mail sends transactional email over SMTP.
package mail

import (
	"fmt"
	"net/smtp"

	"github.com/bookline-io/bookline/internal/config"
)

// Mailer is the narrow contract the auth flows need
type Mailer interface {
	SendResetPasswordEmail(to, token string) error
	SendVerificationEmail(to, token string) error
}

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates a mailer from configuration. Returns nil when no
// SMTP host is configured so callers can skip sending.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	if cfg.SMTP.Host == "" {
		return nil
	}
	return &SMTPMailer{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		from:     cfg.SMTP.From,
	}
}

// SendResetPasswordEmail emails a password reset token to the user
func (m *SMTPMailer) SendResetPasswordEmail(to, token string) error {
	subject := "Reset password"
	body := fmt.Sprintf("Dear user,\r\nTo reset your password, use this token: %s\r\nIf you did not request any password resets, then ignore this email.", token)
	return m.send(to, subject, body)
}

// SendVerificationEmail emails an email verification token to the user
func (m *SMTPMailer) SendVerificationEmail(to, token string) error {
	subject := "Email Verification"
	body := fmt.Sprintf("Dear user,\r\nTo verify your email, use this token: %s\r\nIf you did not create an account, then ignore this email.", token)
	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	var auth smtp.Auth
	if m.username != "" && m.password != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		m.from, to, subject, body))

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	return smtp.SendMail(addr, auth, m.from, []string{to}, msg)
}
