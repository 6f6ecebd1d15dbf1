// Package mailer sends transactional email for customer inquiries.
// Delivery is best-effort: the storefront never fails an inquiry
// submission because SMTP is down.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"text/template"

	mail "gopkg.in/mail.v2"
)

const (
	FromName   = "FerreCMS"
	maxRetries = 3

	InquiryNotifyTemplate = "inquiry_notify.tmpl"
	InquiryReplyTemplate  = "inquiry_reply.tmpl"
)

//go:embed "templates"
var FS embed.FS

// Client sends a templated email to a recipient. Implementations return
// the attempt count used, for logging.
type Client interface {
	Send(templateFile, toName, toEmail string, data any) (int, error)
}

// SMTPMailer sends mail through a plain SMTP relay using STARTTLS.
type SMTPMailer struct {
	dialer    *mail.Dialer
	fromEmail string
}

// NewSMTP builds an SMTP mailer. Returns nil if host is empty so callers
// can treat mail as disabled.
func NewSMTP(host string, port int, username, password, fromEmail string) *SMTPMailer {
	if host == "" {
		return nil
	}
	return &SMTPMailer{
		dialer:    mail.NewDialer(host, port, username, password),
		fromEmail: fromEmail,
	}
}

// Send renders the named template and delivers it, retrying transient
// failures. Templates define "subject" and "body" blocks.
func (m *SMTPMailer) Send(templateFile, toName, toEmail string, data any) (int, error) {
	tmpl, err := template.ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return 0, fmt.Errorf("mailer parse template: %w", err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return 0, fmt.Errorf("mailer render subject: %w", err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return 0, fmt.Errorf("mailer render body: %w", err)
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", toEmail, toName)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", body.String())

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := m.dialer.DialAndSend(msg); err != nil {
			lastErr = err
			slog.Warn("mail send failed", "to", toEmail, "attempt", attempt, "error", err)
			continue
		}
		return attempt, nil
	}
	return maxRetries, fmt.Errorf("mailer send after %d attempts: %w", maxRetries, lastErr)
}
