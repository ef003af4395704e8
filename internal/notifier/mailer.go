package notifier

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Mailer sends plain-text mail over SMTP. A nil Mailer runs in mock mode and
// only logs, so the worker keeps consuming events without credentials.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewMailer(host, port, user, pass, from string) *Mailer {
	if host == "" {
		return nil
	}

	return &Mailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *Mailer) Send(to, subject, body string) error {
	if m == nil {
		slog.Info("Mock mail sent", slog.String("to", to), slog.String("subject", subject))
		return nil
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body))

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg)
}
