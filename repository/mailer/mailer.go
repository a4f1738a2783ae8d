package mailer

import (
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, html string) error
	Configured() bool
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	log    *slog.Logger
}

// New returns an SMTP mailer. Without credentials it degrades to a logging
// no-op so local setups work with no mail server.
func New(host string, port int, user, pass string, log *slog.Logger) Mailer {
	if host == "" || user == "" || pass == "" {
		log.Warn("smtp not configured, mail delivery disabled")
		return &smtpMailer{from: "noreply@rentique.local", log: log}
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
		log:    log,
	}
}

func (m *smtpMailer) Configured() bool { return m.dialer != nil }

func (m *smtpMailer) Send(to, subject, html string) error {
	if m.dialer == nil {
		m.log.Info("mail delivery disabled, dropping message", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.log.Error("mail send failed", "to", to, "err", err)
		return err
	}
	return nil
}
