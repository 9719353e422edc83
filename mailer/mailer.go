// Package mailer delivers transactional email over SMTP. It is the only
// outbound notification channel of the service; verification and
// password-reset codes both travel through it.
package mailer

import "gopkg.in/gomail.v2"

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTP sends plain-text mail through a single SMTP account.
type SMTP struct {
	cfg Config
}

// NewSMTP creates an SMTP mailer from connection settings.
func NewSMTP(cfg Config) *SMTP {
	return &SMTP{cfg: cfg}
}

// Send delivers one plain-text message. Errors are returned to the caller;
// no retries are attempted here.
func (s *SMTP) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
