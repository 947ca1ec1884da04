package auth

import (
	"fmt"
	"log"
	"net/smtp"
)

// Mailer sends magic-link sign-in mail over plain SMTP. With no host
// configured it logs the link instead, which is what local development wants.
type Mailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (m *Mailer) SendMagicLink(to, link string) error {
	if m.Host == "" {
		log.Printf("SMTP not configured, magic link for %s: %s", to, link)
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Sign in to your account\r\n\r\nFollow this link to sign in: %s\r\n",
		m.From, to, link))

	var a smtp.Auth
	if m.Username != "" {
		a = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	if err := smtp.SendMail(m.Host+":"+m.Port, a, m.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
