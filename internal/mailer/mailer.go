// Package mailer delivers the account e-mails (confirmation codes).
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strconv"
	"strings"

	"yamdb/internal/config"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by EMAIL_BACKEND.
func New(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.EmailBackend == "smtp" {
		return &SMTPMailer{
			Addr:     cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
			Host:     cfg.SMTPHost,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}
	}
	return &ConsoleMailer{Logger: logger, From: cfg.SMTPFrom}
}

// ConsoleMailer writes messages to the log instead of sending them.
type ConsoleMailer struct {
	Logger *slog.Logger
	From   string
}

func (m *ConsoleMailer) Send(ctx context.Context, msg Message) error {
	m.Logger.InfoContext(ctx, "email",
		"from", m.From,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

type SMTPMailer struct {
	Addr     string
	Host     string
	Username string
	Password string
	From     string

	// overridable in tests
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	send := m.send
	if send == nil {
		send = smtp.SendMail
	}
	if err := send(m.Addr, auth, m.From, []string{msg.To}, m.compose(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) compose(msg Message) []byte {
	var b strings.Builder
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("From: " + m.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body + "\r\n")
	return []byte(b.String())
}
