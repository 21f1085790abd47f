package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"taskfyer/internal/logging"
)

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

func (m *SMTPMailer) Send(_ context.Context, msg Message) error {
	body, err := Render(msg)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.cfg.From, m.cfg.Password, m.cfg.Host)
	raw := []byte("Subject: " + msg.Subject + "\r\n" +
		"From: " + m.cfg.From + "\r\n" +
		"To: " + msg.To + "\r\n" +
		"Reply-To: noreply@taskfyer.app\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	if err := m.send(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer is used when no SMTP host is configured. It logs recipient and
// template only; links carry one-time secrets and are not written out.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if _, err := Render(msg); err != nil {
		return err
	}
	m.log.Info(ctx, "email not sent: smtp disabled", "to", msg.To, "template", msg.Template)
	return nil
}
