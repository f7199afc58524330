package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

// Send ignores ctx beyond an early cancellation check; net/smtp has no
// context support.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := smtp.SendMail(s.addr, s.auth, s.from, []string{m.To}, s.compose(m))
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}
	return nil
}

func (s *SMTPSender) compose(m Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + m.To + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}

func (s *SMTPSender) Close() error {
	return nil
}
