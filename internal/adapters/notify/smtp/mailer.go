package smtp

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer implementa notify.Notifier sobre SMTP plano con auth.
// Sin garantías de entrega: el que llama decide qué hacer con el error.
type Mailer struct {
	Host string
	Port int
	User string
	Pass string
	From string

	// Inyectable para tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type Options struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func New(opts Options) (*Mailer, error) {
	if strings.TrimSpace(opts.Host) == "" {
		return nil, errors.New("smtp host required")
	}
	port := opts.Port
	if port <= 0 {
		port = 587
	}
	from := strings.TrimSpace(opts.From)
	if from == "" {
		from = strings.TrimSpace(opts.User)
	}
	return &Mailer{
		Host: strings.TrimSpace(opts.Host),
		Port: port,
		User: strings.TrimSpace(opts.User),
		Pass: opts.Pass,
		From: from,
		send: smtp.SendMail,
	}, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return errors.New("recipient required")
	}

	// net/smtp no acepta context; respetamos al menos la cancelación previa.
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return m.send(addr, auth, m.From, []string{to}, []byte(msg))
}
