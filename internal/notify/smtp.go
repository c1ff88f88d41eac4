package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/example/flight-deals/internal/secret"
)

// client is the subset of *smtp.Client the sender drives.
type client interface {
	Extension(ext string) (bool, string)
	StartTLS(config *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// ErrNoSTARTTLS is returned when the server does not offer the TLS upgrade.
// Messages are never sent in plaintext.
var ErrNoSTARTTLS = errors.New("smtp: server does not support STARTTLS")

// SMTPSender delivers messages through one SMTP connection per message. The
// connection is always upgraded with STARTTLS; PLAIN auth runs only when
// Username is set.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password secret.Secret
	Timeout  time.Duration

	dial func(ctx context.Context, addr string) (client, error)
}

func (s *SMTPSender) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func (s *SMTPSender) connect(ctx context.Context) (client, error) {
	if s.dial != nil {
		return s.dial(ctx, s.addr())
	}
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	raw, err := m.Bytes()
	if err != nil {
		return fmt.Errorf("smtp: render: %w", err)
	}

	c, err := s.connect(ctx)
	if err != nil {
		return fmt.Errorf("smtp: connect %s: %w", s.addr(), err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); !ok {
		return ErrNoSTARTTLS
	}
	if err := c.StartTLS(&tls.Config{ServerName: s.Host, MinVersion: tls.VersionTLS12}); err != nil {
		return fmt.Errorf("smtp: starttls: %w", err)
	}
	if s.Username != "" {
		auth := smtp.PlainAuth("", s.Username, s.Password.Reveal(), s.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}
	if err := c.Mail(m.From); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	for _, to := range m.To {
		if err := c.Rcpt(to); err != nil {
			return fmt.Errorf("smtp: rcpt %s: %w", to, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("smtp: write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("smtp: quit: %w", err)
	}
	return nil
}
