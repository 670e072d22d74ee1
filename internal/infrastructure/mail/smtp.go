// Package mail delivers contract emails over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	netmail "net/mail"

	"github.com/lotiva/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Attachment is a file attached to a message
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is an outgoing HTML email
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// SMTPMailer sends messages through an SMTP relay using gomail
type SMTPMailer struct {
	dialer   *gomail.Dialer
	fromAddr string
	fromName string
	logger   *zap.Logger
	send     func(...*gomail.Message) error
}

// Option configures an SMTPMailer
type Option func(*SMTPMailer)

// WithLogger sets the logger for the mailer
func WithLogger(logger *zap.Logger) Option {
	return func(m *SMTPMailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewSMTPMailer creates a mailer from SMTP configuration
func NewSMTPMailer(cfg *config.SMTPConfig, opts ...Option) (*SMTPMailer, error) {
	if cfg == nil {
		return nil, errors.New("smtp configuration is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}

	from, err := netmail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp from address %q: %w", cfg.From, err)
	}

	// NewDialer switches to implicit TLS on port 465
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)

	m := &SMTPMailer{
		dialer:   dialer,
		fromAddr: from.Address,
		fromName: from.Name,
		logger:   zap.NewNop(),
	}
	m.send = dialer.DialAndSend
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Send delivers msg. It returns when the relay accepted the message or ctx is done.
func (m *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if msg == nil || msg.To == "" {
		return errors.New("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := m.build(msg)

	done := make(chan error, 1)
	go func() {
		done <- m.send(gm)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			m.logger.Error("Email delivery failed",
				zap.String("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
			return fmt.Errorf("smtp send: %w", err)
		}
	}

	m.logger.Info("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}

// Ping opens and closes an authenticated SMTP session
func (m *SMTPMailer) Ping(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		sc, err := m.dialer.Dial()
		if err != nil {
			done <- err
			return
		}
		done <- sc.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp ping: %w", err)
		}
		return nil
	}
}

func (m *SMTPMailer) build(msg *Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", m.fromAddr, m.fromName)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)

	for _, att := range msg.Attachments {
		content := att.Content
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		gm.Attach(att.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {contentType},
			}),
		)
	}
	return gm
}
