package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"codeberg.org/promptcraft/server/internal/config"
	gomail "github.com/wneessen/go-mail"
)

var (
	ErrNotConfigured  = errors.New("email delivery is not configured")
	ErrInvalidMessage = errors.New("email needs a valid recipient, a subject and a body")
)

// how long one SMTP exchange may take
const sendTimeout = 30 * time.Second

type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// delivers a message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type deliverFunc func(ctx context.Context, msg *gomail.Msg) error

// sends plain-text mail through an SMTP relay
type SMTPMailer struct {
	cfg     config.MailConfig
	deliver deliverFunc
	now     func() time.Time
}

func New(cfg config.MailConfig) *SMTPMailer {
	m := &SMTPMailer{
		cfg: cfg,
		now: time.Now,
	}
	m.deliver = m.dialAndSend

	return m
}

// reports whether a relay and sender address are set
func (m *SMTPMailer) Configured() bool {
	return m.cfg.Configured()
}

// address operator notifications are sent to; falls back to the sender
func (m *SMTPMailer) ContactAddress() string {
	if m.cfg.ContactEmail != "" {
		return m.cfg.ContactEmail
	}

	return m.cfg.From
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	if err := validate(msg); err != nil {
		return err
	}

	out, err := m.compose(msg)
	if err != nil {
		return err
	}

	if err := m.deliver(ctx, out); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}

func validate(msg Message) error {
	if strings.TrimSpace(msg.Subject) == "" || strings.TrimSpace(msg.Body) == "" {
		return ErrInvalidMessage
	}

	if _, err := mail.ParseAddress(msg.To); err != nil {
		return ErrInvalidMessage
	}

	if msg.ReplyTo != "" {
		if _, err := mail.ParseAddress(msg.ReplyTo); err != nil {
			return ErrInvalidMessage
		}
	}

	return nil
}

// builds the message; go-mail encodes non-ASCII headers and normalizes line endings
func (m *SMTPMailer) compose(msg Message) (*gomail.Msg, error) {
	out := gomail.NewMsg()

	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid MAIL_FROM %q: %w", m.cfg.From, err)
	}

	if err := out.To(msg.To); err != nil {
		return nil, ErrInvalidMessage
	}

	if msg.ReplyTo != "" {
		if err := out.ReplyTo(msg.ReplyTo); err != nil {
			return nil, ErrInvalidMessage
		}
	}

	out.Subject(singleLine(msg.Subject))
	out.SetDateWithValue(m.now())
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)

	return out, nil
}

func (m *SMTPMailer) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(sendTimeout),
	}

	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}

// subjects are a single header line
func singleLine(v string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(v)), " ")
}
