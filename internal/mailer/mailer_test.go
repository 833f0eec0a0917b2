package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"codeberg.org/promptcraft/server/internal/config"
)

type capture struct {
	ctx        context.Context
	recipients []string
	raw        string
	calls      int
}

func newTestMailer(cfg config.MailConfig, c *capture, err error) *SMTPMailer {
	m := New(cfg)
	m.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	m.deliver = func(ctx context.Context, msg *gomail.Msg) error {
		c.calls++
		c.ctx = ctx

		rcpts, rerr := msg.GetRecipients()
		if rerr != nil {
			return rerr
		}
		c.recipients = rcpts

		var buf bytes.Buffer
		if _, werr := msg.WriteTo(&buf); werr != nil {
			return werr
		}
		c.raw = buf.String()

		return err
	}
	return m
}

// parses the captured message and returns its headers and decoded body
func (c *capture) parse(t *testing.T) (mail.Header, string) {
	t.Helper()

	parsed, err := mail.ReadMessage(strings.NewReader(c.raw))
	require.NoError(t, err)

	var body io.Reader = parsed.Body
	if strings.EqualFold(parsed.Header.Get("Content-Transfer-Encoding"), "quoted-printable") {
		body = quotedprintable.NewReader(parsed.Body)
	}

	data, err := io.ReadAll(body)
	require.NoError(t, err)

	return parsed.Header, strings.TrimRight(string(data), "\r\n")
}

var testConfig = config.MailConfig{
	Host:     "smtp.example.com",
	Port:     587,
	Username: "mailer",
	Password: "secret",
	From:     "noreply@example.com",
}

func TestSend_ComposesMessage(t *testing.T) {
	var c capture
	m := newTestMailer(testConfig, &c, nil)

	err := m.Send(context.Background(), Message{
		To:      "user@example.com",
		Subject: "Your sign-in link",
		Body:    "line one\nline two",
		ReplyTo: "support@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"user@example.com"}, c.recipients)

	header, body := c.parse(t)

	from, err := mail.ParseAddress(header.Get("From"))
	require.NoError(t, err)
	assert.Equal(t, "noreply@example.com", from.Address)

	replyTo, err := mail.ParseAddress(header.Get("Reply-To"))
	require.NoError(t, err)
	assert.Equal(t, "support@example.com", replyTo.Address)

	assert.Equal(t, "Your sign-in link", header.Get("Subject"))
	assert.Equal(t, "line one\r\nline two", body)
}

func TestSend_NonASCIISubjectIsEncoded(t *testing.T) {
	var c capture
	m := newTestMailer(testConfig, &c, nil)

	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "Grüße ✓", Body: "hallo"})
	require.NoError(t, err)

	assert.NotContains(t, c.raw, "Grüße", "raw 8-bit text must not appear in headers")

	header, _ := c.parse(t)
	subject, err := new(mime.WordDecoder).DecodeHeader(header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Grüße ✓", subject)
}

func TestSend_CRLFBodyIsNotDoubled(t *testing.T) {
	var c capture
	m := newTestMailer(testConfig, &c, nil)

	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "s", Body: "line1\r\nline2"})
	require.NoError(t, err)

	assert.NotContains(t, c.raw, "\r\r\n")

	_, body := c.parse(t)
	assert.Equal(t, "line1\r\nline2", body)
}

func TestSend_PassesContextToDelivery(t *testing.T) {
	type key struct{}

	var c capture
	m := newTestMailer(testConfig, &c, nil)

	ctx := context.WithValue(context.Background(), key{}, "request-1")
	require.NoError(t, m.Send(ctx, Message{To: "user@example.com", Subject: "s", Body: "b"}))

	require.NotNil(t, c.ctx)
	assert.Equal(t, "request-1", c.ctx.Value(key{}))
}

func TestSend_HeaderInjectionStripped(t *testing.T) {
	var c capture
	m := newTestMailer(testConfig, &c, nil)

	err := m.Send(context.Background(), Message{
		To:      "user@example.com",
		Subject: "hello\r\nBcc: victim@example.com",
		Body:    "body",
	})
	require.NoError(t, err)

	assert.NotContains(t, c.raw, "\r\nBcc:")
	assert.Equal(t, []string{"user@example.com"}, c.recipients)
}

func TestSend_NotConfigured(t *testing.T) {
	var c capture
	m := newTestMailer(config.MailConfig{}, &c, nil)

	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "s", Body: "b"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, c.calls)
}

func TestSend_InvalidMessage(t *testing.T) {
	var c capture
	m := newTestMailer(testConfig, &c, nil)

	cases := []Message{
		{To: "not-an-address", Subject: "s", Body: "b"},
		{To: "user@example.com", Subject: " ", Body: "b"},
		{To: "user@example.com", Subject: "s", Body: ""},
		{To: "user@example.com", Subject: "s", Body: "b", ReplyTo: "bad"},
	}

	for _, msg := range cases {
		assert.ErrorIs(t, m.Send(context.Background(), msg), ErrInvalidMessage)
	}
	assert.Zero(t, c.calls)
}

func TestSend_RelayFailure(t *testing.T) {
	var c capture
	m := newTestMailer(testConfig, &c, errors.New("connection refused"))

	err := m.Send(context.Background(), Message{To: "user@example.com", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send failed")
}

func TestContactAddress(t *testing.T) {
	m := New(testConfig)
	assert.Equal(t, "noreply@example.com", m.ContactAddress())

	cfg := testConfig
	cfg.ContactEmail = "team@example.com"
	assert.Equal(t, "team@example.com", New(cfg).ContactAddress())
}
