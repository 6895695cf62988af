package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/lifeflow/automailer/internal/config"
	"github.com/lifeflow/automailer/internal/core"
	"golang.org/x/text/unicode/norm"
	"go.uber.org/zap"
)

// SMTPMailer delivers drafts through an SMTP relay
type SMTPMailer struct {
	cfg       config.SMTPConfig
	logger    *zap.Logger
	tlsConfig *tls.Config
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	if !core.IsAddress(cfg.From) {
		return nil, fmt.Errorf("invalid smtp from address: %s", cfg.From)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &SMTPMailer{
		cfg:       cfg,
		logger:    logger,
		tlsConfig: &tls.Config{ServerName: cfg.Host, InsecureSkipVerify: cfg.TLSSkipVerify},
	}, nil
}

// Send delivers the draft body to draft.To
func (m *SMTPMailer) Send(ctx context.Context, draft core.EmailDraft, subject string) error {
	if subject == "" {
		subject = m.cfg.DefaultSubject
	}

	msg, err := buildMessage(m.cfg.From, draft.To, subject, draft.Body, time.Now())
	if err != nil {
		return &core.DeliveryError{Recipient: draft.To, Err: err}
	}

	if err := m.deliver(ctx, draft.To, msg); err != nil {
		m.logger.Error("Failed to deliver draft",
			zap.String("relay", m.cfg.Address()),
			zap.String("recipient", draft.To),
			zap.Error(err))
		return &core.DeliveryError{Recipient: draft.To, Err: err}
	}

	m.logger.Debug("Draft handed to relay",
		zap.String("relay", m.cfg.Address()),
		zap.String("recipient", draft.To),
		zap.Int("size", len(msg)))
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, recipient string, msg []byte) error {
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", m.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP relay: %w", err)
	}

	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	// With StartTLS set, a relay that does not offer STARTTLS is refused
	var c *smtp.Client
	if m.cfg.StartTLS {
		c, err = smtp.NewClientStartTLS(conn, m.tlsConfig)
		if err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	} else {
		c = smtp.NewClient(conn)
	}
	defer c.Close()

	if err := c.Hello(m.helloName()); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if m.cfg.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", m.cfg.Username, m.cfg.Password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(m.cfg.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(recipient, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// The relay has already accepted the message
		m.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

func (m *SMTPMailer) helloName() string {
	if m.cfg.HelloName != "" {
		return m.cfg.HelloName
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return hostname
}

// buildMessage renders a plain-text RFC 5322 message
func buildMessage(from, to, subject, body string, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 {
		domain = from[at+1:]
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domain)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")

	text := strings.ReplaceAll(norm.NFC.String(body), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(text)); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode body: %w", err)
	}
	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}
