package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the settings for an SMTP relay.
type SMTPConfig struct {
	Addr     string
	From     string
	Username string
	Password string
}

// Validate checks the configuration is complete.
func (c *SMTPConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: smtp address is required", ErrNotifierMisconfig)
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w: smtp address %q: %v", ErrNotifierMisconfig, c.Addr, err)
	}
	if c.From == "" {
		return fmt.Errorf("%w: smtp from address is required", ErrNotifierMisconfig)
	}
	return nil
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends notifications as plain text email.
type SMTPNotifier struct {
	cfg      SMTPConfig
	auth     smtp.Auth
	sendMail sendMailFunc
}

// NewSMTPNotifier creates a notifier for the given relay. PLAIN auth is used
// when a username is configured.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}
	if cfg.Username != "" {
		host, _, _ := net.SplitHostPort(cfg.Addr)
		n.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}

	return n, nil
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.sendMail(n.cfg.Addr, n.auth, n.cfg.From, []string{msg.To}, n.compose(msg)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}

	return nil
}

func (n *SMTPNotifier) compose(msg Message) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
