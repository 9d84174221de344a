package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"

	"github.com/benchrig/rigcheck/internal/config"
)

// EmailNotifier sends run digests over SMTP with TLS.
type EmailNotifier struct {
	cfg config.EmailConfig
}

// NewEmail validates the SMTP settings and returns the notifier.
func NewEmail(cfg config.EmailConfig) (*EmailNotifier, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("email: host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("email: port is required")
	}
	if cfg.From == "" || len(cfg.To) == 0 {
		return nil, fmt.Errorf("email: from and to are required")
	}
	return &EmailNotifier{cfg: cfg}, nil
}

func (e *EmailNotifier) ID() string { return "email" }

func (e *EmailNotifier) Notify(ctx context.Context, event Event) error {
	em := email.NewEmail()
	em.From = e.cfg.From
	em.To = append([]string{}, e.cfg.To...)
	em.Subject = fmt.Sprintf("[%s] %s: %d passed, %d failed",
		strings.ToUpper(event.Status()), event.Rig, event.Summary.Passed, event.Summary.Failed)
	em.Text = []byte(renderBody(event))

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}
	tlsConfig := &tls.Config{
		ServerName: e.cfg.Host,
	}
	return em.SendWithTLS(addr, auth, tlsConfig)
}
