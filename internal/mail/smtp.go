// Package mail delivers the administrator alert for high-priority tickets.
package mail

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/ticket-escalation/internal/config"
)

// SendFunc delivers a composed message. Defaults to a gomail dialer.
type SendFunc func(msg *gomail.Message) error

// SMTPTransport sends plain-text mail through an SMTP relay.
type SMTPTransport struct {
	addr  string
	from  string
	admin string
	send  SendFunc
}

// NewSMTPTransport builds a transport from notification settings.
func NewSMTPTransport(cfg config.NotificationConfig) (*SMTPTransport, error) {
	port, err := strconv.Atoi(strings.TrimSpace(cfg.SMTPPort))
	if err != nil || port <= 0 {
		return nil, fmt.Errorf("invalid SMTP_PORT %q", cfg.SMTPPort)
	}
	dialer := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTPTransport{
		addr:  fmt.Sprintf("%s:%d", cfg.SMTPHost, port),
		from:  cfg.EmailFrom,
		admin: cfg.AdminEmail,
		send:  func(msg *gomail.Message) error { return dialer.DialAndSend(msg) },
	}, nil
}

// SendEmailToAdministrator mails the administrator about title.
func (t *SMTPTransport) SendEmailToAdministrator(ctx context.Context, title, assignedTo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.send(adminMessage(t.from, t.admin, title, assignedTo)); err != nil {
		return fmt.Errorf("send to %s via %s: %w", t.admin, t.addr, err)
	}
	return nil
}

func adminMessage(from, to, title, assignedTo string) *gomail.Message {
	if assignedTo == "" {
		assignedTo = "nobody"
	}
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "High priority ticket: "+singleLine(title))
	m.SetBody("text/plain", fmt.Sprintf("Ticket %q was raised with high priority.\r\nAssigned to: %s\r\n", title, assignedTo))
	return m
}

// singleLine keeps header values on one line.
func singleLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// LogTransport only logs the alert. Used when no SMTP host is configured.
type LogTransport struct {
	logger *zap.Logger
	admin  string
}

// NewLogTransport creates the log-only transport.
func NewLogTransport(cfg config.NotificationConfig, logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger, admin: cfg.AdminEmail}
}

func (t *LogTransport) SendEmailToAdministrator(_ context.Context, title, assignedTo string) error {
	t.logger.Info("administrator email (log transport)",
		zap.String("to", t.admin),
		zap.String("title", title),
		zap.String("assigned_to", assignedTo))
	return nil
}

// Transport is what the notification service consumes.
type Transport interface {
	SendEmailToAdministrator(ctx context.Context, title, assignedTo string) error
}

// NewTransport picks SMTP when a host is configured and the log transport otherwise.
func NewTransport(cfg config.NotificationConfig, logger *zap.Logger) (Transport, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		logger.Warn("SMTP_HOST not provided; administrator emails will only be logged")
		return NewLogTransport(cfg, logger), nil
	}
	return NewSMTPTransport(cfg)
}
