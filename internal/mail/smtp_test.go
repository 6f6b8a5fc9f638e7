package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/ticket-escalation/internal/config"
)

var testConfig = config.NotificationConfig{
	EmailFrom:    "noreply@example.com",
	AdminEmail:   "admin@example.com",
	SMTPHost:     "smtp.example.com",
	SMTPPort:     "2525",
	SMTPUsername: "mailer",
	SMTPPassword: "secret",
}

func newTestTransport(t *testing.T) *SMTPTransport {
	t.Helper()
	tr, err := NewSMTPTransport(testConfig)
	if err != nil {
		t.Fatalf("NewSMTPTransport() error = %v", err)
	}
	return tr
}

// render returns the header block and the full wire form of msg.
func render(t *testing.T, msg *gomail.Message) (string, string) {
	t.Helper()
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	raw := buf.String()
	headers, _, _ := strings.Cut(raw, "\r\n\r\n")
	return headers, raw
}

func TestSMTPTransportSends(t *testing.T) {
	tr := newTestTransport(t)
	var got *gomail.Message
	tr.send = func(msg *gomail.Message) error {
		got = msg
		return nil
	}

	if err := tr.SendEmailToAdministrator(context.Background(), "Outage", "bob"); err != nil {
		t.Fatalf("SendEmailToAdministrator() error = %v", err)
	}
	if got == nil {
		t.Fatal("no message sent")
	}
	if to := got.GetHeader("To"); len(to) != 1 || to[0] != "admin@example.com" {
		t.Errorf("To = %v", to)
	}
	if from := got.GetHeader("From"); len(from) != 1 || from[0] != "noreply@example.com" {
		t.Errorf("From = %v", from)
	}
	if subject := got.GetHeader("Subject"); len(subject) != 1 || subject[0] != "High priority ticket: Outage" {
		t.Errorf("Subject = %v", subject)
	}
	if _, raw := render(t, got); !strings.Contains(raw, "Assigned to: bob") {
		t.Errorf("body missing assignee:\n%s", raw)
	}
}

func TestSMTPTransportEncodesNonASCIISubject(t *testing.T) {
	headers, _ := render(t, adminMessage("a@x", "b@x", "Ошибка: Crash при входе", "bob"))

	for i := 0; i < len(headers); i++ {
		if headers[i] > 0x7e {
			t.Fatalf("raw 8-bit byte in headers:\n%s", headers)
		}
	}
	if !strings.Contains(headers, "Subject: =?UTF-8?") {
		t.Fatalf("subject not encoded as a MIME word:\n%s", headers)
	}
}

func TestSMTPTransportReturnsSendError(t *testing.T) {
	tr := newTestTransport(t)
	cause := errors.New("535 authentication failed")
	tr.send = func(*gomail.Message) error { return cause }

	err := tr.SendEmailToAdministrator(context.Background(), "Outage", "")
	if !errors.Is(err, cause) {
		t.Fatalf("error = %v, want %v", err, cause)
	}
	if !strings.Contains(err.Error(), "smtp.example.com:2525") {
		t.Fatalf("error %q does not name the relay", err)
	}
}

func TestSMTPTransportHonoursCancelledContext(t *testing.T) {
	tr := newTestTransport(t)
	tr.send = func(*gomail.Message) error {
		t.Fatal("send called after cancellation")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tr.SendEmailToAdministrator(ctx, "Outage", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestAdminMessageKeepsSubjectOnOneLine(t *testing.T) {
	msg := adminMessage("a@x", "b@x", "Crash\r\nBcc: evil@x", "")
	headers, raw := render(t, msg)
	if strings.Contains(headers, "\r\nBcc:") {
		t.Fatalf("header injection survived:\n%s", headers)
	}
	if !strings.Contains(raw, "Assigned to: nobody") {
		t.Fatalf("missing unassigned marker:\n%s", raw)
	}
}

func TestNewSMTPTransportRejectsBadPort(t *testing.T) {
	cfg := testConfig
	cfg.SMTPPort = "smtp"
	if _, err := NewSMTPTransport(cfg); err == nil {
		t.Fatal("expected error for non-numeric port")
	}
}

func TestNewTransportSelection(t *testing.T) {
	tr, err := NewTransport(testConfig, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	if _, ok := tr.(*SMTPTransport); !ok {
		t.Error("configured host should select SMTP")
	}

	noHost := testConfig
	noHost.SMTPHost = ""
	tr, err = NewTransport(noHost, zap.NewNop())
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	if _, ok := tr.(*LogTransport); !ok {
		t.Fatal("missing host should select the log transport")
	}
	if err := tr.SendEmailToAdministrator(context.Background(), "Outage", "bob"); err != nil {
		t.Fatalf("log transport error = %v", err)
	}
}
