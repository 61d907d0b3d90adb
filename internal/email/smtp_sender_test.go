package email

import (
	"strings"
	"testing"
	"time"
)

func TestNewSMTPSenderValidation(t *testing.T) {
	if _, err := NewSMTPSender("", 587, "", "", "noreply@verdict.app", "Verdict", false); err == nil {
		t.Fatalf("expected error without host")
	}
	if _, err := NewSMTPSender("smtp.example.com", 587, "", "", "", "Verdict", false); err == nil {
		t.Fatalf("expected error without from address")
	}

	s, err := NewSMTPSender("smtp.example.com", 0, "", "", "noreply@verdict.app", "Verdict", false)
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	if s.port != 587 {
		t.Fatalf("expected default port 587, got %d", s.port)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("noreply@verdict.app", "Verdict", "a@x.com", "Verify Your Email - Verdict", "body\n")

	if !strings.HasPrefix(msg, "From: Verdict <noreply@verdict.app>\r\n") {
		t.Fatalf("unexpected from header: %q", msg)
	}
	if !strings.Contains(msg, "To: a@x.com\r\n") {
		t.Fatalf("missing to header")
	}
	if !strings.Contains(msg, "Subject: Verify Your Email - Verdict\r\n") {
		t.Fatalf("missing subject header")
	}
	if !strings.HasSuffix(msg, "\r\n\r\nbody\n") {
		t.Fatalf("body not separated from headers: %q", msg)
	}
}

func TestVerificationBody(t *testing.T) {
	body := verificationBody("123456", "Ana", time.Now().Add(10*time.Minute))

	if !strings.Contains(body, "Hello Ana,") {
		t.Fatalf("missing greeting: %q", body)
	}
	if !strings.Contains(body, "123456") {
		t.Fatalf("missing code: %q", body)
	}
	if !strings.Contains(body, "expire in 10 minutes") {
		t.Fatalf("missing expiry notice: %q", body)
	}

	anon := verificationBody("123456", "  ", time.Now().Add(10*time.Minute))
	if !strings.Contains(anon, "Hello,") {
		t.Fatalf("expected generic greeting: %q", anon)
	}
}
