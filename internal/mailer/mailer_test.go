package mailer

import (
	"errors"
	"testing"
)

func TestEnabled(t *testing.T) {
	if New("", 0, "", "", "cms@example.org").Enabled() {
		t.Error("Enabled() = true without host")
	}
	if New("smtp.example.org", 0, "", "", "").Enabled() {
		t.Error("Enabled() = true without from address")
	}
	if !New("smtp.example.org", 587, "u", "p", "cms@example.org").Enabled() {
		t.Error("Enabled() = false with full config")
	}
}

func TestSendNotConfigured(t *testing.T) {
	m := New("", 0, "", "", "")
	if err := m.Send("to@example.org", "subject", "body"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Send() error = %v, want ErrNotConfigured", err)
	}
	if err := m.SendNewUserCredentials("to@example.org", "u", "p", "http://x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("SendNewUserCredentials() error = %v, want ErrNotConfigured", err)
	}
}

func TestDefaultPort(t *testing.T) {
	m := New("smtp.example.org", 0, "", "", "cms@example.org")
	if m.port != 587 {
		t.Errorf("port = %d, want 587", m.port)
	}
}
