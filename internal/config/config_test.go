// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Clear environment and set only required var
	os.Clearenv()
	setEnv(t, "BHASHA_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Check defaults
	if cfg.DBPath != "./data/bhasha.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/bhasha.db")
	}
	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("AdminUsername = %q, want %q", cfg.AdminUsername, "admin")
	}
	if cfg.EventRetentionDays != 90 {
		t.Errorf("EventRetentionDays = %d, want 90", cfg.EventRetentionDays)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	customSecret := "custom-secret-key-32-bytes-long!"
	setEnv(t, "BHASHA_SESSION_SECRET", customSecret)
	setEnv(t, "BHASHA_DB_PATH", "/custom/path.db")
	setEnv(t, "BHASHA_SERVER_HOST", "0.0.0.0")
	setEnv(t, "BHASHA_SERVER_PORT", "3000")
	setEnv(t, "BHASHA_ENV", "production")
	setEnv(t, "BHASHA_BASE_URL", "https://news.example.org/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.SessionSecret != customSecret {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, customSecret)
	}
	if cfg.DBPath != "/custom/path.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "/custom/path.db")
	}
	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true in production env")
	}
	if strings.HasSuffix(cfg.BaseURL, "/") {
		t.Errorf("BaseURL = %q, trailing slash must be trimmed", cfg.BaseURL)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() must fail without BHASHA_SESSION_SECRET")
	}
}

func TestLoad_ShortSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BHASHA_SESSION_SECRET", "too-short")

	if _, err := Load(); err == nil {
		t.Fatal("Load() must reject a secret shorter than 32 bytes")
	}
}

func TestLoad_WeakSecret(t *testing.T) {
	os.Clearenv()
	setEnv(t, "BHASHA_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() must reject a known default secret")
	}
}

func TestMailEnabled(t *testing.T) {
	cfg := Config{SMTPHost: "smtp.example.org", SMTPFrom: "cms@example.org"}
	if !cfg.MailEnabled() {
		t.Error("MailEnabled() = false with host and from set")
	}
	if (Config{SMTPHost: "smtp.example.org"}).MailEnabled() {
		t.Error("MailEnabled() = true without a from address")
	}
}
