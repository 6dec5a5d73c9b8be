// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"BHASHA_DB_PATH" envDefault:"./data/bhasha.db"`
	SessionSecret string `env:"BHASHA_SESSION_SECRET,required"`
	ServerHost    string `env:"BHASHA_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"BHASHA_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"BHASHA_ENV" envDefault:"development"`
	LogLevel      string `env:"BHASHA_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"BHASHA_UPLOADS_DIR" envDefault:"./uploads"`
	BaseURL       string `env:"BHASHA_BASE_URL" envDefault:"http://localhost:8080"` // Used to build absolute image and share URLs

	// Cache configuration
	RedisURL     string `env:"BHASHA_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"BHASHA_CACHE_PREFIX" envDefault:"bhasha:"` // Redis key prefix
	CacheTTL     int    `env:"BHASHA_CACHE_TTL" envDefault:"300"`        // Default cache TTL in seconds
	CacheMaxSize int    `env:"BHASHA_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// GeoIP configuration
	GeoIPDBPath string `env:"BHASHA_GEOIP_DB_PATH"` // Path to GeoLite2-Country.mmdb file

	// SMTP configuration for credential mail to new users
	SMTPHost string `env:"BHASHA_SMTP_HOST"`
	SMTPPort int    `env:"BHASHA_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"BHASHA_SMTP_USER"`
	SMTPPass string `env:"BHASHA_SMTP_PASS"`
	SMTPFrom string `env:"BHASHA_SMTP_FROM"`

	// Bootstrap admin configuration
	AdminUsername string `env:"BHASHA_ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail    string `env:"BHASHA_ADMIN_EMAIL"`
	AdminPassword string `env:"BHASHA_ADMIN_PASSWORD"` // Generated and logged when empty

	// Event log retention in days; old events are pruned daily
	EventRetentionDays int `env:"BHASHA_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GeoIPEnabled returns true if GeoIP database is configured.
func (c Config) GeoIPEnabled() bool {
	return c.GeoIPDBPath != ""
}

// MailEnabled returns true if outgoing SMTP is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("BHASHA_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("BHASHA_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("BHASHA_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`") {
		charTypes++
	}
	return charTypes >= 3
}
