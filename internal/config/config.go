// Copyright (c) 2025-2026 Minh Vu
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must never be used.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinSessionSecretLength is the minimum required length for the session
// secret. 32 bytes keeps the CSRF key usable for AES-256.
const MinSessionSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"RECIPEBOOK_DB_PATH" envDefault:"./data/recipebook.db"`
	SessionSecret string `env:"RECIPEBOOK_SESSION_SECRET,required"`
	ServerHost    string `env:"RECIPEBOOK_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"RECIPEBOOK_SERVER_PORT" envDefault:"4000"`
	Env           string `env:"RECIPEBOOK_ENV" envDefault:"development"`
	LogLevel      string `env:"RECIPEBOOK_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"RECIPEBOOK_UPLOADS_DIR" envDefault:"./public/uploads"`

	// Google OAuth configuration. Federated sign-in is disabled when the
	// client id is empty.
	GoogleClientID     string `env:"RECIPEBOOK_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"RECIPEBOOK_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"RECIPEBOOK_GOOGLE_REDIRECT_URL"`

	// Seeding configuration
	DoSeed bool `env:"RECIPEBOOK_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// GoogleEnabled returns true if Google sign-in is configured.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("RECIPEBOOK_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("RECIPEBOOK_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	cfg.UploadsDir = strings.TrimRight(cfg.UploadsDir, "/")

	return cfg, nil
}
