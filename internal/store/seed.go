// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/bhasha-cms/bhasha/internal/auth"
	"github.com/bhasha-cms/bhasha/internal/model"
)

// DefaultAdminUsername is used when no bootstrap username is configured.
const DefaultAdminUsername = "admin"

// Seed creates the bootstrap admin when the users table is empty. The
// admin is created with the full language set; when password is empty a
// random one is generated and logged once.
func Seed(ctx context.Context, db *sql.DB, username, email, password string) error {
	queries := New(db)

	count, err := queries.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if username == "" {
		username = DefaultAdminUsername
	}

	generated := false
	if password == "" {
		password, err = auth.GeneratePassword(auth.GeneratedPasswordLength)
		if err != nil {
			return fmt.Errorf("generating admin password: %w", err)
		}
		generated = true
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		Languages:    model.JoinLanguageList(model.AllLanguageCodes()),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	if generated {
		slog.Info("seeded admin user with generated password",
			"id", user.ID,
			"username", user.Username,
			"password", password,
		)
	} else {
		slog.Info("seeded admin user", "id", user.ID, "username", user.Username)
	}

	return nil
}
