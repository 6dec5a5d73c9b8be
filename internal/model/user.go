// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application including Post, User, Language, and audit records.
package model

import (
	"strings"
	"time"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User represents a console user. Editors carry an explicit language set;
// admins implicitly have access to every language.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         string    `json:"role"`
	Languages    string    `json:"languages"` // comma list: "en,hi"
	Blocked      bool      `json:"blocked"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LanguageCodes parses the stored comma list into a slice of codes.
// Whitespace and empty entries are dropped.
func (u *User) LanguageCodes() []string {
	return SplitLanguageList(u.Languages)
}

// SplitLanguageList parses a comma-separated language list.
func SplitLanguageList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if code := strings.TrimSpace(part); code != "" {
			out = append(out, code)
		}
	}
	return out
}

// JoinLanguageList renders codes back into the stored comma-list form.
func JoinLanguageList(codes []string) string {
	return strings.Join(codes, ",")
}
