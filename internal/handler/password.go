// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/bhasha-cms/bhasha/internal/auth"
	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/store"
)

const (
	redirectPassword  = "/admin/password"
	minPasswordLength = 8
)

// PasswordHandler lets a signed-in user change their own password.
type PasswordHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewPasswordHandler creates a new PasswordHandler.
func NewPasswordHandler(db *sql.DB, renderer *render.Renderer) *PasswordHandler {
	return &PasswordHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// Form renders the change-password page.
func (h *PasswordHandler) Form(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Render(w, r, "admin/password", render.TemplateData{
		Title: "Change password",
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "render password page", "error", err)
	}
}

// Change handles the change-password form submission.
func (h *PasswordHandler) Change(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectPassword, "Invalid form data.")
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if len(newPassword) < minPasswordLength {
		flashError(w, r, h.renderer, redirectPassword, "New password must be at least 8 characters.")
		return
	}
	if newPassword != confirm {
		flashError(w, r, h.renderer, redirectPassword, "Passwords do not match.")
		return
	}

	valid, err := auth.CheckPassword(current, user.PasswordHash)
	if err != nil {
		logAndInternalError(w, "password check error", "error", err)
		return
	}
	if !valid {
		slog.Warn("password change failed: wrong current password", "user_id", user.ID)
		flashError(w, r, h.renderer, redirectPassword, "Current password is incorrect.")
		return
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		logAndInternalError(w, "hash password", "error", err)
		return
	}
	if err := h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: hash,
		ID:           user.ID,
	}); err != nil {
		logAndInternalError(w, "update password", "error", err, "user_id", user.ID)
		return
	}

	slog.Info("password changed", "user_id", user.ID)
	flashAndRedirect(w, r, h.renderer, redirectAdmin, "Password changed.", "success")
}
