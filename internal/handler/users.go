// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/bhasha-cms/bhasha/internal/auth"
	"github.com/bhasha-cms/bhasha/internal/mailer"
	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/store"
)

const redirectUsers = "/admin/users"

// Session keys carrying freshly generated credentials from Create to List.
// They are popped on first render so the password is shown exactly once.
const (
	sessionKeyNewUsername = "new_user_username"
	sessionKeyNewPassword = "new_user_password"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{2,59}$`)

// UserHandler implements account management. All routes are admin-only.
type UserHandler struct {
	queries        *store.Queries
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	mail           *mailer.Mailer
	loginURL       string

	now func() time.Time
}

// NewUserHandler creates a new UserHandler. loginURL is the absolute
// console sign-in address included in credential emails.
func NewUserHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, m *mailer.Mailer, loginURL string) *UserHandler {
	return &UserHandler{
		queries:        store.New(db),
		renderer:       renderer,
		sessionManager: sm,
		mail:           m,
		loginURL:       loginURL,
		now:            time.Now,
	}
}

// List renders the user table and the create-account form.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		logAndInternalError(w, "list users", "error", err)
		return
	}

	data := map[string]any{
		"Users":     users,
		"Languages": model.AllLanguages,
	}
	if pw := h.sessionManager.PopString(r.Context(), sessionKeyNewPassword); pw != "" {
		data["NewPassword"] = pw
		data["NewUsername"] = h.sessionManager.PopString(r.Context(), sessionKeyNewUsername)
	}

	if err := h.renderer.Render(w, r, "admin/users", render.TemplateData{
		Title: "Users",
		User:  user,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render users page", "error", err)
	}
}

// Create handles the create-account form. The password is generated, never
// chosen: it is flashed to the admin once and mailed when SMTP is set up.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUser(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectUsers, "Invalid form data.")
		return
	}

	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	if !usernamePattern.MatchString(username) {
		flashError(w, r, h.renderer, redirectUsers,
			"Username must be 3-60 characters: lowercase letters, digits, dot, dash, underscore.")
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			flashError(w, r, h.renderer, redirectUsers, "Invalid email address.")
			return
		}
	}

	role := r.FormValue("role")
	if role != model.RoleAdmin && role != model.RoleEditor {
		flashError(w, r, h.renderer, redirectUsers, "Unknown role.")
		return
	}

	// Unknown codes are silently dropped. An editor always gets at least
	// one language, so an empty selection falls back to the default.
	languages := model.FilterLanguages(r.Form["languages"])
	codes := make([]string, len(languages))
	for i, l := range languages {
		codes[i] = l.Code
	}
	if len(codes) == 0 && role == model.RoleEditor {
		codes = []string{model.DefaultLanguageCode}
	}

	if _, err := h.queries.GetUserByUsername(r.Context(), username); err == nil {
		flashError(w, r, h.renderer, redirectUsers, "Username is already taken.")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		logAndInternalError(w, "check username", "error", err)
		return
	}

	password, err := auth.GeneratePassword(auth.GeneratedPasswordLength)
	if err != nil {
		logAndInternalError(w, "generate password", "error", err)
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "hash password", "error", err)
		return
	}

	created, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Languages:    model.JoinLanguageList(codes),
		CreatedAt:    h.now().UTC(),
	})
	if err != nil {
		logAndInternalError(w, "create user", "error", err)
		return
	}

	slog.Info("user created", "user_id", created.ID, "username", username, "role", role, "created_by", admin.ID)

	// Email delivery is best effort. The one-time flash is the real channel.
	if email != "" && h.mail.Enabled() {
		if err := h.mail.SendNewUserCredentials(email, username, password, h.loginURL); err != nil {
			slog.Error("credential email failed", "error", err, "user_id", created.ID)
		}
	}

	h.sessionManager.Put(r.Context(), sessionKeyNewUsername, username)
	h.sessionManager.Put(r.Context(), sessionKeyNewPassword, password)
	http.Redirect(w, r, redirectUsers, http.StatusSeeOther)
}

// Block marks an account blocked. Its sessions die on the next request.
func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true)
}

// Unblock reactivates a blocked account.
func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false)
}

func (h *UserHandler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool) {
	admin := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if id == admin.ID {
		flashError(w, r, h.renderer, redirectUsers, "You cannot block your own account.")
		return
	}

	if err := h.queries.SetUserBlocked(r.Context(), store.SetUserBlockedParams{
		Blocked: blocked,
		ID:      id,
	}); err != nil {
		logAndInternalError(w, "set user blocked", "error", err, "user_id", id)
		return
	}

	verb := "unblocked"
	if blocked {
		verb = "blocked"
	}
	slog.Info("user "+verb, "user_id", id, "by", admin.ID)
	flashAndRedirect(w, r, h.renderer, redirectUsers, "Account "+verb+".", "success")
}

// Delete removes an account. Posts and history rows stay behind.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetUser(r)

	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if id == admin.ID {
		flashError(w, r, h.renderer, redirectUsers, "You cannot delete your own account.")
		return
	}

	if err := h.queries.DeleteUser(r.Context(), id); err != nil {
		logAndInternalError(w, "delete user", "error", err, "user_id", id)
		return
	}

	slog.Info("user deleted", "user_id", id, "by", admin.ID)
	flashAndRedirect(w, r, h.renderer, redirectUsers, "Account deleted. Posts and history remain.", "success")
}
