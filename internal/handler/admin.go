// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/bhasha-cms/bhasha/internal/middleware"
	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/policy"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/store"
)

// AdminHandler serves the console dashboard.
type AdminHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// languageTab is one entry in the dashboard's language switcher.
type languageTab struct {
	Code   string
	Label  string
	Active bool
}

// Dashboard lists the posts in one of the user's languages, defaulting to
// the first language the user can work in.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
		return
	}

	langs := policy.EffectiveLanguages(user)
	if len(langs) == 0 {
		// Editor with no assigned languages sees an empty console.
		if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
			Title: "Dashboard",
			User:  user,
			Data: map[string]any{
				"Languages":   []languageTab{},
				"Posts":       []model.Post{},
				"CurrentLang": "",
			},
		}); err != nil {
			logAndInternalError(w, "render dashboard", "error", err)
		}
		return
	}

	current := r.URL.Query().Get("lang")
	if !policy.CanAccessLanguage(user, current) {
		current = langs[0]
	}

	tabs := make([]languageTab, 0, len(langs))
	for _, code := range langs {
		tabs = append(tabs, languageTab{
			Code:   code,
			Label:  model.LanguageLabel(code),
			Active: code == current,
		})
	}

	posts, err := h.queries.ListPostsByLanguage(r.Context(), current)
	if err != nil {
		logAndInternalError(w, "list posts", "error", err, "language", current)
		return
	}

	if err := h.renderer.Render(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		User:  user,
		Data: map[string]any{
			"Languages":   tabs,
			"Posts":       posts,
			"CurrentLang": current,
		},
	}); err != nil {
		logAndInternalError(w, "render dashboard", "error", err)
	}
}
