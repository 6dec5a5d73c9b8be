// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bhasha-cms/bhasha/internal/cache"
	"github.com/bhasha-cms/bhasha/internal/feed"
	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/render"
	"github.com/bhasha-cms/bhasha/internal/store"
)

// FrontendHandler serves the public pages: the feed and share pages.
type FrontendHandler struct {
	queries   *store.Queries
	feed      *feed.Service
	languages *cache.LanguageCache
	renderer  *render.Renderer
	baseURL   string
}

// NewFrontendHandler creates a new FrontendHandler. baseURL is the site's
// absolute address without a trailing slash, used for share links.
func NewFrontendHandler(q *store.Queries, f *feed.Service, languages *cache.LanguageCache, renderer *render.Renderer, baseURL string) *FrontendHandler {
	return &FrontendHandler{
		queries:   q,
		feed:      f,
		languages: languages,
		renderer:  renderer,
		baseURL:   baseURL,
	}
}

// Index renders the public feed. Language defaults to the first language
// that has published posts; an unknown code falls back the same way.
func (h *FrontendHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	published, err := h.languages.Published(ctx)
	if err != nil {
		logAndInternalError(w, "load published languages", "error", err)
		return
	}

	current := r.URL.Query().Get("lang")
	if !model.IsValidLanguageCode(current) {
		current = ""
	}
	if current == "" {
		if len(published) > 0 {
			current = published[0]
		} else {
			current = model.DefaultLanguageCode
		}
	}

	var cursor int64
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		// A bad cursor is treated as the first page.
		cursor, _ = strconv.ParseInt(raw, 10, 64)
	}

	page, err := h.feed.Fetch(ctx, feed.Request{
		Language: current,
		Cursor:   cursor,
	})
	if err != nil {
		logAndInternalError(w, "fetch feed", "error", err, "language", current)
		return
	}

	tabs := make([]languageTab, 0, len(published))
	for _, code := range published {
		tabs = append(tabs, languageTab{
			Code:   code,
			Label:  model.LanguageLabel(code),
			Active: code == current,
		})
	}

	data := map[string]any{
		"Languages":   tabs,
		"Posts":       page.Items,
		"CurrentLang": current,
	}
	if page.NextCursor != nil {
		data["NextCursor"] = *page.NextCursor
	}

	if err := h.renderer.Render(w, r, "frontend/index", render.TemplateData{
		Title: "Bhasha",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "render feed", "error", err)
	}
}

// Share renders a single post with Open Graph metadata so links unfurl in
// messaging apps.
func (h *FrontendHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	post, err := h.queries.GetPostByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "load post", "error", err, "post_id", id)
		return
	}

	title := "Bhasha"
	if post.Headline.Valid {
		title = post.Headline.String
	}

	if err := h.renderer.Render(w, r, "frontend/share", render.TemplateData{
		Title: title,
		Data: map[string]any{
			"Post":     post,
			"ImageURL": h.baseURL + post.ImagePath,
			"ShareURL": fmt.Sprintf("%s/post/%d", h.baseURL, post.ID),
		},
	}); err != nil {
		logAndInternalError(w, "render share page", "error", err)
	}
}
