// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bhasha-cms/bhasha/internal/cache"
	"github.com/bhasha-cms/bhasha/internal/feed"
	"github.com/bhasha-cms/bhasha/internal/model"
)

// FeedHandler serves GET /api/posts and GET /api/languages.
type FeedHandler struct {
	feed      *feed.Service
	languages *cache.LanguageCache
	baseURL   string
}

// NewFeedHandler creates a new FeedHandler. baseURL is the site's absolute
// address without a trailing slash, used to build absolute media URLs.
func NewFeedHandler(f *feed.Service, languages *cache.LanguageCache, baseURL string) *FeedHandler {
	return &FeedHandler{
		feed:      f,
		languages: languages,
		baseURL:   baseURL,
	}
}

// postItem is one post as the API exposes it.
type postItem struct {
	ID        int64     `json:"id"`
	Headline  string    `json:"headline,omitempty"`
	Strap     string    `json:"strap,omitempty"`
	ImageURL  string    `json:"imageUrl"`
	ThumbURL  string    `json:"thumbUrl,omitempty"`
	ImageAlt  string    `json:"imageAlt,omitempty"`
	LinkURL   string    `json:"linkUrl,omitempty"`
	Language  string    `json:"language"`
	ShareURL  string    `json:"shareUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// feedPage is the response body for GET /api/posts.
type feedPage struct {
	Items      []postItem `json:"items"`
	NextCursor *int64     `json:"nextCursor"`
}

// Posts handles GET /api/posts?lang=&cursor=&limit=.
func (h *FeedHandler) Posts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lang := q.Get("lang")
	if lang != "" && !model.IsValidLanguageCode(lang) {
		WriteBadRequest(w, "unknown language code: "+lang)
		return
	}

	var cursor int64
	if raw := q.Get("cursor"); raw != "" {
		var err error
		cursor, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || cursor < 0 {
			WriteBadRequest(w, "cursor must be a non-negative integer")
			return
		}
	}

	var limit int
	if raw := q.Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil {
			WriteBadRequest(w, "limit must be an integer")
			return
		}
		// An explicit zero or negative limit clamps to the smallest page,
		// not the default. Absence of the parameter means the default.
		if limit <= 0 {
			limit = 1
		}
	}

	page, err := h.feed.Fetch(r.Context(), feed.Request{
		Language: lang,
		Cursor:   cursor,
		Limit:    limit,
	})
	if err != nil {
		slog.Error("api feed fetch failed", "error", err, "language", lang)
		WriteInternalError(w, "could not load posts")
		return
	}

	items := make([]postItem, len(page.Items))
	for i, p := range page.Items {
		items[i] = h.toItem(p)
	}
	WriteJSON(w, http.StatusOK, feedPage{Items: items, NextCursor: page.NextCursor})
}

// languageItem is one language as the API exposes it.
type languageItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Languages handles GET /api/languages, listing languages that currently
// have published posts.
func (h *FeedHandler) Languages(w http.ResponseWriter, r *http.Request) {
	codes, err := h.languages.Published(r.Context())
	if err != nil {
		slog.Error("api language list failed", "error", err)
		WriteInternalError(w, "could not load languages")
		return
	}

	items := make([]languageItem, len(codes))
	for i, code := range codes {
		items[i] = languageItem{Code: code, Label: model.LanguageLabel(code)}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *FeedHandler) toItem(p model.Post) postItem {
	item := postItem{
		ID:        p.ID,
		ImageURL:  h.baseURL + p.ImagePath,
		Language:  p.Language,
		ShareURL:  fmt.Sprintf("%s/post/%d", h.baseURL, p.ID),
		CreatedAt: p.CreatedAt,
	}
	if p.Headline.Valid {
		item.Headline = p.Headline.String
	}
	if p.Strap.Valid {
		item.Strap = p.Strap.String
	}
	if p.ThumbPath.Valid {
		item.ThumbURL = h.baseURL + p.ThumbPath.String
	}
	if p.ImageAlt.Valid {
		item.ImageAlt = p.ImageAlt.String
	}
	if p.LinkURL.Valid {
		item.LinkURL = p.LinkURL.String
	}
	return item
}
