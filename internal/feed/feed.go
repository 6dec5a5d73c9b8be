// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package feed implements cursor pagination over the public post stream.
package feed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/store"
)

const (
	// DefaultLimit is used when the request does not specify a page size.
	DefaultLimit = 10
	// MaxLimit caps the page size.
	MaxLimit = 50
)

// Request describes one page fetch. Zero values mean "first page, default
// size, all languages".
type Request struct {
	Language string // empty = no language filter
	Cursor   int64  // 0 = first page; otherwise only posts with id < Cursor
	Limit    int    // clamped to [1, MaxLimit]; 0 = DefaultLimit
}

// Page is the result of one fetch. NextCursor holds the id of the last
// (smallest-id) item on this page, or nil when the page is empty. Clients
// discover the end of the stream by fetching the page after the last one.
type Page struct {
	Items      []model.Post
	NextCursor *int64
}

// Service fetches feed pages from the store.
type Service struct {
	q *store.Queries
}

func New(q *store.Queries) *Service {
	return &Service{q: q}
}

// ClampLimit normalizes a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Fetch returns one page of the feed, newest first. The language filter
// must already be validated by the caller; an unknown language simply
// yields an empty page.
func (s *Service) Fetch(ctx context.Context, req Request) (Page, error) {
	limit := ClampLimit(req.Limit)

	params := store.ListFeedPostsParams{Limit: int64(limit)}
	if req.Language != "" {
		params.Language = sql.NullString{String: req.Language, Valid: true}
	}
	if req.Cursor > 0 {
		params.Cursor = sql.NullInt64{Int64: req.Cursor, Valid: true}
	}

	items, err := s.q.ListFeedPosts(ctx, params)
	if err != nil {
		return Page{}, fmt.Errorf("list feed posts: %w", err)
	}

	page := Page{Items: items}
	if len(items) > 0 {
		last := items[len(items)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}
