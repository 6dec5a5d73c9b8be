// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post is an image post in the feed. IDs are assigned by the store and
// strictly increase with creation order, which is what the feed cursor
// relies on.
type Post struct {
	ID        int64          `json:"id"`
	Headline  sql.NullString `json:"headline"`
	Strap     sql.NullString `json:"strap"`
	ImagePath string         `json:"image_path"`
	ThumbPath sql.NullString `json:"thumb_path"`
	ImageAlt  sql.NullString `json:"image_alt"`
	Language  string         `json:"language"`
	LinkURL   sql.NullString `json:"link_url"`
	CreatedBy sql.NullInt64  `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
}
