// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package audit records login and activity history. Writes are
// best-effort: a failed audit insert is logged and swallowed so it never
// fails the operation being audited.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bhasha-cms/bhasha/internal/model"
	"github.com/bhasha-cms/bhasha/internal/store"
)

// DefaultLimit bounds the dashboard history queries.
const DefaultLimit = 100

// Recorder writes audit rows and reads them back for the activity views.
type Recorder struct {
	q   *store.Queries
	log *slog.Logger
}

func NewRecorder(q *store.Queries, log *slog.Logger) *Recorder {
	return &Recorder{q: q, log: log}
}

// RecordLogin stores a successful login with client metadata.
func (r *Recorder) RecordLogin(ctx context.Context, userID int64, ip, userAgent, country string) {
	err := r.q.CreateLogin(ctx, store.CreateLoginParams{
		UserID:    userID,
		IP:        ip,
		UserAgent: userAgent,
		Country:   country,
		LoginTime: time.Now().UTC(),
	})
	if err != nil {
		r.log.Error("record login", "error", err, "user_id", userID)
	}
}

// RecordActivity stores a content action. meta is marshaled to JSON;
// pass nil for no metadata.
func (r *Recorder) RecordActivity(ctx context.Context, userID int64, action string, postID int64, meta map[string]any) {
	var metaJSON string
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			r.log.Error("marshal activity meta", "error", err, "action", action)
		} else {
			metaJSON = string(b)
		}
	}

	var pid sql.NullInt64
	if postID > 0 {
		pid = sql.NullInt64{Int64: postID, Valid: true}
	}

	err := r.q.CreateActivity(ctx, store.CreateActivityParams{
		UserID:    userID,
		Action:    action,
		PostID:    pid,
		Meta:      metaJSON,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.log.Error("record activity", "error", err, "user_id", userID, "action", action)
	}
}

// RecentLogins returns the latest logins joined with whatever user rows
// still exist. History for deleted accounts is kept with blank user fields.
func (r *Recorder) RecentLogins(ctx context.Context, limit int64) ([]model.LoginRecordRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return r.q.RecentLogins(ctx, limit)
}

// ActivityStream returns the latest content actions, newest first.
func (r *Recorder) ActivityStream(ctx context.Context, limit int64) ([]model.ActivityRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return r.q.ActivityStream(ctx, limit)
}

// PostCountsByUser returns per-author post totals for the dashboard.
func (r *Recorder) PostCountsByUser(ctx context.Context) ([]model.UserPostCount, error) {
	return r.q.PostCountsByUser(ctx)
}
