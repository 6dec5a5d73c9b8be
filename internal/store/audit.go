// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/bhasha-cms/bhasha/internal/model"
)

// CreateLoginParams holds the fields for CreateLogin.
type CreateLoginParams struct {
	UserID    int64
	IP        string
	UserAgent string
	Country   string
	LoginTime time.Time
}

const createLogin = `
INSERT INTO logins (user_id, ip, user_agent, country, login_time)
VALUES (?, ?, ?, ?, ?)`

// CreateLogin appends a login record. Append-only: no update or delete
// statement exists for this table.
func (q *Queries) CreateLogin(ctx context.Context, arg CreateLoginParams) error {
	_, err := q.db.ExecContext(ctx, createLogin,
		arg.UserID, arg.IP, arg.UserAgent, arg.Country, arg.LoginTime)
	return err
}

// CreateActivityParams holds the fields for CreateActivity.
type CreateActivityParams struct {
	UserID    int64
	Action    string
	PostID    sql.NullInt64
	Meta      string
	CreatedAt time.Time
}

const createActivity = `
INSERT INTO activities (user_id, action, post_id, meta, created_at)
VALUES (?, ?, ?, ?, ?)`

// CreateActivity appends a content-mutation audit record.
func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) error {
	_, err := q.db.ExecContext(ctx, createActivity,
		arg.UserID, arg.Action, arg.PostID, arg.Meta, arg.CreatedAt)
	return err
}

const recentLogins = `
SELECT l.id, l.user_id, l.ip, l.user_agent, l.country, l.login_time,
       COALESCE(u.username, ''), COALESCE(u.role, ''), COALESCE(u.languages, '')
FROM logins l
LEFT JOIN users u ON u.id = l.user_id
ORDER BY l.login_time DESC, l.id DESC
LIMIT ?`

// RecentLogins returns the newest login records with their users joined.
// Records of deleted users are kept and surface with empty user fields.
func (q *Queries) RecentLogins(ctx context.Context, limit int64) ([]model.LoginRecordRow, error) {
	rows, err := q.db.QueryContext(ctx, recentLogins, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.LoginRecordRow
	for rows.Next() {
		var r model.LoginRecordRow
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.IP, &r.UserAgent, &r.Country, &r.LoginTime,
			&r.Username, &r.Role, &r.Languages,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const activityStream = `
SELECT a.id, a.user_id, a.action, a.post_id, a.meta, a.created_at,
       COALESCE(u.username, '')
FROM activities a
LEFT JOIN users u ON u.id = a.user_id
ORDER BY a.created_at DESC, a.id DESC
LIMIT ?`

// ActivityStream returns the newest activity records with usernames joined.
func (q *Queries) ActivityStream(ctx context.Context, limit int64) ([]model.ActivityRow, error) {
	rows, err := q.db.QueryContext(ctx, activityStream, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.ActivityRow
	for rows.Next() {
		var r model.ActivityRow
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Action, &r.PostID, &r.Meta, &r.CreatedAt,
			&r.Username,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const postCountsByUser = `
SELECT u.id, u.username, u.role, u.languages, COUNT(p.id) AS posts_created
FROM users u
LEFT JOIN posts p ON p.created_by = u.id
GROUP BY u.id
ORDER BY posts_created DESC, u.username ASC`

// PostCountsByUser returns per-user creation tallies, highest first with a
// deterministic username tie-break.
func (q *Queries) PostCountsByUser(ctx context.Context) ([]model.UserPostCount, error) {
	rows, err := q.db.QueryContext(ctx, postCountsByUser)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.UserPostCount
	for rows.Next() {
		var r model.UserPostCount
		if err := rows.Scan(&r.UserID, &r.Username, &r.Role, &r.Languages, &r.PostsCreated); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	CreatedAt time.Time
}

const createEvent = `
INSERT INTO events (level, message, user_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?)`

// CreateEvent appends a system/security log entry.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, createEvent,
		arg.Level, arg.Message, arg.UserID, arg.Metadata, arg.CreatedAt)
	return err
}

const recentEvents = `
SELECT id, level, message, user_id, metadata, created_at
FROM events
ORDER BY id DESC
LIMIT ?`

// RecentEvents returns the latest system log entries, newest first.
func (q *Queries) RecentEvents(ctx context.Context, limit int64) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, recentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Message, &e.UserID, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

// DeleteEventsBefore prunes system log entries older than cutoff. The
// logins and activities audit tables are never pruned.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
