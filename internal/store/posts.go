// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bhasha-cms/bhasha/internal/model"
)

const postColumns = `id, headline, strap, image_path, thumb_path, image_alt, language, link_url, created_by, created_at`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(
		&p.ID,
		&p.Headline,
		&p.Strap,
		&p.ImagePath,
		&p.ThumbPath,
		&p.ImageAlt,
		&p.Language,
		&p.LinkURL,
		&p.CreatedBy,
		&p.CreatedAt,
	)
	return p, err
}

// CreatePostParams holds the fields for CreatePost.
type CreatePostParams struct {
	Headline  sql.NullString
	Strap     sql.NullString
	ImagePath string
	ThumbPath sql.NullString
	ImageAlt  sql.NullString
	Language  string
	LinkURL   sql.NullString
	CreatedBy sql.NullInt64
	CreatedAt time.Time
}

const createPost = `
INSERT INTO posts (headline, strap, image_path, thumb_path, image_alt, language, link_url, created_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + postColumns

// CreatePost inserts a post and returns it with its assigned id. The id is
// AUTOINCREMENT: strictly increasing with creation order, never reused.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.Headline,
		arg.Strap,
		arg.ImagePath,
		arg.ThumbPath,
		arg.ImageAlt,
		arg.Language,
		arg.LinkURL,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return scanPost(row)
}

const getPostByID = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

// GetPostByID returns the post with the given id or sql.ErrNoRows.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	return scanPost(q.db.QueryRowContext(ctx, getPostByID, id))
}

// UpdatePostParams holds the full post row for UpdatePost. Callers load the
// existing post and overwrite only the fields they change (partial merge
// happens at the call site, the statement always writes every mutable field).
type UpdatePostParams struct {
	ID        int64
	Headline  sql.NullString
	Strap     sql.NullString
	ImagePath string
	ThumbPath sql.NullString
	ImageAlt  sql.NullString
	Language  string
	LinkURL   sql.NullString
}

const updatePost = `
UPDATE posts
SET headline = ?, strap = ?, image_path = ?, thumb_path = ?, image_alt = ?, language = ?, link_url = ?
WHERE id = ?`

// UpdatePost rewrites the mutable fields of a post. created_by and
// created_at are immutable and never touched.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx, updatePost,
		arg.Headline,
		arg.Strap,
		arg.ImagePath,
		arg.ThumbPath,
		arg.ImageAlt,
		arg.Language,
		arg.LinkURL,
		arg.ID,
	)
	return err
}

const deletePost = `DELETE FROM posts WHERE id = ?`

// DeletePost removes a post. Deleting an id that does not exist is a no-op,
// which keeps console retries safe.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deletePost, id)
	return err
}

// ListFeedPostsParams selects a feed page: optional language filter,
// optional exclusive upper-bound cursor, and a row limit. Clamping the
// limit is the pagination engine's job; the store executes what it is given.
type ListFeedPostsParams struct {
	Language sql.NullString
	Cursor   sql.NullInt64
	Limit    int64
}

// ListFeedPosts returns posts newest-first, strictly below the cursor when
// one is present.
func (q *Queries) ListFeedPosts(ctx context.Context, arg ListFeedPostsParams) ([]model.Post, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + postColumns + ` FROM posts`)
	var conds []string
	var args []any
	if arg.Language.Valid {
		conds = append(conds, "language = ?")
		args = append(args, arg.Language.String)
	}
	if arg.Cursor.Valid {
		conds = append(conds, "id < ?")
		args = append(args, arg.Cursor.Int64)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id DESC LIMIT ?")
	args = append(args, arg.Limit)

	rows, err := q.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const listPostsByLanguage = `SELECT ` + postColumns + ` FROM posts WHERE language = ? ORDER BY id DESC`

// ListPostsByLanguage returns every post in a language, newest first. Used
// by the console dashboard.
func (q *Queries) ListPostsByLanguage(ctx context.Context, language string) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx, listPostsByLanguage, language)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const distinctLanguages = `SELECT DISTINCT language FROM posts ORDER BY language`

// DistinctLanguages returns the codes of languages with at least one post.
func (q *Queries) DistinctLanguages(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, distinctLanguages)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

const countPosts = `SELECT COUNT(*) FROM posts`

// CountPosts returns the total number of posts.
func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&n)
	return n, err
}
