// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/bhasha-cms/bhasha/internal/model"
)

const userColumns = `id, username, email, password_hash, role, languages, blocked, created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Languages,
		&u.Blocked,
		&u.CreatedAt,
	)
	return u, err
}

// CreateUserParams holds the fields for CreateUser.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Languages    string
	CreatedAt    time.Time
}

const createUser = `
INSERT INTO users (username, email, password_hash, role, languages, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + userColumns

// CreateUser inserts a user and returns it with its assigned id. The
// username UNIQUE constraint surfaces as an error here.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username,
		arg.Email,
		arg.PasswordHash,
		arg.Role,
		arg.Languages,
		arg.CreatedAt,
	)
	return scanUser(row)
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

// GetUserByID returns the user with the given id or sql.ErrNoRows.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

// GetUserByUsername returns the user with the given username or sql.ErrNoRows.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const listUsers = `SELECT ` + userColumns + ` FROM users ORDER BY id DESC`

// ListUsers returns all users, newest first.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

// UpdateUserPasswordParams holds the fields for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           int64
}

const updateUserPassword = `UPDATE users SET password_hash = ? WHERE id = ?`

// UpdateUserPassword replaces a user's credential hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	return err
}

// SetUserBlockedParams holds the fields for SetUserBlocked.
type SetUserBlockedParams struct {
	Blocked bool
	ID      int64
}

const setUserBlocked = `UPDATE users SET blocked = ? WHERE id = ?`

// SetUserBlocked blocks or unblocks a user. Blocked users cannot
// authenticate regardless of credential validity.
func (q *Queries) SetUserBlocked(ctx context.Context, arg SetUserBlockedParams) error {
	_, err := q.db.ExecContext(ctx, setUserBlocked, arg.Blocked, arg.ID)
	return err
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser removes a user. Login and activity rows referencing the user
// are kept (no FK, no cascade) so the audit history stays intact.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}
