// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the server-side session manager backing the
// admin console login.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

const (
	cookieName = "bhasha_session"

	// Console sessions survive a working day but expire after a few
	// hours of inactivity.
	lifetime    = 12 * time.Hour
	idleTimeout = 2 * time.Hour
)

// New creates the session manager, persisting sessions in the same
// SQLite database as the rest of the application state.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = lifetime
	sm.IdleTimeout = idleTimeout
	sm.Cookie.Name = cookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // secure cookies in production only

	return sm
}
