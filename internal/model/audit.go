package model

import (
	"database/sql"
	"time"
)

// Activity actions
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// LoginRecord is one successful console login. Append-only; rows survive
// deletion of the user they reference.
type LoginRecord struct {
	ID        int64
	UserID    int64
	IP        string
	UserAgent string
	Country   string
	LoginTime time.Time
}

// Activity is one audited content mutation. PostID is nullable because a
// delete can target an id that no longer resolves to a post.
type Activity struct {
	ID        int64
	UserID    int64
	Action    string
	PostID    sql.NullInt64
	Meta      string // JSON blob for extras
	CreatedAt time.Time
}

// LoginRecordRow joins a login record with its user for the activity
// dashboard. User fields are empty when the user has been deleted.
type LoginRecordRow struct {
	LoginRecord
	Username  string
	Role      string
	Languages string
}

// ActivityRow joins an activity with its acting user's name.
type ActivityRow struct {
	Activity
	Username string
}

// UserPostCount is the per-user creation tally shown on the activity
// dashboard, ordered by count descending then username ascending.
type UserPostCount struct {
	UserID       int64
	Username     string
	Role         string
	Languages    string
	PostsCreated int64
}
