package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event is a system/security log entry. Distinct from the Activity audit
// trail: activities record content mutations, events record operational
// warnings and errors (failed logins, denied access, store failures).
type Event struct {
	ID        int64
	Level     string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON string
	CreatedAt time.Time
}
