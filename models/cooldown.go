package models

import "time"

// Cooldown is a single future expiry per (user, command) pair.
// Expired rows are purged lazily on read.
type Cooldown struct {
	UserID    int64     `db:"user_id"`
	Command   string    `db:"command"`
	ExpiresAt time.Time `db:"expires_at"`
}
