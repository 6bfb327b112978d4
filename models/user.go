package models

import (
	"time"
)

// User represents a player with a chip balance
type User struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TransferResult represents the outcome of a transfer (returned to the caller)
type TransferResult struct {
	Amount        int64
	RecipientName string
	NewBalance    int64
}

// WorkResult represents the outcome of a work command
type WorkResult struct {
	Income     int64
	NewBalance int64
}
