package service

import (
	"context"
	"time"

	"doghouse/events"
	"doghouse/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, nil when absent
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, userID int64, username string, initialBalance int64) (*models.User, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalance deducts from a user's balance atomically, failing with
	// ErrInsufficientFunds when the balance does not cover the amount
	DeductBalance(ctx context.Context, userID int64, amount int64) error

	// SetBalance overwrites a user's balance
	SetBalance(ctx context.Context, userID int64, amount int64) error

	// GetAll returns all users
	GetAll(ctx context.Context) ([]*models.User, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// StatsRepository defines the interface for aggregate game statistics
type StatsRepository interface {
	// UpdateStats accumulates one finished game into both the per-game and
	// rolled-up rows
	UpdateStats(ctx context.Context, userID int64, gameType models.GameType, bet int64, profit int64) error

	// GetTotal returns the rolled-up stats row, nil when absent
	GetTotal(ctx context.Context, userID int64) (*models.GameStats, error)

	// GetPerGame returns per-game stats rows keyed by game type
	GetPerGame(ctx context.Context, userID int64) (map[models.GameType]*models.GameStats, error)

	// GetTopByProfit returns the profit leaderboard, descending
	GetTopByProfit(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// CooldownRepository defines the interface for command cooldowns
type CooldownRepository interface {
	// Get returns the active cooldown, purging and reporting absence when expired
	Get(ctx context.Context, userID int64, command string) (*models.Cooldown, error)

	// Set upserts a cooldown expiring after the given duration
	Set(ctx context.Context, userID int64, command string, duration time.Duration) error
}

// UnitOfWork bundles the repositories behind one database transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	StatsRepository() StatsRepository
	CooldownRepository() CooldownRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UserService defines the interface for account operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one with
	// the configured starting balance
	GetOrCreateUser(ctx context.Context, userID int64, username string) (*models.User, error)

	// TransferBetweenUsers moves amount from sender to recipient atomically
	TransferBetweenUsers(ctx context.Context, fromUserID, toUserID int64, amount int64, toUsername string) (*models.TransferResult, error)

	// Work grants hourly income, subject to the work cooldown
	Work(ctx context.Context, userID int64) (*models.WorkResult, error)

	// SetBalance overwrites a user's balance (admin operation)
	SetBalance(ctx context.Context, userID int64, amount int64) (*models.User, error)
}

// SettlementService is the single place money moves for games. Every stake,
// payout and refund goes through here so the ledger, the history trail and
// the stats table stay consistent.
type SettlementService interface {
	// PlaceStake debits a stake, creating the user row on first access.
	// Returns ErrInsufficientFunds without mutating anything if the balance
	// does not cover the stake.
	PlaceStake(ctx context.Context, userID int64, game models.GameType, amount int64) error

	// Settle credits the amount returned to the player (stake plus winnings,
	// or zero on a loss) and accumulates the game into the stats table, all
	// in one transaction.
	Settle(ctx context.Context, userID int64, game models.GameType, bet, returnAmount, profit int64) error

	// Refund returns a stake without touching stats, used when a game is
	// aborted rather than resolved
	Refund(ctx context.Context, userID int64, game models.GameType, amount int64) error

	// Balance reports the user's current balance, creating the row with the
	// starting balance on first access
	Balance(ctx context.Context, userID int64) (int64, error)
}

// StatsService defines the interface for statistics queries
type StatsService interface {
	// GetUserStats returns the rolled-up and per-game stats for a user
	GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error)

	// GetLeaderboard returns the top users by cumulative profit
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}
