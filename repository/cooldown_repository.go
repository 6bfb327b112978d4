package repository

import (
	"context"
	"fmt"
	"time"

	"doghouse/database"
	"doghouse/models"

	"github.com/jackc/pgx/v5"
)

// CooldownRepository implements the service.CooldownRepository interface
type CooldownRepository struct {
	q queryable
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *database.DB) *CooldownRepository {
	return &CooldownRepository{q: db.Pool}
}

// newCooldownRepositoryWithTx creates a new cooldown repository with a transaction
func newCooldownRepositoryWithTx(tx queryable) *CooldownRepository {
	return &CooldownRepository{q: tx}
}

// Get returns the active cooldown for (user, command), purging and reporting
// absence when the stored expiry has passed.
func (r *CooldownRepository) Get(ctx context.Context, userID int64, command string) (*models.Cooldown, error) {
	query := `
		SELECT user_id, command, expires_at
		FROM cooldowns
		WHERE user_id = $1 AND command = $2
	`

	var cooldown models.Cooldown
	err := r.q.QueryRow(ctx, query, userID, command).Scan(
		&cooldown.UserID,
		&cooldown.Command,
		&cooldown.ExpiresAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown for user %d: %w", userID, err)
	}

	if !time.Now().Before(cooldown.ExpiresAt) {
		// Lazy purge of the expired row
		deleteQuery := `DELETE FROM cooldowns WHERE user_id = $1 AND command = $2`
		if _, err := r.q.Exec(ctx, deleteQuery, userID, command); err != nil {
			return nil, fmt.Errorf("failed to purge expired cooldown for user %d: %w", userID, err)
		}
		return nil, nil
	}

	return &cooldown, nil
}

// Set upserts a cooldown expiring after the given duration
func (r *CooldownRepository) Set(ctx context.Context, userID int64, command string, duration time.Duration) error {
	query := `
		INSERT INTO cooldowns (user_id, command, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, command) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`

	expiresAt := time.Now().Add(duration)
	if _, err := r.q.Exec(ctx, query, userID, command, expiresAt); err != nil {
		return fmt.Errorf("failed to set cooldown for user %d: %w", userID, err)
	}

	return nil
}
