package repository

import (
	"context"
	"fmt"

	"doghouse/database"
	"doghouse/models"

	"github.com/jackc/pgx/v5"
)

// StatsRepository implements the service.StatsRepository interface
type StatsRepository struct {
	q queryable
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{q: db.Pool}
}

// newStatsRepositoryWithTx creates a new stats repository with a transaction
func newStatsRepositoryWithTx(tx queryable) *StatsRepository {
	return &StatsRepository{q: tx}
}

// UpdateStats upserts both the rolled-up row and the per-game row for one
// finished game. Counters only grow: total_bet and games always, wins on
// positive profit, losses on negative profit, neither on a push.
func (r *StatsRepository) UpdateStats(ctx context.Context, userID int64, gameType models.GameType, bet int64, profit int64) error {
	var wins, losses int64
	if profit > 0 {
		wins = 1
	} else if profit < 0 {
		losses = 1
	}

	totalQuery := `
		INSERT INTO user_stats (user_id, total_bet, total_wins, total_losses, total_profit, total_games)
		VALUES ($1, $2, $3, $4, $5, 1)
		ON CONFLICT (user_id) DO UPDATE SET
			total_bet = user_stats.total_bet + EXCLUDED.total_bet,
			total_wins = user_stats.total_wins + EXCLUDED.total_wins,
			total_losses = user_stats.total_losses + EXCLUDED.total_losses,
			total_profit = user_stats.total_profit + EXCLUDED.total_profit,
			total_games = user_stats.total_games + EXCLUDED.total_games
	`
	if _, err := r.q.Exec(ctx, totalQuery, userID, bet, wins, losses, profit); err != nil {
		return fmt.Errorf("failed to update user stats for user %d: %w", userID, err)
	}

	gameQuery := `
		INSERT INTO game_stats (user_id, game_type, bet, wins, losses, profit, games)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			bet = game_stats.bet + EXCLUDED.bet,
			wins = game_stats.wins + EXCLUDED.wins,
			losses = game_stats.losses + EXCLUDED.losses,
			profit = game_stats.profit + EXCLUDED.profit,
			games = game_stats.games + EXCLUDED.games
	`
	if _, err := r.q.Exec(ctx, gameQuery, userID, gameType, bet, wins, losses, profit); err != nil {
		return fmt.Errorf("failed to update game stats for user %d: %w", userID, err)
	}

	return nil
}

// GetTotal returns the rolled-up stats row for a user, or nil if the user has
// never finished a game.
func (r *StatsRepository) GetTotal(ctx context.Context, userID int64) (*models.GameStats, error) {
	query := `
		SELECT user_id, total_bet, total_wins, total_losses, total_profit, total_games
		FROM user_stats
		WHERE user_id = $1
	`

	var stats models.GameStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&stats.UserID,
		&stats.TotalBet,
		&stats.Wins,
		&stats.Losses,
		&stats.Profit,
		&stats.Games,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats for user %d: %w", userID, err)
	}

	return &stats, nil
}

// GetPerGame returns the per-game stats rows for a user keyed by game type
func (r *StatsRepository) GetPerGame(ctx context.Context, userID int64) (map[models.GameType]*models.GameStats, error) {
	query := `
		SELECT user_id, game_type, bet, wins, losses, profit, games
		FROM game_stats
		WHERE user_id = $1
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats for user %d: %w", userID, err)
	}
	defer rows.Close()

	perGame := make(map[models.GameType]*models.GameStats)
	for rows.Next() {
		var stats models.GameStats
		err := rows.Scan(
			&stats.UserID,
			&stats.GameType,
			&stats.TotalBet,
			&stats.Wins,
			&stats.Losses,
			&stats.Profit,
			&stats.Games,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game stats: %w", err)
		}
		perGame[stats.GameType] = &stats
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game stats: %w", err)
	}

	return perGame, nil
}

// GetTopByProfit returns the profit leaderboard, descending. Insertion order
// breaks ties, which is stable enough for display.
func (r *StatsRepository) GetTopByProfit(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	query := `
		SELECT s.user_id, u.username, s.total_profit
		FROM user_stats s
		JOIN users u ON u.user_id = s.user_id
		ORDER BY s.total_profit DESC, s.user_id
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get profit leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Username, &entry.Profit); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}

	return entries, nil
}
