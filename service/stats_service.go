package service

import (
	"context"
	"fmt"

	"doghouse/models"
)

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

// GetUserStats returns the rolled-up and per-game stats for a user
func (s *statsService) GetUserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("stats for user %d: %w", userID, ErrUserNotFound)
	}

	total, err := uow.StatsRepository().GetTotal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get total stats: %w", err)
	}
	if total == nil {
		// User exists but has never finished a game
		total = &models.GameStats{UserID: userID}
	}

	perGame, err := uow.StatsRepository().GetPerGame(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get per-game stats: %w", err)
	}

	return &models.UserStats{
		User:    user,
		Total:   total,
		PerGame: perGame,
	}, nil
}

// GetLeaderboard returns the top users by cumulative profit
func (s *statsService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.StatsRepository().GetTopByProfit(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return entries, nil
}
