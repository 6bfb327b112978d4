package service

import (
	"context"
	"fmt"

	"doghouse/config"
	"doghouse/events"
	"doghouse/models"
)

// settlementService implements the SettlementService interface
type settlementService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, cfg *config.Config) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// PlaceStake debits a stake, creating the user row on first access
func (s *settlementService) PlaceStake(ctx context.Context, userID int64, game models.GameType, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("stake must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := ensureUser(ctx, uow, userID, s.config.StartingBalance)
	if err != nil {
		return err
	}

	// The repository enforces sufficiency in the same statement, so a race
	// between two stakes for one user cannot overdraw.
	if err := uow.UserRepository().DeductBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to place stake: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance - amount,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeGameStake,
		TransactionMetadata: map[string]any{
			"game": string(game),
			"bet":  amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return fmt.Errorf("failed to record stake: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Settle credits the return amount and accumulates the game into stats.
// Runs in one transaction: either the player is paid and the game counted,
// or neither happened.
func (s *settlementService) Settle(ctx context.Context, userID int64, game models.GameType, bet, returnAmount, profit int64) error {
	if returnAmount < 0 {
		return fmt.Errorf("return amount cannot be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("settle for user %d: %w", userID, ErrUserNotFound)
	}

	if returnAmount > 0 {
		if err := uow.UserRepository().AddBalance(ctx, userID, returnAmount); err != nil {
			return fmt.Errorf("failed to credit payout: %w", err)
		}

		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   user.Balance,
			BalanceAfter:    user.Balance + returnAmount,
			ChangeAmount:    returnAmount,
			TransactionType: models.TransactionTypeGamePayout,
			TransactionMetadata: map[string]any{
				"game":   string(game),
				"bet":    bet,
				"profit": profit,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return fmt.Errorf("failed to record payout: %w", err)
		}
	}

	if err := uow.StatsRepository().UpdateStats(ctx, userID, game, bet, profit); err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}

	uow.EventBus().Publish(events.GameSettledEvent{
		UserID:   userID,
		GameType: game,
		Bet:      bet,
		Profit:   profit,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Refund returns a stake without touching stats
func (s *settlementService) Refund(ctx context.Context, userID int64, game models.GameType, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("refund must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("refund for user %d: %w", userID, ErrUserNotFound)
	}

	if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
		return fmt.Errorf("failed to credit refund: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance + amount,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeGameRefund,
		TransactionMetadata: map[string]any{
			"game": string(game),
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return fmt.Errorf("failed to record refund: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Balance reports the user's balance, creating the row on first access
func (s *settlementService) Balance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := ensureUser(ctx, uow, userID, s.config.StartingBalance)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user.Balance, nil
}
