package service

import (
	"context"
	"fmt"

	"doghouse/events"
	"doghouse/models"
)

// RecordBalanceChange records a balance history entry and emits the matching
// events. This is the single entry point for all balance changes.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed to the main bus only after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		TransactionType: history.TransactionType,
		ChangeAmount:    history.ChangeAmount,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		username, _ := history.TransactionMetadata["username"].(string)
		uow.EventBus().Publish(events.UserCreatedEvent{
			UserID:         history.UserID,
			Username:       username,
			InitialBalance: history.BalanceAfter,
		})
	}

	return nil
}

// ensureUser fetches the user inside the current unit of work, creating the
// row with the starting balance on first access.
func ensureUser(ctx context.Context, uow UnitOfWork, userID int64, startingBalance int64) (*models.User, error) {
	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user, err = uow.UserRepository().Create(ctx, userID, "", startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   0,
		BalanceAfter:    startingBalance,
		ChangeAmount:    startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": user.Username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	return user, nil
}
