package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"doghouse/config"
	"doghouse/models"
)

const workCommand = "work"

// userService implements the UserService interface
type userService struct {
	uowFactory UnitOfWorkFactory
	config     *config.Config
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory: uowFactory,
		config:     cfg,
	}
}

// GetOrCreateUser retrieves an existing user or creates a new one with the
// configured starting balance
func (s *userService) GetOrCreateUser(ctx context.Context, userID int64, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if user == nil {
		user, err = uow.UserRepository().Create(ctx, userID, username, s.config.StartingBalance)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   0,
			BalanceAfter:    s.config.StartingBalance,
			ChangeAmount:    s.config.StartingBalance,
			TransactionType: models.TransactionTypeInitial,
			TransactionMetadata: map[string]any{
				"username": username,
			},
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, fmt.Errorf("failed to record initial balance: %w", err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// TransferBetweenUsers moves amount from sender to recipient atomically
func (s *userService) TransferBetweenUsers(ctx context.Context, fromUserID, toUserID int64, amount int64, toUsername string) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("cannot transfer to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	fromUser, err := uow.UserRepository().GetByID(ctx, fromUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender: %w", err)
	}
	if fromUser == nil {
		return nil, fmt.Errorf("sender: %w", ErrUserNotFound)
	}
	if fromUser.Balance < amount {
		return nil, fmt.Errorf("have %d, need %d: %w", fromUser.Balance, amount, ErrInsufficientFunds)
	}

	// Recipient is created lazily, same as any first balance access
	toUser, err := ensureUser(ctx, uow, toUserID, s.config.StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}

	if err := uow.UserRepository().DeductBalance(ctx, fromUserID, amount); err != nil {
		return nil, fmt.Errorf("failed to debit sender: %w", err)
	}
	if err := uow.UserRepository().AddBalance(ctx, toUserID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}

	fromHistory := &models.BalanceHistory{
		UserID:          fromUserID,
		BalanceBefore:   fromUser.Balance,
		BalanceAfter:    fromUser.Balance - amount,
		ChangeAmount:    -amount,
		TransactionType: models.TransactionTypeTransferOut,
		TransactionMetadata: map[string]any{
			"recipient_id": toUserID,
			"amount":       amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, fromHistory); err != nil {
		return nil, fmt.Errorf("failed to record sender history: %w", err)
	}

	toHistory := &models.BalanceHistory{
		UserID:          toUserID,
		BalanceBefore:   toUser.Balance,
		BalanceAfter:    toUser.Balance + amount,
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		TransactionMetadata: map[string]any{
			"sender_id": fromUserID,
			"amount":    amount,
		},
	}
	if err := RecordBalanceChange(ctx, uow, toHistory); err != nil {
		return nil, fmt.Errorf("failed to record recipient history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	name := toUsername
	if name == "" {
		name = toUser.Username
	}
	return &models.TransferResult{
		Amount:        amount,
		RecipientName: name,
		NewBalance:    fromUser.Balance - amount,
	}, nil
}

// Work grants hourly income, subject to the work cooldown
func (s *userService) Work(ctx context.Context, userID int64) (*models.WorkResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	cooldown, err := uow.CooldownRepository().Get(ctx, userID, workCommand)
	if err != nil {
		return nil, fmt.Errorf("failed to check work cooldown: %w", err)
	}
	if cooldown != nil {
		remaining := time.Until(cooldown.ExpiresAt).Round(time.Second)
		return nil, fmt.Errorf("try again in %s: %w", remaining, ErrOnCooldown)
	}

	user, err := ensureUser(ctx, uow, userID, s.config.StartingBalance)
	if err != nil {
		return nil, err
	}

	income := s.config.WorkBaseIncome + int64(rand.Intn(901)+100)

	if err := uow.UserRepository().AddBalance(ctx, userID, income); err != nil {
		return nil, fmt.Errorf("failed to credit income: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance + income,
		ChangeAmount:    income,
		TransactionType: models.TransactionTypeWorkIncome,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record income: %w", err)
	}

	cooldownDuration := time.Duration(s.config.WorkCooldownSecs) * time.Second
	if err := uow.CooldownRepository().Set(ctx, userID, workCommand, cooldownDuration); err != nil {
		return nil, fmt.Errorf("failed to set work cooldown: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WorkResult{
		Income:     income,
		NewBalance: user.Balance + income,
	}, nil
}

// SetBalance overwrites a user's balance (admin operation)
func (s *userService) SetBalance(ctx context.Context, userID int64, amount int64) (*models.User, error) {
	if amount < 0 {
		return nil, fmt.Errorf("balance cannot be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := ensureUser(ctx, uow, userID, s.config.StartingBalance)
	if err != nil {
		return nil, err
	}

	if err := uow.UserRepository().SetBalance(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to set balance: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    amount,
		ChangeAmount:    amount - user.Balance,
		TransactionType: models.TransactionTypeAdminSet,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Balance = amount
	return user, nil
}
