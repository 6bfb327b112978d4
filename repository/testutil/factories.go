package testutil

import (
	"time"

	"doghouse/models"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(userID int64, username string) *models.User {
	now := time.Now()
	return &models.User{
		UserID:    userID,
		Username:  username,
		Balance:   1000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(userID int64, username string, balance int64) *models.User {
	user := CreateTestUser(userID, username)
	user.Balance = balance
	return user
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   1000,
		BalanceAfter:    900,
		ChangeAmount:    -100,
		TransactionType: transactionType,
		TransactionMetadata: map[string]interface{}{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}
