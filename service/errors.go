package service

import "errors"

var (
	// ErrInsufficientFunds is returned when a debit would overdraw a balance.
	// Nothing is mutated when this is returned.
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrUserNotFound is returned when an operation targets a missing user
	ErrUserNotFound = errors.New("user not found")

	// ErrOnCooldown is returned when a rate-limited command is retried early
	ErrOnCooldown = errors.New("command is on cooldown")
)
