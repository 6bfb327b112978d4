package session

import (
	"context"

	"doghouse/models"
)

// Notifier renders game state to the outside world. Implementations are
// best effort: sessions log delivery failures and keep playing, the
// in-memory state stays authoritative.
type Notifier interface {
	// Send posts a message to a channel and returns its handle
	Send(channelID, content string) (messageID string, err error)

	// Edit rewrites a previously sent message
	Edit(channelID, messageID, content string) error
}

// Settler is the single money-moving dependency of every session. The
// settlement service satisfies it.
type Settler interface {
	PlaceStake(ctx context.Context, userID int64, game models.GameType, amount int64) error
	Settle(ctx context.Context, userID int64, game models.GameType, bet, returnAmount, profit int64) error
	Refund(ctx context.Context, userID int64, game models.GameType, amount int64) error
}
