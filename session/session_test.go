package session

import (
	"context"
	"sync"

	"doghouse/config"
	"doghouse/models"
	"doghouse/service"
)

// memorySettler is an in-memory stand-in for the settlement service. It
// keeps real balances so the tests can check conservation directly.
type memorySettler struct {
	mu       sync.Mutex
	balances map[int64]int64
	settles  map[int64]int
}

func newMemorySettler(balances map[int64]int64) *memorySettler {
	return &memorySettler{
		balances: balances,
		settles:  make(map[int64]int),
	}
}

func (s *memorySettler) PlaceStake(ctx context.Context, userID int64, game models.GameType, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[userID] < amount {
		return service.ErrInsufficientFunds
	}
	s.balances[userID] -= amount
	return nil
}

func (s *memorySettler) Settle(ctx context.Context, userID int64, game models.GameType, bet, returnAmount, profit int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] += returnAmount
	s.settles[userID]++
	return nil
}

func (s *memorySettler) Refund(ctx context.Context, userID int64, game models.GameType, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] += amount
	return nil
}

func (s *memorySettler) balance(userID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID]
}

func (s *memorySettler) settleCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settles[userID]
}

// failingSettler fails every Settle while still applying stakes and refunds,
// mimicking storage going down mid-game
type failingSettler struct {
	*memorySettler
	settleErr error
}

func (s *failingSettler) Settle(ctx context.Context, userID int64, game models.GameType, bet, returnAmount, profit int64) error {
	if s.settleErr != nil {
		return s.settleErr
	}
	return s.memorySettler.Settle(ctx, userID, game, bet, returnAmount, profit)
}

// fakeNotifier records sends and edits
type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
	edits []string
}

func (n *fakeNotifier) Send(channelID, content string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, content)
	return "msg-1", nil
}

func (n *fakeNotifier) Edit(channelID, messageID, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.edits = append(n.edits, content)
	return nil
}

func newTestManager(balances map[int64]int64) (*Manager, *memorySettler) {
	settler := newMemorySettler(balances)
	cfg := &config.Config{
		StartingBalance: 1000,
		MinBet:          10,
		BaccaratMinBet:  50,
	}
	return NewManager(settler, &fakeNotifier{}, nil, cfg), settler
}

func newFailingManager(balances map[int64]int64, settleErr error) (*Manager, *failingSettler) {
	settler := &failingSettler{memorySettler: newMemorySettler(balances), settleErr: settleErr}
	cfg := &config.Config{
		StartingBalance: 1000,
		MinBet:          10,
		BaccaratMinBet:  50,
	}
	return NewManager(settler, &fakeNotifier{}, nil, cfg), settler
}
