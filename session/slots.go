package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"doghouse/game"
	"doghouse/models"
)

const slotsTimeout = 30 * time.Second

// SpinResult describes one settled spin
type SpinResult struct {
	Symbols       [3]game.SlotSymbol
	Profit        int64
	SessionProfit int64
}

// SlotsSession is a continuous slots game. The first spin's stake is debited
// when the session opens; every further spin debits and settles on its own,
// so closing the session never moves money. An opening stake left unspun is
// forfeited on close.
type SlotsSession struct {
	mu      sync.Mutex
	manager *Manager

	userID    int64
	channelID string
	messageID string
	bet       int64

	rng           *rand.Rand
	staked        bool
	sessionProfit int64
	spins         int

	closed bool
	timer  *time.Timer
}

func newSlotsSession(m *Manager, userID int64, channelID string, bet int64) *SlotsSession {
	s := &SlotsSession{
		manager:   m,
		userID:    userID,
		channelID: channelID,
		bet:       bet,
		staked:    true,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.messageID = m.notify(channelID, fmt.Sprintf("Slots | stake %d per spin", bet))
	s.timer = time.AfterFunc(slotsTimeout, s.onTimeout)
	return s
}

// Spin draws three symbols and settles the spin in full
func (s *SlotsSession) Spin(ctx context.Context) (*SpinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateConflict
	}
	s.timer.Reset(slotsTimeout)

	// The opening stake covers the first spin only
	if !s.staked {
		if err := s.manager.settler.PlaceStake(ctx, s.userID, models.GameTypeSlots, s.bet); err != nil {
			return nil, err
		}
	}
	s.staked = false

	symbols := game.SpinSlots(s.rng)
	returnAmount, profit := game.SettleSlots(symbols, s.bet)

	if err := s.manager.settler.Settle(ctx, s.userID, models.GameTypeSlots, s.bet, returnAmount, profit); err != nil {
		log.WithError(err).WithField("user_id", s.userID).Error("Failed to settle slots spin")

		// The spin's stake is already debited; refund it and void the spin
		if refundErr := s.manager.settler.Refund(ctx, s.userID, models.GameTypeSlots, s.bet); refundErr != nil {
			log.WithError(refundErr).WithField("user_id", s.userID).Error("Failed to refund slots stake after settlement failure")
		}
		return nil, fmt.Errorf("%v: %w", err, ErrSettlementFailed)
	}

	s.spins++
	s.sessionProfit += profit

	result := &SpinResult{
		Symbols:       symbols,
		Profit:        profit,
		SessionProfit: s.sessionProfit,
	}

	s.manager.edit(s.channelID, s.messageID,
		fmt.Sprintf("Slots | %s %s %s | spin %+d | session %+d",
			symbols[0], symbols[1], symbols[2], profit, s.sessionProfit))

	return result, nil
}

// Stop closes the session. Every spin is already settled, nothing is owed.
func (s *SlotsSession) Stop() (sessionProfit int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStateConflict
	}
	s.closeLocked("stopped")
	return s.sessionProfit, nil
}

// Closed reports whether the session was stopped or timed out
func (s *SlotsSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SessionProfit returns the cumulative profit so far
func (s *SlotsSession) SessionProfit() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionProfit
}

func (s *SlotsSession) onTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closeLocked("timed out")
}

func (s *SlotsSession) closeLocked(reason string) {
	s.closed = true
	s.timer.Stop()

	// An opening stake left unspun is forfeited

	s.manager.releaseGame(s.userID)
	s.manager.edit(s.channelID, s.messageID,
		fmt.Sprintf("Slots | %s after %d spins | session %+d", reason, s.spins, s.sessionProfit))
}
