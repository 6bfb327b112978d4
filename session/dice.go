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

const diceTimeout = 30 * time.Second

// DiceResult describes a resolved dice game
type DiceResult struct {
	Roll   game.DiceRoll
	Won    bool
	Stake  int64
	Profit int64
}

// DiceSession is a single-shot dice game. The stake is debited when the
// session opens; the first bet-type pick rolls and settles. Walking away
// refunds the stake at the timeout.
type DiceSession struct {
	mu      sync.Mutex
	manager *Manager

	userID    int64
	channelID string
	messageID string
	bet       int64

	rng       *rand.Rand
	finalized bool
	result    *DiceResult
	timer     *time.Timer
}

func newDiceSession(m *Manager, userID int64, channelID string, bet int64) *DiceSession {
	s := &DiceSession{
		manager:   m,
		userID:    userID,
		channelID: channelID,
		bet:       bet,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.messageID = m.notify(channelID, fmt.Sprintf("Dice | stake %d | pick your bet", bet))
	s.timer = time.AfterFunc(diceTimeout, s.onTimeout)
	return s
}

// Pick locks in a bet type, rolls the dice and settles in one step
func (s *DiceSession) Pick(ctx context.Context, bet game.DiceBet) (*DiceResult, error) {
	if err := validateDiceBet(bet); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrStateConflict
	}
	s.finalized = true
	s.timer.Stop()

	roll := game.RollDice(s.rng)
	returnAmount, profit := game.SettleDiceBet(bet, roll, s.bet)

	if err := s.manager.settler.Settle(ctx, s.userID, models.GameTypeGuessSize, s.bet, returnAmount, profit); err != nil {
		log.WithError(err).WithField("user_id", s.userID).Error("Failed to settle dice game")

		// The opening debit already went through; give the stake back
		// rather than swallow it with the failed payout
		if refundErr := s.manager.settler.Refund(ctx, s.userID, models.GameTypeGuessSize, s.bet); refundErr != nil {
			log.WithError(refundErr).WithField("user_id", s.userID).Error("Failed to refund dice stake after settlement failure")
		}

		s.result = &DiceResult{Roll: roll, Won: false, Stake: s.bet, Profit: 0}
		s.manager.releaseGame(s.userID)
		s.manager.edit(s.channelID, s.messageID, "Dice | settlement failed, stake refunded")
		return s.result, fmt.Errorf("%v: %w", err, ErrSettlementFailed)
	}

	s.result = &DiceResult{
		Roll:   roll,
		Won:    profit > 0,
		Stake:  s.bet,
		Profit: profit,
	}

	s.manager.releaseGame(s.userID)
	s.manager.edit(s.channelID, s.messageID,
		fmt.Sprintf("Dice | rolled %d %d %d | %+d", roll[0], roll[1], roll[2], profit))

	return s.result, nil
}

// Result returns the settled outcome, or nil while the pick is pending
func (s *DiceSession) Result() *DiceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// onTimeout refunds the stake if no bet type was ever picked
func (s *DiceSession) onTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return
	}
	s.finalized = true

	ctx := context.Background()
	if err := s.manager.settler.Refund(ctx, s.userID, models.GameTypeGuessSize, s.bet); err != nil {
		log.WithError(err).WithField("user_id", s.userID).Error("Failed to refund dice stake on timeout")
	}

	s.manager.releaseGame(s.userID)
	s.manager.edit(s.channelID, s.messageID, "Dice | timed out, stake refunded")
}

// validateDiceBet rejects variants carrying impossible fields
func validateDiceBet(bet game.DiceBet) error {
	switch b := bet.(type) {
	case game.SpecificTripleBet:
		if b.Face < 1 || b.Face > 6 {
			return fmt.Errorf("face must be 1-6")
		}
	case game.SpecificDoubleBet:
		if b.Face < 1 || b.Face > 6 {
			return fmt.Errorf("face must be 1-6")
		}
	case game.TwoDiceComboBet:
		if b.A < 1 || b.A > 6 || b.B < 1 || b.B > 6 {
			return fmt.Errorf("faces must be 1-6")
		}
		if b.A == b.B {
			return fmt.Errorf("combo faces must differ")
		}
	case game.ThreeDiceExactBet:
		for _, f := range b.Faces {
			if f < 1 || f > 6 {
				return fmt.Errorf("faces must be 1-6")
			}
		}
	}
	return nil
}
