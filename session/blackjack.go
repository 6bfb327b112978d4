package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"doghouse/game"
	"doghouse/models"
)

const blackjackTimeout = 60 * time.Second

// BlackjackResult describes a finished blackjack game
type BlackjackResult struct {
	Outcome     string
	PlayerTotal int
	DealerTotal int
	Stake       int64
	Profit      int64
}

// BlackjackSession is one user's blackjack game. All mutation happens under
// the session lock; the timeout timer takes the same lock and backs off if
// the game already settled.
type BlackjackSession struct {
	mu      sync.Mutex
	manager *Manager

	userID    int64
	channelID string
	messageID string

	bet     int64
	stake   int64
	doubled bool

	shoe       *game.Shoe
	playerHand []game.Card
	dealerHand []game.Card

	finalized bool
	result    *BlackjackResult
	timer     *time.Timer
}

func newBlackjackSession(ctx context.Context, m *Manager, userID int64, channelID string, bet int64, shoe *game.Shoe) (*BlackjackSession, error) {
	s := &BlackjackSession{
		manager:   m,
		userID:    userID,
		channelID: channelID,
		bet:       bet,
		stake:     bet,
		shoe:      shoe,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.playerHand = []game.Card{s.shoe.Draw(), s.shoe.Draw()}
	s.dealerHand = []game.Card{s.shoe.Draw(), s.shoe.Draw()}

	s.messageID = m.notify(channelID, s.renderLocked(false))

	playerNatural := game.IsNatural(s.playerHand)
	dealerNatural := game.IsNatural(s.dealerHand)

	var err error
	switch {
	case playerNatural && dealerNatural:
		err = s.settleLocked(ctx, "push", s.stake, 0)
	case playerNatural:
		profit := s.bet * 3 / 2
		err = s.settleLocked(ctx, "blackjack", s.stake+profit, profit)
	case dealerNatural:
		err = s.settleLocked(ctx, "dealer blackjack", 0, -s.stake)
	default:
		s.timer = time.AfterFunc(blackjackTimeout, s.onTimeout)
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Hit draws one card. A bust or a five-card hand settles immediately.
func (s *BlackjackSession) Hit(ctx context.Context) (*BlackjackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrStateConflict
	}
	s.resetTimerLocked()

	s.playerHand = append(s.playerHand, s.shoe.Draw())

	if game.BlackjackHandValue(s.playerHand) > 21 {
		err := s.settleLocked(ctx, "bust", 0, -s.stake)
		return s.result, err
	}
	if game.IsFiveCardCharlie(s.playerHand) {
		profit := 2 * s.stake
		err := s.settleLocked(ctx, "five-card charlie", s.stake+profit, profit)
		return s.result, err
	}

	s.manager.edit(s.channelID, s.messageID, s.renderLocked(false))
	return nil, nil
}

// Stand ends the player's turn and plays out the dealer
func (s *BlackjackSession) Stand(ctx context.Context) (*BlackjackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrStateConflict
	}
	err := s.standLocked(ctx)
	return s.result, err
}

// Double doubles the stake, draws exactly one card and forces a stand. Only
// allowed on the opening two cards and only if the extra stake clears.
func (s *BlackjackSession) Double(ctx context.Context) (*BlackjackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return nil, ErrStateConflict
	}
	if len(s.playerHand) != 2 || s.doubled {
		return nil, ErrStateConflict
	}
	s.resetTimerLocked()

	// The extra stake must clear before anything changes. Insufficient funds
	// leaves the game exactly as it was.
	if err := s.manager.settler.PlaceStake(ctx, s.userID, models.GameTypeBlackjack, s.bet); err != nil {
		return nil, err
	}
	s.doubled = true
	s.stake += s.bet

	s.playerHand = append(s.playerHand, s.shoe.Draw())
	if game.BlackjackHandValue(s.playerHand) > 21 {
		err := s.settleLocked(ctx, "bust", 0, -s.stake)
		return s.result, err
	}

	err := s.standLocked(ctx)
	return s.result, err
}

// Result returns the settled outcome, or nil while the game is live
func (s *BlackjackSession) Result() *BlackjackResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Hands returns copies of the current hands
func (s *BlackjackSession) Hands() (player, dealer []game.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.Card(nil), s.playerHand...), append([]game.Card(nil), s.dealerHand...)
}

func (s *BlackjackSession) standLocked(ctx context.Context) error {
	s.dealerHand = game.DealerPlay(s.shoe, s.dealerHand)

	playerTotal := game.BlackjackHandValue(s.playerHand)
	dealerTotal := game.BlackjackHandValue(s.dealerHand)

	switch game.CompareBlackjackHands(playerTotal, dealerTotal) {
	case game.BlackjackWin:
		return s.settleLocked(ctx, "win", 2*s.stake, s.stake)
	case game.BlackjackPush:
		return s.settleLocked(ctx, "push", s.stake, 0)
	default:
		return s.settleLocked(ctx, "lose", 0, -s.stake)
	}
}

// settleLocked pays out, releases the registry slot and marks the session
// finished. Runs at most once; later calls are no-ops via the finalized flag.
// A storage failure refunds the stake and aborts the game instead of leaving
// the debit hanging.
func (s *BlackjackSession) settleLocked(ctx context.Context, outcome string, returnAmount, profit int64) error {
	if s.finalized {
		return nil
	}
	s.finalized = true
	if s.timer != nil {
		s.timer.Stop()
	}

	var settleErr error
	if err := s.manager.settler.Settle(ctx, s.userID, models.GameTypeBlackjack, s.stake, returnAmount, profit); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id": s.userID,
			"outcome": outcome,
		}).Error("Failed to settle blackjack game")

		if refundErr := s.manager.settler.Refund(ctx, s.userID, models.GameTypeBlackjack, s.stake); refundErr != nil {
			log.WithError(refundErr).WithField("user_id", s.userID).Error("Failed to refund stake after settlement failure")
		}
		outcome = "aborted"
		profit = 0
		settleErr = fmt.Errorf("%v: %w", err, ErrSettlementFailed)
	}

	s.result = &BlackjackResult{
		Outcome:     outcome,
		PlayerTotal: game.BlackjackHandValue(s.playerHand),
		DealerTotal: game.BlackjackHandValue(s.dealerHand),
		Stake:       s.stake,
		Profit:      profit,
	}

	s.manager.releaseGame(s.userID)
	s.manager.edit(s.channelID, s.messageID, s.renderLocked(true))
	return settleErr
}

func (s *BlackjackSession) resetTimerLocked() {
	if s.timer != nil {
		s.timer.Reset(blackjackTimeout)
	}
}

// onTimeout auto-stands an abandoned game
func (s *BlackjackSession) onTimeout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return
	}
	s.standLocked(context.Background())
}

func (s *BlackjackSession) renderLocked(showDealer bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Blackjack | stake %d\n", s.stake)
	fmt.Fprintf(&b, "Player: %s (%d)\n", handString(s.playerHand), game.BlackjackHandValue(s.playerHand))
	if showDealer {
		fmt.Fprintf(&b, "Dealer: %s (%d)\n", handString(s.dealerHand), game.BlackjackHandValue(s.dealerHand))
	} else {
		fmt.Fprintf(&b, "Dealer: %s ??\n", s.dealerHand[0])
	}
	if s.result != nil {
		fmt.Fprintf(&b, "Result: %s (%+d)", s.result.Outcome, s.result.Profit)
	}
	return b.String()
}

func handString(hand []game.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
