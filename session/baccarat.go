package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"doghouse/game"
	"doghouse/models"
)

const (
	bettingTimeout  = 60 * time.Second
	roundEndTimeout = 60 * time.Second
	maxBettors      = 20
	shoeDecks       = 8
	shoeReshuffleAt = 6
)

type roomState string

const (
	stateBetting  roomState = "betting"
	stateDealing  roomState = "dealing"
	stateRoundEnd roomState = "round_end"
	stateClosed   roomState = "closed"
)

type placedBet struct {
	kind   game.BaccaratBetKind
	amount int64
}

// BaccaratRoundResult is one dealt and settled round
type BaccaratRoundResult struct {
	RoundNumber int
	Round       game.BaccaratRound
	Profits     map[int64]int64
}

// BaccaratRoom is a shared baccarat table scoped to one channel and owned by
// a host. The shoe survives across rounds; bets do not. Every mutation runs
// under the room lock, and the timers re-check the room state after taking
// the same lock.
type BaccaratRoom struct {
	mu      sync.Mutex
	manager *Manager

	channelID string
	hostID    int64
	minBet    int64
	messageID string

	shoe  *game.Shoe
	bets  map[int64]placedBet
	round int
	state roomState

	timer *time.Timer
}

func newBaccaratRoom(m *Manager, channelID string, hostID int64, minBet int64) *BaccaratRoom {
	r := &BaccaratRoom{
		manager:   m,
		channelID: channelID,
		hostID:    hostID,
		minBet:    minBet,
		shoe:      game.NewShoe(shoeDecks, shoeReshuffleAt, nil),
		bets:      make(map[int64]placedBet),
		round:     1,
		state:     stateBetting,
	}
	r.messageID = m.notify(channelID, fmt.Sprintf("Baccarat | round 1 | betting open, minimum %d", minBet))
	r.timer = time.AfterFunc(bettingTimeout, r.onBettingTimeout)
	return r
}

// Host returns the room's host
func (r *BaccaratRoom) Host() int64 {
	return r.hostID
}

// PlaceBet places or replaces a user's bet for the current round. Replacing
// refunds the old stake before the new one is debited, so the user is never
// charged for both at once.
func (r *BaccaratRoom) PlaceBet(ctx context.Context, userID int64, kind game.BaccaratBetKind, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateBetting {
		return fmt.Errorf("bets are closed: %w", ErrStateConflict)
	}
	if amount < r.minBet {
		return fmt.Errorf("table minimum is %d: %w", r.minBet, ErrBetTooSmall)
	}

	existing, hasBet := r.bets[userID]
	if !hasBet && len(r.bets) >= maxBettors {
		return ErrRoomFull
	}

	seated := hasBet || userID == r.hostID
	if !seated {
		if err := r.manager.seatUser(userID, r.channelID); err != nil {
			return err
		}
	}

	if hasBet {
		if err := r.manager.settler.Refund(ctx, userID, models.GameTypeBaccarat, existing.amount); err != nil {
			return fmt.Errorf("failed to refund previous bet: %w", err)
		}
		delete(r.bets, userID)
	}

	if err := r.manager.settler.PlaceStake(ctx, userID, models.GameTypeBaccarat, amount); err != nil {
		// The old bet is already refunded; the user simply has no bet now
		if !hasBet && userID != r.hostID {
			r.manager.releaseSeat(userID)
		}
		return err
	}

	r.bets[userID] = placedBet{kind: kind, amount: amount}
	return nil
}

// CancelBet refunds and removes the user's open bet
func (r *BaccaratRoom) CancelBet(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateBetting {
		return fmt.Errorf("bets are closed: %w", ErrStateConflict)
	}
	bet, ok := r.bets[userID]
	if !ok {
		return ErrNoBet
	}

	if err := r.manager.settler.Refund(ctx, userID, models.GameTypeBaccarat, bet.amount); err != nil {
		return fmt.Errorf("failed to refund bet: %w", err)
	}
	delete(r.bets, userID)
	if userID != r.hostID {
		r.manager.releaseSeat(userID)
	}
	return nil
}

// Deal lets the host force the round to deal before the betting deadline
func (r *BaccaratRoom) Deal(ctx context.Context, userID int64) (*BaccaratRoundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID != r.hostID {
		return nil, ErrNotHost
	}
	if r.state != stateBetting {
		return nil, ErrStateConflict
	}
	if len(r.bets) == 0 {
		return nil, fmt.Errorf("no bets placed: %w", ErrStateConflict)
	}
	return r.dealLocked(ctx)
}

// NextRound reopens betting after a dealt round
func (r *BaccaratRoom) NextRound(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID != r.hostID {
		return ErrNotHost
	}
	if r.state != stateRoundEnd {
		return ErrStateConflict
	}

	r.round++
	r.setStateLocked(stateBetting)
	r.timer.Stop()
	r.timer = time.AfterFunc(bettingTimeout, r.onBettingTimeout)
	r.manager.edit(r.channelID, r.messageID,
		fmt.Sprintf("Baccarat | round %d | betting open, minimum %d", r.round, r.minBet))
	return nil
}

// Close shuts the room down. Bets still open in the betting phase are
// refunded in full.
func (r *BaccaratRoom) Close(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID != r.hostID {
		return ErrNotHost
	}
	if r.state == stateClosed {
		return ErrStateConflict
	}
	r.closeLocked(ctx, "closed by host", r.state == stateBetting)
	return nil
}

// Bettors returns how many bets are currently open
func (r *BaccaratRoom) Bettors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bets)
}

// State reports the room's current phase
func (r *BaccaratRoom) State() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.state)
}

// dealLocked plays one round from the shoe and settles every open bet in one
// batch. Bets whose payout fails to write are refunded and reported back with
// zero profit.
func (r *BaccaratRoom) dealLocked(ctx context.Context) (*BaccaratRoundResult, error) {
	r.timer.Stop()
	r.setStateLocked(stateDealing)

	round := game.PlayBaccaratRound(r.shoe)

	result := &BaccaratRoundResult{
		RoundNumber: r.round,
		Round:       round,
		Profits:     make(map[int64]int64, len(r.bets)),
	}

	var settleErrs []error
	for userID, bet := range r.bets {
		returnAmount, profit := game.SettleBaccaratBet(bet.kind, bet.amount, round)
		if err := r.manager.settler.Settle(ctx, userID, models.GameTypeBaccarat, bet.amount, returnAmount, profit); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id": userID,
				"channel": r.channelID,
				"round":   r.round,
			}).Error("Failed to settle baccarat bet")

			if refundErr := r.manager.settler.Refund(ctx, userID, models.GameTypeBaccarat, bet.amount); refundErr != nil {
				log.WithError(refundErr).WithFields(log.Fields{
					"user_id": userID,
					"channel": r.channelID,
				}).Error("Failed to refund bet after settlement failure")
			}
			settleErrs = append(settleErrs, err)
			result.Profits[userID] = 0
			continue
		}
		result.Profits[userID] = profit
	}

	// Bets are gone after settlement; non-host seats free up between rounds
	for userID := range r.bets {
		if userID != r.hostID {
			r.manager.releaseSeat(userID)
		}
	}
	r.bets = make(map[int64]placedBet)

	r.setStateLocked(stateRoundEnd)
	r.timer = time.AfterFunc(roundEndTimeout, r.onRoundEndTimeout)

	r.manager.edit(r.channelID, r.messageID,
		fmt.Sprintf("Baccarat | round %d | player %d banker %d | %s",
			r.round, round.PlayerTotal, round.BankerTotal, winnerString(round.Winner)))

	if len(settleErrs) > 0 {
		return result, fmt.Errorf("%v: %w", errors.Join(settleErrs...), ErrSettlementFailed)
	}
	return result, nil
}

// closeLocked tears the room down exactly once
func (r *BaccaratRoom) closeLocked(ctx context.Context, reason string, refund bool) {
	if r.state == stateClosed {
		return
	}
	r.timer.Stop()

	if refund {
		for userID, bet := range r.bets {
			if err := r.manager.settler.Refund(ctx, userID, models.GameTypeBaccarat, bet.amount); err != nil {
				log.WithError(err).WithFields(log.Fields{
					"user_id": userID,
					"channel": r.channelID,
				}).Error("Failed to refund bet on room close")
			}
		}
	}

	for userID := range r.bets {
		if userID != r.hostID {
			r.manager.releaseSeat(userID)
		}
	}
	r.bets = make(map[int64]placedBet)

	r.setStateLocked(stateClosed)
	r.manager.releaseSeat(r.hostID)
	r.manager.removeRoom(r.channelID)
	r.manager.edit(r.channelID, r.messageID, fmt.Sprintf("Baccarat | room %s", reason))
}

func (r *BaccaratRoom) setStateLocked(next roomState) {
	old := r.state
	r.state = next
	r.manager.publishRoomState(r, old, next)
}

// onBettingTimeout deals the round if anyone bet, otherwise closes the room
func (r *BaccaratRoom) onBettingTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateBetting {
		return
	}
	if len(r.bets) == 0 {
		r.closeLocked(context.Background(), "closed, no bets placed", false)
		return
	}
	r.dealLocked(context.Background())
}

// onRoundEndTimeout closes a room the host walked away from. Bets were
// already settled when the round dealt, so there is nothing to refund.
func (r *BaccaratRoom) onRoundEndTimeout() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateRoundEnd {
		return
	}
	r.closeLocked(context.Background(), "closed, host inactive", false)
}

func (r *BaccaratRoom) stopTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

func winnerString(w game.BaccaratWinner) string {
	switch w {
	case game.PlayerWins:
		return "player wins"
	case game.BankerWins:
		return "banker wins"
	default:
		return "tie"
	}
}
