package session

import (
	"context"
	"errors"
	"testing"

	"doghouse/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDice(t *testing.T, balance, bet int64) (*DiceSession, *Manager, *memorySettler) {
	t.Helper()
	m, settler := newTestManager(map[int64]int64{1: balance})
	s, err := m.StartDice(context.Background(), 1, "chan", bet)
	require.NoError(t, err)
	return s, m, settler
}

func TestDice_PickSettlesOnce(t *testing.T) {
	s, m, settler := startDice(t, 1000, 100)
	ctx := context.Background()

	result, err := s.Pick(ctx, game.SmallBet{})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Conservation holds whatever the roll was
	assert.Equal(t, int64(1000+result.Profit), settler.balance(1))
	assert.Equal(t, 1, settler.settleCount(1))

	_, active := m.ActiveGame(1)
	assert.False(t, active)

	// A second pick is rejected
	_, err = s.Pick(ctx, game.LargeBet{})
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestDice_TimeoutRefunds(t *testing.T) {
	s, m, settler := startDice(t, 1000, 100)

	s.onTimeout()

	assert.Equal(t, int64(1000), settler.balance(1))
	assert.Equal(t, 0, settler.settleCount(1))
	_, active := m.ActiveGame(1)
	assert.False(t, active)

	// A pick after the timeout is rejected, and a second timer firing is
	// a no-op
	_, err := s.Pick(context.Background(), game.SmallBet{})
	assert.ErrorIs(t, err, ErrStateConflict)
	s.onTimeout()
	assert.Equal(t, int64(1000), settler.balance(1))
}

func TestDice_SettlementFailureRefundsStake(t *testing.T) {
	m, settler := newFailingManager(map[int64]int64{1: 1000}, errors.New("storage unavailable"))
	ctx := context.Background()

	s, err := m.StartDice(ctx, 1, "chan", 100)
	require.NoError(t, err)

	// Whatever the roll, a failed settle write must not come back as a
	// clean win or loss
	_, err = s.Pick(ctx, game.SmallBet{})
	require.ErrorIs(t, err, ErrSettlementFailed)

	result := s.Result()
	require.NotNil(t, result)
	assert.False(t, result.Won)
	assert.Equal(t, int64(0), result.Profit)

	// The stake was compensated, not silently lost
	assert.Equal(t, int64(1000), settler.balance(1))
	_, active := m.ActiveGame(1)
	assert.False(t, active)
}

func TestDice_InvalidBetsRejected(t *testing.T) {
	s, _, settler := startDice(t, 1000, 100)
	ctx := context.Background()

	_, err := s.Pick(ctx, game.SpecificTripleBet{Face: 7})
	assert.Error(t, err)
	_, err = s.Pick(ctx, game.TwoDiceComboBet{A: 3, B: 3})
	assert.Error(t, err)
	_, err = s.Pick(ctx, game.ThreeDiceExactBet{Faces: [3]int{0, 1, 2}})
	assert.Error(t, err)

	// Rejections never settle the stake
	assert.Equal(t, int64(900), settler.balance(1))
	assert.Nil(t, s.Result())
}
