package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSlots(t *testing.T, balance, bet int64) (*SlotsSession, *Manager, *memorySettler) {
	t.Helper()
	m, settler := newTestManager(map[int64]int64{1: balance})
	s, err := m.StartSlots(context.Background(), 1, "chan", bet)
	require.NoError(t, err)
	return s, m, settler
}

func TestSlots_SpinsConserveBalance(t *testing.T) {
	s, _, settler := startSlots(t, 10000, 100)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := s.Spin(ctx)
		require.NoError(t, err)
	}

	profit, err := s.Stop()
	require.NoError(t, err)

	// Every spin is fully settled, so the balance moved by exactly the
	// cumulative session profit
	assert.Equal(t, int64(10000+profit), settler.balance(1))
	assert.Equal(t, 10, settler.settleCount(1))
}

func TestSlots_StopBeforeFirstSpinForfeitsStake(t *testing.T) {
	s, m, settler := startSlots(t, 1000, 100)

	_, err := s.Stop()
	require.NoError(t, err)

	// The opening stake stays with the house when no spin happened
	assert.Equal(t, int64(900), settler.balance(1))
	assert.Equal(t, 0, settler.settleCount(1))
	assert.True(t, s.Closed())
	_, active := m.ActiveGame(1)
	assert.False(t, active)
}

func TestSlots_TimeoutBeforeFirstSpinForfeitsStake(t *testing.T) {
	s, m, settler := startSlots(t, 1000, 100)

	s.onTimeout()

	assert.Equal(t, int64(900), settler.balance(1))
	_, active := m.ActiveGame(1)
	assert.False(t, active)
}

func TestSlots_ClosedSessionRejectsSpins(t *testing.T) {
	s, _, settler := startSlots(t, 1000, 100)
	ctx := context.Background()

	_, err := s.Spin(ctx)
	require.NoError(t, err)

	_, err = s.Stop()
	require.NoError(t, err)

	_, err = s.Spin(ctx)
	assert.ErrorIs(t, err, ErrStateConflict)

	_, err = s.Stop()
	assert.ErrorIs(t, err, ErrStateConflict)

	// Timer firing after close is a no-op
	before := settler.balance(1)
	s.onTimeout()
	assert.Equal(t, before, settler.balance(1))
}

func TestSlots_TimeoutClosesWithoutRefundAfterSpin(t *testing.T) {
	s, m, settler := startSlots(t, 1000, 100)

	_, err := s.Spin(context.Background())
	require.NoError(t, err)
	after := settler.balance(1)

	s.onTimeout()

	// Nothing owed: the spin was already settled
	assert.Equal(t, after, settler.balance(1))
	_, active := m.ActiveGame(1)
	assert.False(t, active)
}

func TestSlots_SettlementFailureRefundsSpinStake(t *testing.T) {
	m, settler := newFailingManager(map[int64]int64{1: 1000}, errors.New("storage unavailable"))
	s, err := m.StartSlots(context.Background(), 1, "chan", 100)
	require.NoError(t, err)

	_, err = s.Spin(context.Background())
	require.ErrorIs(t, err, ErrSettlementFailed)

	// The spin's stake came back and the voided spin counts for nothing
	assert.Equal(t, int64(1000), settler.balance(1))
	assert.Equal(t, int64(0), s.SessionProfit())
	assert.False(t, s.Closed())
}

func TestSlots_InsufficientFundsStopsFurtherSpins(t *testing.T) {
	s, _, settler := startSlots(t, 100, 100)
	ctx := context.Background()

	// First spin is covered by the opening stake
	first, err := s.Spin(ctx)
	require.NoError(t, err)

	if settler.balance(1) < 100 {
		_, err = s.Spin(ctx)
		assert.Error(t, err)
		// The failed spin changes nothing
		assert.Equal(t, first.SessionProfit, s.SessionProfit())
	}
}
