package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doghouse/models"
	"doghouse/repository/testutil"
)

func TestStatsRepository_UpdateStats(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	users := NewUserRepository(testDB.DB)
	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	_, err := users.Create(ctx, 100, "alice", 1000)
	require.NoError(t, err)

	t.Run("no games yet returns nil", func(t *testing.T) {
		total, err := repo.GetTotal(ctx, 100)
		require.NoError(t, err)
		assert.Nil(t, total)
	})

	t.Run("accumulates wins losses and pushes", func(t *testing.T) {
		// A win, a loss and a push across two games
		require.NoError(t, repo.UpdateStats(ctx, 100, models.GameTypeBlackjack, 100, 100))
		require.NoError(t, repo.UpdateStats(ctx, 100, models.GameTypeBlackjack, 100, 0))
		require.NoError(t, repo.UpdateStats(ctx, 100, models.GameTypeSlots, 50, -50))

		total, err := repo.GetTotal(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, total)
		assert.Equal(t, int64(250), total.TotalBet)
		assert.Equal(t, int64(1), total.Wins)
		assert.Equal(t, int64(1), total.Losses)
		assert.Equal(t, int64(50), total.Profit)
		assert.Equal(t, int64(3), total.Games)

		perGame, err := repo.GetPerGame(ctx, 100)
		require.NoError(t, err)
		require.Len(t, perGame, 2)

		blackjack := perGame[models.GameTypeBlackjack]
		require.NotNil(t, blackjack)
		assert.Equal(t, int64(2), blackjack.Games)
		assert.Equal(t, int64(1), blackjack.Wins)
		assert.Equal(t, int64(0), blackjack.Losses)

		slots := perGame[models.GameTypeSlots]
		require.NotNil(t, slots)
		assert.Equal(t, int64(1), slots.Losses)
		assert.Equal(t, int64(-50), slots.Profit)
	})
}

func TestStatsRepository_GetTopByProfit(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	users := NewUserRepository(testDB.DB)
	repo := NewStatsRepository(testDB.DB)
	ctx := context.Background()

	for id, profit := range map[int64]int64{200: 500, 201: -300, 202: 1500} {
		_, err := users.Create(ctx, id, "player", 1000)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStats(ctx, id, models.GameTypeBaccarat, 100, profit))
	}

	entries, err := repo.GetTopByProfit(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(202), entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(1500), entries[0].Profit)

	assert.Equal(t, int64(200), entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestCooldownRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	users := NewUserRepository(testDB.DB)
	repo := NewCooldownRepository(testDB.DB)
	ctx := context.Background()

	_, err := users.Create(ctx, 300, "bob", 1000)
	require.NoError(t, err)

	t.Run("absent cooldown returns nil", func(t *testing.T) {
		cooldown, err := repo.Get(ctx, 300, "work")
		require.NoError(t, err)
		assert.Nil(t, cooldown)
	})

	t.Run("active cooldown is returned", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, 300, "work", time.Hour))

		cooldown, err := repo.Get(ctx, 300, "work")
		require.NoError(t, err)
		require.NotNil(t, cooldown)
		assert.Equal(t, "work", cooldown.Command)
		assert.True(t, cooldown.ExpiresAt.After(time.Now()))
	})

	t.Run("expired cooldown is purged", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, 300, "work", -time.Minute))

		cooldown, err := repo.Get(ctx, 300, "work")
		require.NoError(t, err)
		assert.Nil(t, cooldown)
	})

	t.Run("set replaces an existing cooldown", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, 300, "work", time.Minute))
		require.NoError(t, repo.Set(ctx, 300, "work", 2*time.Hour))

		cooldown, err := repo.Get(ctx, 300, "work")
		require.NoError(t, err)
		require.NotNil(t, cooldown)
		assert.True(t, cooldown.ExpiresAt.After(time.Now().Add(time.Hour)))
	})
}

func TestBalanceHistoryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	users := NewUserRepository(testDB.DB)
	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()

	_, err := users.Create(ctx, 400, "carol", 1000)
	require.NoError(t, err)

	t.Run("record and read back", func(t *testing.T) {
		entry := testutil.CreateTestBalanceHistory(400, models.TransactionTypeGameStake)
		require.NoError(t, repo.Record(ctx, entry))

		history, err := repo.GetByUser(ctx, 400, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.TransactionTypeGameStake, history[0].TransactionType)
		assert.Equal(t, int64(-100), history[0].ChangeAmount)
		assert.Equal(t, true, history[0].TransactionMetadata["test"])
	})

	t.Run("newest first with limit", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			entry := testutil.CreateTestBalanceHistory(400, models.TransactionTypeGamePayout)
			require.NoError(t, repo.Record(ctx, entry))
		}

		history, err := repo.GetByUser(ctx, 400, 3)
		require.NoError(t, err)
		assert.Len(t, history, 3)
		assert.Equal(t, models.TransactionTypeGamePayout, history[0].TransactionType)
	})
}
