package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doghouse/repository/testutil"
	"doghouse/service"
)

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("absent user returns nil without error", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("existing user", func(t *testing.T) {
		created, err := repo.Create(ctx, 100, "alice", 1000)
		require.NoError(t, err)
		require.NotNil(t, created)

		user, err := repo.GetByID(ctx, 100)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(100), user.UserID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, int64(1000), user.Balance)
		assert.False(t, user.CreatedAt.IsZero())
	})
}

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		user, err := repo.Create(ctx, 200, "bob", 500)
		require.NoError(t, err)
		assert.Equal(t, int64(200), user.UserID)
		assert.Equal(t, int64(500), user.Balance)
	})

	t.Run("duplicate user id rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 201, "carol", 500)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 201, "carol again", 500)
		assert.Error(t, err)
	})
}

func TestUserRepository_BalanceMutations(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 300, "dave", 1000)
	require.NoError(t, err)

	t.Run("add balance", func(t *testing.T) {
		err := repo.AddBalance(ctx, 300, 250)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(1250), user.Balance)
	})

	t.Run("deduct balance", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 300, 1000)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(250), user.Balance)
	})

	t.Run("deduct beyond balance fails without mutation", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 300, 10000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrInsufficientFunds))

		user, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(250), user.Balance)
	})

	t.Run("deduct from missing user", func(t *testing.T) {
		err := repo.DeductBalance(ctx, 999, 100)
		require.Error(t, err)
		assert.False(t, errors.Is(err, service.ErrInsufficientFunds))
	})

	t.Run("non-positive amounts rejected", func(t *testing.T) {
		assert.Error(t, repo.AddBalance(ctx, 300, 0))
		assert.Error(t, repo.AddBalance(ctx, 300, -5))
		assert.Error(t, repo.DeductBalance(ctx, 300, 0))
	})

	t.Run("set balance", func(t *testing.T) {
		err := repo.SetBalance(ctx, 300, 9999)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(9999), user.Balance)

		assert.Error(t, repo.SetBalance(ctx, 300, -1))
	})
}

func TestUserRepository_GetAll(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 400, "erin", 100)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 401, "frank", 5000)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 402, "grace", 700)
	require.NoError(t, err)

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Ordered by balance descending
	assert.Equal(t, int64(401), users[0].UserID)
	assert.Equal(t, int64(402), users[1].UserID)
	assert.Equal(t, int64(400), users[2].UserID)
}
