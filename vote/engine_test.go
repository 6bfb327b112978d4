package vote

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRoster returns a mutable voter list so tests can change membership
// mid-vote
type fakeRoster struct {
	mu     sync.Mutex
	voters []Voter
}

func (f *fakeRoster) EligibleVoters(ctx context.Context, guildID string) ([]Voter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Voter(nil), f.voters...), nil
}

func (f *fakeRoster) set(voters []Voter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voters = voters
}

type fakeExecutor struct {
	mu       sync.Mutex
	executed []int64
}

func (f *fakeExecutor) Execute(ctx context.Context, guildID string, targetID int64, level int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, targetID)
	return nil
}

func (f *fakeExecutor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed)
}

type fakeVoteNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeVoteNotifier) Send(channelID, content string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, content)
	return "msg-1", nil
}

// admins returns n online admin-only voters with IDs starting at 1
func admins(n int) []Voter {
	voters := make([]Voter, n)
	for i := range voters {
		voters[i] = Voter{UserID: int64(i + 1), IsAdmin: true, Online: true}
	}
	return voters
}

func newTestEngine(roster *fakeRoster) (*Engine, *fakeExecutor, *fakeVoteNotifier) {
	executor := &fakeExecutor{}
	notifier := &fakeVoteNotifier{}
	return NewEngine(roster, executor, notifier, nil), executor, notifier
}

func openVote(t *testing.T, e *Engine, level int) *Record {
	t.Helper()
	r, err := e.Open(OpenParams{
		MessageID:   "msg-100",
		GuildID:     "guild-1",
		ChannelID:   "chan-1",
		InitiatorID: 999,
		TargetID:    500,
		Level:       level,
		Reason:      "spam",
	})
	require.NoError(t, err)
	return r
}

func TestVote_LevelFiveThresholdPasses(t *testing.T) {
	roster := &fakeRoster{voters: admins(8)}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 5)
	ctx := context.Background()

	// Five approvals of eight online is 0.625, below the 75% bar
	for id := int64(1); id <= 5; id++ {
		tally, err := r.Cast(ctx, id, Approve)
		require.NoError(t, err)
		assert.False(t, r.Resolved(), "vote resolved early at %d approvals", tally.Approvals)
	}

	// The sixth approval reaches 6/8 = 0.75
	tally, err := r.Cast(ctx, 6, Approve)
	require.NoError(t, err)
	assert.Equal(t, 6, tally.Approvals)
	assert.Equal(t, 8, tally.OnlineEligible)
	assert.True(t, r.Resolved())
	assert.Equal(t, 1, executor.count())

	// The record is gone from the engine
	_, ok := e.Get("msg-100")
	assert.False(t, ok)
}

func TestVote_LevelFiveStaysOpenBelowThreshold(t *testing.T) {
	roster := &fakeRoster{voters: admins(8)}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 5)
	ctx := context.Background()

	for id := int64(1); id <= 5; id++ {
		_, err := r.Cast(ctx, id, Approve)
		require.NoError(t, err)
	}

	assert.False(t, r.Resolved())
	assert.Equal(t, 0, executor.count())
}

func TestVote_LevelThreeSimpleMajority(t *testing.T) {
	roster := &fakeRoster{voters: admins(4)}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 3)
	ctx := context.Background()

	_, err := r.Cast(ctx, 1, Approve)
	require.NoError(t, err)
	assert.False(t, r.Resolved())

	// 2/4 = 0.5 meets the simple majority bar
	_, err = r.Cast(ctx, 2, Approve)
	require.NoError(t, err)
	assert.True(t, r.Resolved())
	assert.Equal(t, 1, executor.count())
}

func TestVote_ModeratorFastPath(t *testing.T) {
	voters := admins(8)
	voters = append(voters, Voter{UserID: 100, IsModerator: true, Online: true})
	roster := &fakeRoster{voters: voters}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 3)

	// One moderator approval passes immediately regardless of ratio
	_, err := r.Cast(context.Background(), 100, Approve)
	require.NoError(t, err)
	assert.True(t, r.Resolved())
	assert.Equal(t, 1, executor.count())
}

func TestVote_ModeratorRejectIsNotFastPath(t *testing.T) {
	voters := append(admins(8), Voter{UserID: 100, IsModerator: true, Online: true})
	roster := &fakeRoster{voters: voters}
	e, _, _ := newTestEngine(roster)
	r := openVote(t, e, 5)

	_, err := r.Cast(context.Background(), 100, Reject)
	require.NoError(t, err)
	assert.False(t, r.Resolved())
}

func TestVote_IneligibleVoterRejected(t *testing.T) {
	roster := &fakeRoster{voters: admins(4)}
	e, _, _ := newTestEngine(roster)
	r := openVote(t, e, 5)

	_, err := r.Cast(context.Background(), 42, Approve)
	assert.ErrorIs(t, err, ErrNotEligible)

	tally, err := r.Tally(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tally.Approvals)
}

func TestVote_LostEligibilityDropsVotes(t *testing.T) {
	roster := &fakeRoster{voters: admins(8)}
	e, _, _ := newTestEngine(roster)
	r := openVote(t, e, 5)
	ctx := context.Background()

	for id := int64(1); id <= 4; id++ {
		_, err := r.Cast(ctx, id, Approve)
		require.NoError(t, err)
	}

	// Voters 1 and 2 lose their roles mid-vote
	roster.set(admins(8)[2:])

	tally, err := r.Tally(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, tally.Approvals)
	assert.Equal(t, 6, tally.OnlineEligible)
}

func TestVote_OfflineVotersExcludedFromDenominator(t *testing.T) {
	voters := admins(8)
	// Half the council goes offline: 4 online eligible remain
	for i := 4; i < 8; i++ {
		voters[i].Online = false
	}
	roster := &fakeRoster{voters: voters}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 5)
	ctx := context.Background()

	for id := int64(1); id <= 2; id++ {
		_, err := r.Cast(ctx, id, Approve)
		require.NoError(t, err)
	}
	assert.False(t, r.Resolved())

	// 3/4 online approvals meets the 75% bar even with 8 eligible total
	tally, err := r.Cast(ctx, 3, Approve)
	require.NoError(t, err)
	assert.Equal(t, 4, tally.OnlineEligible)
	assert.Equal(t, 8, tally.TotalEligible)
	assert.True(t, r.Resolved())
	assert.Equal(t, 1, executor.count())
}

func TestVote_DeadlineFailsAndNotifies(t *testing.T) {
	roster := &fakeRoster{voters: admins(8)}
	e, executor, notifier := newTestEngine(roster)
	r := openVote(t, e, 5)

	r.onDeadline()

	assert.True(t, r.Resolved())
	assert.Equal(t, 0, executor.count())
	assert.Len(t, notifier.sends, 1)

	// Votes after resolution are rejected, and a second deadline is a no-op
	_, err := r.Cast(context.Background(), 1, Approve)
	assert.ErrorIs(t, err, ErrVoteResolved)
	r.onDeadline()
	assert.Len(t, notifier.sends, 1)
}

func TestVote_DeadlineTallyPassesAfterCouncilShrinks(t *testing.T) {
	roster := &fakeRoster{voters: admins(8)}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 5)
	ctx := context.Background()

	// Five of eight online approvals sits below the 75% bar
	for id := int64(1); id <= 5; id++ {
		_, err := r.Cast(ctx, id, Approve)
		require.NoError(t, err)
	}
	require.False(t, r.Resolved())

	// The three non-voters go offline before the window closes, leaving
	// five approvals from five online eligible
	shrunk := admins(8)
	for i := 5; i < 8; i++ {
		shrunk[i].Online = false
	}
	roster.set(shrunk)

	r.onDeadline()

	assert.True(t, r.Resolved())
	assert.Equal(t, 1, executor.count())
}

func TestVote_InvalidLevelRejected(t *testing.T) {
	e, _, _ := newTestEngine(&fakeRoster{voters: admins(4)})

	_, err := e.Open(OpenParams{MessageID: "m", GuildID: "g", ChannelID: "c", Level: 2})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestVote_ConcurrentCastsResolveOnce(t *testing.T) {
	roster := &fakeRoster{voters: admins(8)}
	e, executor, _ := newTestEngine(roster)
	r := openVote(t, e, 3)
	ctx := context.Background()

	var wg sync.WaitGroup
	for id := int64(1); id <= 8; id++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _ = r.Cast(ctx, id, Approve)
		}(id)
	}
	wg.Wait()

	assert.True(t, r.Resolved())
	assert.Equal(t, 1, executor.count())
}
