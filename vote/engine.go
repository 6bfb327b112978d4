package vote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"doghouse/events"
)

const voteWindow = 24 * time.Hour

var (
	// ErrNotEligible means the voter does not hold a voting role right now
	ErrNotEligible = errors.New("voter is not eligible")

	// ErrVoteResolved means the vote already reached a terminal state
	ErrVoteResolved = errors.New("vote is already resolved")

	// ErrVoteNotFound means no open vote matches the message
	ErrVoteNotFound = errors.New("no such vote")

	// ErrInvalidLevel means the warning level does not call for a vote
	ErrInvalidLevel = errors.New("level does not require a vote")
)

// Decision is one voter's choice
type Decision int

const (
	Approve Decision = iota
	Reject
)

// Voter is one eligible council member as reported by the roster
type Voter struct {
	UserID      int64
	IsModerator bool
	IsAdmin     bool
	Online      bool
}

// RosterProvider reports the current set of eligible voters for a guild.
// The engine calls it on every tally so role and presence changes mid-vote
// take effect immediately.
type RosterProvider interface {
	EligibleVoters(ctx context.Context, guildID string) ([]Voter, error)
}

// ActionExecutor carries out the warn action a passed vote authorizes
type ActionExecutor interface {
	Execute(ctx context.Context, guildID string, targetID int64, level int, reason string) error
}

// Notifier posts vote outcomes, best effort
type Notifier interface {
	Send(channelID, content string) (string, error)
}

// Tally is a snapshot of a vote's standing at one recompute
type Tally struct {
	Approvals      int
	Rejections     int
	OnlineEligible int
	TotalEligible  int
	Threshold      float64
}

// thresholdFor returns the approval ratio a level requires from the online
// eligible voters. Zero means the vote only resolves via the moderator
// fast-path or the timeout.
func thresholdFor(level int) float64 {
	switch level {
	case 3, 4:
		return 0.5
	case 5:
		return 0.75
	}
	return 0
}

// Record is one open vote. Its own mutex serializes concurrent casts; the
// deadline timer takes the same lock and backs off once resolved.
type Record struct {
	mu sync.Mutex

	MessageID   string
	GuildID     string
	ChannelID   string
	InitiatorID int64
	TargetID    int64
	Level       int
	Reason      string
	EndTime     time.Time

	votes     map[int64]Decision
	finalized bool
	timer     *time.Timer
	engine    *Engine
}

// Engine owns all open vote records
type Engine struct {
	mu      sync.Mutex
	records map[string]*Record

	roster   RosterProvider
	executor ActionExecutor
	notifier Notifier
	eventBus *events.Bus
}

// NewEngine creates a vote engine
func NewEngine(roster RosterProvider, executor ActionExecutor, notifier Notifier, eventBus *events.Bus) *Engine {
	return &Engine{
		records:  make(map[string]*Record),
		roster:   roster,
		executor: executor,
		notifier: notifier,
		eventBus: eventBus,
	}
}

// OpenParams describes a requested warning vote
type OpenParams struct {
	MessageID   string
	GuildID     string
	ChannelID   string
	InitiatorID int64
	TargetID    int64
	Level       int
	Reason      string
}

// Open starts a vote for a level 3+ warning with a 24 hour window
func (e *Engine) Open(params OpenParams) (*Record, error) {
	if params.Level < 3 || params.Level > 5 {
		return nil, fmt.Errorf("level %d: %w", params.Level, ErrInvalidLevel)
	}

	r := &Record{
		MessageID:   params.MessageID,
		GuildID:     params.GuildID,
		ChannelID:   params.ChannelID,
		InitiatorID: params.InitiatorID,
		TargetID:    params.TargetID,
		Level:       params.Level,
		Reason:      params.Reason,
		EndTime:     time.Now().Add(voteWindow),
		votes:       make(map[int64]Decision),
		engine:      e,
	}

	e.mu.Lock()
	if _, exists := e.records[params.MessageID]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("vote %s already open", params.MessageID)
	}
	e.records[params.MessageID] = r
	e.mu.Unlock()

	r.timer = time.AfterFunc(voteWindow, r.onDeadline)
	return r, nil
}

// Cast records a vote on an open record
func (e *Engine) Cast(ctx context.Context, messageID string, voterID int64, decision Decision) (*Tally, error) {
	e.mu.Lock()
	r, ok := e.records[messageID]
	e.mu.Unlock()
	if !ok {
		return nil, ErrVoteNotFound
	}
	return r.Cast(ctx, voterID, decision)
}

// Get returns an open vote record
func (e *Engine) Get(messageID string) (*Record, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.records[messageID]
	return r, ok
}

func (e *Engine) remove(messageID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.records, messageID)
}

// Cast records one voter's decision and resolves the vote if the moderator
// fast-path or the level threshold is met
func (r *Record) Cast(ctx context.Context, voterID int64, decision Decision) (*Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil, ErrVoteResolved
	}

	roster, err := r.engine.roster.EligibleVoters(ctx, r.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch voter roster: %w", err)
	}

	voter, eligible := findVoter(roster, voterID)
	if !eligible {
		return nil, fmt.Errorf("user %d: %w", voterID, ErrNotEligible)
	}

	// Moderator approval short-circuits the ratio entirely
	if decision == Approve && voter.IsModerator {
		r.votes[voterID] = decision
		tally := r.tallyLocked(roster)
		r.resolveLocked(ctx, true)
		return tally, nil
	}

	r.votes[voterID] = decision
	tally := r.tallyLocked(roster)

	if tally.Threshold > 0 && tally.OnlineEligible > 0 {
		ratio := float64(tally.Approvals) / float64(tally.OnlineEligible)
		if ratio >= tally.Threshold {
			r.resolveLocked(ctx, true)
		}
	}

	return tally, nil
}

// Tally recomputes the standing against the live roster without casting
func (r *Record) Tally(ctx context.Context) (*Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil, ErrVoteResolved
	}

	roster, err := r.engine.roster.EligibleVoters(ctx, r.GuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch voter roster: %w", err)
	}
	return r.tallyLocked(roster), nil
}

// tallyLocked prunes votes from users who lost eligibility and counts the
// rest. Approvals and rejections only count from online eligible voters.
func (r *Record) tallyLocked(roster []Voter) *Tally {
	byID := make(map[int64]Voter, len(roster))
	for _, v := range roster {
		byID[v.UserID] = v
	}

	for userID := range r.votes {
		if _, stillEligible := byID[userID]; !stillEligible {
			delete(r.votes, userID)
		}
	}

	tally := &Tally{
		TotalEligible: len(roster),
		Threshold:     thresholdFor(r.Level),
	}
	for _, v := range roster {
		if v.Online {
			tally.OnlineEligible++
		}
	}
	for userID, decision := range r.votes {
		if !byID[userID].Online {
			continue
		}
		if decision == Approve {
			tally.Approvals++
		} else {
			tally.Rejections++
		}
	}
	return tally
}

// resolveLocked finishes the vote exactly once. A passed vote executes the
// warn action; a failed one posts a rejection notice.
func (r *Record) resolveLocked(ctx context.Context, passed bool) {
	if r.finalized {
		return
	}
	r.finalized = true
	if r.timer != nil {
		r.timer.Stop()
	}

	if passed {
		if err := r.engine.executor.Execute(ctx, r.GuildID, r.TargetID, r.Level, r.Reason); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"guild_id":  r.GuildID,
				"target_id": r.TargetID,
				"level":     r.Level,
			}).Error("Failed to execute warn action after passed vote")
		}
	} else if r.engine.notifier != nil {
		content := fmt.Sprintf("Level %d warning vote against %d did not pass, action discarded", r.Level, r.TargetID)
		if _, err := r.engine.notifier.Send(r.ChannelID, content); err != nil {
			log.WithError(err).WithField("channel_id", r.ChannelID).Warn("Failed to post vote rejection notice")
		}
	}

	if r.engine.eventBus != nil {
		r.engine.eventBus.Publish(events.VoteResolvedEvent{
			MessageID: r.MessageID,
			GuildID:   r.GuildID,
			TargetID:  r.TargetID,
			Level:     r.Level,
			Passed:    passed,
		})
	}

	r.engine.remove(r.MessageID)
}

// Resolved reports whether the vote reached a terminal state
func (r *Record) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

// onDeadline takes one last tally against the live roster when the window
// elapses, then resolves. Council members going offline shrink the
// denominator, so standing approvals can clear the bar at the deadline even
// though no new vote arrived.
func (r *Record) onDeadline() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return
	}

	ctx := context.Background()
	passed := false
	if thresholdFor(r.Level) > 0 && len(r.votes) > 0 {
		roster, err := r.engine.roster.EligibleVoters(ctx, r.GuildID)
		if err != nil {
			log.WithError(err).WithField("guild_id", r.GuildID).Warn("Failed to fetch roster for deadline tally")
		} else {
			tally := r.tallyLocked(roster)
			if tally.OnlineEligible > 0 && float64(tally.Approvals)/float64(tally.OnlineEligible) >= tally.Threshold {
				passed = true
			}
		}
	}
	r.resolveLocked(ctx, passed)
}

func findVoter(roster []Voter, userID int64) (Voter, bool) {
	for _, v := range roster {
		if v.UserID == userID {
			return v, true
		}
	}
	return Voter{}, false
}
