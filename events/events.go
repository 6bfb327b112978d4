package events

import (
	"context"
	"sync"

	"doghouse/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeUserCreated     EventType = "user_created"
	EventTypeGameSettled     EventType = "game_settled"
	EventTypeSessionEnded    EventType = "session_ended"
	EventTypeRoomStateChange EventType = "room_state_change"
	EventTypeVoteResolved    EventType = "vote_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user creation
type UserCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// GameSettledEvent represents a finished game that has been paid out
type GameSettledEvent struct {
	UserID   int64
	GameType models.GameType
	Bet      int64
	Profit   int64
}

func (e GameSettledEvent) Type() EventType {
	return EventTypeGameSettled
}

// SessionEndedEvent fires when a user's game session leaves the registry,
// whatever ended it (settlement, refund or timeout)
type SessionEndedEvent struct {
	UserID   int64
	GameType models.GameType
}

func (e SessionEndedEvent) Type() EventType {
	return EventTypeSessionEnded
}

// RoomStateChangeEvent represents a baccarat room state transition
type RoomStateChangeEvent struct {
	ChannelID string
	HostID    int64
	OldState  string
	NewState  string
	Round     int
}

func (e RoomStateChangeEvent) Type() EventType {
	return EventTypeRoomStateChange
}

// VoteResolvedEvent represents a council vote that reached a terminal state
type VoteResolvedEvent struct {
	MessageID string
	GuildID   string
	TargetID  int64
	Level     int
	Passed    bool
}

func (e VoteResolvedEvent) Type() EventType {
	return EventTypeVoteResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish emits an event without a caller context, for publishers that are
// not tied to a request
func (b *Bus) Publish(event Event) {
	b.Emit(context.Background(), event)
}

// TransactionalBus holds pending events coupled to a unit of work and flushes
// them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus over the given bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events outlive the transaction context that produced them
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events. Called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
