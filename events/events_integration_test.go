package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"doghouse/models"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypeGamePayout,
		ChangeAmount:    500,
	}

	// Publish event to transactional bus (simulating service layer)
	transactionalBus.Publish(testEvent)

	// Flush events (simulating successful transaction commit)
	transactionalBus.Flush(context.Background())

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.UserID, receivedEvent.UserID)
		assert.Equal(t, testEvent.OldBalance, receivedEvent.OldBalance)
		assert.Equal(t, testEvent.NewBalance, receivedEvent.NewBalance)
		assert.Equal(t, testEvent.TransactionType, receivedEvent.TransactionType)
		assert.Equal(t, testEvent.ChangeAmount, receivedEvent.ChangeAmount)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan GameSettledEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeGameSettled, func(ctx context.Context, event Event) {
		defer wg.Done()
		if settledEvent, ok := event.(GameSettledEvent); ok {
			eventsReceived <- settledEvent
		}
	})

	published := []GameSettledEvent{
		{UserID: 1, GameType: models.GameTypeBlackjack, Bet: 100, Profit: 100},
		{UserID: 2, GameType: models.GameTypeSlots, Bet: 200, Profit: -200},
		{UserID: 3, GameType: models.GameTypeBaccarat, Bet: 300, Profit: 0},
	}

	for _, event := range published {
		transactionalBus.Publish(event)
	}

	transactionalBus.Flush(context.Background())
	wg.Wait()

	receivedEvents := make([]GameSettledEvent, 0, 3)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			receivedEvents = append(receivedEvents, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(receivedEvents))
		}
	}

	assert.Len(t, receivedEvents, 3)

	// Handlers run on goroutines, so order may vary
	userIDs := make(map[int64]bool)
	for _, received := range receivedEvents {
		userIDs[received.UserID] = true
	}

	assert.True(t, userIDs[1])
	assert.True(t, userIDs[2])
	assert.True(t, userIDs[3])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      1000,
		NewBalance:      1500,
		TransactionType: models.TransactionTypeGamePayout,
		ChangeAmount:    500,
	}
	transactionalBus.Publish(testEvent)

	// Discard instead of flush (simulating transaction rollback)
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
		// Expected, nothing should arrive
	}
}

// TestBusPublishWithoutContext covers the convenience publisher used by the
// session and vote engines
func TestBusPublishWithoutContext(t *testing.T) {
	bus := NewBus()

	received := make(chan RoomStateChangeEvent, 1)
	bus.Subscribe(EventTypeRoomStateChange, func(ctx context.Context, event Event) {
		if roomEvent, ok := event.(RoomStateChangeEvent); ok {
			received <- roomEvent
		}
	})

	bus.Publish(RoomStateChangeEvent{
		ChannelID: "123",
		HostID:    42,
		OldState:  "betting",
		NewState:  "dealing",
		Round:     1,
	})

	select {
	case event := <-received:
		assert.Equal(t, "123", event.ChannelID)
		assert.Equal(t, int64(42), event.HostID)
		assert.Equal(t, "dealing", event.NewState)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}
