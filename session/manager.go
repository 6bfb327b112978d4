package session

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"doghouse/config"
	"doghouse/events"
	"doghouse/game"
	"doghouse/models"
)

// Manager owns every active game session and room. It enforces that a user
// holds at most one active session of any kind at a time, and that a channel
// hosts at most one baccarat room. All registry checks happen under the
// manager mutex; the per-session locks take over from there.
type Manager struct {
	mu          sync.Mutex
	activeGames map[int64]models.GameType
	rooms       map[string]*BaccaratRoom
	seats       map[int64]string

	settler  Settler
	notifier Notifier
	eventBus *events.Bus
	config   *config.Config
}

// NewManager creates the session registry
func NewManager(settler Settler, notifier Notifier, eventBus *events.Bus, cfg *config.Config) *Manager {
	return &Manager{
		activeGames: make(map[int64]models.GameType),
		rooms:       make(map[string]*BaccaratRoom),
		seats:       make(map[int64]string),
		settler:     settler,
		notifier:    notifier,
		eventBus:    eventBus,
		config:      cfg,
	}
}

// registerGame claims the user's single active-game slot. Baccarat seating
// counts against the same slot.
func (m *Manager) registerGame(userID int64, kind models.GameType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.activeGames[userID]; ok {
		return fmt.Errorf("already playing %s: %w", existing, ErrAlreadyPlaying)
	}
	if channelID, ok := m.seats[userID]; ok {
		return fmt.Errorf("seated in room %s: %w", channelID, ErrSeatedElsewhere)
	}
	m.activeGames[userID] = kind
	return nil
}

func (m *Manager) releaseGame(userID int64) {
	m.mu.Lock()
	kind, ok := m.activeGames[userID]
	delete(m.activeGames, userID)
	m.mu.Unlock()

	if ok && m.eventBus != nil {
		m.eventBus.Publish(events.SessionEndedEvent{UserID: userID, GameType: kind})
	}
}

// seatUser claims the user's slot for a baccarat room seat
func (m *Manager) seatUser(userID int64, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.activeGames[userID]; ok {
		return fmt.Errorf("already playing %s: %w", existing, ErrAlreadyPlaying)
	}
	if seated, ok := m.seats[userID]; ok && seated != channelID {
		return fmt.Errorf("seated in room %s: %w", seated, ErrSeatedElsewhere)
	}
	m.seats[userID] = channelID
	return nil
}

func (m *Manager) releaseSeat(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seats, userID)
}

func (m *Manager) registerRoom(channelID string, room *BaccaratRoom) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[channelID]; ok {
		return ErrRoomExists
	}
	m.rooms[channelID] = room
	return nil
}

func (m *Manager) removeRoom(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, channelID)
}

// Room returns the baccarat room open in a channel, if any
func (m *Manager) Room(channelID string) (*BaccaratRoom, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[channelID]
	return room, ok
}

// ActiveGame reports which game a user is currently in, if any
func (m *Manager) ActiveGame(userID int64) (models.GameType, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if kind, ok := m.activeGames[userID]; ok {
		return kind, true
	}
	if _, ok := m.seats[userID]; ok {
		return models.GameTypeBaccarat, true
	}
	return "", false
}

// startStaked debits the stake, then claims the registry slot, refunding the
// stake if the slot turns out to be taken
func (m *Manager) startStaked(ctx context.Context, userID int64, kind models.GameType, bet int64) error {
	if bet < m.config.MinBet {
		return fmt.Errorf("minimum bet is %d: %w", m.config.MinBet, ErrBetTooSmall)
	}

	if err := m.settler.PlaceStake(ctx, userID, kind, bet); err != nil {
		return err
	}

	if err := m.registerGame(userID, kind); err != nil {
		if refundErr := m.settler.Refund(ctx, userID, kind, bet); refundErr != nil {
			log.WithError(refundErr).WithFields(log.Fields{
				"user_id": userID,
				"game":    kind,
				"amount":  bet,
			}).Error("Failed to refund stake after registry conflict")
		}
		return err
	}

	return nil
}

// StartBlackjack debits the bet and deals a new blackjack session
func (m *Manager) StartBlackjack(ctx context.Context, userID int64, channelID string, bet int64) (*BlackjackSession, error) {
	if err := m.startStaked(ctx, userID, models.GameTypeBlackjack, bet); err != nil {
		return nil, err
	}
	return newBlackjackSession(ctx, m, userID, channelID, bet, game.NewShoe(1, 1, nil))
}

// StartDice debits the bet and opens a dice session awaiting a bet-type pick
func (m *Manager) StartDice(ctx context.Context, userID int64, channelID string, bet int64) (*DiceSession, error) {
	if err := m.startStaked(ctx, userID, models.GameTypeGuessSize, bet); err != nil {
		return nil, err
	}
	return newDiceSession(m, userID, channelID, bet), nil
}

// StartSlots debits the first spin's stake and opens a slots session
func (m *Manager) StartSlots(ctx context.Context, userID int64, channelID string, bet int64) (*SlotsSession, error) {
	if err := m.startStaked(ctx, userID, models.GameTypeSlots, bet); err != nil {
		return nil, err
	}
	return newSlotsSession(m, userID, channelID, bet), nil
}

// OpenRoom opens a baccarat room in a channel with the caller as host. The
// host is seated immediately and stays seated until the room closes.
func (m *Manager) OpenRoom(ctx context.Context, channelID string, hostID int64, minBet int64) (*BaccaratRoom, error) {
	if minBet < m.config.BaccaratMinBet {
		minBet = m.config.BaccaratMinBet
	}

	if err := m.seatUser(hostID, channelID); err != nil {
		return nil, err
	}

	room := newBaccaratRoom(m, channelID, hostID, minBet)
	if err := m.registerRoom(channelID, room); err != nil {
		m.releaseSeat(hostID)
		room.stopTimers()
		return nil, err
	}

	m.publishRoomState(room, "", stateBetting)
	return room, nil
}

func (m *Manager) publishRoomState(room *BaccaratRoom, oldState, newState roomState) {
	if m.eventBus == nil {
		return
	}
	m.eventBus.Publish(events.RoomStateChangeEvent{
		ChannelID: room.channelID,
		HostID:    room.hostID,
		OldState:  string(oldState),
		NewState:  string(newState),
		Round:     room.round,
	})
}

// notify is the shared best-effort send used by all sessions
func (m *Manager) notify(channelID, content string) string {
	if m.notifier == nil {
		return ""
	}
	messageID, err := m.notifier.Send(channelID, content)
	if err != nil {
		log.WithError(err).WithField("channel_id", channelID).Warn("Failed to send game message")
		return ""
	}
	return messageID
}

func (m *Manager) edit(channelID, messageID, content string) {
	if m.notifier == nil || messageID == "" {
		return
	}
	if err := m.notifier.Edit(channelID, messageID, content); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"channel_id": channelID,
			"message_id": messageID,
		}).Warn("Failed to edit game message")
	}
}
