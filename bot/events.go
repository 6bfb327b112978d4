package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"doghouse/events"
)

// handleSessionEnded prunes finished sessions from the component-routing
// maps, so entries for games that settled via timeout do not linger until
// the user presses a stale button
func (b *Bot) handleSessionEnded(ctx context.Context, event events.Event) {
	e, ok := event.(events.SessionEndedEvent)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// The user may already be in a fresh session; only finished ones go
	if bj, ok := b.blackjacks[e.UserID]; ok && bj.Result() != nil {
		delete(b.blackjacks, e.UserID)
	}
	if slots, ok := b.slotGames[e.UserID]; ok && slots.Closed() {
		delete(b.slotGames, e.UserID)
	}
}

// handleGameSettled announces single-game wins above the configured threshold
func (b *Bot) handleGameSettled(ctx context.Context, event events.Event) {
	e, ok := event.(events.GameSettledEvent)
	if !ok {
		return
	}
	if b.announcer == nil || b.config.BigWinChannelID == "" || b.config.BigWinThreshold <= 0 {
		return
	}
	if e.Profit < b.config.BigWinThreshold {
		return
	}

	content := fmt.Sprintf("💰 Big win! <@%d> just took **%s chips** from %s.",
		e.UserID, FormatBalance(e.Profit), e.GameType)
	if _, err := b.announcer.Send(b.config.BigWinChannelID, content); err != nil {
		log.WithError(err).WithField("channel_id", b.config.BigWinChannelID).Warn("Failed to announce big win")
	}
}
