package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"doghouse/game"
	"doghouse/service"
	"doghouse/session"
)

// friendlyGameError maps engine errors to user-facing messages, falling back
// to a generic retry prompt for anything unexpected
func friendlyGameError(err error) string {
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return "You don't have enough chips for that stake."
	case errors.Is(err, session.ErrAlreadyPlaying):
		return "Finish your current game first."
	case errors.Is(err, session.ErrSeatedElsewhere):
		return "You are seated at a baccarat table. Leave it first."
	case errors.Is(err, session.ErrBetTooSmall):
		return "That stake is below the table minimum."
	case errors.Is(err, session.ErrRoomExists):
		return "There is already a table open in this channel."
	case errors.Is(err, session.ErrRoomFull):
		return "The table is full."
	case errors.Is(err, session.ErrNotHost):
		return "Only the table host can do that."
	case errors.Is(err, session.ErrNoBet):
		return "You have no bet down this round."
	case errors.Is(err, session.ErrStateConflict):
		return "The game has moved on. Check the table state."
	case errors.Is(err, session.ErrSettlementFailed):
		return "The payout couldn't be processed. Your stake was refunded."
	default:
		return "Something went wrong. Please try again."
	}
}

func commandAmount(i *discordgo.InteractionCreate) int64 {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "amount" {
			return opt.IntValue()
		}
	}
	return 0
}

func blackjackButtons(disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Hit", Style: discordgo.PrimaryButton, CustomID: "bj_hit", Disabled: disabled},
				discordgo.Button{Label: "Stand", Style: discordgo.SecondaryButton, CustomID: "bj_stand", Disabled: disabled},
				discordgo.Button{Label: "Double", Style: discordgo.DangerButton, CustomID: "bj_double", Disabled: disabled},
			},
		},
	}
}

func slotsButtons(disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Spin", Style: discordgo.PrimaryButton, CustomID: "slots_spin", Disabled: disabled},
				discordgo.Button{Label: "Stop", Style: discordgo.SecondaryButton, CustomID: "slots_stop", Disabled: disabled},
			},
		},
	}
}

func (b *Bot) handleBlackjack(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	bet := commandAmount(i)

	bj, err := b.games.StartBlackjack(ctx, userID, i.ChannelID, bet)
	if err != nil {
		b.respondWithError(s, i, friendlyGameError(err))
		return
	}

	b.mu.Lock()
	b.blackjacks[userID] = bj
	b.mu.Unlock()

	finished := bj.Result() != nil
	if finished {
		b.mu.Lock()
		delete(b.blackjacks, userID)
		b.mu.Unlock()
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    b.renderBlackjack(bj),
			Components: blackjackButtons(finished),
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to blackjack command")
	}
}

func (b *Bot) handleBlackjackComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	b.mu.Lock()
	bj, ok := b.blackjacks[userID]
	b.mu.Unlock()
	if !ok {
		b.respondWithError(s, i, "You have no blackjack game running.")
		return
	}

	var result *session.BlackjackResult
	switch i.MessageComponentData().CustomID {
	case "bj_hit":
		result, err = bj.Hit(ctx)
	case "bj_stand":
		result, err = bj.Stand(ctx)
	case "bj_double":
		result, err = bj.Double(ctx)
	}

	if err != nil {
		// The game may still have finished, either settled by the timeout
		// racing this press or aborted by a settlement failure
		if bj.Result() != nil {
			b.mu.Lock()
			delete(b.blackjacks, userID)
			b.mu.Unlock()
		}
		b.respondWithError(s, i, friendlyGameError(err))
		return
	}

	finished := result != nil
	if finished {
		b.mu.Lock()
		delete(b.blackjacks, userID)
		b.mu.Unlock()
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    b.renderBlackjack(bj),
			Components: blackjackButtons(finished),
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to update blackjack message")
	}
}

func (b *Bot) renderBlackjack(g *session.BlackjackSession) string {
	player, dealer := g.Hands()
	result := g.Result()

	var sb strings.Builder
	sb.WriteString("🃏 **Blackjack**\n")
	fmt.Fprintf(&sb, "Your hand: %s (**%d**)\n", handLine(player), game.BlackjackHandValue(player))
	if result != nil {
		fmt.Fprintf(&sb, "Dealer: %s (**%d**)\n", handLine(dealer), game.BlackjackHandValue(dealer))
		fmt.Fprintf(&sb, "**%s** (%+d chips)", strings.ToUpper(result.Outcome), result.Profit)
	} else {
		fmt.Fprintf(&sb, "Dealer shows: %s ??\n", dealer[0])
	}
	return sb.String()
}

func handLine(hand []game.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func (b *Bot) handleDice(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var amount int64
	var betName string
	faces := make(map[string]int)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "bet":
			betName = opt.StringValue()
		case "face", "face2", "face3":
			faces[opt.Name] = int(opt.IntValue())
		}
	}

	bet, err := diceBetFromOptions(betName, faces)
	if err != nil {
		b.respondWithError(s, i, err.Error())
		return
	}

	diceGame, err := b.games.StartDice(ctx, userID, i.ChannelID, amount)
	if err != nil {
		b.respondWithError(s, i, friendlyGameError(err))
		return
	}

	result, err := diceGame.Pick(ctx, bet)
	if err != nil {
		b.respondWithError(s, i, friendlyGameError(err))
		return
	}

	verdict := "lost"
	if result.Won {
		verdict = "won"
	}
	b.respond(s, i, fmt.Sprintf("🎲 Rolled **%d %d %d** (sum %d). You %s **%s chips**.",
		result.Roll[0], result.Roll[1], result.Roll[2], result.Roll.Sum(), verdict,
		FormatBalance(abs(result.Profit))))
}

// diceBetFromOptions builds the engine bet from the command options
func diceBetFromOptions(name string, faces map[string]int) (game.DiceBet, error) {
	switch name {
	case "small":
		return game.SmallBet{}, nil
	case "large":
		return game.LargeBet{}, nil
	case "odd":
		return game.OddBet{}, nil
	case "even":
		return game.EvenBet{}, nil
	case "any_triple":
		return game.AnyTripleBet{}, nil
	case "triple":
		return game.SpecificTripleBet{Face: faces["face"]}, nil
	case "double":
		return game.SpecificDoubleBet{Face: faces["face"]}, nil
	case "combo":
		return game.TwoDiceComboBet{A: faces["face"], B: faces["face2"]}, nil
	case "exact":
		return game.ThreeDiceExactBet{Faces: [3]int{faces["face"], faces["face2"], faces["face3"]}}, nil
	case "straight":
		return game.StraightBet{}, nil
	}
	return nil, fmt.Errorf("unknown bet type %q", name)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func (b *Bot) handleSlots(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	bet := commandAmount(i)

	slotGame, err := b.games.StartSlots(ctx, userID, i.ChannelID, bet)
	if err != nil {
		b.respondWithError(s, i, friendlyGameError(err))
		return
	}

	b.mu.Lock()
	b.slotGames[userID] = slotGame
	b.mu.Unlock()

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("🎰 **Slots** | %s chips per spin. Your first spin is staked, hit Spin.", FormatBalance(bet)),
			Components: slotsButtons(false),
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to slots command")
	}
}

func (b *Bot) handleSlotsComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	b.mu.Lock()
	slotGame, ok := b.slotGames[userID]
	b.mu.Unlock()
	if !ok {
		b.respondWithError(s, i, "You have no slots session running.")
		return
	}

	if i.MessageComponentData().CustomID == "slots_stop" {
		sessionProfit, err := slotGame.Stop()
		b.mu.Lock()
		delete(b.slotGames, userID)
		b.mu.Unlock()
		if err != nil {
			b.respondWithError(s, i, friendlyGameError(err))
			return
		}
		b.updateMessage(s, i, fmt.Sprintf("🎰 Session over. Net result: **%+d chips**", sessionProfit), slotsButtons(true))
		return
	}

	result, err := slotGame.Spin(ctx)
	if err != nil {
		if errors.Is(err, session.ErrStateConflict) || errors.Is(err, service.ErrInsufficientFunds) {
			b.mu.Lock()
			delete(b.slotGames, userID)
			b.mu.Unlock()
		}
		b.respondWithError(s, i, friendlyGameError(err))
		return
	}

	b.updateMessage(s, i, fmt.Sprintf("🎰 %s %s %s | spin **%+d**, session **%+d** chips",
		result.Symbols[0], result.Symbols[1], result.Symbols[2], result.Profit, result.SessionProfit),
		slotsButtons(false))
}

func (b *Bot) handleBaccarat(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Please specify a subcommand.")
		return
	}
	sub := options[0]

	if sub.Name == "open" {
		room, err := b.games.OpenRoom(ctx, i.ChannelID, userID, 0)
		if err != nil {
			b.respondWithError(s, i, friendlyGameError(err))
			return
		}
		hostName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
		b.respond(s, i, fmt.Sprintf("🀄 **%s** opened a baccarat table. Place bets with `/baccarat bet`. State: %s", hostName, room.State()))
		return
	}

	room, ok := b.games.Room(i.ChannelID)
	if !ok {
		b.respondWithError(s, i, "No baccarat table is open in this channel.")
		return
	}

	switch sub.Name {
	case "bet":
		var kind game.BaccaratBetKind
		var amount int64
		for _, opt := range sub.Options {
			switch opt.Name {
			case "on":
				kind = baccaratKindFromOption(opt.StringValue())
			case "amount":
				amount = opt.IntValue()
			}
		}
		if err := room.PlaceBet(ctx, userID, kind, amount); err != nil {
			b.respondWithError(s, i, friendlyGameError(err))
			return
		}
		b.respond(s, i, fmt.Sprintf("Bet placed: **%s chips** on **%s** (%d bettors in)", FormatBalance(amount), kind, room.Bettors()))

	case "cancel":
		if err := room.CancelBet(ctx, userID); err != nil {
			b.respondWithError(s, i, friendlyGameError(err))
			return
		}
		b.respond(s, i, "Bet withdrawn and refunded.")

	case "deal":
		result, err := room.Deal(ctx, userID)
		if err != nil {
			if result == nil {
				b.respondWithError(s, i, friendlyGameError(err))
				return
			}
			// The round dealt, but some payouts failed and those stakes
			// were refunded
			b.respond(s, i, renderBaccaratRound(s, i.GuildID, result)+
				"\n⚠️ Some payouts couldn't be processed; those stakes were refunded.")
			return
		}
		b.respond(s, i, renderBaccaratRound(s, i.GuildID, result))

	case "next":
		if err := room.NextRound(ctx, userID); err != nil {
			b.respondWithError(s, i, friendlyGameError(err))
			return
		}
		b.respond(s, i, "Betting is open for the next round.")

	case "close":
		if err := room.Close(ctx, userID); err != nil {
			b.respondWithError(s, i, friendlyGameError(err))
			return
		}
		b.respond(s, i, "Table closed. Open bets were refunded.")

	default:
		b.respondWithError(s, i, "Unknown subcommand.")
	}
}

func baccaratKindFromOption(value string) game.BaccaratBetKind {
	switch value {
	case "player":
		return game.BetPlayer
	case "banker":
		return game.BetBanker
	case "tie":
		return game.BetTie
	case "player_pair":
		return game.BetPlayerPair
	case "banker_pair":
		return game.BetBankerPair
	case "any_pair":
		return game.BetAnyPair
	case "perfect_pair":
		return game.BetPerfectPair
	}
	return game.BaccaratBetKind(value)
}

func renderBaccaratRound(s *discordgo.Session, guildID string, result *session.BaccaratRoundResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🀄 **Round %d**\n", result.RoundNumber)
	fmt.Fprintf(&sb, "Player: %s (**%d**)\n", handLine(result.Round.PlayerHand), result.Round.PlayerTotal)
	fmt.Fprintf(&sb, "Banker: %s (**%d**)\n", handLine(result.Round.BankerHand), result.Round.BankerTotal)
	fmt.Fprintf(&sb, "Winner: **%s**\n", baccaratWinnerLine(result.Round.Winner))
	for userID, profit := range result.Profits {
		fmt.Fprintf(&sb, "%s: %+d chips\n", GetDisplayNameInt64(s, guildID, userID), profit)
	}
	return sb.String()
}

func baccaratWinnerLine(w game.BaccaratWinner) string {
	switch w {
	case game.PlayerWins:
		return "Player"
	case game.BankerWins:
		return "Banker"
	default:
		return "Tie"
	}
}

func (b *Bot) updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to update message")
	}
}
