package bot

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"doghouse/events"
	"doghouse/service"
	"doghouse/session"
	"doghouse/vote"
)

// Config holds bot configuration
type Config struct {
	GuildID      string
	ModRoleIDs   []string
	AdminRoleIDs []string

	// Big-win announcements; empty channel disables them
	BigWinChannelID string
	BigWinThreshold int64
}

// Bot routes Discord interactions to the casino and vote engines. It keeps a
// per-user map of open game sessions so component presses find their game.
type Bot struct {
	config            Config
	session           *discordgo.Session
	userService       service.UserService
	settlementService service.SettlementService
	statsService      service.StatsService
	games             *session.Manager
	votes             *vote.Engine
	executor          vote.ActionExecutor
	announcer         session.Notifier
	modRoleIDs        map[string]bool
	adminRoleIDs      map[string]bool

	mu         sync.Mutex
	blackjacks map[int64]*session.BlackjackSession
	slotGames  map[int64]*session.SlotsSession
}

func New(config Config, dg *discordgo.Session, userService service.UserService, settlementService service.SettlementService, statsService service.StatsService, games *session.Manager, votes *vote.Engine, executor vote.ActionExecutor, announcer session.Notifier, eventBus *events.Bus) (*Bot, error) {
	bot := &Bot{
		config:            config,
		session:           dg,
		userService:       userService,
		settlementService: settlementService,
		statsService:      statsService,
		games:             games,
		votes:             votes,
		executor:          executor,
		announcer:         announcer,
		modRoleIDs:        make(map[string]bool, len(config.ModRoleIDs)),
		adminRoleIDs:      make(map[string]bool, len(config.AdminRoleIDs)),
		blackjacks:        make(map[int64]*session.BlackjackSession),
		slotGames:         make(map[int64]*session.SlotsSession),
	}
	for _, id := range config.ModRoleIDs {
		bot.modRoleIDs[id] = true
	}
	for _, id := range config.AdminRoleIDs {
		bot.adminRoleIDs[id] = true
	}

	if eventBus != nil {
		eventBus.Subscribe(events.EventTypeSessionEnded, bot.handleSessionEnded)
		eventBus.Subscribe(events.EventTypeGameSettled, bot.handleGameSettled)
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleComponents)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) registerCommands() error {
	amountOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: "Stake in chips",
		Required:    true,
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your current balance",
		},
		{
			Name:        "work",
			Description: "Earn some chips (hourly cooldown)",
		},
		{
			Name:        "donate",
			Description: "Transfer chips to another player",
			Options: []*discordgo.ApplicationCommandOption{
				amountOption,
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to donate to",
					Required:    true,
				},
			},
		},
		{
			Name:        "setbalance",
			Description: "Overwrite a player's balance (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to adjust",
					Required:    true,
				},
				amountOption,
			},
		},
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack",
			Options:     []*discordgo.ApplicationCommandOption{amountOption},
		},
		{
			Name:        "dice",
			Description: "Bet on a roll of three dice",
			Options: []*discordgo.ApplicationCommandOption{
				amountOption,
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "bet",
					Description: "Bet type",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Small (4-10)", Value: "small"},
						{Name: "Large (11-17)", Value: "large"},
						{Name: "Odd", Value: "odd"},
						{Name: "Even", Value: "even"},
						{Name: "Any triple", Value: "any_triple"},
						{Name: "Specific triple", Value: "triple"},
						{Name: "Specific double", Value: "double"},
						{Name: "Two dice combo", Value: "combo"},
						{Name: "Three exact dice", Value: "exact"},
						{Name: "Straight", Value: "straight"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "face",
					Description: "First die face (1-6), where the bet needs one",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "face2",
					Description: "Second die face (1-6)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "face3",
					Description: "Third die face (1-6)",
				},
			},
		},
		{
			Name:        "slots",
			Description: "Spin the slot machine",
			Options:     []*discordgo.ApplicationCommandOption{amountOption},
		},
		{
			Name:        "baccarat",
			Description: "Host or play at a baccarat table",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "open",
					Description: "Open a table in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "bet",
					Description: "Place a bet for the current round",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "on",
							Description: "What to back",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Player", Value: "player"},
								{Name: "Banker", Value: "banker"},
								{Name: "Tie", Value: "tie"},
								{Name: "Player pair", Value: "player_pair"},
								{Name: "Banker pair", Value: "banker_pair"},
								{Name: "Any pair", Value: "any_pair"},
								{Name: "Perfect pair", Value: "perfect_pair"},
							},
						},
						amountOption,
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Withdraw your bet for this round",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "deal",
					Description: "Deal the round (host only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "next",
					Description: "Open betting for the next round (host only)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close the table (host only)",
				},
			},
		},
		{
			Name:        "stats",
			Description: "View player statistics",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "scoreboard",
					Description: "Display the top players by profit",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "player",
					Description: "Display detailed statistics for a player",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to check stats for (defaults to you)",
						},
					},
				},
			},
		},
		{
			Name:        "warn",
			Description: "Warn a member, opening a vote for level 3 and above",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Severity level",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "2 - Mute", Value: 2},
						{Name: "3 - Kick", Value: 3},
						{Name: "4 - Softban", Value: 4},
						{Name: "5 - Ban", Value: 5},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the warning",
					Required:    true,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.handleBalance(s, i)
	case "work":
		b.handleWork(s, i)
	case "donate":
		b.handleDonate(s, i)
	case "setbalance":
		b.handleSetBalance(s, i)
	case "blackjack":
		b.handleBlackjack(s, i)
	case "dice":
		b.handleDice(s, i)
	case "slots":
		b.handleSlots(s, i)
	case "baccarat":
		b.handleBaccarat(s, i)
	case "stats":
		b.handleStatsCommand(s, i)
	case "warn":
		b.handleWarn(s, i)
	}
}

func (b *Bot) handleComponents(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	switch i.MessageComponentData().CustomID {
	case "bj_hit", "bj_stand", "bj_double":
		b.handleBlackjackComponent(s, i)
	case "slots_spin", "slots_stop":
		b.handleSlotsComponent(s, i)
	case "warn_approve", "warn_reject":
		b.handleWarnComponent(s, i)
	}
}

// isAdmin reports whether the interaction member holds an admin role
func (b *Bot) isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	for _, roleID := range i.Member.Roles {
		if b.adminRoleIDs[roleID] {
			return true
		}
	}
	return false
}

// isStaff reports whether the interaction member holds a moderator or admin role
func (b *Bot) isStaff(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	for _, roleID := range i.Member.Roles {
		if b.modRoleIDs[roleID] || b.adminRoleIDs[roleID] {
			return true
		}
	}
	return false
}
