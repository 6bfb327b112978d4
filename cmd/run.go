package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"doghouse/bot"
	"doghouse/config"
	"doghouse/database"
	"doghouse/discord"
	"doghouse/events"
	"doghouse/repository"
	"doghouse/service"
	"doghouse/session"
	"doghouse/uptime"
	"doghouse/vote"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting doghouse...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	eventBus.Subscribe(events.EventTypeGameSettled, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GameSettledEvent); ok {
			log.WithFields(log.Fields{
				"user_id": e.UserID,
				"game":    e.GameType,
				"bet":     e.Bet,
				"profit":  e.Profit,
			}).Info("Game settled")
		}
	})
	eventBus.Subscribe(events.EventTypeVoteResolved, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.VoteResolvedEvent); ok {
			log.WithFields(log.Fields{
				"target_id": e.TargetID,
				"level":     e.Level,
				"passed":    e.Passed,
			}).Info("Warning vote resolved")
		}
	})

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	userService := service.NewUserService(uowFactory, cfg)
	settlementService := service.NewSettlementService(uowFactory, cfg)
	statsService := service.NewStatsService(uowFactory)

	var statusServer *uptime.Server
	if cfg.StatusAddr != "" {
		statusServer = uptime.NewServer(cfg.StatusAddr, db, cfg.StatusAllowedIPs)
		statusServer.Start()
	}

	log.Info("Connecting to Discord...")
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged |
		discordgo.IntentsGuildMembers | discordgo.IntentsGuildPresences

	notifier := discord.NewNotifier(dg)
	roster := discord.NewRosterProvider(dg, cfg.DiscordModRoleIDs, cfg.DiscordAdminRoleIDs)
	executor := discord.NewActionExecutor(dg, cfg.DiscordMuteRoleID)

	gameManager := session.NewManager(settlementService, notifier, eventBus, cfg)
	voteEngine := vote.NewEngine(roster, executor, notifier, eventBus)

	botConfig := bot.Config{
		GuildID:         cfg.DiscordGuildID,
		ModRoleIDs:      cfg.DiscordModRoleIDs,
		AdminRoleIDs:    cfg.DiscordAdminRoleIDs,
		BigWinChannelID: cfg.BigWinChannelID,
		BigWinThreshold: cfg.BigWinThreshold,
	}
	discordBot, err := bot.New(botConfig, dg, userService, settlementService, statsService, gameManager, voteEngine, executor, notifier, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.WithField("environment", cfg.Environment).Info("doghouse is running")
	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	if statusServer != nil {
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down status page")
		}
	}

	db.Close()
	log.Info("Shutdown completed")
	return nil
}
