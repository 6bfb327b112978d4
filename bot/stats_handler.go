package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"doghouse/models"
)

// gameTypeOrder fixes the display order of per-game stats
var gameTypeOrder = []models.GameType{
	models.GameTypeBlackjack,
	models.GameTypeBaccarat,
	models.GameTypeGuessSize,
	models.GameTypeSlots,
}

var gameTypeLabels = map[models.GameType]string{
	models.GameTypeBlackjack: "Blackjack",
	models.GameTypeBaccarat:  "Baccarat",
	models.GameTypeGuessSize: "Dice",
	models.GameTypeSlots:     "Slots",
}

func (b *Bot) handleStatsCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Please specify a subcommand: scoreboard or player")
		return
	}

	switch options[0].Name {
	case "scoreboard":
		b.handleStatsScoreboard(s, i)
	case "player":
		b.handleStatsPlayer(s, i, options[0].Options)
	default:
		b.respondWithError(s, i, "Unknown subcommand")
	}
}

// handleStatsScoreboard displays the profit leaderboard
func (b *Bot) handleStatsScoreboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	entries, err := b.statsService.GetLeaderboard(ctx, 10)
	if err != nil {
		log.WithError(err).Error("Failed to get leaderboard")
		b.respondWithError(s, i, "Unable to retrieve the scoreboard. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏆 Profit Leaderboard",
		Color: 0x00ff00,
	}

	if len(entries) == 0 {
		embed.Description = "Nobody has played yet."
	} else {
		var table strings.Builder
		table.WriteString("```\n")
		table.WriteString(fmt.Sprintf("%-4s %-20s %s\n", "Rank", "Player", "Profit"))
		table.WriteString(strings.Repeat("-", 40) + "\n")

		for _, entry := range entries {
			rankStr := fmt.Sprintf("#%d", entry.Rank)
			switch entry.Rank {
			case 1:
				rankStr = "🥇"
			case 2:
				rankStr = "🥈"
			case 3:
				rankStr = "🥉"
			}

			displayName := truncateName(GetDisplayNameInt64(s, i.GuildID, entry.UserID), 18)

			table.WriteString(fmt.Sprintf("%-4s %-20s %s\n", rankStr, displayName, FormatBalance(entry.Profit)))
		}
		table.WriteString("```")
		embed.Description = table.String()
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to scoreboard command")
	}
}

// handleStatsPlayer displays individual user statistics
func (b *Bot) handleStatsPlayer(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	targetStringID := i.Member.User.ID
	if len(options) > 0 && options[0].Name == "user" {
		targetStringID = options[0].UserValue(s).ID
	}
	targetID, err := strconv.ParseInt(targetStringID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	stats, err := b.statsService.GetUserStats(ctx, targetID)
	if err != nil {
		log.WithError(err).WithField("user_id", targetID).Error("Failed to get user stats")
		b.respondWithError(s, i, "Unable to retrieve statistics. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, targetStringID)
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Statistics for %s", displayName),
		Color: 0x3498db,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "💰 Balance",
				Value:  fmt.Sprintf("**%s chips**", FormatBalance(stats.User.Balance)),
				Inline: false,
			},
		},
	}

	if stats.Total != nil && stats.Total.Games > 0 {
		winRate := float64(stats.Total.Wins) / float64(stats.Total.Games) * 100
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🎲 Overall",
			Value: fmt.Sprintf("Games: %d\nWin Rate: **%.1f%%**\nTotal Wagered: %s chips\nNet Profit: %s chips",
				stats.Total.Games, winRate,
				FormatBalance(stats.Total.TotalBet), FormatBalance(stats.Total.Profit)),
			Inline: true,
		})
	}

	for _, gameType := range gameTypeOrder {
		perGame, ok := stats.PerGame[gameType]
		if !ok || perGame.Games == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: gameTypeLabels[gameType],
			Value: fmt.Sprintf("Games: %d (%d W / %d L)\nProfit: %s chips",
				perGame.Games, perGame.Wins, perGame.Losses, FormatBalance(perGame.Profit)),
			Inline: true,
		})
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to stats command")
	}
}
