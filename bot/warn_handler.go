package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"doghouse/vote"
)

var warnLevelNames = map[int]string{
	2: "mute",
	3: "kick",
	4: "softban",
	5: "ban",
}

func (b *Bot) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if !b.isStaff(i) {
		b.respondWithError(s, i, "Only moderators can issue warnings.")
		return
	}

	var targetUser *discordgo.User
	var level int
	var reason string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			targetUser = opt.UserValue(s)
		case "level":
			level = int(opt.IntValue())
		case "reason":
			reason = opt.StringValue()
		}
	}

	if targetUser == nil {
		b.respondWithError(s, i, "Invalid target user.")
		return
	}
	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	initiatorID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	// Level 2 is a plain mute, applied immediately without a vote
	if level == 2 {
		if err := b.executor.Execute(ctx, i.GuildID, targetID, level, reason); err != nil {
			log.WithError(err).WithField("target_id", targetID).Error("Failed to apply mute")
			b.respondWithError(s, i, "Unable to apply the mute. Please try again.")
			return
		}
		b.respond(s, i, fmt.Sprintf("🔇 **%s** has been muted. Reason: %s",
			GetDisplayName(s, i.GuildID, targetUser.ID), reason))
		return
	}

	// Levels 3 and up open a vote anchored to the response message
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    renderVoteMessage(s, i.GuildID, targetUser.ID, level, reason, nil),
			Components: voteButtons(false),
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to respond to warn command")
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.WithError(err).Error("Failed to fetch warn vote message")
		return
	}

	_, err = b.votes.Open(vote.OpenParams{
		MessageID:   msg.ID,
		GuildID:     i.GuildID,
		ChannelID:   i.ChannelID,
		InitiatorID: initiatorID,
		TargetID:    targetID,
		Level:       level,
		Reason:      reason,
	})
	if err != nil {
		log.WithError(err).WithField("message_id", msg.ID).Error("Failed to open warn vote")
		b.updateVoteMessage(s, i.ChannelID, msg.ID, "The vote could not be opened.", voteButtons(true))
	}
}

func (b *Bot) handleWarnComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	voterID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	record, ok := b.votes.Get(i.Message.ID)
	if !ok {
		b.respondWithError(s, i, "This vote has already been resolved.")
		return
	}
	targetStringID := strconv.FormatInt(record.TargetID, 10)
	level, reason := record.Level, record.Reason

	decision := vote.Approve
	if i.MessageComponentData().CustomID == "warn_reject" {
		decision = vote.Reject
	}

	tally, err := b.votes.Cast(ctx, i.Message.ID, voterID, decision)
	if err != nil {
		switch {
		case errors.Is(err, vote.ErrNotEligible):
			b.respondWithError(s, i, "You are not eligible to vote on this.")
		case errors.Is(err, vote.ErrVoteResolved), errors.Is(err, vote.ErrVoteNotFound):
			b.respondWithError(s, i, "This vote has already been resolved.")
		default:
			log.WithError(err).WithField("message_id", i.Message.ID).Error("Failed to cast vote")
			b.respondWithError(s, i, "Unable to record your vote. Please try again.")
		}
		return
	}

	_, stillOpen := b.votes.Get(i.Message.ID)
	content := renderVoteMessage(s, i.GuildID, targetStringID, level, reason, tally)
	if !stillOpen {
		content += "\n✅ **The vote passed.** The action has been carried out."
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: voteButtons(!stillOpen),
		},
	})
	if err != nil {
		log.WithError(err).Error("Failed to update vote message")
	}
}

func renderVoteMessage(s *discordgo.Session, guildID, targetStringID string, level int, reason string, tally *vote.Tally) string {
	name := GetDisplayName(s, guildID, targetStringID)
	content := fmt.Sprintf("⚖️ **Vote to %s %s** (level %d)\nReason: %s",
		warnLevelNames[level], name, level, reason)
	if tally != nil {
		content += fmt.Sprintf("\nApprovals: **%d** | Rejections: **%d** | Online eligible: %d (needs %.0f%%)",
			tally.Approvals, tally.Rejections, tally.OnlineEligible, tally.Threshold*100)
	}
	return content
}

func voteButtons(disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Approve", Style: discordgo.SuccessButton, CustomID: "warn_approve", Disabled: disabled},
				discordgo.Button{Label: "Reject", Style: discordgo.DangerButton, CustomID: "warn_reject", Disabled: disabled},
			},
		},
	}
}

func (b *Bot) updateVoteMessage(s *discordgo.Session, channelID, messageID, content string, components []discordgo.MessageComponent) {
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &content,
		Components: &components,
	})
	if err != nil {
		log.WithError(err).Error("Failed to edit vote message")
	}
}
