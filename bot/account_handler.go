package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"doghouse/service"
)

func (b *Bot) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		log.WithError(err).Error("Failed to parse Discord ID")
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := b.userService.GetOrCreateUser(ctx, userID, i.Member.User.Username)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to get user")
		b.respondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	b.respond(s, i, fmt.Sprintf("%s, your current balance: **%s chips**", displayName, FormatBalance(user.Balance)))
}

func (b *Bot) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if _, err := b.userService.GetOrCreateUser(ctx, userID, i.Member.User.Username); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to get user")
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.userService.Work(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrOnCooldown) {
			b.respondWithError(s, i, fmt.Sprintf("You are still tired. %s.", err.Error()))
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Work failed")
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	b.respond(s, i, fmt.Sprintf("💼 You earned **%s chips**. New balance: **%s chips**",
		FormatBalance(result.Income), FormatBalance(result.NewBalance)))
}

func (b *Bot) handleDonate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var amount int64
	var recipientUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipientUser = opt.UserValue(s)
		}
	}

	if recipientUser == nil {
		b.respondWithError(s, i, "Invalid recipient user.")
		return
	}

	fromID, err := interactionUserID(i)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	toID, err := strconv.ParseInt(recipientUser.ID, 10, 64)
	if err != nil {
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if _, err := b.userService.GetOrCreateUser(ctx, fromID, i.Member.User.Username); err != nil {
		log.WithError(err).WithField("user_id", fromID).Error("Failed to get sender")
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := b.userService.TransferBetweenUsers(ctx, fromID, toID, amount, recipientUser.Username)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			b.respondWithError(s, i, "Insufficient balance for this donation.")
			return
		}
		log.WithError(err).WithFields(log.Fields{"from": fromID, "to": toID, "amount": amount}).Error("Transfer failed")
		b.respondWithError(s, i, "Unable to process donation. Please try again.")
		return
	}

	senderName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	recipientName := GetDisplayName(s, i.GuildID, recipientUser.ID)
	b.respond(s, i, fmt.Sprintf("✅ **%s** transferred **%s chips** to **%s**",
		senderName, FormatBalance(result.Amount), recipientName))
}

func (b *Bot) handleSetBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if !b.isAdmin(i) {
		b.respondWithError(s, i, "Only administrators can set balances.")
		return
	}

	var amount int64
	var targetUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			targetUser = opt.UserValue(s)
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

	if _, err := b.userService.GetOrCreateUser(ctx, targetID, targetUser.Username); err != nil {
		log.WithError(err).WithField("user_id", targetID).Error("Failed to get target user")
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	user, err := b.userService.SetBalance(ctx, targetID, amount)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"user_id": targetID, "amount": amount}).Error("SetBalance failed")
		b.respondWithError(s, i, "Unable to set balance. Please try again.")
		return
	}

	targetName := GetDisplayName(s, i.GuildID, targetUser.ID)
	b.respond(s, i, fmt.Sprintf("⚖️ Set **%s**'s balance to **%s chips**", targetName, FormatBalance(user.Balance)))
}
