package discord

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/bwmarrin/discordgo"
)

const softbanDeleteDays = 7

// ActionExecutor carries out the moderation action a passed warning vote
// authorizes. Levels map to mute, kick, softban and ban; a softban is a ban
// that purges recent messages followed by an immediate unban.
type ActionExecutor struct {
	session    *discordgo.Session
	muteRoleID string
}

// NewActionExecutor builds the executor. muteRoleID may be empty if level 2
// warnings are never routed through votes.
func NewActionExecutor(session *discordgo.Session, muteRoleID string) *ActionExecutor {
	return &ActionExecutor{session: session, muteRoleID: muteRoleID}
}

// Execute applies the warn action for the level
func (e *ActionExecutor) Execute(ctx context.Context, guildID string, targetID int64, level int, reason string) error {
	userID := strconv.FormatInt(targetID, 10)

	log.WithFields(log.Fields{
		"guild_id":  guildID,
		"target_id": userID,
		"level":     level,
	}).Info("Executing warn action")

	switch level {
	case 2:
		if e.muteRoleID == "" {
			return fmt.Errorf("mute role is not configured")
		}
		return e.session.GuildMemberRoleAdd(guildID, userID, e.muteRoleID)
	case 3:
		return e.session.GuildMemberDeleteWithReason(guildID, userID, reason)
	case 4:
		if err := e.session.GuildBanCreateWithReason(guildID, userID, reason, softbanDeleteDays); err != nil {
			return fmt.Errorf("softban ban step failed: %w", err)
		}
		return e.session.GuildBanDelete(guildID, userID)
	case 5:
		return e.session.GuildBanCreateWithReason(guildID, userID, reason, 0)
	}
	return fmt.Errorf("no action defined for warn level %d", level)
}
