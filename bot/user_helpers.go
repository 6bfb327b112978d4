package bot

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// interactionUserID parses the invoking member's Discord ID
func interactionUserID(i *discordgo.InteractionCreate) (int64, error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, fmt.Errorf("interaction has no member")
	}
	return strconv.ParseInt(i.Member.User.ID, 10, 64)
}

// GetDisplayName returns the server-specific display name for a user.
// Falls back to the username if no nickname is set.
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}

	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}

	return "Unknown"
}

// GetDisplayNameInt64 is a convenience wrapper that accepts int64 user IDs
func GetDisplayNameInt64(s *discordgo.Session, guildID string, userID int64) string {
	return GetDisplayName(s, guildID, strconv.FormatInt(userID, 10))
}
