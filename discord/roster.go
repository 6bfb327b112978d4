package discord

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"doghouse/vote"
)

// RosterProvider derives the eligible voter set from live guild state:
// members holding a moderator or admin role, with presence deciding who
// counts as online. Requires the guild members and presences intents.
type RosterProvider struct {
	session      *discordgo.Session
	modRoleIDs   map[string]bool
	adminRoleIDs map[string]bool
}

// NewRosterProvider builds a roster provider for the given role sets
func NewRosterProvider(session *discordgo.Session, modRoleIDs, adminRoleIDs []string) *RosterProvider {
	return &RosterProvider{
		session:      session,
		modRoleIDs:   toSet(modRoleIDs),
		adminRoleIDs: toSet(adminRoleIDs),
	}
}

// EligibleVoters recomputes the voter roster from the state cache. Role and
// presence changes are reflected on the next call, which is every tally.
func (p *RosterProvider) EligibleVoters(ctx context.Context, guildID string) ([]vote.Voter, error) {
	guild, err := p.session.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %s from state: %w", guildID, err)
	}

	online := make(map[string]bool, len(guild.Presences))
	for _, presence := range guild.Presences {
		if presence.User == nil {
			continue
		}
		switch presence.Status {
		case discordgo.StatusOnline, discordgo.StatusIdle, discordgo.StatusDoNotDisturb:
			online[presence.User.ID] = true
		}
	}

	var voters []vote.Voter
	for _, member := range guild.Members {
		if member.User == nil || member.User.Bot {
			continue
		}

		isMod, isAdmin := false, false
		for _, roleID := range member.Roles {
			if p.modRoleIDs[roleID] {
				isMod = true
			}
			if p.adminRoleIDs[roleID] {
				isAdmin = true
			}
		}
		if !isMod && !isAdmin {
			continue
		}

		userID, err := strconv.ParseInt(member.User.ID, 10, 64)
		if err != nil {
			continue
		}

		voters = append(voters, vote.Voter{
			UserID:      userID,
			IsModerator: isMod,
			IsAdmin:     isAdmin,
			Online:      online[member.User.ID],
		})
	}

	return voters, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
