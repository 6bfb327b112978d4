package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Notifier posts and edits game messages through a Discord session. Sessions
// treat delivery as best effort, so this adapter just surfaces the error.
type Notifier struct {
	session *discordgo.Session
}

// NewNotifier wraps a connected Discord session
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{session: session}
}

// Send posts a message and returns its ID as the handle
func (n *Notifier) Send(channelID, content string) (string, error) {
	msg, err := n.session.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return msg.ID, nil
}

// Edit rewrites a previously sent message
func (n *Notifier) Edit(channelID, messageID, content string) error {
	if _, err := n.session.ChannelMessageEdit(channelID, messageID, content); err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, err)
	}
	return nil
}
