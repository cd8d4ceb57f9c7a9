package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord posts approval notices to a single channel through a bot session.
type Discord struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscord builds a REST-only bot session; no gateway connection is opened.
func NewDiscord(token, channelID string) (*Discord, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("notify: discord token and channel are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID}, nil
}

func (d *Discord) ApprovalQueued(ctx context.Context, n ApprovalNotice) error {
	_, err := d.session.ChannelMessageSend(d.channelID, FormatApproval(n), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("notify: discord send: %w", err)
	}
	return nil
}
