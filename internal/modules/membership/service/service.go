package service

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
)

// Gate checks that a user joined the mandatory channel before using the bot.
type Gate struct {
	client    telegram.Client
	channelID int64
	joinURL   string
}

// New creates a gate for the mandatory channel.
func New(client telegram.Client, channelID int64, joinURL string) *Gate {
	return &Gate{
		client:    client,
		channelID: channelID,
		joinURL:   joinURL,
	}
}

// IsMember asks the platform live on every call. Any error counts as not joined.
func (g *Gate) IsMember(ctx context.Context, userID int64) bool {
	member, err := g.client.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: g.channelID,
		UserID: userID,
	})
	if err != nil {
		metrics.TransportErrors.WithLabelValues("getChatMember").Inc()
		slog.Warn("Membership check failed", "user_id", userID, "channel_id", g.channelID, "error", err)
		return false
	}
	return telegram.IsMemberStatus(member)
}

// JoinURL is the invite link shown in the join prompt.
func (g *Gate) JoinURL() string {
	return g.joinURL
}
