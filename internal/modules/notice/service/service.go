package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/repository"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
)

var icons = map[domain.Kind]string{
	domain.KindNewUser:           "👤",
	domain.KindChannelAdded:      "📢",
	domain.KindChannelRegistered: "✅",
	domain.KindForwardFailed:     "❌",
	domain.KindPermissionMissing: "⚠️",
	domain.KindPremiumGranted:    "💎",
	domain.KindPremiumRevoked:    "🚫",
	domain.KindPremiumExpiring:   "⏳",
	domain.KindBroadcastFinished: "📣",
}

// Service is the operator log sink. Every notice is kept in memory, logged,
// and mirrored to the log channel when one is configured.
type Service struct {
	repo         repository.Repository
	client       telegram.Client
	logChannelID int64
	now          func() time.Time
}

// New creates a new notice service. client may be nil when no log channel is used.
func New(repo repository.Repository, client telegram.Client, logChannelID int64) *Service {
	return &Service{
		repo:         repo,
		client:       client,
		logChannelID: logChannelID,
		now:          time.Now,
	}
}

var _ domain.Notifier = (*Service)(nil)

// Notify records n. It never fails: a log channel that cannot be reached is only logged.
func (s *Service) Notify(ctx context.Context, n domain.Notice) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	n.ID = s.repo.Add(n)

	slog.Info("Operator notice", "kind", n.Kind, "title", n.Title, "chat_id", n.ChatID)

	if s.logChannelID == 0 || s.client == nil {
		return
	}

	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: s.logChannelID,
		Text:   Format(n),
	})
	if err != nil {
		metrics.TransportErrors.WithLabelValues("sendMessage").Inc()
		slog.Warn("Failed to mirror notice to log channel", "kind", n.Kind, "log_channel_id", s.logChannelID, "error", err)
	}
}

// Recent returns up to limit notices, newest first. limit <= 0 returns all.
func (s *Service) Recent(limit int) []domain.Notice {
	list := s.repo.List()
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// Format renders a notice for the log channel.
func Format(n domain.Notice) string {
	var b strings.Builder
	if icon, ok := icons[n.Kind]; ok {
		b.WriteString(icon)
		b.WriteString(" ")
	}
	b.WriteString(n.Title)
	if n.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Body)
	}
	if n.ChatID != 0 {
		fmt.Fprintf(&b, "\n\nChat: %d", n.ChatID)
	}
	return b.String()
}

// feedLimit caps the number of entries in the operator feed.
const feedLimit = 50

// GenerateFeed builds an Atom-ready feed of the most recent notices.
func (s *Service) GenerateFeed(baseURL string) *feeds.Feed {
	notices := s.Recent(feedLimit)

	feed := &feeds.Feed{
		Title:       "Tagless channel bot - operator notices",
		Link:        &feeds.Link{Href: baseURL + "/ops/feed.atom"},
		Description: "Recent events reported to the bot operator",
		Author:      &feeds.Author{Name: "tagless-channel-bot"},
		Created:     s.now().UTC(),
	}
	if len(notices) > 0 {
		feed.Updated = notices[0].CreatedAt
	}

	feed.Items = make([]*feeds.Item, 0, len(notices))
	for _, n := range notices {
		feed.Items = append(feed.Items, noticeToFeedItem(n, baseURL))
	}
	return feed
}

func noticeToFeedItem(n domain.Notice, baseURL string) *feeds.Item {
	description := n.Body
	if n.ChatID != 0 {
		description = strings.TrimSpace(fmt.Sprintf("%s\nChat: %d", description, n.ChatID))
	}
	return &feeds.Item{
		Id:          fmt.Sprintf("%s/ops/notices/%d", baseURL, n.ID),
		Title:       fmt.Sprintf("[%s] %s", n.Kind, n.Title),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/ops/feed.atom#%d", baseURL, n.ID)},
		Description: description,
		Created:     n.CreatedAt,
	}
}
