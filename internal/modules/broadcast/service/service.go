package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	channelDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/domain"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	userDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"golang.org/x/time/rate"
)

const (
	targetUsers    = "users"
	targetChannels = "channels"
)

// UserSource lists every known user.
type UserSource interface {
	GetAllUsers(ctx context.Context) ([]*userDomain.User, error)
}

// ChannelSource lists known channels and resolves their owners.
type ChannelSource interface {
	GetAllChannels(ctx context.Context) ([]*channelDomain.Channel, error)
	OwnerOf(ctx context.Context, channelID int64) (int64, bool)
}

// EntitlementChecker answers whether a user currently holds premium.
type EntitlementChecker interface {
	IsActive(ctx context.Context, subjectID int64) bool
}

// Report counts the delivery results of one broadcast.
type Report struct {
	Total   int
	Sent    int
	Blocked int
	Failed  int
	Skipped int
}

func (r Report) String() string {
	return fmt.Sprintf("Total: %d\nSent: %d\nBlocked: %d\nFailed: %d\nSkipped: %d", r.Total, r.Sent, r.Blocked, r.Failed, r.Skipped)
}

// Service copies an operator message to every user or every channel.
type Service struct {
	client       telegram.Client
	users        UserSource
	channels     ChannelSource
	entitlements EntitlementChecker
	notifier     noticeDomain.Notifier
	limiter      *rate.Limiter
}

// New creates a broadcast service sending at most perSecond messages per second.
func New(client telegram.Client, users UserSource, channels ChannelSource, entitlements EntitlementChecker, notifier noticeDomain.Notifier, perSecond float64) *Service {
	if notifier == nil {
		notifier = noticeDomain.Discard
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Service{
		client:       client,
		users:        users,
		channels:     channels,
		entitlements: entitlements,
		notifier:     notifier,
		limiter:      rate.NewLimiter(limit, 1),
	}
}

// BroadcastToUsers copies the message to every known user exactly once.
// Blocked recipients and other failures are counted and do not stop the run.
func (s *Service) BroadcastToUsers(ctx context.Context, fromChatID int64, messageID int) (Report, error) {
	users, err := s.users.GetAllUsers(ctx)
	if err != nil {
		return Report{}, oops.In("broadcast").With("target", targetUsers).Wrap(err)
	}

	ids := lo.Uniq(lo.Map(users, func(u *userDomain.User, _ int) int64 { return u.ID }))
	report := Report{Total: len(ids)}

	for _, id := range ids {
		if err := s.deliver(ctx, targetUsers, id, fromChatID, messageID, &report); err != nil {
			return report, err
		}
	}

	s.finish(ctx, targetUsers, report)
	return report, nil
}

// BroadcastToChannels copies the message to every known channel except those
// whose owner holds premium.
func (s *Service) BroadcastToChannels(ctx context.Context, fromChatID int64, messageID int) (Report, error) {
	channels, err := s.channels.GetAllChannels(ctx)
	if err != nil {
		return Report{}, oops.In("broadcast").With("target", targetChannels).Wrap(err)
	}

	channels = lo.UniqBy(channels, func(c *channelDomain.Channel) int64 { return c.ID })
	report := Report{Total: len(channels)}

	for _, c := range channels {
		if owner, ok := s.channels.OwnerOf(ctx, c.ID); ok && s.entitlements.IsActive(ctx, owner) {
			report.Skipped++
			metrics.BroadcastDeliveries.WithLabelValues(targetChannels, "skipped").Inc()
			continue
		}
		if err := s.deliver(ctx, targetChannels, c.ID, fromChatID, messageID, &report); err != nil {
			return report, err
		}
	}

	s.finish(ctx, targetChannels, report)
	return report, nil
}

// deliver waits for the limiter and copies one message. Only context
// cancellation is returned; send failures are tallied in report.
func (s *Service) deliver(ctx context.Context, target string, chatID, fromChatID int64, messageID int, report *Report) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return oops.In("broadcast").With("target", target, "sent", report.Sent).Wrap(err)
	}

	_, err := s.client.CopyMessage(ctx, &bot.CopyMessageParams{
		ChatID:     chatID,
		FromChatID: fromChatID,
		MessageID:  messageID,
	})

	result := "sent"
	switch {
	case err == nil:
		report.Sent++
	case telegram.IsBlocked(err):
		report.Blocked++
		result = "blocked"
	default:
		report.Failed++
		result = "failed"
		slog.Warn("Broadcast delivery failed", "target", target, "chat_id", chatID, "error", err)
	}
	metrics.BroadcastDeliveries.WithLabelValues(target, result).Inc()
	return nil
}

func (s *Service) finish(ctx context.Context, target string, report Report) {
	slog.Info("Broadcast finished", "target", target, "total", report.Total, "sent", report.Sent,
		"blocked", report.Blocked, "failed", report.Failed, "skipped", report.Skipped)
	s.notifier.Notify(ctx, noticeDomain.Notice{
		Kind:  noticeDomain.KindBroadcastFinished,
		Title: fmt.Sprintf("Broadcast to %s finished", target),
		Body:  report.String(),
	})
}
