package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/repository"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// EntitlementChecker answers whether a user currently holds premium.
type EntitlementChecker interface {
	IsActive(ctx context.Context, subjectID int64) bool
}

// Service is the channel registry: known chats, their owners and the free-tier cap.
type Service struct {
	channels     repository.Repository
	owners       repository.OwnershipRepository
	client       telegram.Client
	entitlements EntitlementChecker
	notifier     noticeDomain.Notifier
	botID        int64
	freeLimit    int
	now          func() time.Time

	// mu serializes the ownership check and write so concurrent
	// registrations cannot exceed the cap or claim one channel twice.
	mu sync.Mutex
}

// New creates a new channel service
func New(
	channels repository.Repository,
	owners repository.OwnershipRepository,
	client telegram.Client,
	entitlements EntitlementChecker,
	notifier noticeDomain.Notifier,
	botID int64,
	freeLimit int,
) *Service {
	if notifier == nil {
		notifier = noticeDomain.Discard
	}
	return &Service{
		channels:     channels,
		owners:       owners,
		client:       client,
		entitlements: entitlements,
		notifier:     notifier,
		botID:        botID,
		freeLimit:    freeLimit,
		now:          time.Now,
	}
}

// Register makes userID the owner of channelID. The checks run in order and the
// first failure wins: the caller must administer the chat, the bot must be in
// it, and a user without premium may own at most freeLimit channels.
// Re-registering an owned channel refreshes it without counting against the cap.
func (s *Service) Register(ctx context.Context, userID, channelID int64) (*domain.Channel, error) {
	channel, err := s.register(ctx, userID, channelID)
	if err != nil {
		metrics.ChannelRegistrations.WithLabelValues(registrationResult(err)).Inc()
		return nil, err
	}
	metrics.ChannelRegistrations.WithLabelValues("ok").Inc()
	return channel, nil
}

func (s *Service) register(ctx context.Context, userID, channelID int64) (*domain.Channel, error) {
	errBuilder := oops.In("channel").With("channel_id", channelID, "user_id", userID)

	caller, err := s.client.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: channelID, UserID: userID})
	if err != nil {
		metrics.TransportErrors.WithLabelValues("getChatMember").Inc()
		return nil, errBuilder.With("context", "caller status").Wrap(err)
	}
	if !telegram.IsAdminStatus(caller) {
		return nil, errBuilder.Wrap(sharedErrors.ErrNotChannelAdmin)
	}

	self, err := s.client.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: channelID, UserID: s.botID})
	if err != nil || !telegram.IsMemberStatus(self) {
		return nil, errBuilder.Wrap(sharedErrors.ErrBotNotMember)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.owners.GetOwnership(ctx, channelID)
	switch {
	case err == nil && existing.UserID != userID:
		return nil, errBuilder.With("owner_id", existing.UserID).Wrap(sharedErrors.ErrChannelOwned)
	case err == nil:
		// refresh of a channel the caller already owns
	case errors.Is(err, sharedErrors.ErrOwnershipNotFound):
		if err := s.checkCap(ctx, userID); err != nil {
			return nil, errBuilder.Wrap(err)
		}
	default:
		return nil, errBuilder.Wrap(err)
	}

	now := s.now().UTC()
	channel, err := s.upsertChannel(ctx, s.observe(ctx, channelID), userID, now)
	if err != nil {
		return nil, errBuilder.Wrap(err)
	}

	ownership := &domain.Ownership{ChannelID: channelID, UserID: userID, CreatedAt: now}
	if existing != nil {
		ownership.CreatedAt = existing.CreatedAt
	}
	if err := s.owners.SaveOwnership(ctx, ownership); err != nil {
		return nil, errBuilder.Wrap(err)
	}

	slog.Info("Channel registered", "channel_id", channelID, "user_id", userID, "refresh", existing != nil)

	if existing == nil {
		s.announce(ctx, channel)
		s.notifier.Notify(ctx, noticeDomain.Notice{
			Kind:   noticeDomain.KindChannelRegistered,
			Title:  "Channel registered",
			Body:   fmt.Sprintf("%s registered by user %d", channel.DisplayName(), userID),
			ChatID: channelID,
		})
	}

	return channel, nil
}

func (s *Service) checkCap(ctx context.Context, userID int64) error {
	if s.entitlements != nil && s.entitlements.IsActive(ctx, userID) {
		return nil
	}
	owned, err := s.owners.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if owned >= int64(s.freeLimit) {
		return oops.With("owned", owned, "limit", s.freeLimit).Wrap(sharedErrors.ErrFreeLimitReached)
	}
	return nil
}

// observe reads the chat's current metadata. A failed lookup still yields the id.
func (s *Service) observe(ctx context.Context, channelID int64) domain.Channel {
	observed := domain.Channel{ID: channelID}
	info, err := s.client.GetChat(ctx, &bot.GetChatParams{ChatID: channelID})
	if err != nil {
		slog.Warn("Failed to read chat info", "channel_id", channelID, "error", err)
		return observed
	}
	observed.Title = info.Title
	observed.Username = info.Username
	if kind, err := domain.ParseChatKind(string(info.Type)); err == nil {
		observed.Kind = kind
	}
	return observed
}

func (s *Service) announce(ctx context.Context, channel *domain.Channel) {
	_, err := s.client.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: channel.ID,
		Text:   "✅ This channel is now managed by the bot. Forwarded posts will be re-published without the forward tag.",
	})
	if err != nil {
		metrics.TransportErrors.WithLabelValues("sendMessage").Inc()
		slog.Warn("Failed to announce registration", "channel_id", channel.ID, "error", err)
	}
}

// Unregister drops the caller's ownership of channelID. It reports false when
// the channel is not registered to the caller.
func (s *Service) Unregister(ctx context.Context, userID, channelID int64) (bool, error) {
	o, err := s.owners.GetOwnership(ctx, channelID)
	if errors.Is(err, sharedErrors.ErrOwnershipNotFound) {
		return false, nil
	}
	if err != nil {
		return false, oops.In("channel").With("channel_id", channelID).Wrap(err)
	}
	if o.UserID != userID {
		return false, nil
	}

	deleted, err := s.owners.DeleteOwnership(ctx, channelID)
	if err != nil {
		return false, oops.In("channel").With("channel_id", channelID).Wrap(err)
	}
	slog.Info("Channel unregistered", "channel_id", channelID, "user_id", userID)
	return deleted, nil
}

// Track records a chat the bot was added to or whose membership changed.
// created is true the first time the chat is seen.
func (s *Service) Track(ctx context.Context, observed domain.Channel, addedBy int64) (*domain.Channel, bool, error) {
	_, err := s.channels.GetChannel(ctx, observed.ID)
	created := errors.Is(err, sharedErrors.ErrChannelNotFound)
	if err != nil && !created {
		return nil, false, oops.In("channel").With("channel_id", observed.ID).Wrap(err)
	}

	channel, err := s.upsertChannel(ctx, observed, addedBy, s.now().UTC())
	if err != nil {
		return nil, false, oops.In("channel").With("channel_id", observed.ID).Wrap(err)
	}
	return channel, created, nil
}

// upsertChannel merges observed metadata into the stored record. Empty observed
// fields keep their stored values, and addedBy 0 keeps the stored registrant.
func (s *Service) upsertChannel(ctx context.Context, observed domain.Channel, addedBy int64, now time.Time) (*domain.Channel, error) {
	channel, err := s.channels.GetChannel(ctx, observed.ID)
	if errors.Is(err, sharedErrors.ErrChannelNotFound) {
		channel = &domain.Channel{ID: observed.ID, AddedAt: now}
	} else if err != nil {
		return nil, err
	}

	channel.Title = lo.CoalesceOrEmpty(observed.Title, channel.Title)
	channel.Username = lo.CoalesceOrEmpty(observed.Username, channel.Username)
	channel.Kind = lo.CoalesceOrEmpty(observed.Kind, channel.Kind)
	if addedBy != 0 {
		channel.AddedBy = addedBy
	}
	channel.UpdatedAt = now

	if err := s.channels.SaveChannel(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// OwnerOf returns the owner of channelID. Missing links and lookup errors both report false.
func (s *Service) OwnerOf(ctx context.Context, channelID int64) (int64, bool) {
	o, err := s.owners.GetOwnership(ctx, channelID)
	if err != nil {
		if !errors.Is(err, sharedErrors.ErrOwnershipNotFound) {
			slog.Error("Failed to look up channel owner", "channel_id", channelID, "error", err)
		}
		return 0, false
	}
	return o.UserID, true
}

// ListOwned returns the channels registered to userID.
func (s *Service) ListOwned(ctx context.Context, userID int64) ([]*domain.Channel, error) {
	owned, err := s.owners.ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.In("channel").With("user_id", userID).Wrap(err)
	}

	return lo.Map(owned, func(o *domain.Ownership, _ int) *domain.Channel {
		channel, err := s.channels.GetChannel(ctx, o.ChannelID)
		if err != nil {
			return &domain.Channel{ID: o.ChannelID}
		}
		return channel
	}), nil
}

// CountOwned returns how many channels userID owns.
func (s *Service) CountOwned(ctx context.Context, userID int64) (int64, error) {
	return s.owners.CountByUser(ctx, userID)
}

// FreeLimit is the number of channels a user without premium may own.
func (s *Service) FreeLimit() int {
	return s.freeLimit
}

// GetChannel retrieves a channel by ID
func (s *Service) GetChannel(ctx context.Context, channelID int64) (*domain.Channel, error) {
	return s.channels.GetChannel(ctx, channelID)
}

// GetAllChannels retrieves all channels
func (s *Service) GetAllChannels(ctx context.Context) ([]*domain.Channel, error) {
	return s.channels.GetAllChannels(ctx)
}

// CountChannels returns the number of known channels
func (s *Service) CountChannels(ctx context.Context) (int64, error) {
	return s.channels.CountChannels(ctx)
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, sharedErrors.ErrNotChannelAdmin):
		return "not_admin"
	case errors.Is(err, sharedErrors.ErrBotNotMember):
		return "bot_not_member"
	case errors.Is(err, sharedErrors.ErrChannelOwned):
		return "owned"
	case errors.Is(err, sharedErrors.ErrFreeLimitReached):
		return "limit"
	default:
		return "error"
	}
}
