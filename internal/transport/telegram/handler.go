package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	broadcastService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/broadcast/service"
	channelDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/domain"
	channelService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/service"
	entitlementService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/service"
	forwardService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/service"
	membershipService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/membership/service"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	userService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/service"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	sharedTelegram "github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
	"github.com/samber/oops"
)

// Services bundles the modules the handler drives.
type Services struct {
	Users        *userService.Service
	Channels     *channelService.Service
	Entitlements *entitlementService.Service
	Gate         *membershipService.Gate
	Replacer     *forwardService.Replacer
	Broadcasts   *broadcastService.Service
	Notices      noticeDomain.Notifier
}

// Handler handles Telegram bot interactions
type Handler struct {
	cfg          *config.Config
	client       sharedTelegram.Client
	users        *userService.Service
	channels     *channelService.Service
	entitlements *entitlementService.Service
	gate         *membershipService.Gate
	replacer     *forwardService.Replacer
	broadcasts   *broadcastService.Service
	notices      noticeDomain.Notifier
}

// New creates a new Telegram handler
func New(cfg *config.Config, client sharedTelegram.Client, svc Services) *Handler {
	notices := svc.Notices
	if notices == nil {
		notices = noticeDomain.Discard
	}
	return &Handler{
		cfg:          cfg,
		client:       client,
		users:        svc.Users,
		channels:     svc.Channels,
		entitlements: svc.Entitlements,
		gate:         svc.Gate,
		replacer:     svc.Replacer,
		broadcasts:   svc.Broadcasts,
		notices:      notices,
	}
}

// Router builds a router holding the handler's routes.
func (h *Handler) Router() *Router {
	r := NewRouter()
	h.Register(r)
	return r
}

// Register adds the handler's routes to r. The bot is created with r as its
// default handler before the services it needs exist, so routes are added later.
func (h *Handler) Register(r *Router) {
	r.Handle("channel_post", ChannelPost(), h.handleChannelPost)
	r.Handle("edited_channel_post", EditedChannelPost(), h.handleEditedChannelPost)
	r.Handle("my_chat_member", MyChatMember(), h.handleMyChatMember)

	r.Handle(CallbackVerifyJoin, Callback(CallbackVerifyJoin), h.handleVerifyJoin)
	r.Handle(CallbackBuyPremium, Callback(CallbackBuyPremium), h.handleBuyPremium)
	r.Handle(CallbackHelp, Callback(CallbackHelp), h.handleHelpCallback)
	r.Handle(CallbackBackToStart, Callback(CallbackBackToStart), h.handleBackToStart)

	r.Handle("start", Command("start"), h.private(h.handleStart))
	r.Handle("help", Command("help"), h.private(h.handleHelp))
	r.Handle("addchannel", Command("addchannel"), h.private(h.membersOnly(h.handleAddChannel)))
	r.Handle("removechannel", Command("removechannel"), h.private(h.membersOnly(h.handleRemoveChannel)))
	r.Handle("mychannels", Command("mychannels"), h.private(h.membersOnly(h.handleMyChannels)))
	r.Handle("remove_tags", Command("remove_tags"), h.private(h.membersOnly(h.handleRemoveTags)))
	r.Handle("premium_check", Command("premium_check"), h.private(h.handlePremiumCheck))

	r.Handle("add_premium", Command("add_premium"), h.private(h.adminOnly(h.handleAddPremium)))
	r.Handle("remove_premium", Command("remove_premium"), h.private(h.adminOnly(h.handleRemovePremium)))
	r.Handle("stats", Command("stats"), h.private(h.adminOnly(h.handleStats)))
	r.Handle("premium_stats", Command("premium_stats"), h.private(h.adminOnly(h.handlePremiumStats)))
	r.Handle("broadcast", Command("broadcast"), h.private(h.adminOnly(h.handleBroadcast)))
	r.Handle("channel_broadcast", Command("channel_broadcast"), h.private(h.adminOnly(h.handleChannelBroadcast)))

	r.Handle("unknown_command", AnyCommand(), h.private(h.handleUnknown))
}

// private records the sender of a private-chat command before running next.
func (h *Handler) private(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, update *models.Update) {
		from := update.Message.From
		if from == nil {
			return
		}
		h.touch(ctx, from)
		next(ctx, update)
	}
}

func (h *Handler) touch(ctx context.Context, from *models.User) {
	user, created, err := h.users.Touch(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		slog.Error("Failed to save user", "user_id", from.ID, "error", err)
		return
	}
	if created {
		h.notices.Notify(ctx, noticeDomain.Notice{
			Kind:  noticeDomain.KindNewUser,
			Title: "New user started the bot",
			Body:  fmt.Sprintf("User ID: %d\nName: %s\nUsername: @%s", user.ID, user.DisplayName(), user.Username),
		})
	}
}

// adminOnly stops every caller except the configured operator.
func (h *Handler) adminOnly(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, update *models.Update) {
		msg := update.Message
		if msg.From == nil || !h.users.IsOperator(msg.From.ID) {
			err := oops.In("admin").With("chat_id", msg.Chat.ID, "command", msg.Text).Wrap(sharedErrors.ErrUnauthorized)
			slog.Warn("Admin command refused", "chat_id", msg.Chat.ID, "error", err)
			h.reply(ctx, msg.Chat.ID, textUnauthorized, nil)
			return
		}
		next(ctx, update)
	}
}

// membersOnly shows the join prompt to users outside the mandatory channel.
func (h *Handler) membersOnly(next HandlerFunc) HandlerFunc {
	return func(ctx context.Context, update *models.Update) {
		msg := update.Message
		if msg.From == nil {
			return
		}
		if !h.users.IsOperator(msg.From.ID) && !h.gate.IsMember(ctx, msg.From.ID) {
			h.reply(ctx, msg.Chat.ID, textJoinPrompt, joinKeyboard(h.gate.JoinURL()))
			return
		}
		next(ctx, update)
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := h.client.SendMessage(ctx, params); err != nil {
		metrics.TransportErrors.WithLabelValues("sendMessage").Inc()
		slog.Error("Failed to send reply", "chat_id", chatID, "error", err)
	}
}

func (h *Handler) handleChannelPost(ctx context.Context, update *models.Update) {
	msg := update.ChannelPost

	res, err := h.replacer.HandlePost(ctx, msg)
	switch {
	case errors.Is(err, sharedErrors.ErrNoDeletePermission):
		slog.Debug("Forwarded post left in place", "channel_id", msg.Chat.ID, "message_id", msg.ID, "reason", res.Reason)
	case err != nil:
		slog.Error("Error processing channel post", "channel_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	default:
		slog.Debug("Channel post processed", "channel_id", msg.Chat.ID, "message_id", msg.ID, "outcome", res.Outcome, "reason", res.Reason)
	}
}

// Edited posts keep their original forward metadata; there is nothing to re-publish.
func (h *Handler) handleEditedChannelPost(_ context.Context, update *models.Update) {
	msg := update.EditedChannelPost
	slog.Debug("Edited channel post ignored", "channel_id", msg.Chat.ID, "message_id", msg.ID)
}

func (h *Handler) handleMyChatMember(ctx context.Context, update *models.Update) {
	change := update.MyChatMember
	chat := change.Chat

	kind, err := channelDomain.ParseChatKind(string(chat.Type))
	if err != nil {
		slog.Debug("Membership change in private chat", "user_id", chat.ID, "status", change.NewChatMember.Type)
		return
	}

	if !sharedTelegram.IsMemberStatus(&change.NewChatMember) {
		slog.Info("Bot removed from chat", "channel_id", chat.ID, "title", chat.Title, "status", change.NewChatMember.Type)
		return
	}

	observed := channelDomain.Channel{ID: chat.ID, Title: chat.Title, Username: chat.Username, Kind: kind}
	channel, created, err := h.channels.Track(ctx, observed, change.From.ID)
	if err != nil {
		slog.Error("Failed to track chat", "channel_id", chat.ID, "error", err)
		return
	}
	if !created {
		slog.Debug("Chat membership updated", "channel_id", chat.ID, "status", change.NewChatMember.Type)
		return
	}

	slog.Info("Bot added to new chat", "channel_id", chat.ID, "title", chat.Title, "added_by", change.From.ID)
	h.notices.Notify(ctx, noticeDomain.Notice{
		Kind:   noticeDomain.KindChannelAdded,
		Title:  "Bot added to new channel",
		Body:   fmt.Sprintf("Title: %s\nKind: %s\nAdded by: %d", channel.DisplayName(), channel.Kind, change.From.ID),
		ChatID: chat.ID,
	})

	// The user who added the bot may never have opened a private chat; this is best effort.
	if change.From.ID != 0 && !change.From.IsBot {
		h.reply(ctx, change.From.ID,
			fmt.Sprintf("👋 I was added to %s.\n\nSend /addchannel %d to register it under your account.", channel.DisplayName(), chat.ID), nil)
	}
}
