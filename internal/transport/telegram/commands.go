package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	forwardDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/domain"
	forwardService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/service"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	sharedTelegram "github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
)

func (h *Handler) handleStart(ctx context.Context, update *models.Update) {
	msg := update.Message
	if !h.users.IsOperator(msg.From.ID) && !h.gate.IsMember(ctx, msg.From.ID) {
		h.reply(ctx, msg.Chat.ID, textJoinPrompt, joinKeyboard(h.gate.JoinURL()))
		return
	}
	h.reply(ctx, msg.Chat.ID, welcomeText(msg.From.FirstName), mainKeyboard())
}

func (h *Handler) handleHelp(ctx context.Context, update *models.Update) {
	h.reply(ctx, update.Message.Chat.ID, helpText(h.channels.FreeLimit()), backKeyboard())
}

func (h *Handler) handleUnknown(ctx context.Context, update *models.Update) {
	h.reply(ctx, update.Message.Chat.ID, textUnknown, nil)
}

func (h *Handler) handleAddChannel(ctx context.Context, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)

	channelID, err := parseChatID(args)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "Usage: /addchannel <channel_id>\n\nExample: /addchannel -1001234567890", nil)
		return
	}

	channel, err := h.channels.Register(ctx, msg.From.ID, channelID)
	if err != nil {
		if sharedErrors.IsAuthorization(err) || sharedErrors.IsValidation(err) {
			slog.Info("Channel registration refused", "channel_id", channelID, "user_id", msg.From.ID, "error", err)
		} else {
			slog.Error("Channel registration failed", "channel_id", channelID, "user_id", msg.From.ID, "error", err)
		}
		text, markup := h.registrationError(err)
		h.reply(ctx, msg.Chat.ID, text, markup)
		return
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Channel %s is registered.\n\nForwarded posts will be re-published without the forward tag.", channel.DisplayName()), nil)
}

func (h *Handler) registrationError(err error) (string, models.ReplyMarkup) {
	switch {
	case errors.Is(err, sharedErrors.ErrNotChannelAdmin):
		return "❌ You must be an administrator of that channel to register it.", nil
	case errors.Is(err, sharedErrors.ErrBotNotMember):
		return "❌ I am not in that channel yet. Add me as an administrator with the \"Delete messages\" right and try again.", nil
	case errors.Is(err, sharedErrors.ErrChannelOwned):
		return "❌ This channel is already registered by another user.", nil
	case errors.Is(err, sharedErrors.ErrFreeLimitReached):
		return fmt.Sprintf("⚠️ The free plan allows up to %d channels.\n\nBuy premium to register more.", h.channels.FreeLimit()),
			&models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: "👑 Buy Premium", CallbackData: CallbackBuyPremium}},
			}}
	default:
		return "❌ Could not register the channel right now. Please try again later.", nil
	}
}

func (h *Handler) handleRemoveChannel(ctx context.Context, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)

	channelID, err := parseChatID(args)
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "Usage: /removechannel <channel_id>", nil)
		return
	}

	removed, err := h.channels.Unregister(ctx, msg.From.ID, channelID)
	switch {
	case err != nil:
		slog.Error("Failed to unregister channel", "channel_id", channelID, "user_id", msg.From.ID, "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not remove the channel right now. Please try again later.", nil)
	case !removed:
		h.reply(ctx, msg.Chat.ID, "❌ That channel is not registered to you.", nil)
	default:
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Channel %d removed.", channelID), nil)
	}
}

func (h *Handler) handleMyChannels(ctx context.Context, update *models.Update) {
	msg := update.Message

	channels, err := h.channels.ListOwned(ctx, msg.From.ID)
	if err != nil {
		slog.Error("Failed to list channels", "user_id", msg.From.ID, "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not load your channels right now.", nil)
		return
	}

	var b strings.Builder
	if h.entitlements.IsActive(ctx, msg.From.ID) {
		b.WriteString("👑 Plan: Premium (no channel limit)\n\n")
	} else {
		owned, err := h.channels.CountOwned(ctx, msg.From.ID)
		if err != nil {
			owned = int64(len(channels))
		}
		fmt.Fprintf(&b, "Plan: Free (%d of %d channels)\n\n", owned, h.channels.FreeLimit())
	}

	if len(channels) == 0 {
		b.WriteString("You have no registered channels. Use /addchannel <channel_id>.")
	} else {
		b.WriteString("Your channels:\n")
		for _, c := range channels {
			fmt.Fprintf(&b, "• %s (%d)\n", c.DisplayName(), c.ID)
		}
	}
	h.reply(ctx, msg.Chat.ID, b.String(), nil)
}

// handleRemoveTags re-publishes the forwarded message the user replied to.
func (h *Handler) handleRemoveTags(ctx context.Context, update *models.Update) {
	msg := update.Message

	target := msg.ReplyToMessage
	if target == nil {
		h.reply(ctx, msg.Chat.ID, "Reply to a forwarded message with /remove_tags to get a copy without the forward tag.", nil)
		return
	}
	if target.Chat.ID == 0 {
		target.Chat = msg.Chat
	}

	res, err := h.replacer.Replace(ctx, target)
	if err != nil {
		slog.Error("Manual tag removal failed", "user_id", msg.From.ID, "message_id", target.ID, "error", err)
	}

	switch {
	case res.Outcome == forwardDomain.OutcomeReplaced:
		// the clean copy is the reply
	case res.Reason == forwardService.ReasonNotForwarded:
		h.reply(ctx, msg.Chat.ID, "That message is not forwarded. Reply to a forwarded message.", nil)
	case res.Reason == forwardService.ReasonUnsupported:
		h.reply(ctx, msg.Chat.ID, "❌ This kind of message is not supported (albums, stickers, GIFs and polls).", nil)
	default:
		h.reply(ctx, msg.Chat.ID, "❌ Could not remove the forward tag. Please try again.", nil)
	}
}

// handlePremiumCheck reports premium status. Without an argument it checks the caller;
// a negative id names a channel the caller administers; a positive id names a user and
// is limited to the caller themself and the operator.
func (h *Handler) handlePremiumCheck(ctx context.Context, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)

	subjectID := msg.From.ID
	subject := "You"
	if len(args) > 0 {
		id, err := parseChatID(args)
		if err != nil {
			h.reply(ctx, msg.Chat.ID, "Usage: /premium_check [user_id or channel_id]", nil)
			return
		}

		switch {
		case id < 0:
			member, err := h.client.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: id, UserID: msg.From.ID})
			if err != nil || !sharedTelegram.IsAdminStatus(member) {
				h.reply(ctx, msg.Chat.ID, "❌ You must be an administrator of that channel to check it.", nil)
				return
			}
			owner, ok := h.channels.OwnerOf(ctx, id)
			if !ok {
				h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Channel %d is not registered.", id), nil)
				return
			}
			subjectID = owner
			subject = fmt.Sprintf("Owner of channel %d", id)
		case id != msg.From.ID && !h.users.IsOperator(msg.From.ID):
			h.reply(ctx, msg.Chat.ID, textUnauthorized, nil)
			return
		default:
			subjectID = id
			subject = fmt.Sprintf("User %d", id)
		}
	}

	e, err := h.entitlements.Get(ctx, subjectID)
	switch {
	case sharedErrors.IsNotFound(err):
		e = nil
	case err != nil:
		slog.Error("Failed to load entitlement", "user_id", subjectID, "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not check premium status right now.", nil)
		return
	}
	h.reply(ctx, msg.Chat.ID, entitlementText(subject, e, h.entitlements.Now()), nil)
}

// parseChatID reads a single integer chat id from the command arguments.
func parseChatID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, sharedErrors.ErrInvalidArgument
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, sharedErrors.ErrInvalidArgument
	}
	return id, nil
}
