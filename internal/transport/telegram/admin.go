package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
	broadcastService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/broadcast/service"
	entitlementDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/lo"
)

func (h *Handler) handleAddPremium(ctx context.Context, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)

	usage := "Usage: /add_premium <user_id> <duration>\n\nDuration: 30, 30d, 2w, 3m or 1y"
	if len(args) < 2 {
		h.reply(ctx, msg.Chat.ID, usage, nil)
		return
	}

	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		h.reply(ctx, msg.Chat.ID, "❌ Invalid user ID.\n\n"+usage, nil)
		return
	}
	days, err := entitlementDomain.ParseDuration(strings.Join(args[1:], ""))
	if err != nil {
		h.reply(ctx, msg.Chat.ID, "❌ Invalid duration.\n\n"+usage, nil)
		return
	}

	e, err := h.entitlements.Grant(ctx, userID, days, msg.From.ID)
	if sharedErrors.IsValidation(err) {
		h.reply(ctx, msg.Chat.ID, "❌ Invalid duration.\n\n"+usage, nil)
		return
	}
	if err != nil {
		slog.Error("Failed to grant premium", "user_id", userID, "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not grant premium right now.", nil)
		return
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Premium granted to user %d for %s.\nExpires: %s UTC",
		userID, entitlementDomain.FormatDays(days), e.ExpiresAt.Format(timeLayout)), nil)

	// The user may never have started the bot; the DM is best effort.
	h.reply(ctx, userID, fmt.Sprintf("🎉 Premium activated for %s.\nExpires: %s UTC\n\nThe channel limit no longer applies to you.",
		entitlementDomain.FormatDays(days), e.ExpiresAt.Format(timeLayout)), nil)
}

func (h *Handler) handleRemovePremium(ctx context.Context, update *models.Update) {
	msg := update.Message
	_, args := parseCommand(msg.Text)

	if len(args) != 1 {
		h.reply(ctx, msg.Chat.ID, "Usage: /remove_premium <user_id>", nil)
		return
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || userID <= 0 {
		h.reply(ctx, msg.Chat.ID, "❌ Invalid user ID.\n\nUsage: /remove_premium <user_id>", nil)
		return
	}

	removed, err := h.entitlements.Revoke(ctx, userID)
	switch {
	case err != nil:
		slog.Error("Failed to revoke premium", "user_id", userID, "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not remove premium right now.", nil)
	case !removed:
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("User %d has no premium subscription.", userID), nil)
	default:
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Premium removed from user %d.", userID), nil)
	}
}

func (h *Handler) handleStats(ctx context.Context, update *models.Update) {
	msg := update.Message

	users, errUsers := h.users.CountUsers(ctx)
	channels, errChannels := h.channels.CountChannels(ctx)
	active, errActive := h.entitlements.ListActive(ctx)
	if err := errors.Join(errUsers, errChannels, errActive); err != nil {
		slog.Error("Failed to collect stats", "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not collect statistics right now.", nil)
		return
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("📊 Bot Statistics\n\nUsers: %d\nChannels: %d\nActive premium: %d",
		users, channels, len(active)), nil)
}

func (h *Handler) handlePremiumStats(ctx context.Context, update *models.Update) {
	msg := update.Message

	all, err := h.entitlements.ListAll(ctx)
	if err != nil {
		slog.Error("Failed to list premium users", "error", err)
		h.reply(ctx, msg.Chat.ID, "❌ Could not load premium users right now.", nil)
		return
	}
	if len(all) == 0 {
		h.reply(ctx, msg.Chat.ID, "👑 No premium subscriptions.", nil)
		return
	}

	now := h.entitlements.Now()
	active := lo.CountBy(all, func(e *entitlementDomain.Entitlement) bool { return e.Active(now) })

	var b strings.Builder
	fmt.Fprintf(&b, "👑 Premium subscriptions: %d (active: %d)\n\n", len(all), active)
	for _, e := range all {
		if e.Active(now) {
			fmt.Fprintf(&b, "✅ %d until %s UTC (%s left)\n", e.SubjectID, e.ExpiresAt.Format(timeLayout),
				entitlementDomain.FormatDays(e.RemainingDays(now)))
			continue
		}
		fmt.Fprintf(&b, "❌ %d expired %s UTC\n", e.SubjectID, e.ExpiresAt.Format(timeLayout))
	}
	h.reply(ctx, msg.Chat.ID, b.String(), nil)
}

func (h *Handler) handleBroadcast(ctx context.Context, update *models.Update) {
	h.broadcast(ctx, update, "users", h.broadcasts.BroadcastToUsers)
}

func (h *Handler) handleChannelBroadcast(ctx context.Context, update *models.Update) {
	h.broadcast(ctx, update, "channels", h.broadcasts.BroadcastToChannels)
}

type broadcastFunc func(ctx context.Context, fromChatID int64, messageID int) (broadcastService.Report, error)

func (h *Handler) broadcast(ctx context.Context, update *models.Update, target string, send broadcastFunc) {
	msg := update.Message
	if msg.ReplyToMessage == nil {
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("Reply to the message you want to send to all %s.", target), nil)
		return
	}

	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("📤 Broadcasting to %s...", target), nil)

	report, err := send(ctx, msg.Chat.ID, msg.ReplyToMessage.ID)
	if err != nil {
		slog.Error("Broadcast interrupted", "target", target, "error", err)
		h.reply(ctx, msg.Chat.ID, fmt.Sprintf("⚠️ Broadcast interrupted.\n\n%s", report), nil)
		return
	}
	h.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Broadcast to %s completed.\n\n%s", target, report), nil)
}
