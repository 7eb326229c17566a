package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
)

func (h *Handler) handleVerifyJoin(ctx context.Context, update *models.Update) {
	query := update.CallbackQuery
	h.touch(ctx, &query.From)

	if !h.users.IsOperator(query.From.ID) && !h.gate.IsMember(ctx, query.From.ID) {
		h.answer(ctx, query, textNotJoinedYet)
		h.edit(ctx, query, textJoinPrompt, joinKeyboard(h.gate.JoinURL()))
		return
	}

	h.answer(ctx, query, "✅ Verified")
	h.edit(ctx, query, welcomeText(query.From.FirstName), mainKeyboard())
}

func (h *Handler) handleBuyPremium(ctx context.Context, update *models.Update) {
	query := update.CallbackQuery
	h.touch(ctx, &query.From)
	h.answer(ctx, query, "")
	h.edit(ctx, query, premiumText(h.cfg.PaymentInfo), premiumKeyboard(h.cfg.AdminUsername))
}

func (h *Handler) handleHelpCallback(ctx context.Context, update *models.Update) {
	query := update.CallbackQuery
	h.touch(ctx, &query.From)
	h.answer(ctx, query, "")
	h.edit(ctx, query, helpText(h.channels.FreeLimit()), backKeyboard())
}

func (h *Handler) handleBackToStart(ctx context.Context, update *models.Update) {
	query := update.CallbackQuery
	h.touch(ctx, &query.From)
	h.answer(ctx, query, "")
	h.edit(ctx, query, welcomeText(query.From.FirstName), mainKeyboard())
}

func (h *Handler) answer(ctx context.Context, query *models.CallbackQuery, text string) {
	_, err := h.client.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: query.ID,
		Text:            text,
	})
	if err != nil {
		metrics.TransportErrors.WithLabelValues("answerCallbackQuery").Inc()
		slog.Warn("Failed to answer callback query", "user_id", query.From.ID, "error", err)
	}
}

// edit replaces the message carrying the keyboard. Messages too old to edit
// are answered with a new message instead.
func (h *Handler) edit(ctx context.Context, query *models.CallbackQuery, text string, markup *models.InlineKeyboardMarkup) {
	msg := query.Message.Message
	if msg == nil {
		h.reply(ctx, query.From.ID, text, markup)
		return
	}

	_, err := h.client.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		metrics.TransportErrors.WithLabelValues("editMessageText").Inc()
		slog.Warn("Failed to edit message, sending a new one", "chat_id", msg.Chat.ID, "error", err)
		h.reply(ctx, msg.Chat.ID, text, markup)
	}
}
