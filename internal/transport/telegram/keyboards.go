package telegram

import (
	"github.com/go-telegram/bot/models"
)

// Callback data understood by the router.
const (
	CallbackVerifyJoin  = "verify_join"
	CallbackBuyPremium  = "buy_premium"
	CallbackHelp        = "help"
	CallbackBackToStart = "back_to_start"
)

func joinKeyboard(joinURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📢 Join Our Channel", URL: joinURL}},
			{{Text: "✅ Verify", CallbackData: CallbackVerifyJoin}},
		},
	}
}

func mainKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "❓ Help", CallbackData: CallbackHelp}},
			{{Text: "👑 Buy Premium", CallbackData: CallbackBuyPremium}},
		},
	}
}

func premiumKeyboard(adminUsername string) *models.InlineKeyboardMarkup {
	rows := [][]models.InlineKeyboardButton{}
	if adminUsername != "" {
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: "💳 Send Payment Screenshot", URL: "https://t.me/" + adminUsername},
		})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "⬅️ Back", CallbackData: CallbackBackToStart}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func backKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "⬅️ Back", CallbackData: CallbackBackToStart}},
		},
	}
}
