// Package telegram describes the subset of the Bot API the modules depend on.
// *bot.Bot satisfies Client; tests substitute telegramtest.Client.
package telegram

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Client defines the methods required from the Telegram bot.
type Client interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendAudio(ctx context.Context, params *bot.SendAudioParams) (*models.Message, error)
	SendVoice(ctx context.Context, params *bot.SendVoiceParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	CopyMessage(ctx context.Context, params *bot.CopyMessageParams) (*models.MessageID, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
	GetChatMember(ctx context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error)
}

var _ Client = (*bot.Bot)(nil)

// IsMemberStatus reports whether the member currently belongs to the chat.
func IsMemberStatus(m *models.ChatMember) bool {
	if m == nil {
		return false
	}
	switch m.Type {
	case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator, models.ChatMemberTypeOwner:
		return true
	default:
		return false
	}
}

// IsAdminStatus reports whether the member administers the chat.
func IsAdminStatus(m *models.ChatMember) bool {
	if m == nil {
		return false
	}
	return m.Type == models.ChatMemberTypeAdministrator || m.Type == models.ChatMemberTypeOwner
}

// CanDeleteMessages reports whether the member may delete other users' messages.
func CanDeleteMessages(m *models.ChatMember) bool {
	if m == nil {
		return false
	}
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return true
	case models.ChatMemberTypeAdministrator:
		return m.Administrator != nil && m.Administrator.CanDeleteMessages
	default:
		return false
	}
}

// IsBlocked reports whether the recipient can no longer be reached
// (bot blocked, kicked from the chat or the user deactivated).
func IsBlocked(err error) bool {
	return errors.Is(err, bot.ErrorForbidden)
}
