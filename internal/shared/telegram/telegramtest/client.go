// Package telegramtest provides an in-memory telegram.Client that records calls.
package telegramtest

import (
	"context"
	"errors"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Call is one recorded outbound request.
type Call struct {
	Method string
	Params any
}

// Client fakes the Bot API. Members maps chatID -> userID -> member;
// Err* fields make the matching method fail.
type Client struct {
	mu sync.Mutex

	Calls   []Call
	Members map[int64]map[int64]*models.ChatMember
	Chats   map[int64]*models.ChatFullInfo

	ErrSend          error
	ErrDelete        error
	ErrGetChatMember error
	// ErrCopyTo fails CopyMessage for specific destination chats.
	ErrCopyTo map[int64]error

	nextID int
}

// New creates an empty fake client.
func New() *Client {
	return &Client{
		Members:   make(map[int64]map[int64]*models.ChatMember),
		Chats:     make(map[int64]*models.ChatFullInfo),
		ErrCopyTo: make(map[int64]error),
		nextID:    1000,
	}
}

// SetMember registers a member of the given status in a chat.
func (c *Client) SetMember(chatID, userID int64, memberType models.ChatMemberType, canDelete bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Members[chatID] == nil {
		c.Members[chatID] = make(map[int64]*models.ChatMember)
	}
	m := &models.ChatMember{Type: memberType}
	switch memberType {
	case models.ChatMemberTypeOwner:
		m.Owner = &models.ChatMemberOwner{}
	case models.ChatMemberTypeAdministrator:
		m.Administrator = &models.ChatMemberAdministrator{CanDeleteMessages: canDelete}
	case models.ChatMemberTypeMember:
		m.Member = &models.ChatMemberMember{}
	case models.ChatMemberTypeLeft:
		m.Left = &models.ChatMemberLeft{}
	}
	c.Members[chatID][userID] = m
}

// SetChat registers chat metadata returned by GetChat.
func (c *Client) SetChat(chat *models.ChatFullInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Chats[chat.ID] = chat
}

// CallsTo returns the recorded calls of one method, in order.
func (c *Client) CallsTo(method string) []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Call
	for _, call := range c.Calls {
		if call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

// Methods returns the sequence of recorded method names.
func (c *Client) Methods() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.Calls))
	for _, call := range c.Calls {
		out = append(out, call.Method)
	}
	return out
}

// SentTexts returns the text of every SendMessage call addressed to chatID.
func (c *Client) SentTexts(chatID int64) []string {
	var out []string
	for _, call := range c.CallsTo("SendMessage") {
		p := call.Params.(*bot.SendMessageParams)
		if p.ChatID == chatID {
			out = append(out, p.Text)
		}
	}
	return out
}

func (c *Client) record(method string, params any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, Call{Method: method, Params: params})
}

func (c *Client) message(chatID any) *models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id, _ := chatID.(int64)
	return &models.Message{ID: c.nextID, Chat: models.Chat{ID: id}}
}

func (c *Client) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	c.record("SendMessage", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	msg := c.message(params.ChatID)
	msg.Text = params.Text
	msg.Entities = params.Entities
	return msg, nil
}

func (c *Client) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	c.record("SendPhoto", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	return c.message(params.ChatID), nil
}

func (c *Client) SendVideo(_ context.Context, params *bot.SendVideoParams) (*models.Message, error) {
	c.record("SendVideo", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	return c.message(params.ChatID), nil
}

func (c *Client) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	c.record("SendDocument", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	return c.message(params.ChatID), nil
}

func (c *Client) SendAudio(_ context.Context, params *bot.SendAudioParams) (*models.Message, error) {
	c.record("SendAudio", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	return c.message(params.ChatID), nil
}

func (c *Client) SendVoice(_ context.Context, params *bot.SendVoiceParams) (*models.Message, error) {
	c.record("SendVoice", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	return c.message(params.ChatID), nil
}

func (c *Client) EditMessageText(_ context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	c.record("EditMessageText", params)
	if c.ErrSend != nil {
		return nil, c.ErrSend
	}
	return c.message(params.ChatID), nil
}

func (c *Client) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	c.record("DeleteMessage", params)
	if c.ErrDelete != nil {
		return false, c.ErrDelete
	}
	return true, nil
}

func (c *Client) CopyMessage(_ context.Context, params *bot.CopyMessageParams) (*models.MessageID, error) {
	c.record("CopyMessage", params)
	if id, ok := params.ChatID.(int64); ok {
		if err := c.ErrCopyTo[id]; err != nil {
			return nil, err
		}
	}
	msg := c.message(params.ChatID)
	return &models.MessageID{ID: msg.ID}, nil
}

func (c *Client) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	c.record("AnswerCallbackQuery", params)
	return true, nil
}

func (c *Client) GetChat(_ context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error) {
	c.record("GetChat", params)
	id, _ := params.ChatID.(int64)
	c.mu.Lock()
	defer c.mu.Unlock()
	chat, ok := c.Chats[id]
	if !ok {
		return nil, errors.New("bad request, Bad Request: chat not found")
	}
	return chat, nil
}

func (c *Client) GetChatMember(_ context.Context, params *bot.GetChatMemberParams) (*models.ChatMember, error) {
	c.record("GetChatMember", params)
	if c.ErrGetChatMember != nil {
		return nil, c.ErrGetChatMember
	}
	id, _ := params.ChatID.(int64)
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.Members[id][params.UserID]; ok {
		return m, nil
	}
	return &models.ChatMember{Type: models.ChatMemberTypeLeft, Left: &models.ChatMemberLeft{}}, nil
}
