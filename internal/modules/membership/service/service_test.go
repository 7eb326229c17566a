package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram/telegramtest"
	"github.com/stretchr/testify/assert"
)

const mandatory int64 = -100777

func TestIsMember(t *testing.T) {
	tests := []struct {
		status models.ChatMemberType
		want   bool
	}{
		{models.ChatMemberTypeMember, true},
		{models.ChatMemberTypeAdministrator, true},
		{models.ChatMemberTypeOwner, true},
		{models.ChatMemberTypeLeft, false},
		{models.ChatMemberTypeBanned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			client := telegramtest.New()
			client.SetMember(mandatory, 7, tt.status, false)
			gate := New(client, mandatory, "https://t.me/example")

			assert.Equal(t, tt.want, gate.IsMember(context.Background(), 7))
		})
	}
}

func TestIsMember_UnknownUser(t *testing.T) {
	gate := New(telegramtest.New(), mandatory, "")
	assert.False(t, gate.IsMember(context.Background(), 7))
}

func TestIsMember_FailsClosed(t *testing.T) {
	client := telegramtest.New()
	client.SetMember(mandatory, 7, models.ChatMemberTypeMember, false)
	client.ErrGetChatMember = errors.New("network down")

	gate := New(client, mandatory, "")
	assert.False(t, gate.IsMember(context.Background(), 7))
}

func TestIsMember_NoCache(t *testing.T) {
	client := telegramtest.New()
	gate := New(client, mandatory, "")

	assert.False(t, gate.IsMember(context.Background(), 7))
	client.SetMember(mandatory, 7, models.ChatMemberTypeMember, false)
	assert.True(t, gate.IsMember(context.Background(), 7))
	assert.Len(t, client.CallsTo("GetChatMember"), 2)
}
