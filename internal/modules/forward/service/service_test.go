package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/domain"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram/telegramtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	botID   int64 = 555
	channel int64 = -100123
	owner   int64 = 7
)

type owners map[int64]int64

func (o owners) OwnerOf(_ context.Context, channelID int64) (int64, bool) {
	id, ok := o[channelID]
	return id, ok
}

type premium map[int64]bool

func (p premium) IsActive(_ context.Context, id int64) bool { return p[id] }

type recorder struct{ notices []noticeDomain.Notice }

func (r *recorder) Notify(_ context.Context, n noticeDomain.Notice) { r.notices = append(r.notices, n) }

type fixture struct {
	replacer *Replacer
	client   *telegramtest.Client
	premium  premium
	notices  *recorder
}

func newFixture(t *testing.T, canDelete bool) *fixture {
	t.Helper()
	f := &fixture{
		client:  telegramtest.New(),
		premium: premium{},
		notices: &recorder{},
	}
	f.client.SetMember(channel, botID, models.ChatMemberTypeAdministrator, canDelete)
	f.replacer = New(f.client, owners{channel: owner}, f.premium, f.notices, Options{
		BotID:         botID,
		PremiumExempt: true,
		WarnCooldown:  time.Hour,
	})
	return f
}

func forwarded(msg models.Message) *models.Message {
	msg.ID = 10
	msg.Chat = models.Chat{ID: channel, Type: models.ChatTypeChannel, Title: "News"}
	msg.ForwardOrigin = &models.MessageOrigin{}
	return &msg
}

func TestHandlePost_NotForwarded(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.replacer.HandlePost(context.Background(), &models.Message{ID: 1, Chat: models.Chat{ID: channel}, Text: "own post"})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOriginal, res.Outcome)
	assert.Empty(t, f.client.Calls)
}

func TestHandlePost_ReplacesText(t *testing.T) {
	f := newFixture(t, true)
	entities := []models.MessageEntity{{Type: models.MessageEntityTypeItalic, Offset: 0, Length: 5}}

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "Hello there", Entities: entities}))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReplaced, res.Outcome)
	assert.NotZero(t, res.MessageID)

	assert.Equal(t, []string{"GetChatMember", "DeleteMessage", "SendMessage"}, f.client.Methods(), "capture, delete, then recreate")

	del := f.client.CallsTo("DeleteMessage")[0].Params.(*bot.DeleteMessageParams)
	assert.Equal(t, 10, del.MessageID)

	sent := f.client.CallsTo("SendMessage")
	require.Len(t, sent, 1)
	params := sent[0].Params.(*bot.SendMessageParams)
	assert.Equal(t, channel, params.ChatID)
	assert.Equal(t, "Hello there", params.Text)
	assert.Equal(t, entities, params.Entities)
	assert.Empty(t, f.notices.notices)
}

func TestHandlePost_ReplacesEachMediaKind(t *testing.T) {
	caption := []models.MessageEntity{{Type: models.MessageEntityTypeBold, Offset: 0, Length: 3}}

	tests := []struct {
		name   string
		msg    models.Message
		method string
		check  func(t *testing.T, params any)
	}{
		{
			name:   "photo",
			msg:    models.Message{Photo: []models.PhotoSize{{FileID: "thumb", Width: 10, Height: 10}, {FileID: "full", Width: 800, Height: 600}}, Caption: "cap", CaptionEntities: caption},
			method: "SendPhoto",
			check: func(t *testing.T, params any) {
				p := params.(*bot.SendPhotoParams)
				assert.Equal(t, &models.InputFileString{Data: "full"}, p.Photo)
				assert.Equal(t, "cap", p.Caption)
				assert.Equal(t, caption, p.CaptionEntities)
			},
		},
		{
			name:   "video",
			msg:    models.Message{Video: &models.Video{FileID: "vid"}, Caption: "cap", CaptionEntities: caption},
			method: "SendVideo",
			check: func(t *testing.T, params any) {
				p := params.(*bot.SendVideoParams)
				assert.Equal(t, &models.InputFileString{Data: "vid"}, p.Video)
				assert.Equal(t, caption, p.CaptionEntities)
			},
		},
		{
			name:   "document",
			msg:    models.Message{Document: &models.Document{FileID: "doc"}, Caption: "cap"},
			method: "SendDocument",
			check: func(t *testing.T, params any) {
				p := params.(*bot.SendDocumentParams)
				assert.Equal(t, &models.InputFileString{Data: "doc"}, p.Document)
				assert.Equal(t, "cap", p.Caption)
			},
		},
		{
			name:   "audio",
			msg:    models.Message{Audio: &models.Audio{FileID: "aud"}},
			method: "SendAudio",
			check: func(t *testing.T, params any) {
				assert.Equal(t, &models.InputFileString{Data: "aud"}, params.(*bot.SendAudioParams).Audio)
			},
		},
		{
			name:   "voice",
			msg:    models.Message{Voice: &models.Voice{FileID: "voi"}, Caption: "cap"},
			method: "SendVoice",
			check: func(t *testing.T, params any) {
				p := params.(*bot.SendVoiceParams)
				assert.Equal(t, &models.InputFileString{Data: "voi"}, p.Voice)
				assert.Equal(t, "cap", p.Caption)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			res, err := f.replacer.HandlePost(context.Background(), forwarded(tt.msg))
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeReplaced, res.Outcome)

			calls := f.client.CallsTo(tt.method)
			require.Len(t, calls, 1)
			tt.check(t, calls[0].Params)
		})
	}
}

func TestHandlePost_PremiumOwnerIsExempt(t *testing.T) {
	f := newFixture(t, true)
	f.premium[owner] = true

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.Equal(t, ReasonPremiumExempt, res.Reason)
	assert.Empty(t, f.client.Calls)
}

func TestHandlePost_ExemptionDisabled(t *testing.T) {
	f := newFixture(t, true)
	f.premium[owner] = true
	f.replacer.opts.PremiumExempt = false

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReplaced, res.Outcome)
}

func TestReplace_IgnoresPremium(t *testing.T) {
	f := newFixture(t, true)
	f.premium[owner] = true

	res, err := f.replacer.Replace(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReplaced, res.Outcome)
}

func TestHandlePost_NoDeletePermission(t *testing.T) {
	f := newFixture(t, false)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.replacer.now = func() time.Time { return at }

	for range 3 {
		res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
		assert.ErrorIs(t, err, sharedErrors.ErrNoDeletePermission)
		assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	}

	assert.Empty(t, f.client.CallsTo("DeleteMessage"), "message stays unchanged")
	assert.Empty(t, f.client.CallsTo("SendMessage"))
	require.Len(t, f.notices.notices, 1, "one warning per cooldown window")
	assert.Equal(t, noticeDomain.KindPermissionMissing, f.notices.notices[0].Kind)
	assert.Equal(t, channel, f.notices.notices[0].ChatID)

	at = at.Add(time.Hour)
	_, _ = f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	assert.Len(t, f.notices.notices, 2, "warning repeats once the window passed")
}

func TestHandlePost_OwnerAlwaysCanDelete(t *testing.T) {
	f := newFixture(t, false)
	f.client.SetMember(channel, botID, models.ChatMemberTypeOwner, false)

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReplaced, res.Outcome)
}

func TestHandlePost_DeleteFails(t *testing.T) {
	f := newFixture(t, true)
	f.client.ErrDelete = errors.New("message can't be deleted")

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeOriginal, res.Outcome)
	assert.Empty(t, f.client.CallsTo("SendMessage"), "nothing is re-sent when delete fails")
	require.Len(t, f.notices.notices, 1)
	assert.Equal(t, noticeDomain.KindForwardFailed, f.notices.notices[0].Kind)
	assert.NotContains(t, f.notices.notices[0].Title, "lost")
}

func TestHandlePost_SendFailsAfterDelete(t *testing.T) {
	f := newFixture(t, true)
	f.client.ErrSend = errors.New("too many requests")

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeOriginal, res.Outcome)
	assert.Equal(t, ReasonSendFailed, res.Reason)
	assert.Len(t, f.client.CallsTo("DeleteMessage"), 1)

	require.Len(t, f.notices.notices, 1)
	assert.Contains(t, f.notices.notices[0].Title, "message lost")
	assert.Equal(t, channel, f.notices.notices[0].ChatID)
}

func TestHandlePost_PermissionCheckFails(t *testing.T) {
	f := newFixture(t, true)
	f.client.ErrGetChatMember = errors.New("bad gateway")

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Text: "hi"}))
	require.Error(t, err)
	assert.Equal(t, domain.OutcomeOriginal, res.Outcome)
	assert.Empty(t, f.client.CallsTo("DeleteMessage"))
	assert.Len(t, f.notices.notices, 1)
}

func TestHandlePost_Unsupported(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.replacer.HandlePost(context.Background(), forwarded(models.Message{Sticker: &models.Sticker{FileID: "s"}}))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkipped, res.Outcome)
	assert.Equal(t, ReasonUnsupported, res.Reason)
	assert.Empty(t, f.client.Calls)
}

func TestReplace_PrivateChatSkipsPermissionCheck(t *testing.T) {
	f := newFixture(t, false)
	msg := &models.Message{
		ID:            3,
		Chat:          models.Chat{ID: owner, Type: models.ChatTypePrivate},
		Text:          "forwarded to the bot",
		ForwardOrigin: &models.MessageOrigin{},
	}

	res, err := f.replacer.Replace(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReplaced, res.Outcome)
	assert.Equal(t, []string{"DeleteMessage", "SendMessage"}, f.client.Methods())
}
