package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	broadcastService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/broadcast/service"
	channelRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/repository"
	channelService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/service"
	entitlementDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
	entitlementRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/repository"
	entitlementService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/service"
	forwardService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/service"
	membershipService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/membership/service"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	userRepo "github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/repository"
	userService "github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/service"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/config"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram/telegramtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBotID     int64 = 555
	testOperator  int64 = 1
	testUser      int64 = 7
	testGateID    int64 = -100500
	testFreeLimit       = 2
)

type noticeRecorder struct{ notices []noticeDomain.Notice }

func (r *noticeRecorder) Notify(_ context.Context, n noticeDomain.Notice) {
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) kinds() []noticeDomain.Kind {
	out := make([]noticeDomain.Kind, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

type harness struct {
	router   *Router
	client   *telegramtest.Client
	channels *channelService.Service
	grants   entitlementRepo.Repository
	notices  *noticeRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	users, err := userRepo.NewFileStorage(dir)
	require.NoError(t, err)
	channelStore, err := channelRepo.NewFileStorage(dir)
	require.NoError(t, err)
	grants, err := entitlementRepo.NewFileStorage(dir)
	require.NoError(t, err)

	client := telegramtest.New()
	notices := &noticeRecorder{}

	userSvc := userService.New(users, testOperator)
	entitlementSvc := entitlementService.New(grants, notices)
	channelSvc := channelService.New(channelStore, channelStore, client, entitlementSvc, notices, testBotID, testFreeLimit)

	cfg := &config.Config{
		AdminID:          testOperator,
		AdminUsername:    "operator",
		ChannelID:        testGateID,
		FreeChannelLimit: testFreeLimit,
	}

	h := New(cfg, client, Services{
		Users:        userSvc,
		Channels:     channelSvc,
		Entitlements: entitlementSvc,
		Gate:         membershipService.New(client, testGateID, "https://t.me/gate"),
		Replacer:     forwardService.New(client, channelSvc, entitlementSvc, notices, forwardService.Options{BotID: testBotID, PremiumExempt: true}),
		Broadcasts:   broadcastService.New(client, userSvc, channelSvc, entitlementSvc, notices, 0),
		Notices:      notices,
	})

	return &harness{router: h.Router(), client: client, channels: channelSvc, grants: grants, notices: notices}
}

func (h *harness) send(from int64, text string) string {
	return h.router.Route(context.Background(), &models.Update{Message: &models.Message{
		ID:   10,
		Text: text,
		Chat: models.Chat{ID: from, Type: models.ChatTypePrivate},
		From: &models.User{ID: from, FirstName: "Alice"},
	}})
}

func (h *harness) lastText(chatID int64) string {
	texts := h.client.SentTexts(chatID)
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

func (h *harness) manageable(channelID int64, title string) {
	h.client.SetChat(&models.ChatFullInfo{ID: channelID, Type: models.ChatTypeChannel, Title: title})
	h.client.SetMember(channelID, testUser, models.ChatMemberTypeOwner, false)
	h.client.SetMember(channelID, testBotID, models.ChatMemberTypeAdministrator, true)
}

func TestAdminCommandsRejectOtherUsers(t *testing.T) {
	h := newHarness(t)

	for _, cmd := range []string{"/stats", "/premium_stats", "/add_premium 7 30d", "/remove_premium 7", "/broadcast", "/channel_broadcast"} {
		t.Run(cmd, func(t *testing.T) {
			h.send(testUser, cmd)
			assert.Equal(t, textUnauthorized, h.lastText(testUser))
		})
	}
	assert.Empty(t, h.client.CallsTo("CopyMessage"))
}

func TestStartShowsJoinPromptToNonMembers(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "start", h.send(testUser, "/start"))
	assert.Equal(t, textJoinPrompt, h.lastText(testUser))
	assert.Equal(t, []noticeDomain.Kind{noticeDomain.KindNewUser}, h.notices.kinds())

	h.client.SetMember(testGateID, testUser, models.ChatMemberTypeMember, false)
	h.send(testUser, "/start")
	assert.Contains(t, h.lastText(testUser), "Hi Alice")
	assert.Len(t, h.notices.notices, 1, "a returning user is not announced again")
}

func TestMemberCommandsRequireMembership(t *testing.T) {
	h := newHarness(t)

	h.send(testUser, "/mychannels")
	assert.Equal(t, textJoinPrompt, h.lastText(testUser))
}

func TestAddChannelStopsAtFreeLimit(t *testing.T) {
	h := newHarness(t)
	h.client.SetMember(testGateID, testUser, models.ChatMemberTypeMember, false)
	h.manageable(-1001, "One")
	h.manageable(-1002, "Two")
	h.manageable(-1003, "Three")

	h.send(testUser, "/addchannel -1001")
	assert.Contains(t, h.lastText(testUser), "One is registered")
	h.send(testUser, "/addchannel -1002")
	assert.Contains(t, h.lastText(testUser), "Two is registered")

	h.send(testUser, "/addchannel -1003")
	assert.Contains(t, h.lastText(testUser), "up to 2 channels")

	count, err := h.channels.CountOwned(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	_, owned := h.channels.OwnerOf(context.Background(), -1003)
	assert.False(t, owned)
}

func TestAddChannelReplies(t *testing.T) {
	h := newHarness(t)
	h.client.SetMember(testGateID, testUser, models.ChatMemberTypeMember, false)
	h.client.SetMember(-1009, testUser, models.ChatMemberTypeMember, false)

	h.send(testUser, "/addchannel")
	assert.Contains(t, h.lastText(testUser), "Usage: /addchannel")

	h.send(testUser, "/addchannel abc")
	assert.Contains(t, h.lastText(testUser), "Usage: /addchannel")

	h.send(testUser, "/addchannel -1009")
	assert.Contains(t, h.lastText(testUser), "must be an administrator")
}

func TestPremiumGrantAndCheck(t *testing.T) {
	h := newHarness(t)

	h.send(testUser, "/premium_check")
	assert.Contains(t, h.lastText(testUser), "no premium")

	h.send(testOperator, "/add_premium 7 1y")
	assert.Contains(t, h.lastText(testOperator), "Premium granted to user 7 for 365 days")
	assert.Contains(t, h.lastText(testUser), "Premium activated")

	h.send(testUser, "/premium_check")
	assert.Contains(t, h.lastText(testUser), "Premium active")

	h.send(testOperator, "/premium_stats")
	assert.Contains(t, h.lastText(testOperator), "Premium subscriptions: 1 (active: 1)")

	h.send(testOperator, "/remove_premium 7")
	assert.Contains(t, h.lastText(testOperator), "Premium removed")
	h.send(testOperator, "/remove_premium 7")
	assert.Contains(t, h.lastText(testOperator), "has no premium")
}

func TestAddPremiumRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	h.send(testOperator, "/add_premium 7")
	assert.Contains(t, h.lastText(testOperator), "Usage: /add_premium")
	h.send(testOperator, "/add_premium x 30d")
	assert.Contains(t, h.lastText(testOperator), "Invalid user ID")
	h.send(testOperator, "/add_premium 7 0d")
	assert.Contains(t, h.lastText(testOperator), "Invalid duration")
	h.send(testOperator, "/add_premium 7 1001y")
	assert.Contains(t, h.lastText(testOperator), "Invalid duration")
}

func TestPremiumStatsListsExpiredGrants(t *testing.T) {
	h := newHarness(t)
	expired := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, h.grants.SaveEntitlement(context.Background(), &entitlementDomain.Entitlement{
		SubjectID: 8,
		ExpiresAt: expired,
		GrantedBy: testOperator,
		GrantedAt: expired.AddDate(0, 0, -30),
	}))
	h.send(testOperator, "/add_premium 7 30d")

	h.send(testOperator, "/premium_stats")
	stats := h.lastText(testOperator)
	assert.Contains(t, stats, "Premium subscriptions: 2 (active: 1)")
	assert.Contains(t, stats, "✅ 7 until")
	assert.Contains(t, stats, "❌ 8 expired "+expired.Format(timeLayout))
}

func TestPremiumCheckOfOtherUserIsRestricted(t *testing.T) {
	h := newHarness(t)

	h.send(testUser, "/premium_check 8")
	assert.Equal(t, textUnauthorized, h.lastText(testUser))

	h.send(testOperator, "/premium_check 8")
	assert.Contains(t, h.lastText(testOperator), "User 8 has no premium")
}

func TestPremiumCheckOfChannelReportsOwner(t *testing.T) {
	h := newHarness(t)
	h.client.SetMember(testGateID, testUser, models.ChatMemberTypeMember, false)
	h.manageable(-1001, "One")

	h.send(testUser, "/addchannel -1001")
	h.send(testOperator, "/add_premium 7 30d")

	h.send(testUser, "/premium_check -1001")
	assert.Contains(t, h.lastText(testUser), "Premium active")
	assert.Contains(t, h.lastText(testUser), "Owner of channel -1001")
}

func TestRemoveTags(t *testing.T) {
	h := newHarness(t)
	h.client.SetMember(testGateID, testUser, models.ChatMemberTypeMember, false)

	h.send(testUser, "/remove_tags")
	assert.Contains(t, h.lastText(testUser), "Reply to a forwarded message")

	chat := models.Chat{ID: testUser, Type: models.ChatTypePrivate}
	h.router.Route(context.Background(), &models.Update{Message: &models.Message{
		ID:   11,
		Text: "/remove_tags",
		Chat: chat,
		From: &models.User{ID: testUser},
		ReplyToMessage: &models.Message{
			ID:            9,
			Chat:          chat,
			Text:          "hello",
			ForwardOrigin: &models.MessageOrigin{},
		},
	}})

	assert.Equal(t, "hello", h.lastText(testUser))
	deletes := h.client.CallsTo("DeleteMessage")
	require.Len(t, deletes, 1)
	assert.Equal(t, 9, deletes[0].Params.(*bot.DeleteMessageParams).MessageID)
	for _, call := range h.client.CallsTo("GetChatMember") {
		assert.Equal(t, testGateID, call.Params.(*bot.GetChatMemberParams).ChatID, "no permission check in a private chat")
	}
}

func TestChannelPostIsReplaced(t *testing.T) {
	h := newHarness(t)
	h.client.SetMember(-1001, testBotID, models.ChatMemberTypeAdministrator, true)

	route := h.router.Route(context.Background(), &models.Update{ChannelPost: &models.Message{
		ID:            3,
		Chat:          models.Chat{ID: -1001, Type: models.ChatTypeChannel},
		Text:          "news",
		ForwardOrigin: &models.MessageOrigin{},
	}})

	assert.Equal(t, "channel_post", route)
	assert.Equal(t, []string{"GetChatMember", "DeleteMessage", "SendMessage"}, h.client.Methods())
	assert.Equal(t, []string{"news"}, h.client.SentTexts(-1001))
}

func TestBotAddedToChannel(t *testing.T) {
	h := newHarness(t)

	update := &models.Update{MyChatMember: &models.ChatMemberUpdated{
		Chat: models.Chat{ID: -1001, Type: models.ChatTypeChannel, Title: "News"},
		From: models.User{ID: testUser},
		NewChatMember: models.ChatMember{
			Type:          models.ChatMemberTypeAdministrator,
			Administrator: &models.ChatMemberAdministrator{CanDeleteMessages: true},
		},
	}}

	assert.Equal(t, "my_chat_member", h.router.Route(context.Background(), update))
	channel, err := h.channels.GetChannel(context.Background(), -1001)
	require.NoError(t, err)
	assert.Equal(t, "News", channel.Title)
	assert.Equal(t, testUser, channel.AddedBy)
	assert.Equal(t, []noticeDomain.Kind{noticeDomain.KindChannelAdded}, h.notices.kinds())
	assert.Contains(t, h.lastText(testUser), "/addchannel -1001")

	h.router.Route(context.Background(), update)
	assert.Len(t, h.notices.notices, 1, "a known chat is not announced twice")
}

func TestVerifyJoinCallback(t *testing.T) {
	h := newHarness(t)

	update := &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "q1",
		From: models.User{ID: testUser, FirstName: "Alice"},
		Data: CallbackVerifyJoin,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 20, Chat: models.Chat{ID: testUser, Type: models.ChatTypePrivate}},
		},
	}}

	h.router.Route(context.Background(), update)
	answers := h.client.CallsTo("AnswerCallbackQuery")
	require.Len(t, answers, 1)
	assert.Equal(t, textNotJoinedYet, answers[0].Params.(*bot.AnswerCallbackQueryParams).Text)
	edits := h.client.CallsTo("EditMessageText")
	require.Len(t, edits, 1)
	assert.Equal(t, textJoinPrompt, edits[0].Params.(*bot.EditMessageTextParams).Text)

	h.client.SetMember(testGateID, testUser, models.ChatMemberTypeMember, false)
	h.router.Route(context.Background(), update)
	edits = h.client.CallsTo("EditMessageText")
	require.Len(t, edits, 2)
	assert.Contains(t, edits[1].Params.(*bot.EditMessageTextParams).Text, "Hi Alice")
}

func TestBroadcastReportsToOperator(t *testing.T) {
	h := newHarness(t)
	h.send(testUser, "/help")

	h.send(testOperator, "/broadcast")
	assert.Contains(t, h.lastText(testOperator), "Reply to the message")

	h.router.Route(context.Background(), &models.Update{Message: &models.Message{
		ID:             31,
		Text:           "/broadcast",
		Chat:           models.Chat{ID: testOperator, Type: models.ChatTypePrivate},
		From:           &models.User{ID: testOperator},
		ReplyToMessage: &models.Message{ID: 30},
	}})

	assert.Len(t, h.client.CallsTo("CopyMessage"), 2, "the user and the operator")
	assert.Contains(t, h.lastText(testOperator), "Sent: 2")
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "unknown_command", h.send(testUser, "/frobnicate"))
	assert.Equal(t, textUnknown, h.lastText(testUser))
}
