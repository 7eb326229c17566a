package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/forward/domain"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
	"github.com/samber/oops"
)

// Reasons attached to a Result.
const (
	ReasonNotForwarded  = "not_forwarded"
	ReasonPremiumExempt = "premium_exempt"
	ReasonUnsupported   = "unsupported_content"
	ReasonNoPermission  = "no_delete_permission"
	ReasonCheckFailed   = "permission_check_failed"
	ReasonDeleteFailed  = "delete_failed"
	ReasonSendFailed    = "send_failed"
	ReasonReplaced      = "replaced"
)

// OwnerLookup resolves the registered owner of a channel.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, channelID int64) (int64, bool)
}

// EntitlementChecker answers whether a user currently holds premium.
type EntitlementChecker interface {
	IsActive(ctx context.Context, subjectID int64) bool
}

// Result describes what happened to one post.
type Result struct {
	Outcome domain.Outcome
	Reason  string
	// MessageID of the re-created post when Outcome is replaced.
	MessageID int
}

// Options tunes the replacer.
type Options struct {
	BotID int64
	// PremiumExempt leaves posts in channels of premium owners untouched.
	PremiumExempt bool
	// WarnCooldown is the minimum gap between two permission warnings for one channel.
	WarnCooldown time.Duration
}

// Replacer removes the forward tag from channel posts by capturing the
// content, deleting the original and sending the same content again.
type Replacer struct {
	client       telegram.Client
	owners       OwnerLookup
	entitlements EntitlementChecker
	notifier     noticeDomain.Notifier
	opts         Options
	now          func() time.Time

	mu       sync.Mutex
	lastWarn map[int64]time.Time
}

// New creates a new replacer
func New(client telegram.Client, owners OwnerLookup, entitlements EntitlementChecker, notifier noticeDomain.Notifier, opts Options) *Replacer {
	if notifier == nil {
		notifier = noticeDomain.Discard
	}
	return &Replacer{
		client:       client,
		owners:       owners,
		entitlements: entitlements,
		notifier:     notifier,
		opts:         opts,
		now:          time.Now,
		lastWarn:     make(map[int64]time.Time),
	}
}

// HandlePost processes a new channel post.
func (r *Replacer) HandlePost(ctx context.Context, msg *models.Message) (Result, error) {
	if !domain.IsForwarded(msg) {
		return r.done(Result{Outcome: domain.OutcomeOriginal, Reason: ReasonNotForwarded}, nil)
	}

	if r.opts.PremiumExempt && r.ownerEntitled(ctx, msg.Chat.ID) {
		return r.done(Result{Outcome: domain.OutcomeSkipped, Reason: ReasonPremiumExempt}, nil)
	}

	return r.done(r.replace(ctx, msg))
}

// Replace re-publishes msg on request of the chat's owner, regardless of premium status.
func (r *Replacer) Replace(ctx context.Context, msg *models.Message) (Result, error) {
	if !domain.IsForwarded(msg) {
		return r.done(Result{Outcome: domain.OutcomeOriginal, Reason: ReasonNotForwarded}, nil)
	}
	return r.done(r.replace(ctx, msg))
}

func (r *Replacer) ownerEntitled(ctx context.Context, channelID int64) bool {
	owner, ok := r.owners.OwnerOf(ctx, channelID)
	return ok && r.entitlements.IsActive(ctx, owner)
}

func (r *Replacer) replace(ctx context.Context, msg *models.Message) (Result, error) {
	chatID := msg.Chat.ID
	errBuilder := oops.In("forward").With("channel_id", chatID, "message_id", msg.ID)

	payload, ok := domain.Extract(msg)
	if !ok {
		return Result{Outcome: domain.OutcomeSkipped, Reason: ReasonUnsupported}, nil
	}

	// Bots may always delete messages in their own private chats.
	if msg.Chat.Type != models.ChatTypePrivate {
		self, err := r.client.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: r.opts.BotID})
		if err != nil {
			metrics.TransportErrors.WithLabelValues("getChatMember").Inc()
			err = errBuilder.With("step", "permission check").Wrap(err)
			r.reportFailure(ctx, chatID, err, false)
			return Result{Outcome: domain.OutcomeOriginal, Reason: ReasonCheckFailed}, err
		}
		if !telegram.CanDeleteMessages(self) {
			r.warnNoPermission(ctx, chatID, msg.Chat.Title)
			return Result{Outcome: domain.OutcomeSkipped, Reason: ReasonNoPermission}, errBuilder.Wrap(sharedErrors.ErrNoDeletePermission)
		}
	}

	if _, err := r.client.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID}); err != nil {
		metrics.TransportErrors.WithLabelValues("deleteMessage").Inc()
		err = errBuilder.With("step", "delete").Wrap(err)
		r.reportFailure(ctx, chatID, err, false)
		return Result{Outcome: domain.OutcomeOriginal, Reason: ReasonDeleteFailed}, err
	}

	sent, err := r.send(ctx, chatID, payload)
	if err != nil {
		metrics.TransportErrors.WithLabelValues("send_" + payload.Kind.String()).Inc()
		err = errBuilder.With("step", "send", "kind", payload.Kind).Wrap(err)
		r.reportFailure(ctx, chatID, err, true)
		return Result{Outcome: domain.OutcomeOriginal, Reason: ReasonSendFailed}, err
	}

	slog.Info("Forward tag removed", "channel_id", chatID, "message_id", msg.ID, "new_message_id", sent.ID, "kind", payload.Kind)
	return Result{Outcome: domain.OutcomeReplaced, Reason: ReasonReplaced, MessageID: sent.ID}, nil
}

func (r *Replacer) send(ctx context.Context, chatID int64, p domain.Payload) (*models.Message, error) {
	file := &models.InputFileString{Data: p.FileID}

	switch p.Kind {
	case domain.MediaKindPhoto:
		return r.client.SendPhoto(ctx, &bot.SendPhotoParams{ChatID: chatID, Photo: file, Caption: p.Text, CaptionEntities: p.Entities})
	case domain.MediaKindVideo:
		return r.client.SendVideo(ctx, &bot.SendVideoParams{ChatID: chatID, Video: file, Caption: p.Text, CaptionEntities: p.Entities})
	case domain.MediaKindDocument:
		return r.client.SendDocument(ctx, &bot.SendDocumentParams{ChatID: chatID, Document: file, Caption: p.Text, CaptionEntities: p.Entities})
	case domain.MediaKindAudio:
		return r.client.SendAudio(ctx, &bot.SendAudioParams{ChatID: chatID, Audio: file, Caption: p.Text, CaptionEntities: p.Entities})
	case domain.MediaKindVoice:
		return r.client.SendVoice(ctx, &bot.SendVoiceParams{ChatID: chatID, Voice: file, Caption: p.Text, CaptionEntities: p.Entities})
	default:
		return r.client.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: p.Text, Entities: p.Entities})
	}
}

// warnNoPermission notifies the operator at most once per cooldown window per channel.
func (r *Replacer) warnNoPermission(ctx context.Context, chatID int64, title string) {
	now := r.now()

	r.mu.Lock()
	last, seen := r.lastWarn[chatID]
	if seen && now.Sub(last) < r.opts.WarnCooldown {
		r.mu.Unlock()
		return
	}
	r.lastWarn[chatID] = now
	r.mu.Unlock()

	r.notifier.Notify(ctx, noticeDomain.Notice{
		Kind:   noticeDomain.KindPermissionMissing,
		Title:  "Missing delete permission",
		Body:   fmt.Sprintf("Cannot remove forward tags in %q: the bot needs the \"Delete messages\" admin right.", title),
		ChatID: chatID,
	})
}

func (r *Replacer) reportFailure(ctx context.Context, chatID int64, err error, lost bool) {
	title := "Forward replacement failed"
	if lost {
		title = "Forward replacement failed after delete: message lost"
	}
	slog.Error(title, "channel_id", chatID, "error", err)
	r.notifier.Notify(ctx, noticeDomain.Notice{
		Kind:   noticeDomain.KindForwardFailed,
		Title:  title,
		Body:   err.Error(),
		ChatID: chatID,
	})
}

func (r *Replacer) done(res Result, err error) (Result, error) {
	metrics.ForwardOutcomes.WithLabelValues(res.Outcome.String(), res.Reason).Inc()
	return res, err
}
