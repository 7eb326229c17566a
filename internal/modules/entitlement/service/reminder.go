package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/telegram"
)

// Reminder warns users shortly before their premium runs out.
// Each grant is reminded at most once per process; a new grant resets it.
type Reminder struct {
	svc      *Service
	client   telegram.Client
	notifier noticeDomain.Notifier
	window   time.Duration
	contact  string

	mu       sync.Mutex
	reminded map[int64]time.Time
}

// NewReminder creates a reminder for grants ending within days.
// contact is the admin username shown in the renewal hint.
func NewReminder(svc *Service, client telegram.Client, notifier noticeDomain.Notifier, days int, contact string) *Reminder {
	if notifier == nil {
		notifier = noticeDomain.Discard
	}
	return &Reminder{
		svc:      svc,
		client:   client,
		notifier: notifier,
		window:   time.Duration(days) * 24 * time.Hour,
		contact:  contact,
		reminded: make(map[int64]time.Time),
	}
}

// Run is the scheduled job body.
func (r *Reminder) Run(ctx context.Context) error {
	if r.window <= 0 {
		return nil
	}

	expiring, err := r.svc.ExpiringWithin(ctx, r.window)
	if err != nil {
		return err
	}

	now := r.svc.Now()
	for _, e := range expiring {
		if !r.markReminded(e) {
			continue
		}

		_, err := r.client.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: e.SubjectID,
			Text:   r.reminderText(e, now),
		})
		if err != nil {
			metrics.TransportErrors.WithLabelValues("sendMessage").Inc()
			slog.Warn("Failed to send expiry reminder", "user_id", e.SubjectID, "error", err)
		}

		r.notifier.Notify(ctx, noticeDomain.Notice{
			Kind:  noticeDomain.KindPremiumExpiring,
			Title: "Premium expiring",
			Body:  fmt.Sprintf("User %d: %s left, ends %s", e.SubjectID, domain.FormatDays(e.RemainingDays(now)), e.ExpiresAt.Format(time.DateTime)),
		})
	}
	return nil
}

func (r *Reminder) markReminded(e *domain.Entitlement) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if at, ok := r.reminded[e.SubjectID]; ok && at.Equal(e.ExpiresAt) {
		return false
	}
	r.reminded[e.SubjectID] = e.ExpiresAt
	return true
}

func (r *Reminder) reminderText(e *domain.Entitlement, now time.Time) string {
	text := fmt.Sprintf("⏳ Your premium expires in %s (%s UTC).",
		domain.FormatDays(e.RemainingDays(now)), e.ExpiresAt.Format("2006-01-02 15:04"))
	if r.contact != "" {
		text += fmt.Sprintf("\n\nContact @%s to renew.", r.contact)
	}
	return text
}
