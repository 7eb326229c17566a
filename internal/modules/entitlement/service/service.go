package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/repository"
	noticeDomain "github.com/reshetovitsme/tagless-channel-bot/internal/modules/notice/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/metrics"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service handles premium entitlement business logic
type Service struct {
	repo     repository.Repository
	notifier noticeDomain.Notifier
	now      func() time.Time
}

// New creates a new entitlement service
func New(repo repository.Repository, notifier noticeDomain.Notifier) *Service {
	if notifier == nil {
		notifier = noticeDomain.Discard
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// Now is the clock every Active evaluation uses.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// Grant sets the subject's expiry to now + days. An existing grant is
// overwritten, never extended.
func (s *Service) Grant(ctx context.Context, subjectID int64, days int, grantedBy int64) (*domain.Entitlement, error) {
	if days <= 0 || days > domain.MaxDays {
		return nil, oops.With("subject_id", subjectID, "days", days).Wrap(sharedErrors.ErrInvalidDuration)
	}
	if subjectID <= 0 {
		return nil, oops.With("subject_id", subjectID).Wrap(sharedErrors.ErrInvalidArgument)
	}

	now := s.Now()
	e := &domain.Entitlement{
		SubjectID: subjectID,
		ExpiresAt: now.AddDate(0, 0, days),
		GrantedBy: grantedBy,
		GrantedAt: now,
	}
	if err := s.repo.SaveEntitlement(ctx, e); err != nil {
		return nil, oops.In("entitlement").With("subject_id", subjectID).Wrap(err)
	}

	metrics.EntitlementChanges.WithLabelValues("grant").Inc()
	slog.Info("Premium granted", "user_id", subjectID, "days", days, "expires_at", e.ExpiresAt, "granted_by", grantedBy)
	s.notifier.Notify(ctx, noticeDomain.Notice{
		Kind:  noticeDomain.KindPremiumGranted,
		Title: "Premium granted",
		Body:  fmt.Sprintf("User %d: %s, until %s", subjectID, domain.FormatDays(days), e.ExpiresAt.Format(time.DateOnly)),
	})

	return e, nil
}

// Revoke removes the grant. The bool reports whether one existed.
func (s *Service) Revoke(ctx context.Context, subjectID int64) (bool, error) {
	deleted, err := s.repo.DeleteEntitlement(ctx, subjectID)
	if err != nil {
		return false, oops.In("entitlement").With("subject_id", subjectID).Wrap(err)
	}
	if !deleted {
		return false, nil
	}

	metrics.EntitlementChanges.WithLabelValues("revoke").Inc()
	slog.Info("Premium revoked", "user_id", subjectID)
	s.notifier.Notify(ctx, noticeDomain.Notice{
		Kind:  noticeDomain.KindPremiumRevoked,
		Title: "Premium revoked",
		Body:  fmt.Sprintf("User %d", subjectID),
	})
	return true, nil
}

// IsActive reports whether the subject holds an unexpired grant.
// Lookup failures count as not entitled.
func (s *Service) IsActive(ctx context.Context, subjectID int64) bool {
	e, err := s.repo.GetEntitlement(ctx, subjectID)
	if err != nil {
		if !errors.Is(err, sharedErrors.ErrEntitlementNotFound) {
			slog.Error("Failed to look up entitlement", "user_id", subjectID, "error", err)
		}
		return false
	}
	return e.Active(s.Now())
}

// Get returns the stored grant, expired or not.
func (s *Service) Get(ctx context.Context, subjectID int64) (*domain.Entitlement, error) {
	return s.repo.GetEntitlement(ctx, subjectID)
}

// ListAll returns every stored grant ordered by expiry.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Entitlement, error) {
	all, err := s.repo.GetAllEntitlements(ctx)
	if err != nil {
		return nil, oops.In("entitlement").Wrap(err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ExpiresAt.Before(all[j].ExpiresAt) })
	return all, nil
}

// ListActive returns the grants still in force, soonest expiry first.
func (s *Service) ListActive(ctx context.Context) ([]*domain.Entitlement, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	return lo.Filter(all, func(e *domain.Entitlement, _ int) bool { return e.Active(now) }), nil
}

// ExpiringWithin returns active grants that end before now + window.
func (s *Service) ExpiringWithin(ctx context.Context, window time.Duration) ([]*domain.Entitlement, error) {
	active, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	deadline := s.Now().Add(window)
	return lo.Filter(active, func(e *domain.Entitlement, _ int) bool { return e.ExpiresAt.Before(deadline) }), nil
}
