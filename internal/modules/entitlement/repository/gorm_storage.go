package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Records lists the gorm models this package persists.
func Records() []any {
	return []any{&domain.Entitlement{}}
}

// GormStorage implements Repository on sqlite or postgres
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new gorm-backed entitlement repository
func NewGormStorage(db *gorm.DB) Repository {
	return &GormStorage{db: db}
}

func (s *GormStorage) SaveEntitlement(ctx context.Context, e *domain.Entitlement) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_id"}},
		UpdateAll: true,
	}).Create(e).Error
	if err != nil {
		return oops.With("subject_id", e.SubjectID, "context", "failed to save entitlement").Wrap(err)
	}
	return nil
}

func (s *GormStorage) GetEntitlement(ctx context.Context, subjectID int64) (*domain.Entitlement, error) {
	var e domain.Entitlement
	err := s.db.WithContext(ctx).First(&e, "subject_id = ?", subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sharedErrors.ErrEntitlementNotFound
	}
	if err != nil {
		return nil, oops.With("subject_id", subjectID, "context", "failed to read entitlement").Wrap(err)
	}
	return &e, nil
}

func (s *GormStorage) GetAllEntitlements(ctx context.Context) ([]*domain.Entitlement, error) {
	var out []*domain.Entitlement
	if err := s.db.WithContext(ctx).Order("expires_at").Find(&out).Error; err != nil {
		return nil, oops.With("context", "failed to list entitlements").Wrap(err)
	}
	return out, nil
}

func (s *GormStorage) DeleteEntitlement(ctx context.Context, subjectID int64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&domain.Entitlement{}, "subject_id = ?", subjectID)
	if res.Error != nil {
		return false, oops.With("subject_id", subjectID, "context", "failed to delete entitlement").Wrap(res.Error)
	}
	return res.RowsAffected > 0, nil
}
