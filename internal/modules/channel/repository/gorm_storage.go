package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Records lists the gorm models this package persists.
func Records() []any {
	return []any{&domain.Channel{}, &domain.Ownership{}}
}

// GormStorage implements Repository and OwnershipRepository on sqlite or postgres
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new gorm-backed channel repository
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func (s *GormStorage) SaveChannel(ctx context.Context, channel *domain.Channel) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "username", "kind", "added_by", "updated_at"}),
	}).Create(channel).Error
	if err != nil {
		return oops.With("channel_id", channel.ID, "context", "failed to save channel").Wrap(err)
	}
	return nil
}

func (s *GormStorage) GetChannel(ctx context.Context, channelID int64) (*domain.Channel, error) {
	var channel domain.Channel
	err := s.db.WithContext(ctx).First(&channel, "id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sharedErrors.ErrChannelNotFound
	}
	if err != nil {
		return nil, oops.With("channel_id", channelID, "context", "failed to read channel").Wrap(err)
	}
	return &channel, nil
}

func (s *GormStorage) GetAllChannels(ctx context.Context) ([]*domain.Channel, error) {
	var channels []*domain.Channel
	if err := s.db.WithContext(ctx).Order("added_at").Find(&channels).Error; err != nil {
		return nil, oops.With("context", "failed to list channels").Wrap(err)
	}
	return channels, nil
}

func (s *GormStorage) CountChannels(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Channel{}).Count(&n).Error; err != nil {
		return 0, oops.With("context", "failed to count channels").Wrap(err)
	}
	return n, nil
}

func (s *GormStorage) SaveOwnership(ctx context.Context, o *domain.Ownership) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id"}),
	}).Create(o).Error
	if err != nil {
		return oops.With("channel_id", o.ChannelID, "user_id", o.UserID, "context", "failed to save ownership").Wrap(err)
	}
	return nil
}

func (s *GormStorage) GetOwnership(ctx context.Context, channelID int64) (*domain.Ownership, error) {
	var o domain.Ownership
	err := s.db.WithContext(ctx).First(&o, "channel_id = ?", channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sharedErrors.ErrOwnershipNotFound
	}
	if err != nil {
		return nil, oops.With("channel_id", channelID, "context", "failed to read ownership").Wrap(err)
	}
	return &o, nil
}

func (s *GormStorage) DeleteOwnership(ctx context.Context, channelID int64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&domain.Ownership{}, "channel_id = ?", channelID)
	if res.Error != nil {
		return false, oops.With("channel_id", channelID, "context", "failed to delete ownership").Wrap(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStorage) ListByUser(ctx context.Context, userID int64) ([]*domain.Ownership, error) {
	var out []*domain.Ownership
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error; err != nil {
		return nil, oops.With("user_id", userID, "context", "failed to list ownerships").Wrap(err)
	}
	return out, nil
}

func (s *GormStorage) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.Ownership{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, oops.With("user_id", userID, "context", "failed to count ownerships").Wrap(err)
	}
	return n, nil
}
