package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/domain"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Records lists the gorm models this package persists.
func Records() []any {
	return []any{&domain.User{}}
}

// GormStorage implements Repository on sqlite or postgres
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage creates a new gorm-backed user repository
func NewGormStorage(db *gorm.DB) Repository {
	return &GormStorage{db: db}
}

func (s *GormStorage) SaveUser(ctx context.Context, user *domain.User) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return oops.With("user_id", user.ID, "context", "failed to save user").Wrap(err)
	}
	return nil
}

func (s *GormStorage) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, sharedErrors.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.With("user_id", userID, "context", "failed to read user").Wrap(err)
	}
	return &user, nil
}

func (s *GormStorage) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, oops.With("context", "failed to list users").Wrap(err)
	}
	return users, nil
}

func (s *GormStorage) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error; err != nil {
		return 0, oops.With("context", "failed to count users").Wrap(err)
	}
	return n, nil
}
