package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/docstore"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements Repository on a JSON document collection
type FileStorage struct {
	users *docstore.Collection[domain.User]
}

// NewFileStorage creates a new file-based user repository
func NewFileStorage(basePath string) (Repository, error) {
	users, err := docstore.Open[domain.User](basePath, "users")
	if err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to open users collection").Wrap(err)
	}
	return &FileStorage{users: users}, nil
}

func (s *FileStorage) SaveUser(_ context.Context, user *domain.User) error {
	if err := s.users.Put(docstore.Key(user.ID), user); err != nil {
		return oops.With("user_id", user.ID, "context", "failed to save user").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.Get(docstore.Key(userID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, sharedErrors.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.With("user_id", userID, "context", "failed to read user").Wrap(err)
	}
	return user, nil
}

func (s *FileStorage) GetAllUsers(_ context.Context) ([]*domain.User, error) {
	return s.users.All()
}

func (s *FileStorage) CountUsers(_ context.Context) (int64, error) {
	return s.users.Count(nil)
}
