package service

import (
	"context"
	"errors"
	"time"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/user/repository"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Service handles user business logic
type Service struct {
	repo       repository.Repository
	operatorID int64
	now        func() time.Time
}

// New creates a new user service. operatorID is the single configured admin.
func New(repo repository.Repository, operatorID int64) *Service {
	return &Service{
		repo:       repo,
		operatorID: operatorID,
		now:        time.Now,
	}
}

// Touch records a private-chat interaction: it creates the user on first
// contact and refreshes the name fields afterwards. created is true for new users.
func (s *Service) Touch(ctx context.Context, id int64, username, firstName, lastName string) (*domain.User, bool, error) {
	now := s.now().UTC()

	user, err := s.repo.GetUser(ctx, id)
	created := errors.Is(err, sharedErrors.ErrUserNotFound)
	switch {
	case created:
		user = &domain.User{ID: id, FirstSeen: now}
	case err != nil:
		return nil, false, oops.With("user_id", id).Wrap(err)
	}

	user.Username = username
	user.FirstName = firstName
	user.LastName = lastName
	user.UpdatedAt = now

	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// GetUser retrieves a user by ID
func (s *Service) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, userID)
}

// GetAllUsers retrieves all users
func (s *Service) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.GetAllUsers(ctx)
}

// CountUsers returns the number of known users
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.CountUsers(ctx)
}

// IsOperator checks the caller against the configured admin identity
func (s *Service) IsOperator(userID int64) bool {
	return s.operatorID != 0 && userID == s.operatorID
}
