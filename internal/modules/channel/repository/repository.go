package repository

import (
	"context"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/domain"
)

// Repository defines the interface for channel data persistence
type Repository interface {
	SaveChannel(ctx context.Context, channel *domain.Channel) error
	GetChannel(ctx context.Context, channelID int64) (*domain.Channel, error)
	GetAllChannels(ctx context.Context) ([]*domain.Channel, error)
	CountChannels(ctx context.Context) (int64, error)
}

// OwnershipRepository stores channel -> owner links, keyed by channel id.
type OwnershipRepository interface {
	SaveOwnership(ctx context.Context, o *domain.Ownership) error
	GetOwnership(ctx context.Context, channelID int64) (*domain.Ownership, error)
	DeleteOwnership(ctx context.Context, channelID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Ownership, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}
