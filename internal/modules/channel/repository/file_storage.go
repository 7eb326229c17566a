package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/channel/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/docstore"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// FileStorage implements Repository and OwnershipRepository on JSON document collections
type FileStorage struct {
	channels   *docstore.Collection[domain.Channel]
	ownerships *docstore.Collection[domain.Ownership]
}

// NewFileStorage creates a new file-based channel repository
func NewFileStorage(basePath string) (*FileStorage, error) {
	channels, err := docstore.Open[domain.Channel](basePath, "channels")
	if err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to open channels collection").Wrap(err)
	}
	ownerships, err := docstore.Open[domain.Ownership](basePath, "ownerships")
	if err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to open ownerships collection").Wrap(err)
	}
	return &FileStorage{channels: channels, ownerships: ownerships}, nil
}

func (s *FileStorage) SaveChannel(_ context.Context, channel *domain.Channel) error {
	if err := s.channels.Put(docstore.Key(channel.ID), channel); err != nil {
		return oops.With("channel_id", channel.ID, "context", "failed to save channel").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetChannel(_ context.Context, channelID int64) (*domain.Channel, error) {
	channel, err := s.channels.Get(docstore.Key(channelID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, sharedErrors.ErrChannelNotFound
	}
	if err != nil {
		return nil, oops.With("channel_id", channelID, "context", "failed to read channel").Wrap(err)
	}
	return channel, nil
}

func (s *FileStorage) GetAllChannels(_ context.Context) ([]*domain.Channel, error) {
	return s.channels.All()
}

func (s *FileStorage) CountChannels(_ context.Context) (int64, error) {
	return s.channels.Count(nil)
}

func (s *FileStorage) SaveOwnership(_ context.Context, o *domain.Ownership) error {
	if err := s.ownerships.Put(docstore.Key(o.ChannelID), o); err != nil {
		return oops.With("channel_id", o.ChannelID, "user_id", o.UserID, "context", "failed to save ownership").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetOwnership(_ context.Context, channelID int64) (*domain.Ownership, error) {
	o, err := s.ownerships.Get(docstore.Key(channelID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, sharedErrors.ErrOwnershipNotFound
	}
	if err != nil {
		return nil, oops.With("channel_id", channelID, "context", "failed to read ownership").Wrap(err)
	}
	return o, nil
}

func (s *FileStorage) DeleteOwnership(_ context.Context, channelID int64) (bool, error) {
	return s.ownerships.Delete(docstore.Key(channelID))
}

func (s *FileStorage) ListByUser(_ context.Context, userID int64) ([]*domain.Ownership, error) {
	all, err := s.ownerships.All()
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(o *domain.Ownership, _ int) bool { return o.UserID == userID }), nil
}

func (s *FileStorage) CountByUser(_ context.Context, userID int64) (int64, error) {
	return s.ownerships.Count(func(o *domain.Ownership) bool { return o.UserID == userID })
}
