package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
	"github.com/reshetovitsme/tagless-channel-bot/internal/shared/docstore"
	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// FileStorage implements Repository on a JSON document collection
type FileStorage struct {
	entitlements *docstore.Collection[domain.Entitlement]
}

// NewFileStorage creates a new file-based entitlement repository
func NewFileStorage(basePath string) (Repository, error) {
	c, err := docstore.Open[domain.Entitlement](basePath, "entitlements")
	if err != nil {
		return nil, oops.With("base_path", basePath, "context", "failed to open entitlements collection").Wrap(err)
	}
	return &FileStorage{entitlements: c}, nil
}

func (s *FileStorage) SaveEntitlement(_ context.Context, e *domain.Entitlement) error {
	if err := s.entitlements.Put(docstore.Key(e.SubjectID), e); err != nil {
		return oops.With("subject_id", e.SubjectID, "context", "failed to save entitlement").Wrap(err)
	}
	return nil
}

func (s *FileStorage) GetEntitlement(_ context.Context, subjectID int64) (*domain.Entitlement, error) {
	e, err := s.entitlements.Get(docstore.Key(subjectID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, sharedErrors.ErrEntitlementNotFound
	}
	if err != nil {
		return nil, oops.With("subject_id", subjectID, "context", "failed to read entitlement").Wrap(err)
	}
	return e, nil
}

func (s *FileStorage) GetAllEntitlements(_ context.Context) ([]*domain.Entitlement, error) {
	return s.entitlements.All()
}

func (s *FileStorage) DeleteEntitlement(_ context.Context, subjectID int64) (bool, error) {
	return s.entitlements.Delete(docstore.Key(subjectID))
}
