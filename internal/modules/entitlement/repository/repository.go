package repository

import (
	"context"

	"github.com/reshetovitsme/tagless-channel-bot/internal/modules/entitlement/domain"
)

// Repository defines the interface for entitlement persistence.
// Expired records are kept; callers evaluate Active at read time.
type Repository interface {
	SaveEntitlement(ctx context.Context, e *domain.Entitlement) error
	GetEntitlement(ctx context.Context, subjectID int64) (*domain.Entitlement, error)
	GetAllEntitlements(ctx context.Context) ([]*domain.Entitlement, error)
	DeleteEntitlement(ctx context.Context, subjectID int64) (bool, error)
}
