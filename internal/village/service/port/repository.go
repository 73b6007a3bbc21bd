package port

import (
	"context"

	"plemiona/internal/village/domain"
)

// VillageRepository is the entity store for villages. Get must return the
// latest persisted state: accrual recomputes elapsed time from what is
// stored, never from stale in-memory copies.
type VillageRepository interface {
	Create(ctx context.Context, v *domain.Village) error
	Get(ctx context.Context, id domain.VillageID) (*domain.Village, error)
	GetByPlayer(ctx context.Context, playerID string) (*domain.Village, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Village, error)
	Save(ctx context.Context, v *domain.Village) error
}
