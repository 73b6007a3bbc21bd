package port

import (
	"context"

	"plemiona/internal/battle/domain"
)

type BattleRepository interface {
	Create(ctx context.Context, b *domain.Battle) error
	Get(ctx context.Context, id string) (*domain.Battle, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Battle, error)
	Save(ctx context.Context, b *domain.Battle) error
}

// ReportArchive keeps the after-action record of finished battles.
// Best effort: an archive failure never fails the battle.
type ReportArchive interface {
	Archive(ctx context.Context, b *domain.Battle) error
}
