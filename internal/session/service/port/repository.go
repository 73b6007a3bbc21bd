package port

import (
	"context"

	"plemiona/internal/session/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, s *domain.GameSession) error
	Get(ctx context.Context, id string) (*domain.GameSession, error)
	GetByCode(ctx context.Context, code string) (*domain.GameSession, error)
	// ListActive returns sessions that started but have not ended.
	ListActive(ctx context.Context) ([]*domain.GameSession, error)
	Save(ctx context.Context, s *domain.GameSession) error
}

type PlayerRepository interface {
	Create(ctx context.Context, p *domain.Player) error
	Get(ctx context.Context, id string) (*domain.Player, error)
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Player, error)
	Save(ctx context.Context, p *domain.Player) error
}
