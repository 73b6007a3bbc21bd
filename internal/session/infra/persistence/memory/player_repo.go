package memory

import (
	"context"
	"sync"

	"plemiona/internal/session/domain"
	"plemiona/internal/session/infra/persistence/model"
)

type PlayerRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.Player
}

func NewPlayerRepo() *PlayerRepo {
	return &PlayerRepo{byID: make(map[string]*model.Player)}
}

func (r *PlayerRepo) Create(ctx context.Context, p *domain.Player) error {
	return r.Save(ctx, p)
}

func (r *PlayerRepo) Get(ctx context.Context, id string) (*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrPlayerNotFound.WithData("player_id", id)
	}
	return model.PlayerToEntity(m), nil
}

func (r *PlayerRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Player, 0)
	for _, m := range r.byID {
		if m.SessionID == sessionID {
			out = append(out, model.PlayerToEntity(m))
		}
	}
	return out, nil
}

func (r *PlayerRepo) Save(ctx context.Context, p *domain.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = model.PlayerFromEntity(p)
	return nil
}
