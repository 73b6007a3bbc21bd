package memory

import (
	"context"
	"sync"

	"plemiona/internal/battle/domain"
	"plemiona/internal/battle/infra/persistence/model"
)

// BattleRepo is the in-memory store used by tests and local runs. It
// round-trips through the persistence model so callers get real reload
// semantics, not shared pointers.
type BattleRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.Battle
}

func NewBattleRepo() *BattleRepo {
	return &BattleRepo{byID: make(map[string]*model.Battle)}
}

func (r *BattleRepo) Create(ctx context.Context, b *domain.Battle) error {
	return r.Save(ctx, b)
}

func (r *BattleRepo) Get(ctx context.Context, id string) (*domain.Battle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBattleNotFound.WithData("battle_id", id)
	}
	return model.ToEntity(m), nil
}

func (r *BattleRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Battle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Battle, 0)
	for _, m := range r.byID {
		if m.SessionID == sessionID {
			out = append(out, model.ToEntity(m))
		}
	}
	return out, nil
}

func (r *BattleRepo) Save(ctx context.Context, b *domain.Battle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[b.ID] = model.FromEntity(b)
	return nil
}
