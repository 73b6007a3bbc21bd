package memory

import (
	"context"
	"sync"

	"plemiona/internal/village/domain"
	"plemiona/internal/village/infra/persistence/model"
)

// VillageRepo is the in-memory store used by tests and local runs. It
// round-trips through the persistence model so callers get real reload
// semantics, not shared pointers.
type VillageRepo struct {
	mu       sync.RWMutex
	byID     map[domain.VillageID]*model.Village
	byPlayer map[string]domain.VillageID
}

func NewVillageRepo() *VillageRepo {
	return &VillageRepo{
		byID:     make(map[domain.VillageID]*model.Village),
		byPlayer: make(map[string]domain.VillageID),
	}
}

func (r *VillageRepo) Create(ctx context.Context, v *domain.Village) error {
	return r.Save(ctx, v)
}

func (r *VillageRepo) Get(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrVillageNotFound.WithData("village_id", string(id))
	}
	return model.ToEntity(m), nil
}

func (r *VillageRepo) GetByPlayer(ctx context.Context, playerID string) (*domain.Village, error) {
	r.mu.RLock()
	id, ok := r.byPlayer[playerID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrVillageNotFound.WithData("player_id", playerID)
	}
	return r.Get(ctx, id)
}

func (r *VillageRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Village, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Village, 0)
	for _, m := range r.byID {
		if m.SessionID == sessionID {
			out = append(out, model.ToEntity(m))
		}
	}
	return out, nil
}

func (r *VillageRepo) Save(ctx context.Context, v *domain.Village) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := model.FromEntity(v)
	r.byID[v.ID] = m
	r.byPlayer[v.PlayerID] = v.ID
	return nil
}
