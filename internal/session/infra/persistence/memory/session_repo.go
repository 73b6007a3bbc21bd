package memory

import (
	"context"
	"sync"

	"plemiona/internal/session/domain"
	"plemiona/internal/session/infra/persistence/model"
)

// SessionRepo is the in-memory store used by tests and local runs.
type SessionRepo struct {
	mu     sync.RWMutex
	byID   map[string]*model.GameSession
	byCode map[string]string
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{
		byID:   make(map[string]*model.GameSession),
		byCode: make(map[string]string),
	}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.GameSession) error {
	return r.Save(ctx, s)
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound.WithData("session_id", id)
	}
	return model.SessionToEntity(m), nil
}

func (r *SessionRepo) GetByCode(ctx context.Context, code string) (*domain.GameSession, error) {
	r.mu.RLock()
	id, ok := r.byCode[code]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound.WithData("game_code", code)
	}
	return r.Get(ctx, id)
}

func (r *SessionRepo) ListActive(ctx context.Context) ([]*domain.GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.GameSession, 0)
	for _, m := range r.byID {
		if m.HasStarted && !m.HasEnded {
			out = append(out, model.SessionToEntity(m))
		}
	}
	return out, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *domain.GameSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = model.SessionFromEntity(s)
	r.byCode[s.GameCode] = s.ID
	return nil
}
