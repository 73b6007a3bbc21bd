package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plemiona/internal/session/domain"
	"plemiona/internal/session/infra/persistence/model"
)

type PlayerRepo struct {
	db *gorm.DB
}

func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

func (r *PlayerRepo) Create(ctx context.Context, p *domain.Player) error {
	if err := r.db.WithContext(ctx).Create(model.PlayerFromEntity(p)).Error; err != nil {
		return wrap("repo.player.Create", err)
	}
	return nil
}

func (r *PlayerRepo) Get(ctx context.Context, id string) (*domain.Player, error) {
	var m model.Player
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	switch {
	case err == nil:
		return model.PlayerToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrPlayerNotFound.WithData("player_id", id)
	default:
		return nil, wrap("repo.player.Get", err)
	}
}

func (r *PlayerRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Player, error) {
	var ms []model.Player
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&ms).Error; err != nil {
		return nil, wrap("repo.player.ListBySession", err)
	}
	out := make([]*domain.Player, 0, len(ms))
	for i := range ms {
		out = append(out, model.PlayerToEntity(&ms[i]))
	}
	return out, nil
}

func (r *PlayerRepo) Save(ctx context.Context, p *domain.Player) error {
	if err := r.db.WithContext(ctx).Save(model.PlayerFromEntity(p)).Error; err != nil {
		return wrap("repo.player.Save", err)
	}
	return nil
}
