package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plemiona/internal/battle/domain"
	"plemiona/internal/battle/infra/persistence/model"
	"plemiona/modules/kit/errx"
)

type BattleRepo struct {
	db *gorm.DB
}

func NewBattleRepo(db *gorm.DB) *BattleRepo {
	return &BattleRepo{db: db}
}

func (r *BattleRepo) Create(ctx context.Context, b *domain.Battle) error {
	if err := r.db.WithContext(ctx).Create(model.FromEntity(b)).Error; err != nil {
		return wrap("repo.battle.Create", err)
	}
	return nil
}

func (r *BattleRepo) Get(ctx context.Context, id string) (*domain.Battle, error) {
	var m model.Battle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	switch {
	case err == nil:
		return model.ToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrBattleNotFound.WithData("battle_id", id)
	default:
		return nil, wrap("repo.battle.Get", err)
	}
}

func (r *BattleRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Battle, error) {
	var ms []model.Battle
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&ms).Error; err != nil {
		return nil, wrap("repo.battle.ListBySession", err)
	}
	out := make([]*domain.Battle, 0, len(ms))
	for i := range ms {
		out = append(out, model.ToEntity(&ms[i]))
	}
	return out, nil
}

func (r *BattleRepo) Save(ctx context.Context, b *domain.Battle) error {
	if err := r.db.WithContext(ctx).Save(model.FromEntity(b)).Error; err != nil {
		return wrap("repo.battle.Save", err)
	}
	return nil
}

func wrap(op string, cause error) error {
	return errx.ErrUnavailable.WithCause(cause).WithData("op", op)
}
