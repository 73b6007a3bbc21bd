package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plemiona/internal/village/domain"
	"plemiona/internal/village/infra/persistence/model"
	"plemiona/modules/kit/errx"
)

type VillageRepo struct {
	db *gorm.DB
}

func NewVillageRepo(db *gorm.DB) *VillageRepo {
	return &VillageRepo{db: db}
}

func (r *VillageRepo) Create(ctx context.Context, v *domain.Village) error {
	if err := r.db.WithContext(ctx).Create(model.FromEntity(v)).Error; err != nil {
		return wrap("repo.village.Create", err)
	}
	return nil
}

func (r *VillageRepo) Get(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	var m model.Village
	err := r.db.WithContext(ctx).Where("id = ?", string(id)).First(&m).Error
	switch {
	case err == nil:
		return model.ToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrVillageNotFound.WithData("village_id", string(id))
	default:
		return nil, wrap("repo.village.Get", err)
	}
}

func (r *VillageRepo) GetByPlayer(ctx context.Context, playerID string) (*domain.Village, error) {
	var m model.Village
	err := r.db.WithContext(ctx).Where("player_id = ?", playerID).First(&m).Error
	switch {
	case err == nil:
		return model.ToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrVillageNotFound.WithData("player_id", playerID)
	default:
		return nil, wrap("repo.village.GetByPlayer", err)
	}
}

func (r *VillageRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Village, error) {
	var ms []model.Village
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&ms).Error; err != nil {
		return nil, wrap("repo.village.ListBySession", err)
	}
	out := make([]*domain.Village, 0, len(ms))
	for i := range ms {
		out = append(out, model.ToEntity(&ms[i]))
	}
	return out, nil
}

func (r *VillageRepo) Save(ctx context.Context, v *domain.Village) error {
	if err := r.db.WithContext(ctx).Save(model.FromEntity(v)).Error; err != nil {
		return wrap("repo.village.Save", err)
	}
	return nil
}

func wrap(op string, cause error) error {
	return errx.ErrUnavailable.WithCause(cause).WithData("op", op)
}
