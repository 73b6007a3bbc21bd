package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plemiona/internal/session/domain"
	"plemiona/internal/session/infra/persistence/model"
	"plemiona/modules/kit/errx"
)

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Create(ctx context.Context, s *domain.GameSession) error {
	if err := r.db.WithContext(ctx).Create(model.SessionFromEntity(s)).Error; err != nil {
		return wrap("repo.session.Create", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	var m model.GameSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	switch {
	case err == nil:
		return model.SessionToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrSessionNotFound.WithData("session_id", id)
	default:
		return nil, wrap("repo.session.Get", err)
	}
}

func (r *SessionRepo) GetByCode(ctx context.Context, code string) (*domain.GameSession, error) {
	var m model.GameSession
	err := r.db.WithContext(ctx).Where("game_code = ?", code).First(&m).Error
	switch {
	case err == nil:
		return model.SessionToEntity(&m), nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domain.ErrSessionNotFound.WithData("game_code", code)
	default:
		return nil, wrap("repo.session.GetByCode", err)
	}
}

func (r *SessionRepo) ListActive(ctx context.Context) ([]*domain.GameSession, error) {
	var ms []model.GameSession
	if err := r.db.WithContext(ctx).
		Where("has_started = ? AND has_ended = ?", true, false).
		Find(&ms).Error; err != nil {
		return nil, wrap("repo.session.ListActive", err)
	}
	out := make([]*domain.GameSession, 0, len(ms))
	for i := range ms {
		out = append(out, model.SessionToEntity(&ms[i]))
	}
	return out, nil
}

func (r *SessionRepo) Save(ctx context.Context, s *domain.GameSession) error {
	if err := r.db.WithContext(ctx).Save(model.SessionFromEntity(s)).Error; err != nil {
		return wrap("repo.session.Save", err)
	}
	return nil
}

func wrap(op string, cause error) error {
	return errx.ErrUnavailable.WithCause(cause).WithData("op", op)
}
