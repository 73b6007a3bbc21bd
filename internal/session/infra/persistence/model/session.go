package model

import (
	"time"

	"plemiona/internal/session/domain"
)

type GameSession struct {
	ID            string `gorm:"column:id;type:varchar(36);primaryKey;" json:"id"`
	GameCode      string `gorm:"column:game_code;type:varchar(12);uniqueIndex;not null;" json:"game_code"`
	OwnerPlayerID string `gorm:"column:owner_player_id;type:varchar(36);" json:"owner_player_id"`

	HasStarted bool       `gorm:"column:has_started;not null;default:false;" json:"has_started"`
	StartedAt  *time.Time `gorm:"column:started_at;type:TIMESTAMP;default:NULL;" json:"started_at"`
	EndsAt     *time.Time `gorm:"column:ends_at;type:TIMESTAMP;default:NULL;" json:"ends_at"`
	HasEnded   bool       `gorm:"column:has_ended;not null;default:false;" json:"has_ended"`
	EndedAt    *time.Time `gorm:"column:ended_at;type:TIMESTAMP;default:NULL;" json:"ended_at"`

	DurationSec int `gorm:"column:duration_sec;not null;" json:"duration_sec"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"updated_at"`
}

func (GameSession) TableName() string {
	return "game_session"
}

func SessionToEntity(m *GameSession) *domain.GameSession {
	s := &domain.GameSession{
		ID:            m.ID,
		GameCode:      m.GameCode,
		OwnerPlayerID: m.OwnerPlayerID,
		HasStarted:    m.HasStarted,
		HasEnded:      m.HasEnded,
		DurationSec:   m.DurationSec,
	}
	if m.StartedAt != nil {
		t := *m.StartedAt
		s.StartedAt = &t
	}
	if m.EndsAt != nil {
		t := *m.EndsAt
		s.EndsAt = &t
	}
	if m.EndedAt != nil {
		t := *m.EndedAt
		s.EndedAt = &t
	}
	return s
}

func SessionFromEntity(s *domain.GameSession) *GameSession {
	m := &GameSession{
		ID:            s.ID,
		GameCode:      s.GameCode,
		OwnerPlayerID: s.OwnerPlayerID,
		HasStarted:    s.HasStarted,
		HasEnded:      s.HasEnded,
		DurationSec:   s.DurationSec,
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		m.StartedAt = &t
	}
	if s.EndsAt != nil {
		t := *s.EndsAt
		m.EndsAt = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		m.EndedAt = &t
	}
	return m
}
