package model

import (
	"time"

	"plemiona/internal/session/domain"
)

type Player struct {
	ID        string `gorm:"column:id;type:varchar(36);primaryKey;" json:"id"`
	SessionID string `gorm:"column:session_id;type:varchar(36);index;not null;" json:"session_id"`
	Nickname  string `gorm:"column:nickname;type:varchar(15);not null;" json:"nickname"`
	VillageID string `gorm:"column:village_id;type:varchar(36);" json:"village_id"`
	Points    int    `gorm:"column:points;not null;default:0;" json:"points"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"updated_at"`
}

func (Player) TableName() string {
	return "player"
}

func PlayerToEntity(m *Player) *domain.Player {
	return &domain.Player{
		ID:        m.ID,
		SessionID: m.SessionID,
		Nickname:  m.Nickname,
		VillageID: m.VillageID,
		Points:    m.Points,
	}
}

func PlayerFromEntity(p *domain.Player) *Player {
	return &Player{
		ID:        p.ID,
		SessionID: p.SessionID,
		Nickname:  p.Nickname,
		VillageID: p.VillageID,
		Points:    p.Points,
	}
}
