package model

import (
	"encoding/json"
	"time"

	"plemiona/internal/battle/domain"
	"plemiona/internal/shared/gameconfig/units"
	vdomain "plemiona/internal/village/domain"
)

// Battle stores the unit rosters as JSON maps; they are read back whole,
// never queried by column.
type Battle struct {
	ID        string `gorm:"column:id;type:varchar(36);primaryKey;" json:"id"`
	SessionID string `gorm:"column:session_id;type:varchar(36);index;not null;" json:"session_id"`

	AttackerPlayerID  string `gorm:"column:attacker_player_id;type:varchar(36);not null;" json:"attacker_player_id"`
	DefenderPlayerID  string `gorm:"column:defender_player_id;type:varchar(36);not null;" json:"defender_player_id"`
	AttackerVillageID string `gorm:"column:attacker_village_id;type:varchar(36);not null;" json:"attacker_village_id"`
	DefenderVillageID string `gorm:"column:defender_village_id;type:varchar(36);not null;" json:"defender_village_id"`

	CommittedUnits    string `gorm:"column:committed_units;type:varchar(500);" json:"committed_units"`
	DefenderRoster    string `gorm:"column:defender_roster;type:varchar(500);" json:"defender_roster"`
	AttackerSurvivors string `gorm:"column:attacker_survivors;type:varchar(500);" json:"attacker_survivors"`
	DefenderSurvivors string `gorm:"column:defender_survivors;type:varchar(500);" json:"defender_survivors"`

	DispatchedAt time.Time  `gorm:"column:dispatched_at;type:TIMESTAMP;not null;" json:"dispatched_at"`
	BattleTime   time.Time  `gorm:"column:battle_time;type:TIMESTAMP;not null;" json:"battle_time"`
	ReturnTime   *time.Time `gorm:"column:return_time;type:TIMESTAMP;default:NULL;" json:"return_time"`

	Phase string `gorm:"column:phase;type:varchar(16);not null;" json:"phase"`

	PlunderWood float64 `gorm:"column:plunder_wood;not null;default:0;" json:"plunder_wood"`
	PlunderClay float64 `gorm:"column:plunder_clay;not null;default:0;" json:"plunder_clay"`
	PlunderIron float64 `gorm:"column:plunder_iron;not null;default:0;" json:"plunder_iron"`

	AttackerWon        bool    `gorm:"column:attacker_won;not null;default:false;" json:"attacker_won"`
	AttackerMoraleLoss float64 `gorm:"column:attacker_morale_loss;not null;default:0;" json:"attacker_morale_loss"`
	DefenderMoraleLoss float64 `gorm:"column:defender_morale_loss;not null;default:0;" json:"defender_morale_loss"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"updated_at"`
}

func (Battle) TableName() string {
	return "battle"
}

func ToEntity(m *Battle) *domain.Battle {
	b := &domain.Battle{
		ID:                m.ID,
		SessionID:         m.SessionID,
		AttackerPlayerID:  m.AttackerPlayerID,
		DefenderPlayerID:  m.DefenderPlayerID,
		AttackerVillageID: vdomain.VillageID(m.AttackerVillageID),
		DefenderVillageID: vdomain.VillageID(m.DefenderVillageID),
		CommittedUnits:    decodeUnits(m.CommittedUnits),
		DefenderRoster:    decodeUnits(m.DefenderRoster),
		AttackerSurvivors: decodeUnits(m.AttackerSurvivors),
		DefenderSurvivors: decodeUnits(m.DefenderSurvivors),
		DispatchedAt:      m.DispatchedAt,
		BattleTime:        m.BattleTime,
		Phase:             domain.Phase(m.Phase),
		Plunder:           vdomain.Resources{Wood: m.PlunderWood, Clay: m.PlunderClay, Iron: m.PlunderIron},
		AttackerWon:       m.AttackerWon,
		AttackerMoraleLoss: m.AttackerMoraleLoss,
		DefenderMoraleLoss: m.DefenderMoraleLoss,
	}
	if m.ReturnTime != nil {
		t := *m.ReturnTime
		b.ReturnTime = &t
	}
	return b
}

func FromEntity(b *domain.Battle) *Battle {
	m := &Battle{
		ID:                 b.ID,
		SessionID:          b.SessionID,
		AttackerPlayerID:   b.AttackerPlayerID,
		DefenderPlayerID:   b.DefenderPlayerID,
		AttackerVillageID:  string(b.AttackerVillageID),
		DefenderVillageID:  string(b.DefenderVillageID),
		CommittedUnits:     encodeUnits(b.CommittedUnits),
		DefenderRoster:     encodeUnits(b.DefenderRoster),
		AttackerSurvivors:  encodeUnits(b.AttackerSurvivors),
		DefenderSurvivors:  encodeUnits(b.DefenderSurvivors),
		DispatchedAt:       b.DispatchedAt,
		BattleTime:         b.BattleTime,
		Phase:              string(b.Phase),
		PlunderWood:        b.Plunder.Wood,
		PlunderClay:        b.Plunder.Clay,
		PlunderIron:        b.Plunder.Iron,
		AttackerWon:        b.AttackerWon,
		AttackerMoraleLoss: b.AttackerMoraleLoss,
		DefenderMoraleLoss: b.DefenderMoraleLoss,
	}
	if b.ReturnTime != nil {
		t := *b.ReturnTime
		m.ReturnTime = &t
	}
	return m
}

func encodeUnits(counts map[units.Name]int) string {
	if len(counts) == 0 {
		return ""
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return ""
	}
	return string(raw)
}

func decodeUnits(raw string) map[units.Name]int {
	if raw == "" {
		return nil
	}
	out := make(map[units.Name]int)
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}
