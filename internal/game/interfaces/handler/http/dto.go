package http

import (
	"time"

	bdomain "plemiona/internal/battle/domain"
	sdomain "plemiona/internal/session/domain"
	vdomain "plemiona/internal/village/domain"
)

type createSessionRequest struct {
	Nickname string `json:"nickname"`
}

type joinSessionRequest struct {
	Nickname string `json:"nickname"`
}

type startSessionRequest struct {
	PlayerID string `json:"player_id"`
}

type trainUnitsRequest struct {
	Units map[string]int `json:"units"`
}

type attackRequest struct {
	DefenderPlayerID string         `json:"defender_player_id"`
	Units            map[string]int `json:"units"`
}

type sessionResponse struct {
	ID         string     `json:"id"`
	GameCode   string     `json:"game_code"`
	HasStarted bool       `json:"has_started"`
	HasEnded   bool       `json:"has_ended"`
	EndsAt     *time.Time `json:"ends_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

type playerResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Nickname  string `json:"nickname"`
	VillageID string `json:"village_id"`
}

type buildingView struct {
	Level     int  `json:"level"`
	Upgrading bool `json:"upgrading"`
}

type villageResponse struct {
	ID            string                  `json:"id"`
	X             int                     `json:"x"`
	Y             int                     `json:"y"`
	Wood          float64                 `json:"wood"`
	Clay          float64                 `json:"clay"`
	Iron          float64                 `json:"iron"`
	Morale        float64                 `json:"morale"`
	Buildings     map[string]buildingView `json:"buildings"`
	Units         map[string]int          `json:"units"`
	UnitsTraining bool                    `json:"units_training"`
	Points        int                     `json:"points"`
}

type battleResponse struct {
	ID         string    `json:"id"`
	Phase      string    `json:"phase"`
	BattleTime time.Time `json:"battle_time"`
}

func toSessionResponse(s *sdomain.GameSession) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		GameCode:   s.GameCode,
		HasStarted: s.HasStarted,
		HasEnded:   s.HasEnded,
		EndsAt:     s.EndsAt,
		EndedAt:    s.EndedAt,
	}
}

func toPlayerResponse(p *sdomain.Player) playerResponse {
	return playerResponse{
		ID:        p.ID,
		SessionID: p.SessionID,
		Nickname:  p.Nickname,
		VillageID: p.VillageID,
	}
}

func toVillageResponse(v *vdomain.Village) villageResponse {
	bs := make(map[string]buildingView, len(v.Buildings))
	for name, st := range v.Buildings {
		bs[string(name)] = buildingView{Level: st.Level, Upgrading: st.Upgrading}
	}
	us := make(map[string]int, len(v.Units))
	for name, n := range v.Units {
		us[string(name)] = n
	}
	return villageResponse{
		ID:            string(v.ID),
		X:             v.X,
		Y:             v.Y,
		Wood:          v.Resources.Wood,
		Clay:          v.Resources.Clay,
		Iron:          v.Resources.Iron,
		Morale:        v.Morale,
		Buildings:     bs,
		Units:         us,
		UnitsTraining: v.UnitsTraining,
		Points:        v.Points(),
	}
}

func toBattleResponse(b *bdomain.Battle) battleResponse {
	return battleResponse{
		ID:         b.ID,
		Phase:      string(b.Phase),
		BattleTime: b.BattleTime,
	}
}
