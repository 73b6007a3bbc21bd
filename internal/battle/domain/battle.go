package domain

import (
	"time"

	"plemiona/internal/shared/gameconfig/units"
	vdomain "plemiona/internal/village/domain"
)

type Phase string

const (
	// PhaseOngoing covers the outbound march up to resolution.
	PhaseOngoing Phase = "ongoing"
	// PhaseReturning exists only on attacker victory: survivors marching home.
	PhaseReturning Phase = "returning"
	PhaseFinished  Phase = "finished"
)

// Battle records one attack. Created at dispatch, mutated only by the
// resolution checkpoints, immutable to everyone else.
type Battle struct {
	ID        string
	SessionID string

	AttackerPlayerID  string
	DefenderPlayerID  string
	AttackerVillageID vdomain.VillageID
	DefenderVillageID vdomain.VillageID

	// CommittedUnits is the attacker roster locked in at dispatch.
	CommittedUnits map[units.Name]int

	DispatchedAt time.Time
	BattleTime   time.Time
	ReturnTime   *time.Time

	Phase Phase

	// Filled at arrival resolution.
	DefenderRoster     map[units.Name]int
	AttackerSurvivors  map[units.Name]int
	DefenderSurvivors  map[units.Name]int
	Plunder            vdomain.Resources
	AttackerWon        bool
	AttackerMoraleLoss float64
	DefenderMoraleLoss float64
}

// SlowestTravelTime is the outbound march duration: the slowest committed
// unit paces the whole force.
func SlowestTravelTime(committed map[units.Name]int, distance float64) time.Duration {
	slowest := time.Duration(0)
	for name, n := range committed {
		if n <= 0 {
			continue
		}
		e, ok := units.Get(name)
		if !ok {
			continue
		}
		if t := e.TravelTime(distance); t > slowest {
			slowest = t
		}
	}
	return slowest
}
