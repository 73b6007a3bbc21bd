package domain

import (
	"math"

	"plemiona/internal/shared/gameconfig/units"
	vdomain "plemiona/internal/village/domain"
)

const (
	// DefensiveBonus favors the defender: their strength is
	// (1 + sum of defense) * DefensiveBonus. The +1 floor keeps the ratio
	// defined even against an empty garrison.
	DefensiveBonus = 1.2

	// BaseMoraleLoss scales every morale penalty.
	BaseMoraleLoss = 30.0
)

// Outcome is the pure result of one engagement.
type Outcome struct {
	AttackerWon bool
	Ratio       float64

	// AttackerSurvivors is non-empty only on attacker victory; a beaten
	// attacker is wiped out and has no return leg.
	AttackerSurvivors map[units.Name]int
	DefenderSurvivors map[units.Name]int

	Plunder vdomain.Resources

	// AttackerMoraleLoss applies at return time on victory, immediately on
	// defeat. DefenderMoraleLoss applies immediately and only on defeat.
	AttackerMoraleLoss float64
	DefenderMoraleLoss float64
}

// Resolve computes the engagement between the committed attacker force and
// the defender's roster, given the defender's resource stock for plunder.
// Equal strengths go to the defender: the attacker must be strictly
// stronger to win.
func Resolve(committed, roster map[units.Name]int, defenderStock vdomain.Resources) Outcome {
	attackerStrength := 0.0
	for name, n := range committed {
		if e, ok := units.Get(name); ok {
			attackerStrength += e.OffensiveStrength(n)
		}
	}
	defenseSum := 0.0
	for name, n := range roster {
		if e, ok := units.Get(name); ok {
			defenseSum += e.DefensiveStrength(n)
		}
	}
	defenderStrength := (1 + defenseSum) * DefensiveBonus

	ratio := math.Min(attackerStrength, defenderStrength) /
		math.Max(attackerStrength, defenderStrength)

	out := Outcome{Ratio: ratio}

	if attackerStrength > defenderStrength {
		out.AttackerWon = true
		out.AttackerSurvivors = attrition(committed, ratio)
		out.DefenderSurvivors = zeroed(roster)
		out.AttackerMoraleLoss = BaseMoraleLoss * ratio * 0.5
		out.DefenderMoraleLoss = BaseMoraleLoss * (1 - ratio)

		carry := 0.0
		for name, n := range out.AttackerSurvivors {
			if e, ok := units.Get(name); ok {
				carry += e.CarryingCapacity(n)
			}
		}
		out.Plunder = vdomain.Resources{
			Wood: math.Min(defenderStock.Wood, carry),
			Clay: math.Min(defenderStock.Clay, carry),
			Iron: math.Min(defenderStock.Iron, carry),
		}
		return out
	}

	out.DefenderSurvivors = attrition(roster, ratio)
	out.AttackerSurvivors = zeroed(committed)
	out.AttackerMoraleLoss = BaseMoraleLoss * (1 - ratio)
	return out
}

// attrition scales every count by (1-ratio), rounding half away from zero.
func attrition(counts map[units.Name]int, ratio float64) map[units.Name]int {
	out := make(map[units.Name]int, len(counts))
	for name, n := range counts {
		out[name] = int(math.Round(float64(n) * (1 - ratio)))
	}
	return out
}

func zeroed(counts map[units.Name]int) map[units.Name]int {
	out := make(map[units.Name]int, len(counts))
	for name := range counts {
		out[name] = 0
	}
	return out
}
