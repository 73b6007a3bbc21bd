package domain

import (
	"math"
	"testing"
	"time"

	"plemiona/internal/shared/gameconfig/units"
	vdomain "plemiona/internal/village/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestResolve_AttackerWinsOnlyWhenStrictlyStronger(t *testing.T) {
	// 2 spearmen attack at 20 against a lone spearman garrison:
	// defender strength (1+15)*1.2 = 19.2, attacker strictly stronger.
	out := Resolve(
		map[units.Name]int{units.Spearman: 2},
		map[units.Name]int{units.Spearman: 1},
		vdomain.Resources{},
	)
	if !out.AttackerWon {
		t.Fatal("attacker at 20 vs 19.2 must win")
	}

	// 1 spearman at 10 against the same garrison loses.
	out = Resolve(
		map[units.Name]int{units.Spearman: 1},
		map[units.Name]int{units.Spearman: 1},
		vdomain.Resources{},
	)
	if out.AttackerWon {
		t.Fatal("attacker at 10 vs 19.2 must lose")
	}
}

func TestResolve_EmptyAttackGoesToDefender(t *testing.T) {
	// The +1 floor keeps defender strength positive against any attack, so
	// the ratio is always defined.
	out := Resolve(
		map[units.Name]int{units.Spearman: 0},
		map[units.Name]int{},
		vdomain.Resources{Wood: 100},
	)
	if out.AttackerWon {
		t.Fatal("zero-strength attack must go to the defender")
	}
	if out.Ratio != 0 {
		t.Fatalf("ratio = %v, want 0", out.Ratio)
	}
	if out.Plunder != (vdomain.Resources{}) {
		t.Fatalf("defender win must yield no plunder: %+v", out.Plunder)
	}
}

func TestResolve_AttackerVictoryAttritionAndPlunder(t *testing.T) {
	// 10 spearmen at 100 vs 3 spearmen: defender (1+45)*1.2 = 55.2,
	// ratio 0.552, survivors round(10*0.448) = 4, carry 4*25 = 100.
	committed := map[units.Name]int{units.Spearman: 10}
	roster := map[units.Name]int{units.Spearman: 3}
	stock := vdomain.Resources{Wood: 500, Clay: 60, Iron: 500}

	out := Resolve(committed, roster, stock)

	if !out.AttackerWon {
		t.Fatal("expected attacker victory")
	}
	if !almostEqual(out.Ratio, 0.552) {
		t.Fatalf("ratio = %v, want 0.552", out.Ratio)
	}
	if out.AttackerSurvivors[units.Spearman] != 4 {
		t.Fatalf("attacker survivors = %d, want 4", out.AttackerSurvivors[units.Spearman])
	}
	if out.DefenderSurvivors[units.Spearman] != 0 {
		t.Fatalf("beaten garrison must be wiped, got %d", out.DefenderSurvivors[units.Spearman])
	}

	// Plunder per resource is min(stock, surviving carry 100).
	want := vdomain.Resources{Wood: 100, Clay: 60, Iron: 100}
	if out.Plunder != want {
		t.Fatalf("plunder = %+v, want %+v", out.Plunder, want)
	}

	if !almostEqual(out.AttackerMoraleLoss, 30*0.552*0.5) {
		t.Fatalf("attacker morale loss = %v", out.AttackerMoraleLoss)
	}
	if !almostEqual(out.DefenderMoraleLoss, 30*0.448) {
		t.Fatalf("defender morale loss = %v", out.DefenderMoraleLoss)
	}
}

func TestResolve_DefenderVictoryWipesAttacker(t *testing.T) {
	committed := map[units.Name]int{units.Spearman: 1}
	roster := map[units.Name]int{units.Swordsman: 4}

	out := Resolve(committed, roster, vdomain.Resources{Wood: 1000})

	if out.AttackerWon {
		t.Fatal("expected defender victory")
	}
	if out.AttackerSurvivors[units.Spearman] != 0 {
		t.Fatalf("beaten attacker must be wiped, got %d", out.AttackerSurvivors[units.Spearman])
	}
	// Defender (1+200)*1.2 = 241.2 vs 10: ratio ≈ 0.04146,
	// survivors round(4*(1-ratio)) = 4.
	if out.DefenderSurvivors[units.Swordsman] != 4 {
		t.Fatalf("defender survivors = %d, want 4", out.DefenderSurvivors[units.Swordsman])
	}
	if out.Plunder != (vdomain.Resources{}) {
		t.Fatalf("defender win must yield no plunder: %+v", out.Plunder)
	}
	if out.DefenderMoraleLoss != 0 {
		t.Fatalf("winning defender loses no morale, got %v", out.DefenderMoraleLoss)
	}
	if !almostEqual(out.AttackerMoraleLoss, 30*(1-out.Ratio)) {
		t.Fatalf("attacker morale loss = %v", out.AttackerMoraleLoss)
	}
}

func TestResolve_HalfSurvivorRoundsAwayFromZero(t *testing.T) {
	// attrition rounds half away from zero: 1 committed unit at exactly
	// (1-ratio) = 0.5 survives.
	got := attrition(map[units.Name]int{units.Spearman: 1}, 0.5)
	if got[units.Spearman] != 1 {
		t.Fatalf("round(0.5) = %d, want 1", got[units.Spearman])
	}
	got = attrition(map[units.Name]int{units.Spearman: 3}, 0.5)
	if got[units.Spearman] != 2 {
		t.Fatalf("round(1.5) = %d, want 2", got[units.Spearman])
	}
}

func TestSlowestTravelTime_PacedByTheSlowestUnit(t *testing.T) {
	committed := map[units.Name]int{
		units.Spearman:  10, // 18s per field
		units.Swordsman: 1,  // 22s per field
	}

	got := SlowestTravelTime(committed, 3)

	if want := 66 * time.Second; got != want {
		t.Fatalf("travel = %v, want %v", got, want)
	}

	// Zero-count entries don't pace the march.
	committed[units.Swordsman] = 0
	if got := SlowestTravelTime(committed, 3); got != 54*time.Second {
		t.Fatalf("travel = %v, want 54s", got)
	}
}
