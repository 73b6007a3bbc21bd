package units

import (
	"testing"
	"time"
)

func TestGet_UnknownNameMisses(t *testing.T) {
	if _, ok := Get("knight"); ok {
		t.Fatal("unknown unit must miss the catalog")
	}
	for _, name := range []Name{Spearman, Swordsman, Axeman, Archer} {
		if _, ok := Get(name); !ok {
			t.Fatalf("catalog unit %q missing", name)
		}
	}
}

func TestTrainingCost_LinearInBatchSize(t *testing.T) {
	e, _ := Get(Spearman)

	cost := e.TrainingCost(3)
	if cost.Wood != 150 || cost.Clay != 90 || cost.Iron != 30 {
		t.Fatalf("3 spearmen cost %+v", cost)
	}
	if e.TrainingTime(3) != 15*time.Second {
		t.Fatalf("training time %v, want 15s", e.TrainingTime(3))
	}
}

func TestStrengthAndCarry_LinearInCount(t *testing.T) {
	e, _ := Get(Axeman)

	if e.OffensiveStrength(5) != 200 {
		t.Fatalf("offense = %v", e.OffensiveStrength(5))
	}
	if e.DefensiveStrength(5) != 50 {
		t.Fatalf("defense = %v", e.DefensiveStrength(5))
	}
	if e.CarryingCapacity(5) != 50 {
		t.Fatalf("carry = %v", e.CarryingCapacity(5))
	}
	if e.Points(5) != 25 {
		t.Fatalf("points = %d", e.Points(5))
	}
}

func TestTravelTime_SpeedTimesDistance(t *testing.T) {
	e, _ := Get(Swordsman)

	if got := e.TravelTime(4); got != 88*time.Second {
		t.Fatalf("travel = %v, want 88s", got)
	}
}

func TestDistance_Euclidean(t *testing.T) {
	if d := Distance(0, 0, 3, 4); d != 5 {
		t.Fatalf("distance = %v, want 5", d)
	}
	if d := Distance(2, 2, 2, 2); d != 0 {
		t.Fatalf("distance = %v, want 0", d)
	}
}
