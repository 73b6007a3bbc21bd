package domain

import (
	"math"
	"testing"
	"time"

	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
)

func newTestVillage() *Village {
	return NewVillage("v1", "p1", "s1", Resources{Wood: 400, Clay: 400, Iron: 400}, 100)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestAccrue_FirstCallOnlyStampsClock(t *testing.T) {
	v := newTestVillage()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	v.Accrue(now)

	if v.LastResourcesUpdate == nil || !v.LastResourcesUpdate.Equal(now) {
		t.Fatalf("expected stamp %v, got %v", now, v.LastResourcesUpdate)
	}
	if v.Resources.Wood != 400 || v.Resources.Clay != 400 || v.Resources.Iron != 400 {
		t.Fatalf("first accrue must not credit production, got %+v", v.Resources)
	}
}

func TestAccrue_CreditsElapsedProduction(t *testing.T) {
	v := newTestVillage()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v.Accrue(start)

	v.Accrue(start.Add(60 * time.Second))

	sawmill, _ := buildings.Get(buildings.Sawmill)
	wantWood := 400 + sawmill.ProductionRate(1)*60
	if !almostEqual(v.Resources.Wood, wantWood) {
		t.Fatalf("wood = %v, want %v", v.Resources.Wood, wantWood)
	}
}

func TestAccrue_SameInstantIsIdempotent(t *testing.T) {
	v := newTestVillage()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v.Accrue(start)
	now := start.Add(90 * time.Second)

	v.Accrue(now)
	after := v.Resources
	v.Accrue(now)

	if v.Resources != after {
		t.Fatalf("second accrue at the same instant changed resources: %+v != %+v", v.Resources, after)
	}
}

func TestAccrue_ClockBehindClampsToZero(t *testing.T) {
	v := newTestVillage()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v.Accrue(start)

	v.Accrue(start.Add(-time.Hour))

	if v.Resources.Wood != 400 {
		t.Fatalf("negative elapsed must not credit or debit, got %v", v.Resources.Wood)
	}
}

func TestAccrue_ClampsToWarehouseCapacity(t *testing.T) {
	v := newTestVillage()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v.Accrue(start)

	capacity := v.WarehouseCapacity()
	v.Resources = Resources{Wood: capacity - 1, Clay: capacity - 1, Iron: capacity - 1}
	v.Accrue(start.Add(24 * time.Hour))

	if v.Resources.Wood != capacity || v.Resources.Clay != capacity || v.Resources.Iron != capacity {
		t.Fatalf("resources must clamp to %v, got %+v", capacity, v.Resources)
	}
}

func TestCharge_AllOrNothing(t *testing.T) {
	v := newTestVillage()
	before := v.Resources

	err := v.Charge(Resources{Wood: 100, Clay: 100, Iron: 500})

	if err != ErrInsufficientResources {
		t.Fatalf("expected ErrInsufficientResources, got %v", err)
	}
	if v.Resources != before {
		t.Fatalf("failed charge must not touch any resource: %+v != %+v", v.Resources, before)
	}
}

func TestStartUpgrade_ChargesCatalogCostAndFlipsFlag(t *testing.T) {
	v := newTestVillage()

	d, err := v.StartUpgrade(buildings.Sawmill)
	if err != nil {
		t.Fatalf("start upgrade failed: %v", err)
	}
	if d <= 0 {
		t.Fatalf("expected positive duration, got %v", d)
	}
	if !v.Buildings[buildings.Sawmill].Upgrading {
		t.Fatal("upgrading flag not set")
	}

	e, _ := buildings.Get(buildings.Sawmill)
	cost := e.UpgradeCost(1)
	if !almostEqual(v.Resources.Wood, 400-cost.Wood) {
		t.Fatalf("wood = %v, want %v", v.Resources.Wood, 400-cost.Wood)
	}
}

func TestStartUpgrade_SecondOnSameBuildingRejected(t *testing.T) {
	v := newTestVillage()
	if _, err := v.StartUpgrade(buildings.Sawmill); err != nil {
		t.Fatalf("first upgrade failed: %v", err)
	}

	if _, err := v.StartUpgrade(buildings.Sawmill); err != ErrBuildingUpgradeInProgress {
		t.Fatalf("expected ErrBuildingUpgradeInProgress, got %v", err)
	}
}

func TestStartUpgrade_DifferentBuildingsConcurrently(t *testing.T) {
	v := newTestVillage()
	v.Resources = Resources{Wood: 10000, Clay: 10000, Iron: 10000}

	if _, err := v.StartUpgrade(buildings.Sawmill); err != nil {
		t.Fatalf("sawmill upgrade failed: %v", err)
	}
	if _, err := v.StartUpgrade(buildings.ClayPit); err != nil {
		t.Fatalf("clay pit upgrade must run alongside sawmill, got %v", err)
	}
}

func TestStartUpgrade_MaxLevelRejected(t *testing.T) {
	v := newTestVillage()
	e, _ := buildings.Get(buildings.Sawmill)
	v.Buildings[buildings.Sawmill].Level = e.MaxLevel
	v.Resources = Resources{Wood: 1e9, Clay: 1e9, Iron: 1e9}

	if _, err := v.StartUpgrade(buildings.Sawmill); err != ErrBuildingMaxLevel {
		t.Fatalf("expected ErrBuildingMaxLevel, got %v", err)
	}
}

func TestStartUpgrade_UnknownBuilding(t *testing.T) {
	v := newTestVillage()
	if _, err := v.StartUpgrade("castle"); err != ErrBuildingNotFound {
		t.Fatalf("expected ErrBuildingNotFound, got %v", err)
	}
}

func TestCompleteUpgrade_AppliesAndClearsFlag(t *testing.T) {
	v := newTestVillage()
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	v.Accrue(start)
	if _, err := v.StartUpgrade(buildings.Sawmill); err != nil {
		t.Fatalf("start upgrade failed: %v", err)
	}

	applied, err := v.CompleteUpgrade(buildings.Sawmill, start.Add(5*time.Minute))
	if err != nil || !applied {
		t.Fatalf("complete = (%v, %v), want (true, nil)", applied, err)
	}
	st := v.Buildings[buildings.Sawmill]
	if st.Level != 2 || st.Upgrading {
		t.Fatalf("expected level 2 idle, got level=%d upgrading=%v", st.Level, st.Upgrading)
	}
}

func TestCompleteUpgrade_NoopWhenFlagClear(t *testing.T) {
	v := newTestVillage()

	applied, err := v.CompleteUpgrade(buildings.Sawmill, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if applied {
		t.Fatal("completion without an in-flight upgrade must be a no-op")
	}
	if v.Buildings[buildings.Sawmill].Level != 1 {
		t.Fatalf("level changed to %d", v.Buildings[buildings.Sawmill].Level)
	}
}

func TestStartTraining_StepsAtCumulativeOffsets(t *testing.T) {
	v := newTestVillage()

	steps, err := v.StartTraining(map[units.Name]int{
		units.Spearman: 2,
		units.Axeman:   1,
	})
	if err != nil {
		t.Fatalf("start training failed: %v", err)
	}
	if !v.UnitsTraining {
		t.Fatal("training flag not set")
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(steps))
	}

	// Spearman trains in 5s, axeman in 7s; the queue is sequential.
	wantOffsets := []time.Duration{5 * time.Second, 10 * time.Second, 17 * time.Second}
	for i, want := range wantOffsets {
		if steps[i].Offset != want {
			t.Fatalf("step %d offset = %v, want %v", i, steps[i].Offset, want)
		}
	}
	if steps[0].Unit != units.Spearman || steps[2].Unit != units.Axeman {
		t.Fatalf("unexpected step order: %+v", steps)
	}
	if steps[0].Last || steps[1].Last || !steps[2].Last {
		t.Fatalf("only the final step may carry Last: %+v", steps)
	}

	// 2 spearmen (50,30,10 each) + 1 axeman (60,30,40).
	if !almostEqual(v.Resources.Wood, 400-160) || !almostEqual(v.Resources.Clay, 400-90) || !almostEqual(v.Resources.Iron, 400-60) {
		t.Fatalf("aggregate cost not charged once: %+v", v.Resources)
	}
}

func TestStartTraining_Guards(t *testing.T) {
	v := newTestVillage()

	if _, err := v.StartTraining(map[units.Name]int{}); err != ErrNoUnitsRequested {
		t.Fatalf("empty batch: expected ErrNoUnitsRequested, got %v", err)
	}
	if _, err := v.StartTraining(map[units.Name]int{units.Spearman: 0}); err != ErrNoUnitsRequested {
		t.Fatalf("zero counts: expected ErrNoUnitsRequested, got %v", err)
	}
	if _, err := v.StartTraining(map[units.Name]int{"knight": 1}); err != ErrUnitNotFound {
		t.Fatalf("unknown unit: expected ErrUnitNotFound, got %v", err)
	}
	if _, err := v.StartTraining(map[units.Name]int{units.Archer: 100}); err != ErrInsufficientResources {
		t.Fatalf("expected ErrInsufficientResources, got %v", err)
	}
	if v.UnitsTraining {
		t.Fatal("failed starts must not flip the training flag")
	}

	if _, err := v.StartTraining(map[units.Name]int{units.Spearman: 1}); err != nil {
		t.Fatalf("valid start failed: %v", err)
	}
	if _, err := v.StartTraining(map[units.Name]int{units.Spearman: 1}); err != ErrUnitsAlreadyTraining {
		t.Fatalf("expected ErrUnitsAlreadyTraining, got %v", err)
	}
}

func TestCompleteUnitTraining_LandsOneByOne(t *testing.T) {
	v := newTestVillage()
	steps, err := v.StartTraining(map[units.Name]int{units.Spearman: 2})
	if err != nil {
		t.Fatalf("start training failed: %v", err)
	}

	for _, step := range steps {
		if !v.CompleteUnitTraining(step.Unit, step.Last) {
			t.Fatalf("completion of %v rejected", step.Unit)
		}
	}
	if v.Units[units.Spearman] != 2 {
		t.Fatalf("spearmen = %d, want 2", v.Units[units.Spearman])
	}
	if v.UnitsTraining {
		t.Fatal("last completion must clear the training flag")
	}

	if v.CompleteUnitTraining(units.Spearman, false) {
		t.Fatal("completion after the flag cleared must be a no-op")
	}
	if v.Units[units.Spearman] != 2 {
		t.Fatalf("no-op completion changed counts: %d", v.Units[units.Spearman])
	}
}

func TestDebitUnits_Atomic(t *testing.T) {
	v := newTestVillage()
	v.Units[units.Spearman] = 5
	v.Units[units.Axeman] = 1

	err := v.DebitUnits(map[units.Name]int{units.Spearman: 3, units.Axeman: 2})
	if err != ErrInsufficientUnits {
		t.Fatalf("expected ErrInsufficientUnits, got %v", err)
	}
	if v.Units[units.Spearman] != 5 || v.Units[units.Axeman] != 1 {
		t.Fatalf("failed debit must not touch any count: %+v", v.Units)
	}

	if err := v.DebitUnits(map[units.Name]int{units.Spearman: 3, units.Axeman: 1}); err != nil {
		t.Fatalf("valid debit failed: %v", err)
	}
	if v.Units[units.Spearman] != 2 || v.Units[units.Axeman] != 0 {
		t.Fatalf("unexpected counts after debit: %+v", v.Units)
	}
}

func TestApplyMoraleLoss_FlooredAtZero(t *testing.T) {
	v := newTestVillage()

	v.ApplyMoraleLoss(130)

	if v.Morale != 0 {
		t.Fatalf("morale = %v, want 0", v.Morale)
	}
}

func TestPoints_SumsBuildingsAndUnits(t *testing.T) {
	v := newTestVillage()
	v.Units[units.Spearman] = 3

	// Level 1 everywhere: 10+6+8+8+8+12 = 52, plus 3 spearmen at 4 each.
	if got := v.Points(); got != 52+12 {
		t.Fatalf("points = %d, want %d", got, 64)
	}
}
