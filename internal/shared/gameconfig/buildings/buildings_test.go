package buildings

import (
	"testing"
)

func TestGet_UnknownNameMisses(t *testing.T) {
	if _, ok := Get("castle"); ok {
		t.Fatal("unknown building must miss the catalog")
	}
	if _, ok := Get(Sawmill); !ok {
		t.Fatal("catalog building missing")
	}
}

func TestAll_CoversTheCatalog(t *testing.T) {
	names := All()
	if len(names) != 6 {
		t.Fatalf("catalog has %d buildings, want 6", len(names))
	}
	for _, name := range names {
		if _, ok := Get(name); !ok {
			t.Fatalf("All returned %q but Get misses it", name)
		}
	}
}

func TestUpgradeCost_GrowsWithLevelAndKeepsGranularity(t *testing.T) {
	e, _ := Get(Sawmill)

	prev := e.UpgradeCost(1)
	for level := 2; level <= e.MaxLevel; level++ {
		cost := e.UpgradeCost(level)
		if cost.Wood < prev.Wood || cost.Clay < prev.Clay || cost.Iron < prev.Iron {
			t.Fatalf("cost shrank from level %d to %d: %+v -> %+v", level-1, level, prev, cost)
		}
		for _, v := range []float64{cost.Wood, cost.Clay, cost.Iron} {
			if int(v)%10 != 0 {
				t.Fatalf("level %d cost %v not on the 10-granularity grid", level, v)
			}
		}
		prev = cost
	}
}

func TestUpgradeDuration_TownHallDiscountApplies(t *testing.T) {
	e, _ := Get(Barracks)

	base := e.UpgradeDuration(3, 1)
	discounted := e.UpgradeDuration(3, 10)
	if discounted >= base {
		t.Fatalf("town hall 10 must be faster than 1: %v >= %v", discounted, base)
	}
	if e.UpgradeDuration(4, 1) <= base {
		t.Fatal("duration must grow with level")
	}
}

func TestProductionRate_OnlyResourceBuildingsProduce(t *testing.T) {
	sawmill, _ := Get(Sawmill)
	if sawmill.ProductionRate(1) <= 0 {
		t.Fatal("sawmill must produce wood")
	}
	if sawmill.ProductionRate(2) <= sawmill.ProductionRate(1) {
		t.Fatal("production must grow with level")
	}

	barracks, _ := Get(Barracks)
	if barracks.ProductionRate(5) != 0 {
		t.Fatal("barracks produce nothing")
	}
}

func TestCapacity_WarehouseOnly(t *testing.T) {
	warehouse, _ := Get(Warehouse)
	c1 := warehouse.Capacity(1)
	if c1 <= 0 || int(c1)%100 != 0 {
		t.Fatalf("capacity %v must be positive on the 100 grid", c1)
	}
	if warehouse.Capacity(2) <= c1 {
		t.Fatal("capacity must grow with level")
	}

	sawmill, _ := Get(Sawmill)
	if sawmill.Capacity(5) != 0 {
		t.Fatal("only the warehouse stores")
	}
}

func TestPoints_LinearInLevel(t *testing.T) {
	e, _ := Get(TownHall)
	if e.Points(3) != 3*e.PointsPerLevel {
		t.Fatalf("points(3) = %d", e.Points(3))
	}
}
