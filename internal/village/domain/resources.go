package domain

import (
	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
)

// Resources is a raw-material bundle. Quantities are fractional internally
// (accrual adds sub-unit amounts every tick) and rounded only for display.
type Resources struct {
	Wood float64 `json:"wood"`
	Clay float64 `json:"clay"`
	Iron float64 `json:"iron"`
}

func FromBuildingCost(c buildings.Cost) Resources {
	return Resources{Wood: c.Wood, Clay: c.Clay, Iron: c.Iron}
}

func FromUnitCost(c units.Cost) Resources {
	return Resources{Wood: c.Wood, Clay: c.Clay, Iron: c.Iron}
}

func (r Resources) Add(o Resources) Resources {
	return Resources{Wood: r.Wood + o.Wood, Clay: r.Clay + o.Clay, Iron: r.Iron + o.Iron}
}

func (r Resources) Sub(o Resources) Resources {
	return Resources{Wood: r.Wood - o.Wood, Clay: r.Clay - o.Clay, Iron: r.Iron - o.Iron}
}

// Covers reports whether every component of cost is on hand.
func (r Resources) Covers(cost Resources) bool {
	return r.Wood >= cost.Wood && r.Clay >= cost.Clay && r.Iron >= cost.Iron
}

// ClampTo caps each component at the warehouse capacity.
func (r Resources) ClampTo(capacity float64) Resources {
	return Resources{
		Wood: min(r.Wood, capacity),
		Clay: min(r.Clay, capacity),
		Iron: min(r.Iron, capacity),
	}
}
