package domain

import (
	"time"

	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
)

type VillageID string

// BuildingState is one building's slot in the village: its level and the
// guard flag keeping at most one upgrade in flight per building.
type BuildingState struct {
	Level     int
	Upgrading bool
}

// TrainingStep is one unit's completion in a training batch: the service
// schedules one timer per step at the cumulative offset so partial progress
// lands unit by unit. Last clears the village-wide training flag.
type TrainingStep struct {
	Unit   units.Name
	Offset time.Duration
	Last   bool
}

// Village is the aggregate root for one player's base. All mutations run
// behind the per-village lock held by the service layer.
type Village struct {
	ID        VillageID
	PlayerID  string
	SessionID string

	X, Y int

	Resources Resources
	Morale    float64

	Buildings map[buildings.Name]*BuildingState
	Units     map[units.Name]int

	UnitsTraining bool

	// LastResourcesUpdate is nil until the session starts; production counts
	// from session start, not village creation.
	LastResourcesUpdate *time.Time
}

func NewVillage(id VillageID, playerID, sessionID string, start Resources, morale float64) *Village {
	v := &Village{
		ID:        id,
		PlayerID:  playerID,
		SessionID: sessionID,
		Resources: start,
		Morale:    morale,
		Buildings: make(map[buildings.Name]*BuildingState),
		Units:     make(map[units.Name]int),
	}
	for _, name := range buildings.All() {
		v.Buildings[name] = &BuildingState{Level: 1}
	}
	for _, name := range units.All() {
		v.Units[name] = 0
	}
	return v
}

// WarehouseCapacity derives the per-resource storage limit from the current
// warehouse level.
func (v *Village) WarehouseCapacity() float64 {
	e, _ := buildings.Get(buildings.Warehouse)
	return e.Capacity(v.Buildings[buildings.Warehouse].Level)
}

// Accrue credits production for the wall-clock time since the last update,
// clamped to warehouse capacity. The first call only stamps the timestamp;
// a caller clock behind the stored stamp clamps elapsed to zero. Must run
// before anything reads or charges resources.
func (v *Village) Accrue(now time.Time) {
	if v.LastResourcesUpdate == nil {
		t := now
		v.LastResourcesUpdate = &t
		return
	}

	elapsed := now.Sub(*v.LastResourcesUpdate).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	capacity := v.WarehouseCapacity()
	for name, st := range v.Buildings {
		e, ok := buildings.Get(name)
		if !ok {
			continue
		}
		rate := e.ProductionRate(st.Level)
		if rate == 0 {
			continue
		}
		produced := rate * elapsed
		switch e.Produces {
		case "wood":
			v.Resources.Wood += produced
		case "clay":
			v.Resources.Clay += produced
		case "iron":
			v.Resources.Iron += produced
		}
	}
	v.Resources = v.Resources.ClampTo(capacity)

	t := now
	v.LastResourcesUpdate = &t
}

// Charge debits cost all-or-nothing: if any single resource falls short,
// nothing is decremented.
func (v *Village) Charge(cost Resources) error {
	if !v.Resources.Covers(cost) {
		return ErrInsufficientResources
	}
	v.Resources = v.Resources.Sub(cost)
	return nil
}

// Credit adds resources, clamped to capacity. Used for returning plunder.
func (v *Village) Credit(amount Resources) {
	v.Resources = v.Resources.Add(amount).ClampTo(v.WarehouseCapacity())
}

// StartUpgrade validates, charges, and flips the building to upgrading.
// Returns the upgrade duration for the caller to schedule the completion.
func (v *Village) StartUpgrade(name buildings.Name) (time.Duration, error) {
	e, ok := buildings.Get(name)
	if !ok {
		return 0, ErrBuildingNotFound
	}
	st := v.Buildings[name]
	if st.Upgrading {
		return 0, ErrBuildingUpgradeInProgress
	}
	if st.Level >= e.MaxLevel {
		return 0, ErrBuildingMaxLevel
	}
	if err := v.Charge(FromBuildingCost(e.UpgradeCost(st.Level))); err != nil {
		return 0, err
	}
	st.Upgrading = true
	return e.UpgradeDuration(st.Level, v.Buildings[buildings.TownHall].Level), nil
}

// CompleteUpgrade applies a finished upgrade. A clear guard flag means the
// completion was cancelled or already applied: no-op, not an error. The
// flag clears even on a failure path so it can never stick "in progress".
func (v *Village) CompleteUpgrade(name buildings.Name, now time.Time) (applied bool, err error) {
	e, ok := buildings.Get(name)
	if !ok {
		return false, ErrBuildingNotFound
	}
	st := v.Buildings[name]
	if !st.Upgrading {
		return false, nil
	}
	defer func() { st.Upgrading = false }()

	v.Accrue(now)
	if st.Level < e.MaxLevel {
		st.Level++
	}
	return true, nil
}

// StartTraining validates the batch, charges the aggregated cost once, and
// flips the village-wide training flag. The returned steps are scheduled by
// the caller, one timer per single unit at cumulative offsets.
func (v *Village) StartTraining(requests map[units.Name]int) ([]TrainingStep, error) {
	if v.UnitsTraining {
		return nil, ErrUnitsAlreadyTraining
	}

	total := Resources{}
	count := 0
	for name, n := range requests {
		if n <= 0 {
			continue
		}
		e, ok := units.Get(name)
		if !ok {
			return nil, ErrUnitNotFound
		}
		total = total.Add(FromUnitCost(e.TrainingCost(n)))
		count += n
	}
	if count == 0 {
		return nil, ErrNoUnitsRequested
	}
	if err := v.Charge(total); err != nil {
		return nil, err
	}

	steps := make([]TrainingStep, 0, count)
	offset := time.Duration(0)
	for _, name := range units.All() {
		n := requests[name]
		if n <= 0 {
			continue
		}
		e, _ := units.Get(name)
		for i := 0; i < n; i++ {
			offset += e.TrainingTime(1)
			steps = append(steps, TrainingStep{Unit: name, Offset: offset})
		}
	}
	steps[len(steps)-1].Last = true

	v.UnitsTraining = true
	return steps, nil
}

// CompleteUnitTraining lands one trained unit. No-op when the training flag
// is already clear (cancelled batch, re-delivered timer).
func (v *Village) CompleteUnitTraining(name units.Name, last bool) bool {
	if !v.UnitsTraining {
		return false
	}
	v.Units[name]++
	if last {
		v.UnitsTraining = false
	}
	return true
}

// DebitUnits removes committed units up front so they cannot be spent
// twice; fails atomically when any type falls short.
func (v *Village) DebitUnits(committed map[units.Name]int) error {
	for name, n := range committed {
		if n <= 0 {
			continue
		}
		if _, ok := units.Get(name); !ok {
			return ErrUnitNotFound
		}
		if v.Units[name] < n {
			return ErrInsufficientUnits
		}
	}
	for name, n := range committed {
		if n > 0 {
			v.Units[name] -= n
		}
	}
	return nil
}

// AddUnits restores units additively; the village may have trained more
// while these were away.
func (v *Village) AddUnits(survivors map[units.Name]int) {
	for name, n := range survivors {
		if n > 0 {
			v.Units[name] += n
		}
	}
}

// ApplyMoraleLoss decreases morale, floored at zero.
func (v *Village) ApplyMoraleLoss(delta float64) {
	v.Morale -= delta
	if v.Morale < 0 {
		v.Morale = 0
	}
}

// Points scores the village: building points plus unit points.
func (v *Village) Points() int {
	total := 0
	for name, st := range v.Buildings {
		if e, ok := buildings.Get(name); ok {
			total += e.Points(st.Level)
		}
	}
	for name, n := range v.Units {
		if e, ok := units.Get(name); ok {
			total += e.Points(n)
		}
	}
	return total
}
