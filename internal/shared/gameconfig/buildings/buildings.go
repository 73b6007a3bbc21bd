package buildings

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Name identifies a building in the closed catalog.
type Name string

const (
	TownHall  Name = "town_hall"
	Warehouse Name = "warehouse"
	IronMine  Name = "iron_mine"
	ClayPit   Name = "clay_pit"
	Sawmill   Name = "sawmill"
	Barracks  Name = "barracks"
)

const buildingsFile = "Buildings.json"

// Cost is an upgrade price in raw resources.
type Cost struct {
	Wood float64 `json:"wood"`
	Clay float64 `json:"clay"`
	Iron float64 `json:"iron"`
}

type Entry struct {
	Name           Name    `json:"name"`
	MaxLevel       int     `json:"max_level"`
	BaseCost       Cost    `json:"base_cost"`
	BaseTimeSec    float64 `json:"base_time_sec"`
	PointsPerLevel int     `json:"points_per_level"`
	Produces       string  `json:"produces,omitempty"`
	ProductionBase float64 `json:"production_base,omitempty"`
	CapacityBase   float64 `json:"capacity_base,omitempty"`
}

type buildingConf struct {
	CostCoeff           float64  `json:"cost_coeff"`
	CostGranularity     float64  `json:"cost_granularity"`
	TimeFactor          float64  `json:"time_factor"`
	TownHallDiscount    float64  `json:"town_hall_discount"`
	ProductionCoeff     float64  `json:"production_coeff"`
	CapacityCoeff       float64  `json:"capacity_coeff"`
	CapacityGranularity float64  `json:"capacity_granularity"`
	List                []*Entry `json:"list"`

	byName map[Name]*Entry
}

var (
	conf     = &buildingConf{}
	loadOnce sync.Once
)

// Load reads the catalog file sitting next to this package's source. Panics
// on failure: the catalog is static and the process is useless without it.
func Load() {
	loadOnce.Do(load)
}

func load() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("load Buildings config failed: runtime.Caller(0) error")
	}

	path := filepath.Join(filepath.Dir(file), buildingsFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("load Buildings config failed: read %q: %w", path, err))
	}
	if err := json.Unmarshal(raw, conf); err != nil {
		panic(fmt.Errorf("load Buildings config failed: parse %q: %w", path, err))
	}

	conf.byName = make(map[Name]*Entry, len(conf.List))
	for _, e := range conf.List {
		conf.byName[e.Name] = e
	}
}

// Get resolves a building by name. The single table-miss check behind
// the BuildingNotFound error.
func Get(name Name) (*Entry, bool) {
	Load()
	e, ok := conf.byName[name]
	return e, ok
}

// All returns the catalog names in file order.
func All() []Name {
	Load()
	out := make([]Name, 0, len(conf.List))
	for _, e := range conf.List {
		out = append(out, e.Name)
	}
	return out
}

// UpgradeCost derives the price of leaving the given level, per resource:
// round(base * exp(level*costCoeff) / granularity) * granularity.
func (e *Entry) UpgradeCost(level int) Cost {
	scale := math.Exp(float64(level) * conf.CostCoeff)
	return Cost{
		Wood: roundTo(e.BaseCost.Wood*scale, conf.CostGranularity),
		Clay: roundTo(e.BaseCost.Clay*scale, conf.CostGranularity),
		Iron: roundTo(e.BaseCost.Iron*scale, conf.CostGranularity),
	}
}

// UpgradeDuration grows exponentially with level and shrinks with the town
// hall level; the discount couples every queue to town hall progress.
func (e *Entry) UpgradeDuration(level, townHallLevel int) time.Duration {
	sec := e.BaseTimeSec * math.Pow(conf.TimeFactor, float64(level)) /
		math.Pow(conf.TownHallDiscount, float64(townHallLevel))
	return time.Duration(sec * float64(time.Second))
}

// ProductionRate is resources produced per second at the given level; zero
// for buildings that produce nothing.
func (e *Entry) ProductionRate(level int) float64 {
	if e.ProductionBase == 0 {
		return 0
	}
	return e.ProductionBase * math.Exp(float64(level)*conf.ProductionCoeff) / 60
}

// Capacity is the warehouse limit at the given level, rounded to the
// catalog granularity.
func (e *Entry) Capacity(level int) float64 {
	if e.CapacityBase == 0 {
		return 0
	}
	return roundTo(e.CapacityBase*math.Exp(float64(level)*conf.CapacityCoeff), conf.CapacityGranularity)
}

func (e *Entry) Points(level int) int {
	return level * e.PointsPerLevel
}

func roundTo(v, granularity float64) float64 {
	if granularity <= 0 {
		return math.Round(v)
	}
	return math.Round(v/granularity) * granularity
}
