package units

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

// Name identifies a unit type in the closed catalog.
type Name string

const (
	Spearman  Name = "spearman"
	Swordsman Name = "swordsman"
	Axeman    Name = "axeman"
	Archer    Name = "archer"
)

const unitsFile = "Units.json"

type Cost struct {
	Wood float64 `json:"wood"`
	Clay float64 `json:"clay"`
	Iron float64 `json:"iron"`
}

type Entry struct {
	Name          Name    `json:"name"`
	SpeedSec      float64 `json:"speed_sec"`
	TrainSec      float64 `json:"train_sec"`
	Cost          Cost    `json:"cost"`
	Carry         float64 `json:"carry"`
	Offense       float64 `json:"offense"`
	Defense       float64 `json:"defense"`
	PointsPerUnit int     `json:"points_per_unit"`
}

type unitConf struct {
	List []*Entry `json:"list"`

	byName map[Name]*Entry
}

var (
	conf     = &unitConf{}
	loadOnce sync.Once
)

func Load() {
	loadOnce.Do(load)
}

func load() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("load Units config failed: runtime.Caller(0) error")
	}

	path := filepath.Join(filepath.Dir(file), unitsFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("load Units config failed: read %q: %w", path, err))
	}
	if err := json.Unmarshal(raw, conf); err != nil {
		panic(fmt.Errorf("load Units config failed: parse %q: %w", path, err))
	}

	conf.byName = make(map[Name]*Entry, len(conf.List))
	for _, e := range conf.List {
		conf.byName[e.Name] = e
	}
}

// Get resolves a unit type; the single table-miss check behind UnitNotFound.
func Get(name Name) (*Entry, bool) {
	Load()
	e, ok := conf.byName[name]
	return e, ok
}

func All() []Name {
	Load()
	out := make([]Name, 0, len(conf.List))
	for _, e := range conf.List {
		out = append(out, e.Name)
	}
	return out
}

// TrainingCost is linear in the batch size.
func (e *Entry) TrainingCost(n int) Cost {
	f := float64(n)
	return Cost{
		Wood: e.Cost.Wood * f,
		Clay: e.Cost.Clay * f,
		Iron: e.Cost.Iron * f,
	}
}

func (e *Entry) TrainingTime(n int) time.Duration {
	return time.Duration(e.TrainSec * float64(n) * float64(time.Second))
}

func (e *Entry) CarryingCapacity(n int) float64 {
	return e.Carry * float64(n)
}

func (e *Entry) OffensiveStrength(n int) float64 {
	return e.Offense * float64(n)
}

func (e *Entry) DefensiveStrength(n int) float64 {
	return e.Defense * float64(n)
}

func (e *Entry) Points(n int) int {
	return n * e.PointsPerUnit
}

// TravelTime is the time this unit needs to cover the given distance in
// fields. Seconds per field times Euclidean distance, rounded down to whole
// nanoseconds by the Duration conversion.
func (e *Entry) TravelTime(distance float64) time.Duration {
	return time.Duration(e.SpeedSec * distance * float64(time.Second))
}

// Distance is the Euclidean distance between two village coordinates.
func Distance(x1, y1, x2, y2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	return math.Sqrt(dx*dx + dy*dy)
}
