package model

import (
	"time"

	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
	"plemiona/internal/village/domain"
)

// Village flattens the aggregate into per-building and per-unit columns.
type Village struct {
	ID        string `gorm:"column:id;type:varchar(36);primaryKey;" json:"id"`
	PlayerID  string `gorm:"column:player_id;type:varchar(36);uniqueIndex;not null;" json:"player_id"`
	SessionID string `gorm:"column:session_id;type:varchar(36);index;not null;" json:"session_id"`

	X int `gorm:"column:x;not null;default:0;" json:"x"`
	Y int `gorm:"column:y;not null;default:0;" json:"y"`

	Wood   float64 `gorm:"column:wood;not null;default:0;" json:"wood"`
	Clay   float64 `gorm:"column:clay;not null;default:0;" json:"clay"`
	Iron   float64 `gorm:"column:iron;not null;default:0;" json:"iron"`
	Morale float64 `gorm:"column:morale;not null;default:100;" json:"morale"`

	LevelTownHall  int `gorm:"column:level_town_hall;not null;default:1;" json:"level_town_hall"`
	LevelWarehouse int `gorm:"column:level_warehouse;not null;default:1;" json:"level_warehouse"`
	LevelIronMine  int `gorm:"column:level_iron_mine;not null;default:1;" json:"level_iron_mine"`
	LevelClayPit   int `gorm:"column:level_clay_pit;not null;default:1;" json:"level_clay_pit"`
	LevelSawmill   int `gorm:"column:level_sawmill;not null;default:1;" json:"level_sawmill"`
	LevelBarracks  int `gorm:"column:level_barracks;not null;default:1;" json:"level_barracks"`

	IsTownHallUpgrading  bool `gorm:"column:is_town_hall_upgrading;not null;default:false;" json:"is_town_hall_upgrading"`
	IsWarehouseUpgrading bool `gorm:"column:is_warehouse_upgrading;not null;default:false;" json:"is_warehouse_upgrading"`
	IsIronMineUpgrading  bool `gorm:"column:is_iron_mine_upgrading;not null;default:false;" json:"is_iron_mine_upgrading"`
	IsClayPitUpgrading   bool `gorm:"column:is_clay_pit_upgrading;not null;default:false;" json:"is_clay_pit_upgrading"`
	IsSawmillUpgrading   bool `gorm:"column:is_sawmill_upgrading;not null;default:false;" json:"is_sawmill_upgrading"`
	IsBarracksUpgrading  bool `gorm:"column:is_barracks_upgrading;not null;default:false;" json:"is_barracks_upgrading"`

	UnitsSpearman  int `gorm:"column:units_spearman;not null;default:0;" json:"units_spearman"`
	UnitsSwordsman int `gorm:"column:units_swordsman;not null;default:0;" json:"units_swordsman"`
	UnitsAxeman    int `gorm:"column:units_axeman;not null;default:0;" json:"units_axeman"`
	UnitsArcher    int `gorm:"column:units_archer;not null;default:0;" json:"units_archer"`

	AreUnitsTraining bool `gorm:"column:are_units_training;not null;default:false;" json:"are_units_training"`

	LastResourcesUpdate *time.Time `gorm:"column:last_resources_update;type:TIMESTAMP;default:NULL;" json:"last_resources_update"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"updated_at"`
}

func (Village) TableName() string {
	return "village"
}

func ToEntity(m *Village) *domain.Village {
	v := &domain.Village{
		ID:        domain.VillageID(m.ID),
		PlayerID:  m.PlayerID,
		SessionID: m.SessionID,
		X:         m.X,
		Y:         m.Y,
		Resources: domain.Resources{Wood: m.Wood, Clay: m.Clay, Iron: m.Iron},
		Morale:    m.Morale,
		Buildings: map[buildings.Name]*domain.BuildingState{
			buildings.TownHall:  {Level: m.LevelTownHall, Upgrading: m.IsTownHallUpgrading},
			buildings.Warehouse: {Level: m.LevelWarehouse, Upgrading: m.IsWarehouseUpgrading},
			buildings.IronMine:  {Level: m.LevelIronMine, Upgrading: m.IsIronMineUpgrading},
			buildings.ClayPit:   {Level: m.LevelClayPit, Upgrading: m.IsClayPitUpgrading},
			buildings.Sawmill:   {Level: m.LevelSawmill, Upgrading: m.IsSawmillUpgrading},
			buildings.Barracks:  {Level: m.LevelBarracks, Upgrading: m.IsBarracksUpgrading},
		},
		Units: map[units.Name]int{
			units.Spearman:  m.UnitsSpearman,
			units.Swordsman: m.UnitsSwordsman,
			units.Axeman:    m.UnitsAxeman,
			units.Archer:    m.UnitsArcher,
		},
		UnitsTraining: m.AreUnitsTraining,
	}
	if m.LastResourcesUpdate != nil {
		t := *m.LastResourcesUpdate
		v.LastResourcesUpdate = &t
	}
	return v
}

func FromEntity(v *domain.Village) *Village {
	m := &Village{
		ID:        string(v.ID),
		PlayerID:  v.PlayerID,
		SessionID: v.SessionID,
		X:         v.X,
		Y:         v.Y,
		Wood:      v.Resources.Wood,
		Clay:      v.Resources.Clay,
		Iron:      v.Resources.Iron,
		Morale:    v.Morale,

		LevelTownHall:  v.Buildings[buildings.TownHall].Level,
		LevelWarehouse: v.Buildings[buildings.Warehouse].Level,
		LevelIronMine:  v.Buildings[buildings.IronMine].Level,
		LevelClayPit:   v.Buildings[buildings.ClayPit].Level,
		LevelSawmill:   v.Buildings[buildings.Sawmill].Level,
		LevelBarracks:  v.Buildings[buildings.Barracks].Level,

		IsTownHallUpgrading:  v.Buildings[buildings.TownHall].Upgrading,
		IsWarehouseUpgrading: v.Buildings[buildings.Warehouse].Upgrading,
		IsIronMineUpgrading:  v.Buildings[buildings.IronMine].Upgrading,
		IsClayPitUpgrading:   v.Buildings[buildings.ClayPit].Upgrading,
		IsSawmillUpgrading:   v.Buildings[buildings.Sawmill].Upgrading,
		IsBarracksUpgrading:  v.Buildings[buildings.Barracks].Upgrading,

		UnitsSpearman:  v.Units[units.Spearman],
		UnitsSwordsman: v.Units[units.Swordsman],
		UnitsAxeman:    v.Units[units.Axeman],
		UnitsArcher:    v.Units[units.Archer],

		AreUnitsTraining: v.UnitsTraining,
	}
	if v.LastResourcesUpdate != nil {
		t := *v.LastResourcesUpdate
		m.LastResourcesUpdate = &t
	}
	return m
}
