package domain

import "plemiona/modules/kit/errx"

// Business rejections surfaced to the command initiator. All of these are
// validation-time and recoverable by retrying with corrected input.
var (
	ErrVillageNotFound           = errx.NewBiz("VILLAGE_NOT_FOUND", "village not found")
	ErrBuildingNotFound          = errx.NewBiz("BUILDING_NOT_FOUND", "building not found")
	ErrBuildingUpgradeInProgress = errx.NewBiz("BUILDING_UPGRADE_IN_PROGRESS", "building is already upgrading")
	ErrBuildingMaxLevel          = errx.NewBiz("BUILDING_MAX_LEVEL", "building already at maximum level")
	ErrUnitNotFound              = errx.NewBiz("UNIT_NOT_FOUND", "unit type not found")
	ErrNoUnitsRequested          = errx.NewBiz("NO_UNITS_REQUESTED", "no units requested")
	ErrUnitsAlreadyTraining      = errx.NewBiz("UNITS_ALREADY_TRAINING", "units are already training")
	ErrInsufficientResources     = errx.NewBiz("INSUFFICIENT_RESOURCES", "not enough resources")
	ErrInsufficientUnits         = errx.NewBiz("INSUFFICIENT_UNITS", "not enough units")
)
