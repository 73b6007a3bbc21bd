package domain

import "plemiona/modules/kit/errx"

var (
	ErrNoUnitsSelectedForAttack = errx.NewBiz("NO_UNITS_SELECTED_FOR_ATTACK", "no units selected for the attack")
	ErrCannotAttackSelf         = errx.NewBiz("CANNOT_ATTACK_SELF", "cannot attack your own village")
	ErrBattleNotFound           = errx.NewBiz("BATTLE_NOT_FOUND", "battle not found")
)
