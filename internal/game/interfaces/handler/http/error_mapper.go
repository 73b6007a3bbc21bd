package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	bdomain "plemiona/internal/battle/domain"
	sdomain "plemiona/internal/session/domain"
	"plemiona/internal/shared/worldmap"
	vdomain "plemiona/internal/village/domain"
	"plemiona/modules/kit/errx"
)

// abort writes the error as JSON with the right status. Business
// rejections keep their domain code; anything unrecognized is a 500 with
// the detail kept out of the response body.
func abort(c *gin.Context, err error) {
	status := statusOf(err)

	var ex *errx.Error
	if errors.As(err, &ex) && status != http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{
			"code":    ex.CodeText(),
			"message": ex.Msg(),
		})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    errx.ErrInternal.CodeText(),
		"message": errx.ErrInternal.Msg(),
	})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, vdomain.ErrVillageNotFound),
		errors.Is(err, vdomain.ErrBuildingNotFound),
		errors.Is(err, vdomain.ErrUnitNotFound),
		errors.Is(err, bdomain.ErrBattleNotFound),
		errors.Is(err, sdomain.ErrSessionNotFound),
		errors.Is(err, sdomain.ErrPlayerNotFound):
		return http.StatusNotFound

	case errors.Is(err, sdomain.ErrNotSessionOwner):
		return http.StatusForbidden

	case errors.Is(err, vdomain.ErrBuildingUpgradeInProgress),
		errors.Is(err, vdomain.ErrUnitsAlreadyTraining),
		errors.Is(err, sdomain.ErrSessionAlreadyStarted),
		errors.Is(err, sdomain.ErrSessionAlreadyEnded),
		errors.Is(err, sdomain.ErrSessionFull),
		errors.Is(err, sdomain.ErrNicknameInUse):
		return http.StatusConflict

	case errors.Is(err, vdomain.ErrBuildingMaxLevel),
		errors.Is(err, vdomain.ErrInsufficientResources),
		errors.Is(err, vdomain.ErrInsufficientUnits),
		errors.Is(err, vdomain.ErrNoUnitsRequested),
		errors.Is(err, bdomain.ErrNoUnitsSelectedForAttack),
		errors.Is(err, bdomain.ErrCannotAttackSelf),
		errors.Is(err, sdomain.ErrSessionNotStarted),
		errors.Is(err, sdomain.ErrMinimumPlayersNotReached),
		errors.Is(err, sdomain.ErrInvalidNickname),
		errors.Is(err, worldmap.ErrMapFull):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
