package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	bservice "plemiona/internal/battle/service"
	sservice "plemiona/internal/session/service"
	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
	"plemiona/internal/shared/transport/ws"
	vdomain "plemiona/internal/village/domain"
	vservice "plemiona/internal/village/service"
)

// GameHandler exposes the command surface: session lifecycle, village
// commands, attacks, and the websocket attach point.
type GameHandler struct {
	sessions *sservice.SessionService
	villages *vservice.VillageService
	battles  *bservice.BattleService
	hub      *ws.Hub
}

func NewGameHandler(
	sessions *sservice.SessionService,
	villages *vservice.VillageService,
	battles *bservice.BattleService,
	hub *ws.Hub,
) *GameHandler {
	return &GameHandler{
		sessions: sessions,
		villages: villages,
		battles:  battles,
		hub:      hub,
	}
}

func (h *GameHandler) Register(r *gin.RouterGroup) {
	api := r.Group("/api")
	api.POST("/sessions", h.createSession)
	api.POST("/sessions/:code/players", h.joinSession)
	api.POST("/sessions/:code/start", h.startSession)
	api.GET("/sessions/:code/leaderboard", h.leaderboard)
	api.GET("/villages/:player", h.getVillage)
	api.POST("/villages/:player/buildings/:name/upgrade", h.upgradeBuilding)
	api.POST("/villages/:player/units/train", h.trainUnits)
	api.POST("/villages/:player/attack", h.attack)

	r.GET("/ws/:code/:player", h.attachWS)
}

// createSession opens a lobby and joins the creator in one call; the
// creator becomes the owner.
func (h *GameHandler) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}

	sess, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		abort(c, err)
		return
	}
	player, err := h.sessions.Join(c.Request.Context(), sess.GameCode, req.Nickname)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session": toSessionResponse(sess),
		"player":  toPlayerResponse(player),
	})
}

func (h *GameHandler) joinSession(c *gin.Context) {
	var req joinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}

	player, err := h.sessions.Join(c.Request.Context(), c.Param("code"), req.Nickname)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"player": toPlayerResponse(player)})
}

func (h *GameHandler) startSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}

	sess, err := h.sessions.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abort(c, err)
		return
	}
	started, err := h.sessions.Start(c.Request.Context(), sess.ID, req.PlayerID)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": toSessionResponse(started)})
}

func (h *GameHandler) leaderboard(c *gin.Context) {
	sess, err := h.sessions.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abort(c, err)
		return
	}
	standings, err := h.sessions.Leaderboard(c.Request.Context(), sess.ID, false)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": standings})
}

func (h *GameHandler) getVillage(c *gin.Context) {
	v, err := h.villages.GetByPlayer(c.Request.Context(), c.Param("player"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toVillageResponse(v))
}

func (h *GameHandler) upgradeBuilding(c *gin.Context) {
	v, err := h.villages.GetByPlayer(c.Request.Context(), c.Param("player"))
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.sessions.RequireActive(c.Request.Context(), v.SessionID); err != nil {
		abort(c, err)
		return
	}

	d, err := h.villages.UpgradeBuilding(c.Request.Context(), v.ID, buildings.Name(c.Param("name")))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duration_sec": d.Seconds()})
}

func (h *GameHandler) trainUnits(c *gin.Context) {
	var req trainUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}

	v, err := h.villages.GetByPlayer(c.Request.Context(), c.Param("player"))
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.sessions.RequireActive(c.Request.Context(), v.SessionID); err != nil {
		abort(c, err)
		return
	}

	if err := h.villages.TrainUnits(c.Request.Context(), v.ID, toUnitCounts(req.Units)); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *GameHandler) attack(c *gin.Context) {
	var req attackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}

	attacker, err := h.villages.GetByPlayer(c.Request.Context(), c.Param("player"))
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.sessions.RequireActive(c.Request.Context(), attacker.SessionID); err != nil {
		abort(c, err)
		return
	}
	defenderPlayer, err := h.sessions.GetPlayer(c.Request.Context(), req.DefenderPlayerID)
	if err != nil {
		abort(c, err)
		return
	}

	b, err := h.battles.Dispatch(c.Request.Context(), attacker.ID,
		vdomain.VillageID(defenderPlayer.VillageID), toUnitCounts(req.Units))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBattleResponse(b))
}

func (h *GameHandler) attachWS(c *gin.Context) {
	sess, err := h.sessions.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		abort(c, err)
		return
	}
	if err := h.hub.Attach(c.Writer, c.Request, sess.ID, c.Param("player")); err != nil {
		abort(c, err)
	}
}

func toUnitCounts(in map[string]int) map[units.Name]int {
	out := make(map[units.Name]int, len(in))
	for k, v := range in {
		out[units.Name(k)] = v
	}
	return out
}
