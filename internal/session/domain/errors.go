package domain

import "plemiona/modules/kit/errx"

var (
	ErrSessionNotFound          = errx.NewBiz("SESSION_NOT_FOUND", "game session not found")
	ErrSessionAlreadyStarted    = errx.NewBiz("SESSION_ALREADY_STARTED", "game session has already started")
	ErrSessionNotStarted        = errx.NewBiz("SESSION_NOT_STARTED", "game session has not started yet")
	ErrSessionAlreadyEnded      = errx.NewBiz("SESSION_ALREADY_ENDED", "game session has already ended")
	ErrSessionFull              = errx.NewBiz("SESSION_FULL", "game session is full")
	ErrNotSessionOwner          = errx.NewBiz("NOT_SESSION_OWNER", "only the session owner may do this")
	ErrMinimumPlayersNotReached = errx.NewBiz("MINIMUM_PLAYERS_NOT_REACHED", "minimum player count not reached")
	ErrNicknameInUse            = errx.NewBiz("NICKNAME_IN_USE", "nickname already in use")
	ErrInvalidNickname          = errx.NewBiz("INVALID_NICKNAME", "nickname length out of bounds")
	ErrPlayerNotFound           = errx.NewBiz("PLAYER_NOT_FOUND", "player not found")
)
