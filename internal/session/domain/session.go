package domain

import (
	"math/rand"
	"time"
)

const (
	GameCodeLength = 6
	gameCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GameSession bounds one match: a joinable lobby until Start, then a fixed
// duration of play, then final scoring.
type GameSession struct {
	ID       string
	GameCode string

	// OwnerPlayerID is the first player to join; only the owner may start.
	OwnerPlayerID string

	HasStarted bool
	StartedAt  *time.Time

	// EndsAt is the scheduled end, stamped at start. HasEnded flips and
	// EndedAt is stamped when the end actually executes (timer or explicit).
	EndsAt   *time.Time
	HasEnded bool
	EndedAt  *time.Time

	DurationSec int
}

func NewGameSession(id string, durationSec int) *GameSession {
	return &GameSession{
		ID:          id,
		GameCode:    NewGameCode(),
		DurationSec: durationSec,
	}
}

// NewGameCode returns a 6-char uppercase alphanumeric join code.
func NewGameCode() string {
	b := make([]byte, GameCodeLength)
	for i := range b {
		b[i] = gameCodeChars[rand.Intn(len(gameCodeChars))]
	}
	return string(b)
}

// Start stamps the session running window. Guards live in the service,
// which knows the player count and caller.
func (s *GameSession) Start(now time.Time) {
	s.HasStarted = true
	t := now
	s.StartedAt = &t
	end := now.Add(time.Duration(s.DurationSec) * time.Second)
	s.EndsAt = &end
}

// End closes the session and records when the close actually happened,
// which can trail EndsAt after a restart.
func (s *GameSession) End(now time.Time) {
	s.HasEnded = true
	t := now
	s.EndedAt = &t
}

func (s *GameSession) Duration() time.Duration {
	return time.Duration(s.DurationSec) * time.Second
}
