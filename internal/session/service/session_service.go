package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"plemiona/internal/sched"
	"plemiona/internal/session/domain"
	"plemiona/internal/session/service/port"
	"plemiona/internal/shared/logs"
	"plemiona/internal/shared/notify"
	"plemiona/internal/shared/worldmap"
	vdomain "plemiona/internal/village/domain"
	vport "plemiona/internal/village/service/port"
)

// SessionConfig carries the match parameters the coordinator enforces.
type SessionConfig struct {
	DurationSec int
	MinPlayers  int
	MaxPlayers  int

	StartResources vdomain.Resources
	StartMorale    float64
}

// HandleRegistry tracks every scheduled handle per session so End can
// cancel them all. It is the ScheduleSink the other services report to.
type HandleRegistry struct {
	mu      sync.Mutex
	handles map[string][]sched.Handle
}

func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{handles: make(map[string][]sched.Handle)}
}

func (r *HandleRegistry) Track(sessionID string, h sched.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[sessionID] = append(r.handles[sessionID], h)
}

// Drain removes and returns every handle tracked for the session.
func (r *HandleRegistry) Drain(sessionID string) []sched.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	hs := r.handles[sessionID]
	delete(r.handles, sessionID)
	return hs
}

// PlayerStanding is one leaderboard row.
type PlayerStanding struct {
	PlayerID string `json:"player_id"`
	Nickname string `json:"nickname"`
	Points   int    `json:"points"`
}

// SessionService coordinates the match lifecycle: lobby, start, timed end.
type SessionService struct {
	sessions  port.SessionRepository
	players   port.PlayerRepository
	villages  vport.VillageRepository
	sch       sched.Scheduler
	registry  *HandleRegistry
	allocator worldmap.Allocator
	notifier  notify.Notifier
	clock     clockwork.Clock
	cfg       SessionConfig
}

func NewSessionService(
	sessions port.SessionRepository,
	players port.PlayerRepository,
	villages vport.VillageRepository,
	sch sched.Scheduler,
	registry *HandleRegistry,
	allocator worldmap.Allocator,
	notifier notify.Notifier,
	clock clockwork.Clock,
	cfg SessionConfig,
) *SessionService {
	return &SessionService{
		sessions:  sessions,
		players:   players,
		villages:  villages,
		sch:       sch,
		registry:  registry,
		allocator: allocator,
		notifier:  notifier,
		clock:     clock,
		cfg:       cfg,
	}
}

// Create opens a new joinable lobby and returns it with its join code.
func (s *SessionService) Create(ctx context.Context) (*domain.GameSession, error) {
	sess := domain.NewGameSession(uuid.NewString(), s.cfg.DurationSec)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	logs.Info("game session created",
		zap.String("session_id", sess.ID),
		zap.String("game_code", sess.GameCode),
	)
	return sess, nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*domain.GameSession, error) {
	return s.sessions.Get(ctx, id)
}

func (s *SessionService) GetByCode(ctx context.Context, code string) (*domain.GameSession, error) {
	return s.sessions.GetByCode(ctx, code)
}

// Join adds a player to a lobby by its game code and creates their village.
// The first player to join becomes the owner.
func (s *SessionService) Join(ctx context.Context, gameCode, nickname string) (*domain.Player, error) {
	if !domain.ValidNickname(nickname) {
		return nil, domain.ErrInvalidNickname
	}

	sess, err := s.sessions.GetByCode(ctx, gameCode)
	if err != nil {
		return nil, err
	}
	if sess.HasEnded {
		return nil, domain.ErrSessionAlreadyEnded
	}
	if sess.HasStarted {
		return nil, domain.ErrSessionAlreadyStarted
	}

	existing, err := s.players.ListBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= s.cfg.MaxPlayers {
		return nil, domain.ErrSessionFull
	}
	for _, p := range existing {
		if p.Nickname == nickname {
			return nil, domain.ErrNicknameInUse.WithData("nickname", nickname)
		}
	}

	player := &domain.Player{
		ID:        uuid.NewString(),
		SessionID: sess.ID,
		Nickname:  nickname,
	}

	village := vdomain.NewVillage(
		vdomain.VillageID(uuid.NewString()),
		player.ID,
		sess.ID,
		s.cfg.StartResources,
		s.cfg.StartMorale,
	)
	player.VillageID = string(village.ID)

	if err := s.villages.Create(ctx, village); err != nil {
		return nil, err
	}
	if err := s.players.Create(ctx, player); err != nil {
		return nil, err
	}

	if len(existing) == 0 {
		sess.OwnerPlayerID = player.ID
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}

	s.notifier.NotifySession(sess.ID, "player_joined", map[string]any{
		"player_id": player.ID,
		"nickname":  player.Nickname,
	})
	return player, nil
}

// Start begins the match: assigns map tiles, stamps every village's
// production clock, and schedules the timed end. Owner only.
func (s *SessionService) Start(ctx context.Context, sessionID, playerID string) (*domain.GameSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.HasEnded {
		return nil, domain.ErrSessionAlreadyEnded
	}
	if sess.HasStarted {
		return nil, domain.ErrSessionAlreadyStarted
	}
	if sess.OwnerPlayerID != playerID {
		return nil, domain.ErrNotSessionOwner
	}

	players, err := s.players.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(players) < s.cfg.MinPlayers {
		return nil, domain.ErrMinimumPlayersNotReached
	}

	coords, err := s.allocator.Assign(len(players))
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i, p := range players {
		v, err := s.villages.Get(ctx, vdomain.VillageID(p.VillageID))
		if err != nil {
			return nil, err
		}
		v.X, v.Y = coords[i].X, coords[i].Y
		v.Accrue(now) // first call stamps the production clock
		if err := s.villages.Save(ctx, v); err != nil {
			return nil, err
		}
	}

	sess.Start(now)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	h, err := s.sch.ScheduleAt(*sess.EndsAt, "session:end:"+sess.ID, func(taskCtx context.Context) {
		if _, err := s.End(taskCtx, sess.ID); err != nil {
			logs.Error("scheduled session end failed",
				zap.String("session_id", sess.ID), zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	s.registry.Track(sess.ID, h)

	logs.Info("game session started",
		zap.String("session_id", sess.ID),
		zap.Int("players", len(players)),
		zap.Time("ends_at", *sess.EndsAt),
	)
	s.notifier.NotifySession(sess.ID, "session_started", map[string]any{
		"ends_at": sess.EndsAt,
	})
	return sess, nil
}

// Recoverer reschedules or explicitly fails a session's in-flight work
// after a process restart.
type Recoverer interface {
	Recover(ctx context.Context, sessionID string) error
}

// Recover rebuilds the timer state for every active session on startup.
// Timer handles do not survive the process, so each session's end is
// rescheduled (or executed outright when overdue) and every registered
// recoverer resumes or fails its own in-flight work.
func (s *SessionService) Recover(ctx context.Context, recoverers ...Recoverer) error {
	active, err := s.sessions.ListActive(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	for _, sess := range active {
		if sess.EndsAt != nil && !sess.EndsAt.After(now) {
			if _, err := s.End(ctx, sess.ID); err != nil {
				logs.Error("recovery end failed",
					zap.String("session_id", sess.ID), zap.Error(err))
			}
			continue
		}

		h, err := s.sch.ScheduleAt(*sess.EndsAt, "session:end:"+sess.ID, func(taskCtx context.Context) {
			if _, err := s.End(taskCtx, sess.ID); err != nil {
				logs.Error("scheduled session end failed",
					zap.String("session_id", sess.ID), zap.Error(err))
			}
		})
		if err != nil {
			return err
		}
		s.registry.Track(sess.ID, h)

		for _, r := range recoverers {
			if err := r.Recover(ctx, sess.ID); err != nil {
				logs.Error("session recovery step failed",
					zap.String("session_id", sess.ID), zap.Error(err))
			}
		}
		logs.Info("session recovered", zap.String("session_id", sess.ID))
	}
	return nil
}

// RequireActive guards commands that only make sense mid-match.
func (s *SessionService) RequireActive(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !sess.HasStarted {
		return domain.ErrSessionNotStarted
	}
	if sess.HasEnded {
		return domain.ErrSessionAlreadyEnded
	}
	return nil
}

// End closes the match: cancels every outstanding timer, stamps final
// scores, and publishes the leaderboard. Idempotent; the timer-fired end
// and an explicit end race safely.
func (s *SessionService) End(ctx context.Context, sessionID string) ([]PlayerStanding, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.HasStarted {
		return nil, domain.ErrSessionNotStarted
	}
	if sess.HasEnded {
		return nil, domain.ErrSessionAlreadyEnded
	}

	for _, h := range s.registry.Drain(sessionID) {
		if err := s.sch.Cancel(h); err != nil {
			logs.Debug("cancel of finished task",
				zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	sess.End(s.clock.Now())
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	standings, err := s.Leaderboard(ctx, sessionID, true)
	if err != nil {
		return nil, err
	}

	logs.Info("game session ended", zap.String("session_id", sessionID))
	s.notifier.NotifySession(sessionID, "session_ended", map[string]any{
		"leaderboard": standings,
	})
	return standings, nil
}

// Leaderboard scores every player by village points, descending. With
// stamp set, the scores are persisted onto the players as final.
func (s *SessionService) Leaderboard(ctx context.Context, sessionID string, stamp bool) ([]PlayerStanding, error) {
	players, err := s.players.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	standings := make([]PlayerStanding, 0, len(players))
	for _, p := range players {
		v, err := s.villages.Get(ctx, vdomain.VillageID(p.VillageID))
		if err != nil {
			return nil, err
		}
		points := v.Points()
		if stamp {
			p.Points = points
			if err := s.players.Save(ctx, p); err != nil {
				return nil, err
			}
		}
		standings = append(standings, PlayerStanding{
			PlayerID: p.ID,
			Nickname: p.Nickname,
			Points:   points,
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Points > standings[j].Points
	})
	return standings, nil
}

func (s *SessionService) GetPlayer(ctx context.Context, id string) (*domain.Player, error) {
	return s.players.Get(ctx, id)
}

func (s *SessionService) ListPlayers(ctx context.Context, sessionID string) ([]*domain.Player, error) {
	return s.players.ListBySession(ctx, sessionID)
}
