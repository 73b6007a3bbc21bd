package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"plemiona/internal/battle/domain"
	"plemiona/internal/battle/service/port"
	"plemiona/internal/sched"
	"plemiona/internal/shared/gameconfig/units"
	"plemiona/internal/shared/logs"
	"plemiona/internal/shared/notify"
	"plemiona/internal/shared/utils"
	vdomain "plemiona/internal/village/domain"
	vport "plemiona/internal/village/service/port"
)

// ScheduleSink records scheduled handles per session for end-of-session
// cancellation.
type ScheduleSink interface {
	Track(sessionID string, h sched.Handle)
}

// BattleService runs the attack lifecycle: dispatch, arrival resolution,
// return resolution. Villages are locked one at a time, never nested, so
// two concurrent battles cannot deadlock.
type BattleService struct {
	battles  port.BattleRepository
	archive  port.ReportArchive
	villages vport.VillageRepository
	sch      sched.Scheduler
	sink     ScheduleSink
	notifier notify.Notifier
	clock    clockwork.Clock
	locks    *utils.KeyedMutex
}

func NewBattleService(
	battles port.BattleRepository,
	archive port.ReportArchive,
	villages vport.VillageRepository,
	sch sched.Scheduler,
	sink ScheduleSink,
	notifier notify.Notifier,
	clock clockwork.Clock,
	locks *utils.KeyedMutex,
) *BattleService {
	return &BattleService{
		battles:  battles,
		archive:  archive,
		villages: villages,
		sch:      sch,
		sink:     sink,
		notifier: notifier,
		clock:    clock,
		locks:    locks,
	}
}

func (s *BattleService) Get(ctx context.Context, id string) (*domain.Battle, error) {
	return s.battles.Get(ctx, id)
}

func (s *BattleService) ListBySession(ctx context.Context, sessionID string) ([]*domain.Battle, error) {
	return s.battles.ListBySession(ctx, sessionID)
}

// Dispatch is checkpoint A: lock in the committed force, debit it from the
// attacker, and schedule the arrival at battle time.
func (s *BattleService) Dispatch(ctx context.Context, attackerID, defenderID vdomain.VillageID, committed map[units.Name]int) (*domain.Battle, error) {
	if attackerID == defenderID {
		return nil, domain.ErrCannotAttackSelf
	}
	total := 0
	for name, n := range committed {
		if n < 0 {
			return nil, domain.ErrNoUnitsSelectedForAttack.WithData("unit", string(name))
		}
		total += n
	}
	if total == 0 {
		return nil, domain.ErrNoUnitsSelectedForAttack
	}

	defender, err := s.villages.Get(ctx, defenderID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(string(attackerID))
	defer unlock()

	attacker, err := s.villages.Get(ctx, attackerID)
	if err != nil {
		return nil, err
	}
	// Villages from other matches are not attackable targets.
	if attacker.SessionID != defender.SessionID {
		return nil, vdomain.ErrVillageNotFound.WithData("village_id", string(defenderID))
	}
	attacker.Accrue(s.clock.Now())

	if err := attacker.DebitUnits(committed); err != nil {
		return nil, err
	}
	if err := s.villages.Save(ctx, attacker); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	distance := units.Distance(attacker.X, attacker.Y, defender.X, defender.Y)
	travel := domain.SlowestTravelTime(committed, distance)

	b := &domain.Battle{
		ID:                uuid.NewString(),
		SessionID:         attacker.SessionID,
		AttackerPlayerID:  attacker.PlayerID,
		DefenderPlayerID:  defender.PlayerID,
		AttackerVillageID: attackerID,
		DefenderVillageID: defenderID,
		CommittedUnits:    copyCounts(committed),
		DispatchedAt:      now,
		BattleTime:        now.Add(travel),
		Phase:             domain.PhaseOngoing,
	}
	if err := s.battles.Create(ctx, b); err != nil {
		return nil, err
	}

	h, err := s.sch.ScheduleAt(b.BattleTime, fmt.Sprintf("battle:arrive:%s", b.ID), func(taskCtx context.Context) {
		s.ResolveArrival(taskCtx, b.ID)
	})
	if err != nil {
		return nil, err
	}
	s.track(b.SessionID, h)

	logs.Info("attack dispatched",
		zap.String("battle_id", b.ID),
		zap.String("attacker_village_id", string(attackerID)),
		zap.String("defender_village_id", string(defenderID)),
		zap.Duration("travel", travel),
	)

	s.notifier.NotifyPlayer(b.SessionID, b.DefenderPlayerID, "incoming_attack", map[string]any{
		"battle_id":   b.ID,
		"battle_time": b.BattleTime,
	})
	return b, nil
}

// Recover reschedules the unresolved battles of a session after a process
// restart. Overdue checkpoints fire immediately; the phase guards absorb
// any duplicate delivery.
func (s *BattleService) Recover(ctx context.Context, sessionID string) error {
	battles, err := s.battles.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, b := range battles {
		var (
			at   time.Time
			name string
			task sched.Task
		)
		switch b.Phase {
		case domain.PhaseOngoing:
			at = b.BattleTime
			name = fmt.Sprintf("battle:arrive:%s", b.ID)
			id := b.ID
			task = func(taskCtx context.Context) { s.ResolveArrival(taskCtx, id) }
		case domain.PhaseReturning:
			at = *b.ReturnTime
			name = fmt.Sprintf("battle:return:%s", b.ID)
			id := b.ID
			task = func(taskCtx context.Context) { s.ResolveReturn(taskCtx, id) }
		default:
			continue
		}

		h, err := s.sch.ScheduleAt(at, name, task)
		if err != nil {
			return err
		}
		s.track(sessionID, h)
		logs.Info("battle checkpoint recovered",
			zap.String("battle_id", b.ID),
			zap.String("phase", string(b.Phase)),
			zap.Time("at", at),
		)
	}
	return nil
}

// ResolveArrival is checkpoint B: the engagement itself. Guarded on phase,
// so a re-delivered timer is a no-op.
func (s *BattleService) ResolveArrival(ctx context.Context, battleID string) {
	b, err := s.battles.Get(ctx, battleID)
	if err != nil {
		logs.Error("arrival resolution load failed",
			zap.String("battle_id", battleID), zap.Error(err))
		return
	}
	if b.Phase != domain.PhaseOngoing {
		return
	}

	out, ok := s.engageDefender(ctx, b)
	if !ok {
		return
	}

	now := s.clock.Now()
	b.DefenderRoster = out.roster
	b.AttackerSurvivors = out.outcome.AttackerSurvivors
	b.DefenderSurvivors = out.outcome.DefenderSurvivors
	b.Plunder = out.outcome.Plunder
	b.AttackerWon = out.outcome.AttackerWon
	b.AttackerMoraleLoss = out.outcome.AttackerMoraleLoss
	b.DefenderMoraleLoss = out.outcome.DefenderMoraleLoss

	if b.AttackerWon {
		// Survivors march home in half the outbound time.
		ret := now.Add(b.BattleTime.Sub(b.DispatchedAt) / 2)
		b.ReturnTime = &ret
		b.Phase = domain.PhaseReturning
	} else {
		b.Phase = domain.PhaseFinished
		s.applyAttackerMorale(ctx, b.AttackerVillageID, b.AttackerMoraleLoss)
	}

	if err := s.battles.Save(ctx, b); err != nil {
		logs.Error("arrival resolution save failed",
			zap.String("battle_id", battleID), zap.Error(err))
		return
	}

	if b.Phase == domain.PhaseReturning {
		h, err := s.sch.ScheduleAt(*b.ReturnTime, fmt.Sprintf("battle:return:%s", b.ID), func(taskCtx context.Context) {
			s.ResolveReturn(taskCtx, b.ID)
		})
		if err != nil {
			logs.Error("return scheduling failed",
				zap.String("battle_id", battleID), zap.Error(err))
		} else {
			s.track(b.SessionID, h)
		}
	} else {
		s.archiveReport(ctx, b)
	}

	report := map[string]any{
		"battle_id":    b.ID,
		"attacker_won": b.AttackerWon,
		"plunder":      b.Plunder,
	}
	s.notifier.NotifyPlayer(b.SessionID, b.AttackerPlayerID, "battle_resolved", report)
	s.notifier.NotifyPlayer(b.SessionID, b.DefenderPlayerID, "battle_resolved", report)
}

type engagement struct {
	outcome domain.Outcome
	roster  map[units.Name]int
}

// engageDefender runs the defender-side mutation of checkpoint B under the
// defender's lock: accrue, snapshot, resolve, write losses back.
func (s *BattleService) engageDefender(ctx context.Context, b *domain.Battle) (engagement, bool) {
	unlock := s.locks.Lock(string(b.DefenderVillageID))
	defer unlock()

	defender, err := s.villages.Get(ctx, b.DefenderVillageID)
	if err != nil {
		logs.Error("arrival resolution defender load failed",
			zap.String("battle_id", b.ID), zap.Error(err))
		return engagement{}, false
	}
	defender.Accrue(s.clock.Now())

	roster := copyCounts(defender.Units)
	out := domain.Resolve(b.CommittedUnits, roster, defender.Resources)

	losses := make(map[units.Name]int, len(roster))
	for name, n := range roster {
		losses[name] = n - out.DefenderSurvivors[name]
	}
	if err := defender.DebitUnits(losses); err != nil {
		logs.Error("arrival resolution defender debit failed",
			zap.String("battle_id", b.ID), zap.Error(err))
		return engagement{}, false
	}
	if out.AttackerWon {
		if err := defender.Charge(out.Plunder); err != nil {
			logs.Error("arrival resolution plunder debit failed",
				zap.String("battle_id", b.ID), zap.Error(err))
			return engagement{}, false
		}
		defender.ApplyMoraleLoss(out.DefenderMoraleLoss)
	}
	if err := s.villages.Save(ctx, defender); err != nil {
		logs.Error("arrival resolution defender save failed",
			zap.String("battle_id", b.ID), zap.Error(err))
		return engagement{}, false
	}
	return engagement{outcome: out, roster: roster}, true
}

// ResolveReturn is checkpoint C: survivors land with the plunder and the
// deferred morale cost.
func (s *BattleService) ResolveReturn(ctx context.Context, battleID string) {
	b, err := s.battles.Get(ctx, battleID)
	if err != nil {
		logs.Error("return resolution load failed",
			zap.String("battle_id", battleID), zap.Error(err))
		return
	}
	if b.Phase != domain.PhaseReturning {
		return
	}

	unlock := s.locks.Lock(string(b.AttackerVillageID))
	attacker, err := s.villages.Get(ctx, b.AttackerVillageID)
	if err != nil {
		unlock()
		logs.Error("return resolution attacker load failed",
			zap.String("battle_id", battleID), zap.Error(err))
		return
	}
	attacker.Accrue(s.clock.Now())
	attacker.Credit(b.Plunder)
	attacker.AddUnits(b.AttackerSurvivors)
	attacker.ApplyMoraleLoss(b.AttackerMoraleLoss)
	err = s.villages.Save(ctx, attacker)
	unlock()
	if err != nil {
		logs.Error("return resolution attacker save failed",
			zap.String("battle_id", battleID), zap.Error(err))
		return
	}

	b.Phase = domain.PhaseFinished
	if err := s.battles.Save(ctx, b); err != nil {
		logs.Error("return resolution save failed",
			zap.String("battle_id", battleID), zap.Error(err))
		return
	}
	s.archiveReport(ctx, b)

	s.notifier.NotifyPlayer(b.SessionID, b.AttackerPlayerID, "army_returned", map[string]any{
		"battle_id": b.ID,
		"plunder":   b.Plunder,
		"survivors": b.AttackerSurvivors,
	})
}

func (s *BattleService) applyAttackerMorale(ctx context.Context, id vdomain.VillageID, loss float64) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	attacker, err := s.villages.Get(ctx, id)
	if err != nil {
		logs.Error("attacker morale load failed",
			zap.String("village_id", string(id)), zap.Error(err))
		return
	}
	attacker.ApplyMoraleLoss(loss)
	if err := s.villages.Save(ctx, attacker); err != nil {
		logs.Error("attacker morale save failed",
			zap.String("village_id", string(id)), zap.Error(err))
	}
}

// archiveReport is best effort: losing the archive never loses the battle.
func (s *BattleService) archiveReport(ctx context.Context, b *domain.Battle) {
	if s.archive == nil {
		return
	}
	archiveCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.archive.Archive(archiveCtx, b); err != nil {
		logs.Warn("battle report archive failed",
			zap.String("battle_id", b.ID), zap.Error(err))
	}
}

func (s *BattleService) track(sessionID string, h sched.Handle) {
	if s.sink != nil {
		s.sink.Track(sessionID, h)
	}
}

func copyCounts(in map[units.Name]int) map[units.Name]int {
	out := make(map[units.Name]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
