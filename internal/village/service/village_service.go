package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"plemiona/internal/sched"
	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/gameconfig/units"
	"plemiona/internal/shared/logs"
	"plemiona/internal/shared/notify"
	"plemiona/internal/shared/utils"
	"plemiona/internal/village/domain"
	"plemiona/internal/village/service/port"
)

// ScheduleSink records the handles of tasks a service schedules so the
// session coordinator can cancel them all at session end.
type ScheduleSink interface {
	Track(sessionID string, h sched.Handle)
}

// VillageService runs the village command surface. Every mutation follows
// the same shape: lock the village, reload, accrue, mutate, save.
type VillageService struct {
	repo     port.VillageRepository
	sch      sched.Scheduler
	sink     ScheduleSink
	notifier notify.Notifier
	clock    clockwork.Clock
	locks    *utils.KeyedMutex
}

func NewVillageService(
	repo port.VillageRepository,
	sch sched.Scheduler,
	sink ScheduleSink,
	notifier notify.Notifier,
	clock clockwork.Clock,
	locks *utils.KeyedMutex,
) *VillageService {
	return &VillageService{
		repo:     repo,
		sch:      sch,
		sink:     sink,
		notifier: notifier,
		clock:    clock,
		locks:    locks,
	}
}

// Locks exposes the keyed mutex so the battle service shares the same
// per-village serialization.
func (s *VillageService) Locks() *utils.KeyedMutex {
	return s.locks
}

// GetVillage returns the village with resources accrued to now. The
// accrued view is persisted so repeated reads don't re-derive the same
// elapsed window.
func (s *VillageService) GetVillage(ctx context.Context, id domain.VillageID) (*domain.Village, error) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v.Accrue(s.clock.Now())
	if err := s.repo.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *VillageService) GetByPlayer(ctx context.Context, playerID string) (*domain.Village, error) {
	v, err := s.repo.GetByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return s.GetVillage(ctx, v.ID)
}

// UpgradeBuilding charges the upgrade and schedules its completion.
func (s *VillageService) UpgradeBuilding(ctx context.Context, id domain.VillageID, name buildings.Name) (time.Duration, error) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	v.Accrue(s.clock.Now())

	d, err := v.StartUpgrade(name)
	if err != nil {
		return 0, err
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return 0, err
	}

	taskName := fmt.Sprintf("upgrade:%s:%s", id, name)
	h, err := s.sch.ScheduleAfter(d, taskName, func(taskCtx context.Context) {
		s.completeUpgrade(taskCtx, id, name)
	})
	if err != nil {
		return 0, err
	}
	s.track(v.SessionID, h)

	logs.Info("building upgrade started",
		zap.String("village_id", string(id)),
		zap.String("building", string(name)),
		zap.Duration("duration", d),
	)
	return d, nil
}

func (s *VillageService) completeUpgrade(ctx context.Context, id domain.VillageID, name buildings.Name) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	v, err := s.repo.Get(ctx, id)
	if err != nil {
		logs.Error("upgrade completion load failed",
			zap.String("village_id", string(id)), zap.Error(err))
		return
	}

	applied, err := v.CompleteUpgrade(name, s.clock.Now())
	if err != nil {
		logs.Error("upgrade completion failed",
			zap.String("village_id", string(id)),
			zap.String("building", string(name)), zap.Error(err))
		return
	}
	if !applied {
		return
	}
	if err := s.repo.Save(ctx, v); err != nil {
		logs.Error("upgrade completion save failed",
			zap.String("village_id", string(id)), zap.Error(err))
		return
	}

	s.notifier.NotifyPlayer(v.SessionID, v.PlayerID, "building_upgraded", map[string]any{
		"village_id": string(id),
		"building":   string(name),
		"level":      v.Buildings[name].Level,
	})
}

// TrainUnits charges the batch once and schedules one completion per unit
// at cumulative offsets, so partial progress lands unit by unit.
func (s *VillageService) TrainUnits(ctx context.Context, id domain.VillageID, requests map[units.Name]int) error {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	v.Accrue(s.clock.Now())

	steps, err := v.StartTraining(requests)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return err
	}

	for i, step := range steps {
		step := step
		taskName := fmt.Sprintf("train:%s:%s:%d", id, step.Unit, i)
		h, err := s.sch.ScheduleAfter(step.Offset, taskName, func(taskCtx context.Context) {
			s.completeUnitTraining(taskCtx, id, step.Unit, step.Last)
		})
		if err != nil {
			return err
		}
		s.track(v.SessionID, h)
	}

	logs.Info("unit training started",
		zap.String("village_id", string(id)),
		zap.Int("steps", len(steps)),
	)
	return nil
}

func (s *VillageService) completeUnitTraining(ctx context.Context, id domain.VillageID, name units.Name, last bool) {
	unlock := s.locks.Lock(string(id))
	defer unlock()

	v, err := s.repo.Get(ctx, id)
	if err != nil {
		logs.Error("training completion load failed",
			zap.String("village_id", string(id)), zap.Error(err))
		return
	}

	if !v.CompleteUnitTraining(name, last) {
		return
	}
	if err := s.repo.Save(ctx, v); err != nil {
		logs.Error("training completion save failed",
			zap.String("village_id", string(id)), zap.Error(err))
		return
	}

	s.notifier.NotifyPlayer(v.SessionID, v.PlayerID, "unit_trained", map[string]any{
		"village_id": string(id),
		"unit":       string(name),
		"count":      v.Units[name],
		"done":       last,
	})
}

// Recover fails a session's in-flight village work after a process
// restart. Completion deadlines live only in the lost timers, so pending
// upgrades are refunded and cleared, and training flags are released;
// players re-issue the commands.
func (s *VillageService) Recover(ctx context.Context, sessionID string) error {
	villages, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, v := range villages {
		unlock := s.locks.Lock(string(v.ID))
		v, err := s.repo.Get(ctx, v.ID)
		if err != nil {
			unlock()
			return err
		}

		dirty := false
		for name, st := range v.Buildings {
			if !st.Upgrading {
				continue
			}
			if e, ok := buildings.Get(name); ok {
				v.Credit(domain.FromBuildingCost(e.UpgradeCost(st.Level)))
			}
			st.Upgrading = false
			dirty = true
			logs.Warn("pending upgrade failed on restart, cost refunded",
				zap.String("village_id", string(v.ID)),
				zap.String("building", string(name)),
			)
		}
		if v.UnitsTraining {
			v.UnitsTraining = false
			dirty = true
			logs.Warn("pending training failed on restart",
				zap.String("village_id", string(v.ID)),
			)
		}

		if dirty {
			if err := s.repo.Save(ctx, v); err != nil {
				unlock()
				return err
			}
		}
		unlock()
	}
	return nil
}

func (s *VillageService) track(sessionID string, h sched.Handle) {
	if s.sink != nil {
		s.sink.Track(sessionID, h)
	}
}
