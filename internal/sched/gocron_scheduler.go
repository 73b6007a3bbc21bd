package sched

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"plemiona/modules/kit/logx"
)

// GocronScheduler dispatches tasks as one-time jobs keyed by absolute fire
// time. No worker ever sleeps through a delay; the job queue owns the
// timing.
type GocronScheduler struct {
	scheduler gocron.Scheduler
	clock     clockwork.Clock
	log       logx.Logger
}

func NewGocronScheduler(clock clockwork.Clock, log logx.Logger) (*GocronScheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, err
	}
	s.Start()
	return &GocronScheduler{scheduler: s, clock: clock, log: log}, nil
}

func (g *GocronScheduler) ScheduleAt(at time.Time, name string, task Task) (Handle, error) {
	// gocron rejects start times in the past; a completion computed for
	// "now or earlier" should still fire.
	if !at.After(g.clock.Now()) {
		at = g.clock.Now().Add(time.Millisecond)
	}

	job, err := g.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(func() { task(context.Background()) }),
		gocron.WithName(name),
	)
	if err != nil {
		return uuid.Nil, err
	}
	g.log.Debug("task scheduled",
		zap.String("name", name),
		zap.Time("at", at),
		zap.String("handle", job.ID().String()),
	)
	return job.ID(), nil
}

func (g *GocronScheduler) ScheduleAfter(delay time.Duration, name string, task Task) (Handle, error) {
	return g.ScheduleAt(g.clock.Now().Add(delay), name, task)
}

func (g *GocronScheduler) Cancel(h Handle) error {
	err := g.scheduler.RemoveJob(h)
	if err != nil {
		// Already fired or already removed; cancellation is best effort.
		g.log.Debug("task cancel miss", zap.String("handle", h.String()), zap.Error(err))
	}
	return nil
}

func (g *GocronScheduler) Shutdown() error {
	return g.scheduler.Shutdown()
}
