package sched

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Handle identifies one outstanding scheduled task for cancellation.
type Handle = uuid.UUID

// Task is a delayed completion. It runs at most once; the domain guard
// flags make any racing re-delivery a no-op, so implementations only need
// best-effort single firing.
type Task func(ctx context.Context)

// Scheduler is the facade over delayed, cancelable execution. Build
// timers, training timers, battle checkpoints and session ends all go
// through it. Cancel prevents future firings only: a task already
// mid-execution is allowed to finish.
type Scheduler interface {
	ScheduleAt(at time.Time, name string, task Task) (Handle, error)
	ScheduleAfter(delay time.Duration, name string, task Task) (Handle, error)
	Cancel(h Handle) error
}
