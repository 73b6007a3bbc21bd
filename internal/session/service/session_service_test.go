package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"plemiona/internal/sched"
	"plemiona/internal/session/domain"
	"plemiona/internal/session/infra/persistence/memory"
	"plemiona/internal/shared/gameconfig/buildings"
	"plemiona/internal/shared/notify"
	"plemiona/internal/shared/utils"
	"plemiona/internal/shared/worldmap"
	vdomain "plemiona/internal/village/domain"
	vmemory "plemiona/internal/village/infra/persistence/memory"
	vservice "plemiona/internal/village/service"
)

type recordedTask struct {
	handle sched.Handle
	name   string
	at     time.Time
	task   sched.Task
}

type fakeScheduler struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	tasks    []recordedTask
	canceled map[sched.Handle]bool
}

func newFakeScheduler(clock clockwork.Clock) *fakeScheduler {
	return &fakeScheduler{clock: clock, canceled: make(map[sched.Handle]bool)}
}

func (f *fakeScheduler) ScheduleAt(at time.Time, name string, task sched.Task) (sched.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := uuid.New()
	f.tasks = append(f.tasks, recordedTask{handle: h, name: name, at: at, task: task})
	return h, nil
}

func (f *fakeScheduler) ScheduleAfter(delay time.Duration, name string, task sched.Task) (sched.Handle, error) {
	return f.ScheduleAt(f.clock.Now().Add(delay), name, task)
}

func (f *fakeScheduler) Cancel(h sched.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled[h] = true
	return nil
}

func (f *fakeScheduler) RunDue(ctx context.Context, now time.Time) {
	f.mu.Lock()
	var due, rest []recordedTask
	for _, rt := range f.tasks {
		if !rt.at.After(now) {
			due = append(due, rt)
		} else {
			rest = append(rest, rt)
		}
	}
	f.tasks = rest
	f.mu.Unlock()

	for _, rt := range due {
		if f.canceled[rt.handle] {
			continue
		}
		rt.task(ctx)
	}
}

func (f *fakeScheduler) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, rt := range f.tasks {
		if !f.canceled[rt.handle] {
			n++
		}
	}
	return n
}

func (f *fakeScheduler) canceledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.canceled)
}

type fixture struct {
	sessions *SessionService
	villages *vservice.VillageService
	vrepo    *vmemory.VillageRepo
	fs       *fakeScheduler
	clock    *clockwork.FakeClock
	registry *HandleRegistry
}

func newFixture(t *testing.T, maxPlayers int) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	fs := newFakeScheduler(clock)
	registry := NewHandleRegistry()
	vrepo := vmemory.NewVillageRepo()

	cfg := SessionConfig{
		DurationSec:    3600,
		MinPlayers:     2,
		MaxPlayers:     maxPlayers,
		StartResources: vdomain.Resources{Wood: 400, Clay: 400, Iron: 400},
		StartMorale:    100,
	}
	sessions := NewSessionService(
		memory.NewSessionRepo(), memory.NewPlayerRepo(), vrepo,
		fs, registry, worldmap.NewGridAllocator(10), notify.Nop{}, clock, cfg,
	)
	villages := vservice.NewVillageService(vrepo, fs, registry, notify.Nop{}, clock, utils.NewKeyedMutex())

	return &fixture{
		sessions: sessions,
		villages: villages,
		vrepo:    vrepo,
		fs:       fs,
		clock:    clock,
		registry: registry,
	}
}

func TestCreate_AssignsJoinCode(t *testing.T) {
	f := newFixture(t, 8)

	sess, err := f.sessions.Create(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(sess.GameCode) != domain.GameCodeLength {
		t.Fatalf("game code %q, want %d chars", sess.GameCode, domain.GameCodeLength)
	}
	if sess.GameCode != strings.ToUpper(sess.GameCode) {
		t.Fatalf("game code %q not uppercase", sess.GameCode)
	}
}

func TestJoin_CreatesVillageAndOwner(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)

	alice, err := f.sessions.Join(ctx, sess.GameCode, "alice")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if alice.VillageID == "" {
		t.Fatal("join must create a village")
	}
	if _, err := f.vrepo.Get(ctx, vdomain.VillageID(alice.VillageID)); err != nil {
		t.Fatalf("village not persisted: %v", err)
	}

	reloaded, _ := f.sessions.Get(ctx, sess.ID)
	if reloaded.OwnerPlayerID != alice.ID {
		t.Fatal("first joiner must become the owner")
	}
}

func TestJoin_Guards(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)

	if _, err := f.sessions.Join(ctx, sess.GameCode, "ab"); err != domain.ErrInvalidNickname {
		t.Fatalf("short nickname: expected ErrInvalidNickname, got %v", err)
	}
	if _, err := f.sessions.Join(ctx, sess.GameCode, strings.Repeat("x", 16)); err != domain.ErrInvalidNickname {
		t.Fatalf("long nickname: expected ErrInvalidNickname, got %v", err)
	}
	if _, err := f.sessions.Join(ctx, "ZZZZZZ", "alice"); err == nil {
		t.Fatal("unknown code must fail")
	}

	if _, err := f.sessions.Join(ctx, sess.GameCode, "alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.sessions.Join(ctx, sess.GameCode, "alice"); !strings.Contains(err.Error(), "NICKNAME_IN_USE") {
		t.Fatalf("duplicate nickname: got %v", err)
	}

	if _, err := f.sessions.Join(ctx, sess.GameCode, "bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.sessions.Join(ctx, sess.GameCode, "carol"); err != domain.ErrSessionFull {
		t.Fatalf("expected ErrSessionFull, got %v", err)
	}
}

func TestStart_Guards(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)
	alice, _ := f.sessions.Join(ctx, sess.GameCode, "alice")

	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != domain.ErrMinimumPlayersNotReached {
		t.Fatalf("expected ErrMinimumPlayersNotReached, got %v", err)
	}

	bob, _ := f.sessions.Join(ctx, sess.GameCode, "bob")
	if _, err := f.sessions.Start(ctx, sess.ID, bob.ID); err != domain.ErrNotSessionOwner {
		t.Fatalf("expected ErrNotSessionOwner, got %v", err)
	}

	started, err := f.sessions.Start(ctx, sess.ID, alice.ID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if !started.HasStarted || started.EndsAt == nil {
		t.Fatalf("session not started: %+v", started)
	}
	if want := f.clock.Now().Add(time.Hour); !started.EndsAt.Equal(want) {
		t.Fatalf("ends at %v, want %v", started.EndsAt, want)
	}

	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != domain.ErrSessionAlreadyStarted {
		t.Fatalf("expected ErrSessionAlreadyStarted, got %v", err)
	}
	if _, err := f.sessions.Join(ctx, sess.GameCode, "carol"); err != domain.ErrSessionAlreadyStarted {
		t.Fatalf("join after start: expected ErrSessionAlreadyStarted, got %v", err)
	}
}

func TestStart_AssignsUniqueCoordinatesAndStampsClocks(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)
	alice, _ := f.sessions.Join(ctx, sess.GameCode, "alice")
	bob, _ := f.sessions.Join(ctx, sess.GameCode, "bob")

	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	va, _ := f.vrepo.Get(ctx, vdomain.VillageID(alice.VillageID))
	vb, _ := f.vrepo.Get(ctx, vdomain.VillageID(bob.VillageID))
	if va.X == vb.X && va.Y == vb.Y {
		t.Fatalf("villages share a tile: (%d,%d)", va.X, va.Y)
	}
	if va.LastResourcesUpdate == nil || !va.LastResourcesUpdate.Equal(f.clock.Now()) {
		t.Fatalf("production clock not stamped at start: %v", va.LastResourcesUpdate)
	}
}

func TestEnd_CancelsOutstandingTasksAndRanksPlayers(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)
	alice, _ := f.sessions.Join(ctx, sess.GameCode, "alice")
	bob, _ := f.sessions.Join(ctx, sess.GameCode, "bob")
	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Give alice an upgrade in flight so End has a live timer to cancel
	// beyond its own session-end timer.
	if _, err := f.villages.UpgradeBuilding(ctx, vdomain.VillageID(alice.VillageID), buildings.Sawmill); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}

	standings, err := f.sessions.End(ctx, sess.ID)
	if err != nil {
		t.Fatalf("end failed: %v", err)
	}
	if f.fs.canceledCount() != 2 {
		t.Fatalf("canceled %d handles, want 2", f.fs.canceledCount())
	}
	if len(standings) != 2 {
		t.Fatalf("expected 2 standings, got %d", len(standings))
	}
	for i := 1; i < len(standings); i++ {
		if standings[i].Points > standings[i-1].Points {
			t.Fatalf("leaderboard not descending: %+v", standings)
		}
	}

	closed, _ := f.sessions.Get(ctx, sess.ID)
	if !closed.HasEnded || closed.EndedAt == nil {
		t.Fatalf("ended session must carry an end stamp: %+v", closed)
	}
	if !closed.EndedAt.Equal(f.clock.Now()) {
		t.Fatalf("EndedAt = %v, want %v", closed.EndedAt, f.clock.Now())
	}

	// The canceled upgrade never fires: the sawmill stays at level 1.
	f.clock.Advance(24 * time.Hour)
	f.fs.RunDue(ctx, f.clock.Now())
	va, _ := f.vrepo.Get(ctx, vdomain.VillageID(alice.VillageID))
	if va.Buildings[buildings.Sawmill].Level != 1 {
		t.Fatalf("canceled upgrade applied: level %d", va.Buildings[buildings.Sawmill].Level)
	}

	if _, err := f.sessions.End(ctx, sess.ID); err != domain.ErrSessionAlreadyEnded {
		t.Fatalf("second end: expected ErrSessionAlreadyEnded, got %v", err)
	}
	points, _ := f.sessions.GetPlayer(ctx, bob.ID)
	if points.Points == 0 {
		t.Fatal("final score not stamped on the player")
	}
}

func TestRecover_RebuildsTimersAndFailsInFlightWork(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)
	alice, _ := f.sessions.Join(ctx, sess.GameCode, "alice")
	if _, err := f.sessions.Join(ctx, sess.GameCode, "bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	villageID := vdomain.VillageID(alice.VillageID)
	if _, err := f.villages.UpgradeBuilding(ctx, villageID, buildings.Sawmill); err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}
	before, _ := f.vrepo.Get(ctx, villageID)

	// Simulate a restart: fresh scheduler and registry over the same
	// stores, every old timer gone.
	fs2 := newFakeScheduler(f.clock)
	registry2 := NewHandleRegistry()
	sessions2 := NewSessionService(
		f.sessions.sessions, f.sessions.players, f.vrepo,
		fs2, registry2, worldmap.NewGridAllocator(10), notify.Nop{}, f.clock, f.sessions.cfg,
	)
	villages2 := vservice.NewVillageService(f.vrepo, fs2, registry2, notify.Nop{}, f.clock, utils.NewKeyedMutex())

	if err := sessions2.Recover(ctx, villages2); err != nil {
		t.Fatalf("recover failed: %v", err)
	}

	// The session end is rescheduled; the upgrade is failed and refunded.
	if fs2.pending() != 1 {
		t.Fatalf("expected 1 rescheduled end timer, got %d", fs2.pending())
	}
	after, _ := f.vrepo.Get(ctx, villageID)
	st := after.Buildings[buildings.Sawmill]
	if st.Upgrading || st.Level != 1 {
		t.Fatalf("in-flight upgrade must be failed, got level=%d upgrading=%v", st.Level, st.Upgrading)
	}
	if after.Resources.Wood <= before.Resources.Wood {
		t.Fatal("failed upgrade must refund its cost")
	}

	// The rescheduled end still fires at the original deadline.
	f.clock.Advance(time.Hour)
	fs2.RunDue(ctx, f.clock.Now())
	ended, _ := sessions2.Get(ctx, sess.ID)
	if !ended.HasEnded {
		t.Fatal("recovered end timer did not fire")
	}
}

func TestRecover_EndsOverdueSessionImmediately(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)
	alice, _ := f.sessions.Join(ctx, sess.GameCode, "alice")
	if _, err := f.sessions.Join(ctx, sess.GameCode, "bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	f.clock.Advance(2 * time.Hour)
	fs2 := newFakeScheduler(f.clock)
	sessions2 := NewSessionService(
		f.sessions.sessions, f.sessions.players, f.vrepo,
		fs2, NewHandleRegistry(), worldmap.NewGridAllocator(10), notify.Nop{}, f.clock, f.sessions.cfg,
	)

	if err := sessions2.Recover(ctx); err != nil {
		t.Fatalf("recover failed: %v", err)
	}

	ended, _ := sessions2.Get(ctx, sess.ID)
	if !ended.HasEnded || ended.EndedAt == nil {
		t.Fatal("overdue session must end during recovery with an end stamp")
	}
	if fs2.pending() != 0 {
		t.Fatalf("overdue session must not reschedule, got %d pending", fs2.pending())
	}
}

func TestEndToEnd_SawmillUpgradeOnFakeClock(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	sess, _ := f.sessions.Create(ctx)
	alice, _ := f.sessions.Join(ctx, sess.GameCode, "alice")
	if _, err := f.sessions.Join(ctx, sess.GameCode, "bob"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.sessions.Start(ctx, sess.ID, alice.ID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	villageID := vdomain.VillageID(alice.VillageID)
	d, err := f.villages.UpgradeBuilding(ctx, villageID, buildings.Sawmill)
	if err != nil {
		t.Fatalf("upgrade failed: %v", err)
	}

	e, _ := buildings.Get(buildings.Sawmill)
	cost := e.UpgradeCost(1)
	v, _ := f.vrepo.Get(ctx, villageID)
	if v.Resources.Wood != 400-cost.Wood || v.Resources.Clay != 400-cost.Clay || v.Resources.Iron != 400-cost.Iron {
		t.Fatalf("cost not charged exactly: %+v, catalog cost %+v", v.Resources, cost)
	}

	f.clock.Advance(d)
	f.fs.RunDue(ctx, f.clock.Now())

	after, _ := f.vrepo.Get(ctx, villageID)
	st := after.Buildings[buildings.Sawmill]
	if st.Level != 2 || st.Upgrading {
		t.Fatalf("expected level 2 idle after %v, got level=%d upgrading=%v", d, st.Level, st.Upgrading)
	}
}
