// Package scheduler maintains named, single-fire transition timers: at most
// one pending timer per job name, fired exactly once at a target instant,
// with safe reschedule-in-place semantics.
package scheduler

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/marktide/go-catalog-engine/logging"
)

// Action is the state transition a job performs when it fires. A failed
// action is reported through the logger, never retried.
type Action func(ctx context.Context) error

// transition is one pending job. Values are replaced, not mutated, on
// reschedule; the registry's per-key atomicity is the only synchronization.
type transition struct {
	timer  clockwork.Timer
	fireAt time.Time
	label  string
}

// Scheduler is the process-wide transition registry. Construct one at
// startup and share it; the registry is in-memory only and does not survive
// a restart (see product.Coordinator.Rebuild for startup reconciliation).
type Scheduler struct {
	clock clockwork.Clock
	log   logging.Logger
	jobs  *xsync.MapOf[string, *transition]
}

// New constructs a Scheduler on the given clock.
func New(clock clockwork.Clock, log logging.Logger) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Scheduler{
		clock: clock,
		log:   log,
		jobs:  xsync.NewMapOf[string, *transition](),
	}
}

// Schedule arms (or re-arms) the named job to run action at fireAt.
//
// A fireAt that is not strictly in the future is a business rule violation
// handled by the mutation path itself, so it only logs a warning and leaves
// the registry untouched. If the job is already pending its fire time is
// updated in place: the existing timer is reset, no second timer is created,
// and at most one firing ever occurs no matter how often the same name is
// rescheduled.
func (s *Scheduler) Schedule(fireAt time.Time, action Action, name, label string) {
	delay := fireAt.Sub(s.clock.Now())
	if delay <= 0 {
		s.log.Warn("transition time already passed, not scheduling",
			"job", name, "component", label, "fire_at", fireAt)
		return
	}

	s.jobs.Compute(name, func(cur *transition, loaded bool) (*transition, bool) {
		if loaded {
			cur.timer.Reset(delay)
			s.log.Info("transition rescheduled",
				"job", name, "component", label, "fire_at", fireAt)
			return &transition{timer: cur.timer, fireAt: fireAt, label: label}, false
		}

		t := &transition{fireAt: fireAt, label: label}
		t.timer = s.clock.AfterFunc(delay, func() { s.fire(name, action) })
		s.log.Info("transition job added",
			"job", name, "component", label, "fire_at", fireAt)
		return t, false
	})
}

// Cancel removes the named job if it is pending. Cancellation never
// propagates an error: a missing job is logged and ignored.
func (s *Scheduler) Cancel(name, label string) {
	job, ok := s.jobs.LoadAndDelete(name)
	if !ok {
		s.log.Warn("cancel requested for unknown transition",
			"job", name, "component", label)
		return
	}
	job.timer.Stop()
	s.log.Info("transition cancelled", "job", name, "component", label)
}

// Pending reports the fire time of the named job, if one is registered.
func (s *Scheduler) Pending(name string) (time.Time, bool) {
	job, ok := s.jobs.Load(name)
	if !ok {
		return time.Time{}, false
	}
	return job.fireAt, true
}

// Len reports the number of pending jobs.
func (s *Scheduler) Len() int {
	return s.jobs.Size()
}

// fire runs when the job's timer expires. The job leaves the registry before
// the action runs: firing is terminal and a concurrent reschedule that lost
// the race creates a fresh job rather than resurrecting this one. If the
// registered fire time moved into the future while this callback was in
// flight, the job is re-armed instead of executed.
func (s *Scheduler) fire(name string, action Action) {
	job, ok := s.jobs.LoadAndDelete(name)
	if !ok {
		return
	}

	if remaining := job.fireAt.Sub(s.clock.Now()); remaining > 0 {
		job.timer.Stop()
		s.jobs.Compute(name, func(cur *transition, loaded bool) (*transition, bool) {
			if loaded {
				return cur, false
			}
			t := &transition{fireAt: job.fireAt, label: job.label}
			t.timer = s.clock.AfterFunc(remaining, func() { s.fire(name, action) })
			return t, false
		})
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("transition action panicked",
				"job", name, "component", job.label, "panic", r)
		}
	}()

	if err := action(context.Background()); err != nil {
		s.log.Error("transition action failed",
			"job", name, "component", job.label, "error", err)
		return
	}

	s.log.Info("transition complete", "job", name, "component", job.label)
}
