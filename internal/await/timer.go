package await

import (
	"time"

	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/eventfilter"
	"github.com/agent-racer/botsched/internal/update"
)

// Timer awaits wall-clock time reaching a deadline. It uses
// eventfilter.TimerFilter for its own readiness fast-path (spec §4.7 step
// 1) before translating that into the generic Filter[TimerEvent] the
// session's Timers queue actually understands.
type Timer struct {
	deadline eventfilter.TimerFilter
}

// WaitFor suspends the coroutine for at least d.
func WaitFor(d time.Duration) Timer {
	due := time.Now().Add(d)
	return Timer{deadline: eventfilter.TimerFilter{Enabled: true, Due: &due}}
}

// WaitUntil suspends the coroutine until wall-clock time reaches t.
func WaitUntil(t time.Time) Timer {
	return Timer{deadline: eventfilter.TimerFilter{Enabled: true, Due: &t}}
}

// Await suspends the coroutine until the deadline has passed. If it has
// already passed, it returns immediately without suspending (spec §4.7's
// "ready() cheap fast path").
func (a Timer) Await(h *coro.Handle) error {
	if a.deadline.Check(time.Now()) {
		return nil
	}

	sess := sessionOf(h)
	due := a.deadline.Due
	sess.Timers.SetFilter(eventfilter.Filter[update.TimerEvent]{
		Enabled: true,
		Refinement: func(e update.TimerEvent) bool {
			return due == nil || !e.At.Before(*due)
		},
	})

	aborted := h.Pause(func() bool { return !sess.Timers.Empty() }, nil)
	if aborted {
		return ErrAborted
	}

	sess.Timers.Pop()
	sess.Timers.SetFilter(eventfilter.Filter[update.TimerEvent]{})
	return nil
}
