package await

import (
	"sync/atomic"

	"github.com/agent-racer/botsched/internal/coro"
)

// callState is shared between the awaiting coroutine and the goroutine
// running fn. done is only ever written once, by that goroutine, so a
// single atomic flag is enough to publish it safely to the resume
// predicate polled from the worker pool.
type callState[T any] struct {
	done  atomic.Bool
	value T
	err   error
}

// Call runs fn on its own goroutine and suspends the coroutine until fn
// returns. Only one call may be in flight per await point: constructing a
// second Call before the first resumes and reusing the same awaitable
// value is not supported, matching the source's off-thread-call contract.
// Cancellation is not supported either — once fn is running it always runs
// to completion, even if the owning session is torn down first.
type Call[T any] struct {
	fn func() (T, error)
}

// NewCall wraps fn for use as an awaitable.
func NewCall[T any](fn func() (T, error)) Call[T] {
	return Call[T]{fn: fn}
}

// Await launches fn and suspends until it returns.
func (a Call[T]) Await(h *coro.Handle) (T, error) {
	sess := sessionOf(h)
	state := &callState[T]{}

	go func() {
		state.value, state.err = a.fn()
		state.done.Store(true)
		sess.Wake()
	}()

	h.Pause(func() bool { return state.done.Load() }, nil)
	return state.value, state.err
}

// Go runs fn on its own goroutine and suspends the coroutine until fn
// returns. fn returns nothing; use Call instead when a result or error
// matters.
type Go struct {
	fn func()
}

// NewGo wraps fn for use as a fire-and-forget-but-awaited call.
func NewGo(fn func()) Go {
	return Go{fn: fn}
}

// Await launches fn and suspends until it returns.
func (a Go) Await(h *coro.Handle) {
	sess := sessionOf(h)
	var done atomic.Bool

	go func() {
		a.fn()
		done.Store(true)
		sess.Wake()
	}()

	h.Pause(func() bool { return done.Load() }, nil)
}
