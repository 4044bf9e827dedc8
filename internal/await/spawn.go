package await

import "github.com/agent-racer/botsched/internal/coro"

// Spawn hands body to the owning session's spawn upcall, adopting it as a
// new, independent session. It never suspends the calling coroutine: the
// spawned body starts running only once the scheduler picks up the new
// session on its own, so there is nothing productive to wait for here (spec
// §4.7 allows "ready()=true, ready immediately" as the whole contract).
type Spawn struct {
	body coro.Body
}

// NewSpawn wraps body for use as an awaitable.
func NewSpawn(body coro.Body) Spawn {
	return Spawn{body: body}
}

// Await hands the body to the scheduler and returns without suspending.
func (a Spawn) Await(h *coro.Handle) error {
	sessionOf(h).Spawn(a.body)
	return nil
}
