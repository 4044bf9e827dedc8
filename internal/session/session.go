// Package session implements the per-coroutine execution context: the
// Coroutine itself, one filtered EventQueue per event kind it can be woken
// by, and the two upcalls back into the owning Scheduler.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/eventqueue"
	"github.com/agent-racer/botsched/internal/update"
)

// WakeFunc re-enqueues a session onto the scheduler's ready queue.
type WakeFunc func(*Session)

// SpawnFunc hands a freshly created coroutine to the scheduler for
// adoption as a new, independent session.
type SpawnFunc func(coro.Body)

// Session is the shared per-coroutine context: it owns the Coroutine, one
// EventQueue per event kind, and the scheduler upcalls. The Coroutine's
// Handle carries a back-reference to the owning Session via Handle.Owner.
type Session struct {
	id uint64

	// driveMu serializes TryResume: a Session is single-threaded
	// internally (spec's "guarded by its own mutex" invariant), since
	// coro.Coroutine's channel handshake only holds its own lock for
	// bookkeeping, not across the suspend/resume rendezvous. Two workers
	// driving the same Session concurrently — a wake landing mid-drive
	// from router.Route or an await.Call/Go completion can re-mark the
	// session queued before this drive finishes — would otherwise both
	// pass the coroutine's Ready check and race the handshake itself. Go
	// has no reentrant mutex; nothing here needs one, since TryResume
	// never calls back into a method that also takes driveMu.
	driveMu sync.Mutex

	coro *coro.Coroutine

	Messages       *eventqueue.Queue[*update.Message]
	EditedMessages *eventqueue.Queue[*update.Message]
	Callbacks      *eventqueue.Queue[*update.CallbackQuery]
	InlineQueries  *eventqueue.Queue[*update.InlineQuery]
	Timers         *eventqueue.Queue[update.TimerEvent]

	wake  WakeFunc
	spawn SpawnFunc

	// queued is the ready-queue dedup flag: a session already pending in
	// the scheduler's ready queue must not be enqueued twice. Replaces
	// the source's linear scan of the pending-tasks vector, per the
	// port's design notes.
	queued atomic.Bool
}

// New builds a Session around body, wiring the scheduler upcalls. The
// scheduler is expected to call Wake once immediately after adoption (a
// fresh coroutine is Ready and needs its first drive).
func New(id uint64, body coro.Body, wake WakeFunc, spawn SpawnFunc) *Session {
	s := &Session{
		id:             id,
		Messages:       eventqueue.New[*update.Message](),
		EditedMessages: eventqueue.New[*update.Message](),
		Callbacks:      eventqueue.New[*update.CallbackQuery](),
		InlineQueries:  eventqueue.New[*update.InlineQuery](),
		Timers:         eventqueue.New[update.TimerEvent](),
		wake:           wake,
		spawn:          spawn,
	}
	s.coro = coro.New(s, body)
	return s
}

// ID returns the session's identity, stable for its lifetime.
func (s *Session) ID() uint64 { return s.id }

// Status returns the coroutine's current state.
func (s *Session) Status() coro.State {
	return s.coro.State()
}

// TryResume drives the coroutine one step, holding driveMu for the whole
// call so at most one goroutine is ever inside the coroutine's suspend/
// resume handshake at a time.
func (s *Session) TryResume() (bool, error) {
	s.driveMu.Lock()
	defer s.driveMu.Unlock()
	return s.coro.TryResume()
}

// Handle returns the coroutine's Handle, for awaitables.
func (s *Session) Handle() *coro.Handle {
	return s.coro.Handle()
}

// Wake re-enqueues this session into the scheduler's ready queue.
// Idempotent: calling it while the session is already pending is a no-op
// from the scheduler's point of view (enforced by the caller checking
// MarkQueued/ClearQueued around it — see scheduler.addReady).
func (s *Session) Wake() {
	s.wake(s)
}

// Spawn hands a freshly created coroutine body to the scheduler for
// adoption as a new session.
func (s *Session) Spawn(body coro.Body) {
	s.spawn(body)
}

// MarkQueued reports whether the session was not already queued, and if
// so, marks it queued. Used by the scheduler's ready queue to implement
// dedup without a linear scan.
func (s *Session) MarkQueued() (wasIdle bool) {
	return s.queued.CompareAndSwap(false, true)
}

// ClearQueued marks the session as no longer pending in the ready queue.
// Called by the worker once it has finished driving the session.
func (s *Session) ClearQueued() {
	s.queued.Store(false)
}

// MessagesOf and the other XxxOf functions return one inbox queue of a
// session, in the shape a router.Router[T] needs (a queueOf closure
// standing in for the C++ member-pointer trick).
func MessagesOf(s *Session) *eventqueue.Queue[*update.Message]          { return s.Messages }
func EditedMessagesOf(s *Session) *eventqueue.Queue[*update.Message]    { return s.EditedMessages }
func CallbacksOf(s *Session) *eventqueue.Queue[*update.CallbackQuery]   { return s.Callbacks }
func InlineQueriesOf(s *Session) *eventqueue.Queue[*update.InlineQuery] { return s.InlineQueries }
func TimersOf(s *Session) *eventqueue.Queue[update.TimerEvent]          { return s.Timers }
