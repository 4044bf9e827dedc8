// Package router implements the per-event-kind fan-out described in the
// spec: a Router[T] tracks the subset of live sessions whose inbox of type
// T currently has an enabled filter, and pushes incoming events into
// exactly those inboxes before waking the sessions.
package router

import (
	"sync"

	"github.com/agent-racer/botsched/internal/eventqueue"
	"github.com/agent-racer/botsched/internal/session"
)

// QueueOf extracts the T-typed inbox from a session. This closure stands
// in for the C++ original's `EventQueue<T> Session::*` member pointer.
type QueueOf[T any] func(*session.Session) *eventqueue.Queue[T]

// Router fans events of type T out to every session whose T-inbox
// currently admits them.
//
// The original used a std::recursive_mutex plus a linearly-scanned
// std::vector because Update calls remove while already holding the
// router's own lock. Here the subscriber set is a Go map (O(1) removal,
// addressing the source's own noted "EventRouter.remove is O(N)"
// weakness) and no re-entrant call is needed: Update deletes from the map
// directly while holding the router's plain mutex.
type Router[T any] struct {
	mu       sync.Mutex
	sessions map[*session.Session]struct{}
	queueOf  QueueOf[T]
}

// New builds a Router that manages the inbox queueOf extracts from each
// session.
func New[T any](queueOf QueueOf[T]) *Router[T] {
	return &Router[T]{
		sessions: make(map[*session.Session]struct{}),
		queueOf:  queueOf,
	}
}

// Update reconciles s's subscription: if its inbox has no pending filter
// change, this is a no-op. Otherwise s is removed and, if the new filter
// is enabled, re-inserted; the inbox's dirty bit is cleared either way.
func (r *Router[T]) Update(s *session.Session) {
	q := r.queueOf(s)
	if !q.HasChanges() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
	if q.GetFilter().Enabled {
		r.sessions[s] = struct{}{}
	}
	q.ResetChanges()
}

// Remove unconditionally drops s from the subscriber set (used on session
// teardown).
func (r *Router[T]) Remove(s *session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s)
}

// Route pushes e into every subscribed session's inbox and wakes it.
// Ordering across sessions is unspecified; ordering within one session's
// inbox is FIFO by construction of eventqueue.Queue.
func (r *Router[T]) Route(e T) {
	r.mu.Lock()
	subscribers := make([]*session.Session, 0, len(r.sessions))
	for s := range r.sessions {
		subscribers = append(subscribers, s)
	}
	r.mu.Unlock()

	for _, s := range subscribers {
		r.queueOf(s).Push(e)
		s.Wake()
	}
}

// Len reports the current subscriber count, for diagnostics.
func (r *Router[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
