// Package scheduler implements the task executor: it owns the pool of
// sessions, the ready queue, a worker pool, one EventRouter per event
// kind, and the timer tick that drives deadline-bearing filters.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/router"
	"github.com/agent-racer/botsched/internal/session"
	"github.com/agent-racer/botsched/internal/update"
)

// DefaultWorkerCount matches the original's Scheduler(int thread_count = 4).
const DefaultWorkerCount = 4

// DefaultTickInterval matches the original's hard-coded 1000ms
// TimerEventGenerator cadence.
const DefaultTickInterval = time.Second

// Config controls the worker pool size and timer cadence. New replaces a
// zero or negative field with its default, so the zero value behaves like
// NewConfig.
type Config struct {
	WorkerCount  int
	TickInterval time.Duration
}

// NewConfig returns the source's defaults: 4 workers, 1Hz timer tick.
func NewConfig() Config {
	return Config{WorkerCount: DefaultWorkerCount, TickInterval: DefaultTickInterval}
}

// Scheduler owns every live Session, the ready queue, the worker pool, and
// one EventRouter per event kind.
type Scheduler struct {
	cfg Config

	mu       sync.Mutex
	sessions map[*session.Session]struct{}
	ready    []*session.Session
	cond     *sync.Cond
	running  bool
	nextID   uint64

	messageRouter       *router.Router[*update.Message]
	editedMessageRouter *router.Router[*update.Message]
	callbackRouter      *router.Router[*update.CallbackQuery]
	inlineQueryRouter   *router.Router[*update.InlineQuery]
	timerRouter         *router.Router[update.TimerEvent]

	tickerStop chan struct{}
	tickerDone chan struct{}

	wg sync.WaitGroup

	onChangeMu sync.RWMutex
	onChange   func()
}

// New builds a Scheduler and starts its worker pool and timer driver. Call
// Shutdown to stop both.
func New(cfg Config) *Scheduler {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultWorkerCount
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	s := &Scheduler{
		cfg:                 cfg,
		sessions:            make(map[*session.Session]struct{}),
		messageRouter:       router.New(session.MessagesOf),
		editedMessageRouter: router.New(session.EditedMessagesOf),
		callbackRouter:      router.New(session.CallbacksOf),
		inlineQueryRouter:   router.New(session.InlineQueriesOf),
		timerRouter:         router.New(session.TimersOf),
		tickerStop:          make(chan struct{}),
		tickerDone:          make(chan struct{}),
		running:             true,
	}
	s.cond = sync.NewCond(&s.mu)

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	go s.tick()

	return s
}

// SetOnChange registers fn to be called whenever a session is spawned or
// removed. Intended for a diagnostics feed (internal/transport/ws's
// Broadcaster.NotifyChanged) that wants an extra out-of-band snapshot on
// top of its regular tick; nil disables the hook. Safe to call concurrently
// with Spawn/Shutdown, though it is normally set once at startup before any
// traffic arrives.
func (s *Scheduler) SetOnChange(fn func()) {
	s.onChangeMu.Lock()
	s.onChange = fn
	s.onChangeMu.Unlock()
}

func (s *Scheduler) notifyChanged() {
	s.onChangeMu.RLock()
	fn := s.onChange
	s.onChangeMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Spawn constructs a Session around body, registers it with every router,
// and wakes it so a worker picks it up.
func (s *Scheduler) Spawn(body coro.Body) *session.Session {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()

	var sess *session.Session
	sess = session.New(id, body, s.addReady, func(childBody coro.Body) {
		s.Spawn(childBody)
	})

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	s.updateAllRouters(sess)
	sess.Wake()
	s.notifyChanged()
	return sess
}

// HandleMessage routes an inbound message to every subscribed session.
func (s *Scheduler) HandleMessage(m *update.Message) { s.messageRouter.Route(m) }

// HandleEditedMessage routes an inbound edited message.
func (s *Scheduler) HandleEditedMessage(m *update.Message) { s.editedMessageRouter.Route(m) }

// HandleCallbackQuery routes an inbound callback query.
func (s *Scheduler) HandleCallbackQuery(q *update.CallbackQuery) { s.callbackRouter.Route(q) }

// HandleInlineQuery routes an inbound inline query.
func (s *Scheduler) HandleInlineQuery(q *update.InlineQuery) { s.inlineQueryRouter.Route(q) }

// SessionCount reports the number of live sessions, for diagnostics.
func (s *Scheduler) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ReadyCount reports the ready queue depth, for diagnostics.
func (s *Scheduler) ReadyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ready)
}

// RouterCounts reports the current subscriber count of each router, for
// diagnostics.
func (s *Scheduler) RouterCounts() map[string]int {
	return map[string]int{
		"message":        s.messageRouter.Len(),
		"edited_message": s.editedMessageRouter.Len(),
		"callback_query": s.callbackRouter.Len(),
		"inline_query":   s.inlineQueryRouter.Len(),
		"timer":          s.timerRouter.Len(),
	}
}

// addReady is the Session.wake upcall: it enqueues sess onto the ready
// queue exactly once, even under concurrent callers, via the session's own
// MarkQueued dedup flag.
func (s *Scheduler) addReady(sess *session.Session) {
	if !sess.MarkQueued() {
		return
	}
	s.mu.Lock()
	s.ready = append(s.ready, sess)
	s.mu.Unlock()
	s.cond.Signal()
}

// worker implements the drain loop: pop a ready session, drive it until
// tryResume returns false, then either tear it down (Null/Done/Exception)
// or reconcile its subscriptions with every router.
func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		sess := s.popReady()
		if sess == nil {
			return // shutdown
		}
		s.drive(sess)
	}
}

func (s *Scheduler) popReady() *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.ready) == 0 && s.running {
		s.cond.Wait()
	}
	if !s.running {
		// Shutdown has begun: no coroutine body may be resumed past this
		// point, even if sessions remain in the ready queue.
		return nil
	}
	sess := s.ready[0]
	s.ready = s.ready[1:]
	return sess
}

// drive holds the session queued (not clearing the dedup flag until the
// whole loop below has run) so a Wake landing from another goroutine
// mid-drive — router.Route delivering a second event, or an await.Call/Go
// completion — cannot re-enqueue sess onto the ready queue and get a
// second worker driving the same coroutine concurrently.
func (s *Scheduler) drive(sess *session.Session) {
	for {
		progressed, err := sess.TryResume()
		if err != nil {
			log.Printf("scheduler: session %d failed: %v", sess.ID(), err)
			sess.ClearQueued()
			s.removeSession(sess)
			return
		}
		if !progressed {
			break
		}
	}
	sess.ClearQueued()

	switch sess.Status() {
	case coro.Null, coro.Done, coro.Exception:
		s.removeSession(sess)
	default:
		s.updateAllRouters(sess)
	}
}

func (s *Scheduler) updateAllRouters(sess *session.Session) {
	s.messageRouter.Update(sess)
	s.editedMessageRouter.Update(sess)
	s.callbackRouter.Update(sess)
	s.inlineQueryRouter.Update(sess)
	s.timerRouter.Update(sess)
}

func (s *Scheduler) removeSession(sess *session.Session) {
	s.messageRouter.Remove(sess)
	s.editedMessageRouter.Remove(sess)
	s.callbackRouter.Remove(sess)
	s.inlineQueryRouter.Remove(sess)
	s.timerRouter.Remove(sess)

	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
	s.notifyChanged()
}

// tick drives the timer router at cfg.TickInterval, exactly as the
// original's TimerEventGenerator did at a hard-coded 1000ms.
func (s *Scheduler) tick() {
	defer close(s.tickerDone)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.timerRouter.Route(update.TimerEvent{At: now})
		case <-s.tickerStop:
			return
		}
	}
}

// Shutdown stops the timer driver and worker pool. Pending coroutines are
// dropped without a final resume; sessions still Wait-ing simply leak
// their goroutine, matching the source's "pending coroutines are dropped
// without resume" shutdown semantics (see spec §7) modulo the underlying
// goroutine, which blocks forever on an unresumed Pause select — an
// acceptable cost given the source itself specifies no cancellation of
// in-progress work as a Non-goal.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	close(s.tickerStop)

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.cond.Broadcast()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		<-s.tickerDone
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
