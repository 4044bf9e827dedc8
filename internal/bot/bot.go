// Package bot is the outer façade the spec describes: it sits in front of
// *scheduler.Scheduler, passes every incoming top-level message through the
// scheduler's ordinary per-session routing, and also starts a new command
// coroutine for each registered command the message matches.
package bot

import (
	"strings"
	"sync"

	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/scheduler"
	"github.com/agent-racer/botsched/internal/update"
)

// CommandBody is a coroutine body invoked with the message that triggered
// it. It may go on to use internal/await for follow-up input from the same
// user, exactly like any other spawned session.
type CommandBody func(h *coro.Handle, m *update.Message) error

// Bot wraps a Scheduler with command registration and dispatch.
type Bot struct {
	sched *scheduler.Scheduler

	mu       sync.RWMutex
	commands map[string]CommandBody
}

// New builds a Bot around an already-running Scheduler.
func New(sched *scheduler.Scheduler) *Bot {
	return &Bot{
		sched:    sched,
		commands: make(map[string]CommandBody),
	}
}

// HandleCommand registers body to run whenever a top-level message matches
// name: the message text is exactly name, or begins with name followed by a
// single space (spec's command match semantics). Registering the same name
// twice replaces the previous body.
func (b *Bot) HandleCommand(name string, body CommandBody) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[name] = body
}

// Spawn adopts body as a new, independent session, bypassing command
// matching. Useful for bootstrapping background work at startup.
func (b *Bot) Spawn(body coro.Body) {
	b.sched.Spawn(body)
}

// HandleMessage is the top-level message entry point. Mirroring the
// original's AsyncBot::onMessage, it always routes the message to every
// session already waiting on it via the scheduler's normal filtered
// routing, and separately spawns a fresh session for every registered
// command whose name matches — both happen unconditionally, not one or
// the other. Skipping the routing step whenever a command also matches
// would starve any session parked in internal/await on a message that
// happens to look like a command (e.g. a "/start" session awaiting a
// follow-up that begins with "/echo ").
func (b *Bot) HandleMessage(m *update.Message) {
	b.sched.HandleMessage(m)

	for _, body := range b.matchAll(m.Text) {
		body := body
		b.sched.Spawn(func(h *coro.Handle) error {
			return body(h, m)
		})
	}
}

// HandleEditedMessage forwards directly to the scheduler; edited messages
// never start a new command.
func (b *Bot) HandleEditedMessage(m *update.Message) { b.sched.HandleEditedMessage(m) }

// HandleCallbackQuery forwards directly to the scheduler.
func (b *Bot) HandleCallbackQuery(q *update.CallbackQuery) { b.sched.HandleCallbackQuery(q) }

// HandleInlineQuery forwards directly to the scheduler.
func (b *Bot) HandleInlineQuery(q *update.InlineQuery) { b.sched.HandleInlineQuery(q) }

// matchAll returns the body of every registered command whose name matches
// text under the spec's rule (exact, or name + " " + rest). Iteration order
// over commands is unspecified (map order), but every match fires.
func (b *Bot) matchAll(text string) []CommandBody {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var bodies []CommandBody
	for name, body := range b.commands {
		if text == name || strings.HasPrefix(text, name+" ") {
			bodies = append(bodies, body)
		}
	}
	return bodies
}
