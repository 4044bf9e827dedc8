// Package await is the awaitables library: small types that, when driven
// through a coroutine body, install a filter into the session's inbox and
// park the coroutine until a matching event (or deadline) arrives.
//
// Every awaitable follows the same three-step skeleton described in the
// spec: Ready (cheap fast path), Suspend (install filter + pause), Resume
// (pop the event, disable the filter on the inbox it actually read from —
// the original's MessageAwaitable copy-paste bug, resetting the *callback*
// queue's filter instead of the message queue's, is fixed here per the
// spec's Open Questions guidance).
package await

import (
	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/eventfilter"
	"github.com/agent-racer/botsched/internal/session"
	"github.com/agent-racer/botsched/internal/update"
)

func sessionOf(h *coro.Handle) *session.Session {
	return h.Owner().(*session.Session)
}

// Message awaits the next message admitted by filter. Use one of the
// WaitForXxx constructors below rather than building a Message directly.
type Message struct {
	filter eventfilter.Filter[*update.Message]
}

// WaitForAnyMessage suspends until any message arrives.
func WaitForAnyMessage() Message {
	return Message{filter: eventfilter.Filter[*update.Message]{Enabled: true}}
}

// WaitForUser suspends until a message from userID arrives.
func WaitForUser(userID int64) Message {
	return Message{filter: eventfilter.Filter[*update.Message]{
		Enabled: true,
		Refinement: func(m *update.Message) bool {
			return m.From.ID == userID
		},
	}}
}

// WaitForGroup suspends until a message in chatID arrives, from the
// original's getMessageG (message.hpp), supplemented into the port
// per SPEC_FULL.md.
func WaitForGroup(chatID int64) Message {
	return Message{filter: eventfilter.Filter[*update.Message]{
		Enabled: true,
		Refinement: func(m *update.Message) bool {
			return m.Chat.ID == chatID
		},
	}}
}

// WaitForUserInGroup suspends until a message from userID in chatID
// arrives, from the original's getMessageUG.
func WaitForUserInGroup(userID, chatID int64) Message {
	return Message{filter: eventfilter.Filter[*update.Message]{
		Enabled: true,
		Refinement: func(m *update.Message) bool {
			return m.From.ID == userID && m.Chat.ID == chatID
		},
	}}
}

// Await installs the filter, suspends the coroutine until a matching
// message arrives, and returns it.
func (a Message) Await(h *coro.Handle) (*update.Message, error) {
	sess := sessionOf(h)
	sess.Messages.SetFilter(a.filter)

	aborted := h.Pause(func() bool { return !sess.Messages.Empty() }, nil)
	if aborted {
		return nil, ErrAborted
	}

	m, ok := sess.Messages.Pop()
	sess.Messages.SetFilter(eventfilter.Filter[*update.Message]{})
	if !ok {
		return nil, ErrSpurious
	}
	return m, nil
}

// EditedMessage mirrors Message but reads the edited-message inbox.
type EditedMessage struct {
	filter eventfilter.Filter[*update.Message]
}

// WaitForEditedMessage suspends until any edited message arrives.
func WaitForEditedMessage() EditedMessage {
	return EditedMessage{filter: eventfilter.Filter[*update.Message]{Enabled: true}}
}

// Await installs the filter, suspends, and returns the edited message.
func (a EditedMessage) Await(h *coro.Handle) (*update.Message, error) {
	sess := sessionOf(h)
	sess.EditedMessages.SetFilter(a.filter)

	aborted := h.Pause(func() bool { return !sess.EditedMessages.Empty() }, nil)
	if aborted {
		return nil, ErrAborted
	}

	m, ok := sess.EditedMessages.Pop()
	sess.EditedMessages.SetFilter(eventfilter.Filter[*update.Message]{})
	if !ok {
		return nil, ErrSpurious
	}
	return m, nil
}
