package await

import (
	"strings"

	"github.com/agent-racer/botsched/internal/coro"
	"github.com/agent-racer/botsched/internal/eventfilter"
	"github.com/agent-racer/botsched/internal/update"
)

// Callback awaits the next callback query admitted by filter.
type Callback struct {
	filter eventfilter.Filter[*update.CallbackQuery]
}

// WaitForAnyCallback suspends until any callback query arrives.
func WaitForAnyCallback() Callback {
	return Callback{filter: eventfilter.Filter[*update.CallbackQuery]{Enabled: true}}
}

// WaitForCallbackPrefix suspends until a callback query whose data starts
// with prefix arrives (the original's getCBQueryP).
func WaitForCallbackPrefix(prefix string) Callback {
	return Callback{filter: eventfilter.Filter[*update.CallbackQuery]{
		Enabled: true,
		Refinement: func(cb *update.CallbackQuery) bool {
			return strings.HasPrefix(cb.Data, prefix)
		},
	}}
}

// WaitForCallbackMessage suspends until a callback query attached to
// messageID arrives (the original's getCBQueryM), supplemented into the
// port per SPEC_FULL.md.
func WaitForCallbackMessage(messageID int64) Callback {
	return Callback{filter: eventfilter.Filter[*update.CallbackQuery]{
		Enabled: true,
		Refinement: func(cb *update.CallbackQuery) bool {
			return cb.Message != nil && cb.Message.ID == messageID
		},
	}}
}

// WaitForCallbackPrefixMessage combines both refinements (the original's
// getCBQueryPM).
func WaitForCallbackPrefixMessage(prefix string, messageID int64) Callback {
	return Callback{filter: eventfilter.Filter[*update.CallbackQuery]{
		Enabled: true,
		Refinement: func(cb *update.CallbackQuery) bool {
			return cb.Message != nil && cb.Message.ID == messageID && strings.HasPrefix(cb.Data, prefix)
		},
	}}
}

// Await installs the filter, suspends the coroutine until a matching
// callback query arrives, and returns it. It disables the callback
// queue's own filter on resume, unlike the original's MessageAwaitable
// which mistakenly reset the callback queue from inside the message
// awaitable — see spec's Open Questions.
func (a Callback) Await(h *coro.Handle) (*update.CallbackQuery, error) {
	sess := sessionOf(h)
	sess.Callbacks.SetFilter(a.filter)

	aborted := h.Pause(func() bool { return !sess.Callbacks.Empty() }, nil)
	if aborted {
		return nil, ErrAborted
	}

	cb, ok := sess.Callbacks.Pop()
	sess.Callbacks.SetFilter(eventfilter.Filter[*update.CallbackQuery]{})
	if !ok {
		return nil, ErrSpurious
	}
	return cb, nil
}

// InlineQueryAwait awaits the next inline query.
type InlineQueryAwait struct {
	filter eventfilter.Filter[*update.InlineQuery]
}

// WaitForInlineQuery suspends until any inline query arrives.
func WaitForInlineQuery() InlineQueryAwait {
	return InlineQueryAwait{filter: eventfilter.Filter[*update.InlineQuery]{Enabled: true}}
}

// Await installs the filter, suspends, and returns the inline query.
func (a InlineQueryAwait) Await(h *coro.Handle) (*update.InlineQuery, error) {
	sess := sessionOf(h)
	sess.InlineQueries.SetFilter(a.filter)

	aborted := h.Pause(func() bool { return !sess.InlineQueries.Empty() }, nil)
	if aborted {
		return nil, ErrAborted
	}

	q, ok := sess.InlineQueries.Pop()
	sess.InlineQueries.SetFilter(eventfilter.Filter[*update.InlineQuery]{})
	if !ok {
		return nil, ErrSpurious
	}
	return q, nil
}
