package await

import "errors"

// ErrAborted is returned by an awaitable when the coroutine's abort
// predicate fired while it was suspended (e.g. a timeout).
var ErrAborted = errors.New("await: aborted")

// ErrSpurious means the resume predicate fired but the inbox was already
// drained by the time Resume ran. Under the concurrency model this is a
// wakeup-to-resume race (spec §5), not a programming error, but it should
// never actually surface here: each inbox is only ever read by the single
// coroutine that installed the filter.
var ErrSpurious = errors.New("await: resumed with an empty inbox")
