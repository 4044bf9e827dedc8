// Package eventfilter provides the boolean admission predicates that gate
// what a session's inbox will accept while a coroutine is suspended.
package eventfilter

import "time"

// Predicate refines a Filter beyond the plain enabled/disabled bit.
type Predicate[T any] func(T) bool

// Filter is a cheap, copyable admission gate: disabled rejects everything,
// enabled with no refinement accepts everything, enabled with a refinement
// accepts exactly what the refinement accepts.
type Filter[T any] struct {
	Enabled    bool
	Refinement Predicate[T]
}

// Check reports whether e is admitted by the filter.
func (f Filter[T]) Check(e T) bool {
	if !f.Enabled {
		return false
	}
	if f.Refinement == nil {
		return true
	}
	return f.Refinement(e)
}

// TimerFilter is the timer-event specialization: instead of an arbitrary
// refinement predicate it carries a deadline. A nil Due fires as soon as
// the filter is enabled and a tick is observed.
type TimerFilter struct {
	Enabled bool
	Due     *time.Time
}

// Check reports whether now satisfies the deadline.
func (f TimerFilter) Check(now time.Time) bool {
	if !f.Enabled {
		return false
	}
	if f.Due == nil {
		return true
	}
	return !now.Before(*f.Due)
}
