package eventfilter

import (
	"testing"
	"time"
)

func TestFilterContract(t *testing.T) {
	disabled := Filter[int]{Enabled: false}
	if disabled.Check(5) {
		t.Error("disabled filter accepted an event")
	}

	enabledNoRefinement := Filter[int]{Enabled: true}
	if !enabledNoRefinement.Check(5) {
		t.Error("enabled filter with no refinement rejected an event")
	}

	isEven := Filter[int]{Enabled: true, Refinement: func(n int) bool { return n%2 == 0 }}
	if !isEven.Check(4) {
		t.Error("refined filter rejected an admissible event")
	}
	if isEven.Check(3) {
		t.Error("refined filter accepted an inadmissible event")
	}
}

func TestTimerFilterNoDeadline(t *testing.T) {
	f := TimerFilter{Enabled: true}
	if !f.Check(time.Now()) {
		t.Error("timer filter with no deadline should fire immediately once enabled")
	}
}

func TestTimerFilterDeadline(t *testing.T) {
	due := time.Now().Add(50 * time.Millisecond)
	f := TimerFilter{Enabled: true, Due: &due}

	if f.Check(due.Add(-time.Millisecond)) {
		t.Error("timer filter fired before its deadline")
	}
	if !f.Check(due) {
		t.Error("timer filter did not fire exactly at its deadline")
	}
	if !f.Check(due.Add(time.Millisecond)) {
		t.Error("timer filter did not fire past its deadline")
	}
}

func TestTimerFilterDisabled(t *testing.T) {
	f := TimerFilter{Enabled: false}
	if f.Check(time.Now()) {
		t.Error("disabled timer filter fired")
	}
}
