package eventqueue

import (
	"testing"

	"github.com/agent-racer/botsched/internal/eventfilter"
)

func TestQueueRejection(t *testing.T) {
	q := New[int]()
	q.SetFilter(eventfilter.Filter[int]{Enabled: false})
	q.ResetChanges()

	q.Push(1)
	if !q.Empty() {
		t.Error("push on a rejecting filter changed empty()")
	}
}

func TestQueueAcceptsThenFIFO(t *testing.T) {
	q := New[int]()
	q.SetFilter(eventfilter.Filter[int]{Enabled: true})
	q.ResetChanges()

	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.Pop()
		if !ok || got != want {
			t.Fatalf("Pop() = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if !q.Empty() {
		t.Error("queue should be empty after draining")
	}
	if _, ok := q.Pop(); ok {
		t.Error("Pop() on empty queue returned ok=true")
	}
}

func TestQueueDirtyBit(t *testing.T) {
	q := New[int]()
	if !q.HasChanges() {
		t.Error("freshly constructed queue should report HasChanges() == true")
	}
	q.ResetChanges()
	if q.HasChanges() {
		t.Error("HasChanges() should be false after ResetChanges()")
	}

	q.SetFilter(eventfilter.Filter[int]{Enabled: true})
	if !q.HasChanges() {
		t.Error("HasChanges() should be true after SetFilter()")
	}
	q.ResetChanges()
	if q.HasChanges() {
		t.Error("HasChanges() should be false after ResetChanges()")
	}

	q.Push(1)
	if q.HasChanges() {
		t.Error("Push() must not re-set the dirty bit")
	}
}

func TestSetFilterClearsBuffer(t *testing.T) {
	q := New[int]()
	q.SetFilter(eventfilter.Filter[int]{Enabled: true})
	q.Push(1)
	q.Push(2)

	q.SetFilter(eventfilter.Filter[int]{Enabled: true})
	if !q.Empty() {
		t.Error("SetFilter() should clear buffered elements")
	}
}
