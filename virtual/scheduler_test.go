package virtual

import "testing"

func TestFrameQueueDefersNestedRequests(t *testing.T) {
	q := NewFrameQueue()
	var order []string

	q.RequestFrame(func() {
		order = append(order, "a")
		q.RequestFrame(func() { order = append(order, "c") })
	})
	q.RequestFrame(func() { order = append(order, "b") })

	if n := q.RunFrame(); n != 2 {
		t.Errorf("Expected 2 callbacks, got %d", n)
	}
	if len(order) != 2 || q.Pending() != 1 {
		t.Errorf("Expected the nested request deferred, got %v with %d pending", order, q.Pending())
	}
	if frames := q.RunUntilIdle(10); frames != 1 {
		t.Errorf("Expected 1 more frame, got %d", frames)
	}
	if got := len(order); got != 3 || order[2] != "c" {
		t.Errorf("Unexpected order %v", order)
	}
	if q.Frames() != 2 {
		t.Errorf("Expected 2 frames, got %d", q.Frames())
	}
}

func TestFrameQueueCancel(t *testing.T) {
	q := NewFrameQueue()
	ran := false
	cancel := q.RequestFrame(func() { ran = true })
	cancel()
	cancel()

	q.RunFrame()
	if ran {
		t.Error("Expected cancelled callback not to run")
	}
}
