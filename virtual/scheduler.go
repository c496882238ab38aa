package virtual

// FrameScheduler runs callbacks once, before the next frame is drawn, on the
// UI goroutine.
type FrameScheduler interface {
	// RequestFrame queues fn for the next frame. The returned cancel func
	// drops fn if it has not run yet.
	RequestFrame(fn func()) (cancel func())
}

type frameRequest struct {
	token uint64
	fn    func()
}

// FrameQueue is a FrameScheduler driven by explicit calls to RunFrame.
// Callbacks requested while a frame runs are deferred to the following frame.
// It is not safe for concurrent use.
type FrameQueue struct {
	pending []frameRequest
	next    uint64
	frames  uint64
}

// NewFrameQueue returns an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// RequestFrame implements FrameScheduler.
func (q *FrameQueue) RequestFrame(fn func()) func() {
	q.next++
	token := q.next
	q.pending = append(q.pending, frameRequest{token: token, fn: fn})
	return func() {
		for i, r := range q.pending {
			if r.token == token {
				q.pending = append(q.pending[:i], q.pending[i+1:]...)
				return
			}
		}
	}
}

// RunFrame runs the callbacks queued before the call. It reports how many ran.
func (q *FrameQueue) RunFrame() int {
	batch := q.pending
	q.pending = nil
	q.frames++
	for _, r := range batch {
		r.fn()
	}
	return len(batch)
}

// RunUntilIdle runs frames until nothing is queued or limit frames have run.
// It returns the number of frames that ran callbacks.
func (q *FrameQueue) RunUntilIdle(limit int) int {
	n := 0
	for n < limit && len(q.pending) > 0 {
		q.RunFrame()
		n++
	}
	return n
}

// Pending returns the number of queued callbacks.
func (q *FrameQueue) Pending() int {
	return len(q.pending)
}

// Frames returns the number of frames run so far.
func (q *FrameQueue) Frames() uint64 {
	return q.frames
}
