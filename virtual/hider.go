package virtual

// Completion delivers exactly one value once a Hider operation settles: nil on
// success or the rejection reason. Receivers must not block on it from the UI
// goroutine.
type Completion <-chan error

// Resolved returns a Completion that has already settled with err.
func Resolved(err error) Completion {
	ch := make(chan error, 1)
	ch <- err
	return ch
}

// Hider puts elements into the hidden or revealed state. Operations may settle
// later (a lock only commits at the next layout), so Hide and Reveal return a
// Completion instead of an error.
type Hider interface {
	// Hide stops rendering e and reserves estimatedSize for it.
	Hide(e Element, estimatedSize float64) Completion
	// Reveal renders e again.
	Reveal(e Element) Completion
	// IsRevealed reports the live state of e as far as the strategy knows it.
	IsRevealed(e Element) bool
}

// pendingOp is a Completion the manager has not reaped yet.
type pendingOp struct {
	id     ElementID
	op     string
	result Completion
}
