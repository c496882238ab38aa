package virtual

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an element is measured while hidden.
	ErrInvalidState = errors.New("virtual: element is not rendered")
	// ErrEmptySequence is returned when locating within zero elements.
	ErrEmptySequence = errors.New("virtual: empty element sequence")
	// ErrInvertedBounds is reported when a bounds low edge exceeds its high edge.
	ErrInvertedBounds = errors.New("virtual: bounds low > high")
	// ErrUnreachableBound is reported when a bounds high element cannot be
	// reached from its low element.
	ErrUnreachableBound = errors.New("virtual: high element not reachable from low element")
	// ErrDisjointBounds is returned when merging bounds that neither overlap
	// nor touch.
	ErrDisjointBounds = errors.New("virtual: cannot merge, no overlap")
	// ErrAlreadyRevealed is reported when revealing a revealed element.
	ErrAlreadyRevealed = errors.New("virtual: element is already revealed")
	// ErrAlreadyHidden is reported when hiding a hidden element.
	ErrAlreadyHidden = errors.New("virtual: element is already hidden")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("virtual: invalid config")
)

// InvariantError is the panic value used for programmer errors in debug mode.
type InvariantError struct {
	Err    error
	Detail string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}
