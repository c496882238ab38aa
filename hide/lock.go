package hide

import (
	"errors"

	"github.com/xqrs/vcontent/virtual"
)

var (
	// ErrLockHeld is returned when acquiring a lock that is already held or
	// being acquired.
	ErrLockHeld = errors.New("hide: lock already held")
	// ErrNotLocked is returned when committing a lock that is not held.
	ErrNotLocked = errors.New("hide: lock not held")
	// ErrSuperseded settles an operation that was overtaken by the opposite
	// one before it applied.
	ErrSuperseded = errors.New("hide: superseded")
	// ErrUnsupported is returned when an element lacks the capability a
	// strategy needs.
	ErrUnsupported = errors.New("hide: unsupported element")
)

// LockState is the state of a DisplayLock.
type LockState int

const (
	Unlocked LockState = iota
	// Acquiring means the lock applies at the next layout.
	Acquiring
	Locked
	// Committing means the lock is released at the next layout.
	Committing
)

func (s LockState) String() string {
	switch s {
	case Acquiring:
		return "acquiring"
	case Locked:
		return "locked"
	case Committing:
		return "committing"
	default:
		return "unlocked"
	}
}

// DisplayLock keeps an element's content from rendering while it is held.
// A held lock reserves Size rows in the layout. Acquire and Commit only take
// effect when the host calls Settle during layout.
type DisplayLock struct {
	state   LockState
	size    float64
	pending chan error
	changed func()
}

// SetChangedFunc sets a handler called whenever Acquire or Commit changes the
// state. Settle does not call it.
func (l *DisplayLock) SetChangedFunc(handler func()) {
	l.changed = handler
}

func (l *DisplayLock) notify() {
	if l.changed != nil {
		l.changed()
	}
}

// State returns the current state.
func (l *DisplayLock) State() LockState {
	return l.state
}

// Locked reports whether the content is currently not rendered.
func (l *DisplayLock) Locked() bool {
	return l.state == Locked || l.state == Committing
}

// Size returns the reserved size of a held lock.
func (l *DisplayLock) Size() float64 {
	return l.size
}

// Acquire requests the lock with the given placeholder size. A pending
// commit is superseded and the lock stays held.
func (l *DisplayLock) Acquire(size float64) virtual.Completion {
	switch l.state {
	case Acquiring, Locked:
		return virtual.Resolved(ErrLockHeld)
	case Committing:
		l.settle(ErrSuperseded)
		l.state = Locked
		l.size = size
		l.notify()
		return virtual.Resolved(nil)
	}
	l.state = Acquiring
	l.size = size
	l.pending = make(chan error, 1)
	l.notify()
	return l.pending
}

// Commit requests the release of the lock. A pending acquire is superseded
// and the lock is dropped at once.
func (l *DisplayLock) Commit() virtual.Completion {
	switch l.state {
	case Unlocked, Committing:
		return virtual.Resolved(ErrNotLocked)
	case Acquiring:
		l.settle(ErrSuperseded)
		l.state = Unlocked
		l.notify()
		return virtual.Resolved(nil)
	}
	l.state = Committing
	l.pending = make(chan error, 1)
	l.notify()
	return l.pending
}

// Settle applies a pending Acquire or Commit. Hosts call it when laying out
// the element.
func (l *DisplayLock) Settle() {
	switch l.state {
	case Acquiring:
		l.state = Locked
		l.settle(nil)
	case Committing:
		l.state = Unlocked
		l.settle(nil)
	}
}

func (l *DisplayLock) settle(err error) {
	if l.pending == nil {
		return
	}
	l.pending <- err
	l.pending = nil
}
