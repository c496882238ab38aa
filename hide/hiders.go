package hide

import (
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/virtual"
)

// Lockable is implemented by elements that carry a DisplayLock.
type Lockable interface {
	DisplayLock() *DisplayLock
}

// Containable is implemented by elements that can skip rendering their
// content while keeping an intrinsic height.
type Containable interface {
	SetContentHidden(hidden bool, intrinsicHeight float64)
	ContentHidden() bool
}

// Colorable is implemented by elements that can be tinted for debugging.
type Colorable interface {
	SetDebugColor(color tcell.Color)
	DebugColor() tcell.Color
}

// LockingHider hides elements by acquiring their display lock. Operations
// settle at the host's next layout.
type LockingHider struct {
	logger *slog.Logger
}

// NewLockingHider returns a LockingHider. A nil logger uses slog.Default().
func NewLockingHider(logger *slog.Logger) *LockingHider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LockingHider{logger: logger}
}

func (h *LockingHider) lock(e virtual.Element) *DisplayLock {
	l, ok := e.(Lockable)
	if !ok || l.DisplayLock() == nil {
		h.logger.Warn("hide: no display locking", "element", uint64(e.ID()))
		return nil
	}
	return l.DisplayLock()
}

// Hide implements virtual.Hider.
func (h *LockingHider) Hide(e virtual.Element, estimatedSize float64) virtual.Completion {
	l := h.lock(e)
	if l == nil {
		return virtual.Resolved(fmt.Errorf("%w: element %d has no display lock", ErrUnsupported, e.ID()))
	}
	return l.Acquire(estimatedSize)
}

// Reveal implements virtual.Hider.
func (h *LockingHider) Reveal(e virtual.Element) virtual.Completion {
	l := h.lock(e)
	if l == nil {
		return virtual.Resolved(fmt.Errorf("%w: element %d has no display lock", ErrUnsupported, e.ID()))
	}
	return l.Commit()
}

// IsRevealed reports the state the lock is heading to.
func (h *LockingHider) IsRevealed(e virtual.Element) bool {
	l, ok := e.(Lockable)
	if !ok || l.DisplayLock() == nil {
		return true
	}
	s := l.DisplayLock().State()
	return s == Unlocked || s == Committing
}

func (h *LockingHider) String() string { return "locking" }

// ContainmentHider hides elements by switching their content off and
// reserving an intrinsic height. It applies synchronously.
type ContainmentHider struct{}

// NewContainmentHider returns a ContainmentHider.
func NewContainmentHider() *ContainmentHider {
	return &ContainmentHider{}
}

// Hide implements virtual.Hider.
func (h *ContainmentHider) Hide(e virtual.Element, estimatedSize float64) virtual.Completion {
	c, ok := e.(Containable)
	if !ok {
		return virtual.Resolved(fmt.Errorf("%w: element %d has no containment", ErrUnsupported, e.ID()))
	}
	c.SetContentHidden(true, estimatedSize)
	return virtual.Resolved(nil)
}

// Reveal implements virtual.Hider.
func (h *ContainmentHider) Reveal(e virtual.Element) virtual.Completion {
	c, ok := e.(Containable)
	if !ok {
		return virtual.Resolved(fmt.Errorf("%w: element %d has no containment", ErrUnsupported, e.ID()))
	}
	c.SetContentHidden(false, 0)
	return virtual.Resolved(nil)
}

// IsRevealed implements virtual.Hider.
func (h *ContainmentHider) IsRevealed(e virtual.Element) bool {
	c, ok := e.(Containable)
	return !ok || !c.ContentHidden()
}

func (h *ContainmentHider) String() string { return "containment" }

// Debug colours applied by ColorDebugHider.
var (
	RevealedColor = tcell.ColorGreen
	HiddenColor   = tcell.ColorRed
)

// ColorDebugHider tints elements instead of hiding them, so that the
// windowing can be watched while every element stays rendered.
type ColorDebugHider struct{}

// NewColorDebugHider returns a ColorDebugHider.
func NewColorDebugHider() *ColorDebugHider {
	return &ColorDebugHider{}
}

// Hide implements virtual.Hider.
func (h *ColorDebugHider) Hide(e virtual.Element, _ float64) virtual.Completion {
	return h.paint(e, HiddenColor)
}

// Reveal implements virtual.Hider.
func (h *ColorDebugHider) Reveal(e virtual.Element) virtual.Completion {
	return h.paint(e, RevealedColor)
}

func (h *ColorDebugHider) paint(e virtual.Element, color tcell.Color) virtual.Completion {
	c, ok := e.(Colorable)
	if !ok {
		return virtual.Resolved(fmt.Errorf("%w: element %d has no debug colour", ErrUnsupported, e.ID()))
	}
	c.SetDebugColor(color)
	return virtual.Resolved(nil)
}

// IsRevealed implements virtual.Hider.
func (h *ColorDebugHider) IsRevealed(e virtual.Element) bool {
	c, ok := e.(Colorable)
	return !ok || c.DebugColor() != HiddenColor
}

func (h *ColorDebugHider) String() string { return "color" }
