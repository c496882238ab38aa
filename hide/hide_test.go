package hide

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/virtual"
)

type element struct {
	id     virtual.ElementID
	lock   *DisplayLock
	hidden bool
	height float64
	color  tcell.Color
}

func (e *element) ID() virtual.ElementID     { return e.id }
func (e *element) Rect() virtual.Rect        { return virtual.Rect{Bottom: 10} }
func (e *element) DisplayLock() *DisplayLock { return e.lock }

func (e *element) SetContentHidden(hidden bool, height float64) {
	e.hidden, e.height = hidden, height
}

func (e *element) ContentHidden() bool         { return e.hidden }
func (e *element) SetDebugColor(c tcell.Color) { e.color = c }
func (e *element) DebugColor() tcell.Color     { return e.color }

// plain supports nothing.
type plain struct{}

func (plain) ID() virtual.ElementID { return 1 }
func (plain) Rect() virtual.Rect    { return virtual.Rect{} }

func quiet() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// settled returns the value of c or fails if it has not settled.
func settled(t *testing.T, c virtual.Completion) error {
	t.Helper()
	select {
	case err := <-c:
		return err
	default:
		t.Fatal("Expected completion to be settled")
		return nil
	}
}

func pending(t *testing.T, c virtual.Completion) {
	t.Helper()
	select {
	case err := <-c:
		t.Fatalf("Expected completion pending, got %v", err)
	default:
	}
}

func TestDisplayLockLifecycle(t *testing.T) {
	l := &DisplayLock{}

	acquire := l.Acquire(42)
	pending(t, acquire)
	if l.State() != Acquiring || l.Locked() {
		t.Errorf("Expected acquiring and still rendered, got %v", l.State())
	}
	if err := settled(t, l.Acquire(10)); !errors.Is(err, ErrLockHeld) {
		t.Errorf("Expected ErrLockHeld, got %v", err)
	}

	l.Settle()
	if err := settled(t, acquire); err != nil {
		t.Errorf("Expected acquire to resolve, got %v", err)
	}
	if !l.Locked() || l.Size() != 42 {
		t.Errorf("Expected locked at 42, got %v at %g", l.State(), l.Size())
	}

	commit := l.Commit()
	pending(t, commit)
	if !l.Locked() {
		t.Error("Expected the lock to hold until settled")
	}
	l.Settle()
	if err := settled(t, commit); err != nil {
		t.Errorf("Expected commit to resolve, got %v", err)
	}
	if l.State() != Unlocked {
		t.Errorf("Expected unlocked, got %v", l.State())
	}
	if err := settled(t, l.Commit()); !errors.Is(err, ErrNotLocked) {
		t.Errorf("Expected ErrNotLocked, got %v", err)
	}
}

func TestDisplayLockSupersession(t *testing.T) {
	l := &DisplayLock{}

	acquire := l.Acquire(10)
	if err := settled(t, l.Commit()); err != nil {
		t.Errorf("Expected commit of a pending acquire to resolve, got %v", err)
	}
	if err := settled(t, acquire); !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded, got %v", err)
	}
	if l.State() != Unlocked {
		t.Errorf("Expected unlocked, got %v", l.State())
	}

	l.Acquire(10)
	l.Settle()
	commit := l.Commit()
	if err := settled(t, l.Acquire(20)); err != nil {
		t.Errorf("Expected acquire of a committing lock to resolve, got %v", err)
	}
	if err := settled(t, commit); !errors.Is(err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded, got %v", err)
	}
	if l.State() != Locked || l.Size() != 20 {
		t.Errorf("Expected locked at 20, got %v at %g", l.State(), l.Size())
	}
}

func TestDisplayLockChangedFunc(t *testing.T) {
	l := &DisplayLock{}
	changes := 0
	l.SetChangedFunc(func() { changes++ })

	l.State()
	l.Locked()
	if changes != 0 {
		t.Fatalf("Expected queries to leave the lock unchanged, got %d changes", changes)
	}

	l.Acquire(4)
	l.Settle()
	l.Acquire(4) // rejected, already held
	l.Commit()
	l.Settle()
	if changes != 2 {
		t.Errorf("Expected 2 changes, got %d", changes)
	}
}

func TestHiders(t *testing.T) {
	tests := []struct {
		name   string
		hider  virtual.Hider
		hidden func(*element) bool
		settle func(*element)
	}{
		{
			name:   "locking",
			hider:  NewLockingHider(quiet()),
			hidden: func(e *element) bool { return e.lock.Locked() },
			settle: func(e *element) { e.lock.Settle() },
		},
		{
			name:   "containment",
			hider:  NewContainmentHider(),
			hidden: func(e *element) bool { return e.hidden },
			settle: func(*element) {},
		},
		{
			name:   "color",
			hider:  NewColorDebugHider(),
			hidden: func(e *element) bool { return e.color == HiddenColor },
			settle: func(*element) {},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &element{id: 3, lock: &DisplayLock{}}
			if !tt.hider.IsRevealed(e) {
				t.Error("Expected a fresh element to be revealed")
			}

			hide := tt.hider.Hide(e, 25)
			if tt.hider.IsRevealed(e) {
				t.Error("Expected hidden after Hide")
			}
			tt.settle(e)
			if err := settled(t, hide); err != nil {
				t.Errorf("Hide failed: %v", err)
			}
			if !tt.hidden(e) {
				t.Error("Expected the element to be hidden")
			}

			reveal := tt.hider.Reveal(e)
			if !tt.hider.IsRevealed(e) {
				t.Error("Expected revealed after Reveal")
			}
			tt.settle(e)
			if err := settled(t, reveal); err != nil {
				t.Errorf("Reveal failed: %v", err)
			}
			if tt.hidden(e) {
				t.Error("Expected the element to be revealed")
			}
		})
	}
}

func TestContainmentReservesEstimate(t *testing.T) {
	e := &element{id: 1}
	NewContainmentHider().Hide(e, 37)
	if !e.hidden || e.height != 37 {
		t.Errorf("Expected hidden at 37, got %t at %g", e.hidden, e.height)
	}
}

func TestHidersRejectUnsupported(t *testing.T) {
	for _, h := range []virtual.Hider{NewLockingHider(quiet()), NewContainmentHider(), NewColorDebugHider()} {
		if err := settled(t, h.Hide(plain{}, 10)); !errors.Is(err, ErrUnsupported) {
			t.Errorf("%v: expected ErrUnsupported, got %v", h, err)
		}
		if !h.IsRevealed(plain{}) {
			t.Errorf("%v: expected unsupported elements to count as revealed", h)
		}
	}
}

func TestSelect(t *testing.T) {
	all := Capabilities{Locking: true, Containment: true, Color: true}
	tests := []struct {
		name string
		cfg  func(*virtual.Config)
		caps Capabilities
		want string
	}{
		{"locking", func(c *virtual.Config) {}, all, "locking"},
		{"color debug", func(c *virtual.Config) { c.UseLocking, c.UseColorDebug = false, true }, all, "color"},
		{"color ignored with locking", func(c *virtual.Config) { c.UseColorDebug = true }, all, "locking"},
		{"no locking support", func(c *virtual.Config) {}, Capabilities{Containment: true, Color: true}, "containment"},
		{"locking off", func(c *virtual.Config) { c.UseLocking = false }, all, "containment"},
		{"fallback", func(c *virtual.Config) {}, Capabilities{Color: true}, "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := virtual.DefaultConfig()
			tt.cfg(&cfg)
			h := Select(cfg, tt.caps, quiet())
			if h == nil {
				t.Fatal("Expected a hider")
			}
			if got := h.(interface{ String() string }).String(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}

	if h := Select(virtual.DefaultConfig(), Capabilities{}, quiet()); h != nil {
		t.Errorf("Expected no hider, got %v", h)
	}
}

func TestProbe(t *testing.T) {
	if caps := Probe(&element{lock: &DisplayLock{}}); !caps.Locking || !caps.Containment || !caps.Color {
		t.Errorf("Expected every capability, got %+v", caps)
	}
	if caps := Probe(&element{}); caps.Locking {
		t.Error("Expected no locking without a lock")
	}
	if caps := Probe(plain{}); caps != (Capabilities{}) {
		t.Errorf("Expected nothing, got %+v", caps)
	}
}
