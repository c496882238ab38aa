package vcontent

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/xqrs/vcontent/hide"
)

func newTestScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	s.SetSize(width, height)
	return s
}

func cellAt(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestDrawRevealedAndPlaceholderRows(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(100, 5)
	h.settle(t)
	s := newTestScreen(t, 20, 10)

	h.content.Draw(s)
	for row := range 10 {
		if got := cellAt(s, 0, row); got != 'x' {
			t.Errorf("Row %d: expected rendered content, got %q", row, got)
		}
	}
	if got := cellAt(s, 19, 0); got == 'x' {
		t.Error("Expected the scroll bar in the last column")
	}

	// Scrolled but not yet ticked: the rows belong to hidden items.
	h.content.ScrollTo(200)
	h.content.Draw(s)
	if got := cellAt(s, 0, 0); got != ' ' {
		t.Errorf("Expected a blank placeholder, got %q", got)
	}

	h.settle(t)
	h.content.Draw(s)
	if got := cellAt(s, 0, 0); got != 'x' {
		t.Errorf("Expected content after the tick, got %q", got)
	}
}

func TestDrawDebugPlaceholder(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.Debug = true
	h := newContentHarness(t, cfg)
	s := newTestScreen(t, 20, 10)

	h.content.drawPlaceholder(s, 0, 0, 3, 2, tcell.StyleDefault)

	want := []rune(SemigraphicsMiddleDot)[0]
	for x := range 3 {
		for y := range 2 {
			if got := cellAt(s, x, y); got != want {
				t.Errorf("Cell (%d,%d): expected %q, got %q", x, y, want, got)
			}
		}
	}
	if got := cellAt(s, 3, 0); got == want {
		t.Error("Expected the placeholder to stay inside its rect")
	}
}

func TestDrawTextNode(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.content.AppendText("stray")
	s := newTestScreen(t, 20, 10)

	h.content.Draw(s)

	if got := cellAt(s, 0, 0); got != 's' {
		t.Errorf("Expected the text node on the first row, got %q", got)
	}
}

func TestDrawDebugColors(t *testing.T) {
	cfg := DefaultContentConfig()
	cfg.UseLocking = false
	cfg.UseColorDebug = true
	h := newContentHarness(t, cfg)
	h.populate(30, 5)
	h.settle(t)
	s := newTestScreen(t, 20, 10)

	h.content.Draw(s)

	_, _, style, _ := s.GetContent(0, 0)
	if _, bg, _ := style.Decompose(); bg != hide.RevealedColor {
		t.Errorf("Expected a revealed tint, got %v", bg)
	}
}

func TestDrawClipsContent(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.content.SetBorders(BordersAll)
	h.populate(100, 5)
	h.settle(t)
	s := newTestScreen(t, 20, 10)

	h.content.Draw(s)

	if got := cellAt(s, 1, 9); got == 'x' {
		t.Error("Expected content to stay inside the border")
	}
	if got := cellAt(s, 1, 8); got != 'x' {
		t.Errorf("Expected content on the last inner row, got %q", got)
	}
}

func TestKeybindsScroll(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(100, 5)
	h.settle(t)
	c := h.content

	key := func(k tcell.Key, r rune) Command {
		return c.InputHandler(tcell.NewEventKey(k, r, tcell.ModNone))
	}

	if _, ok := key(tcell.KeyRune, 'j').(RedrawCommand); !ok {
		t.Fatal("Expected a redraw after scrolling")
	}
	if got := c.ScrollOffset(); got != 1 {
		t.Errorf("Expected offset 1, got %g", got)
	}
	key(tcell.KeyPgDn, 0)
	if got := c.ScrollOffset(); got != 11 {
		t.Errorf("Expected offset 11, got %g", got)
	}
	key(tcell.KeyRune, 'k')
	if got := c.ScrollOffset(); got != 10 {
		t.Errorf("Expected offset 10, got %g", got)
	}
	key(tcell.KeyRune, 'G')
	if got, want := c.ScrollOffset(), c.ContentHeight()-10; got != want {
		t.Errorf("Expected offset %g, got %g", want, got)
	}
	key(tcell.KeyRune, 'g')
	if got := c.ScrollOffset(); got != 0 {
		t.Errorf("Expected offset 0, got %g", got)
	}
	if cmd := key(tcell.KeyRune, 'z'); cmd != nil {
		t.Errorf("Expected unbound keys to be ignored, got %v", cmd)
	}
}

func TestMouseScroll(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(100, 5)
	h.settle(t)
	c := h.content
	s := newTestScreen(t, 20, 10)
	c.Draw(s)

	c.MouseHandler(MouseScrollDown, tcell.NewEventMouse(5, 5, tcell.WheelDown, tcell.ModNone))
	if got := c.ScrollOffset(); got != wheelStep {
		t.Errorf("Expected offset %d, got %g", wheelStep, got)
	}

	capture, _ := c.MouseHandler(MouseLeftDown, tcell.NewEventMouse(19, 9, tcell.Button1, tcell.ModNone))
	if capture != c {
		t.Fatal("Expected the scroll bar to capture the mouse")
	}
	if got, want := c.ScrollOffset(), c.ContentHeight()-10; got != want {
		t.Errorf("Expected a drag to the bottom to reach %g, got %g", want, got)
	}
	c.MouseHandler(MouseMove, tcell.NewEventMouse(19, 0, tcell.Button1, tcell.ModNone))
	if got := c.ScrollOffset(); got != 0 {
		t.Errorf("Expected a drag to the top to reach 0, got %g", got)
	}
	capture, _ = c.MouseHandler(MouseLeftUp, tcell.NewEventMouse(19, 0, tcell.ButtonNone, tcell.ModNone))
	if capture != nil {
		t.Error("Expected the release to end the capture")
	}
}

func TestArrowKeybinds(t *testing.T) {
	h := newContentHarness(t, DefaultContentConfig())
	h.populate(100, 5)
	h.settle(t)
	c := h.content
	c.keybinds = ArrowKeybinds()

	if cmd := c.InputHandler(tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone)); cmd != nil {
		t.Errorf("Expected j to be unbound, got %v", cmd)
	}
	c.InputHandler(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	c.InputHandler(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if got := c.ScrollOffset(); got != 11 {
		t.Errorf("Expected offset 11, got %g", got)
	}
	c.InputHandler(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	if got, want := c.ScrollOffset(), c.ContentHeight()-10; got != want {
		t.Errorf("Expected offset %g, got %g", want, got)
	}
	if got := c.Keybinds().Top.Help().Key; got != "home" {
		t.Errorf("Expected home in the help, got %q", got)
	}
}
