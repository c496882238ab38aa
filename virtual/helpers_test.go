package virtual

import (
	"errors"
	"log/slog"
	"slices"
	"testing"
)

// fakeElement is laid out by its fakeHost: hidden elements take their
// placeholder size, revealed ones their real height.
type fakeElement struct {
	id     ElementID
	height float64
	host   *fakeHost
}

func (e *fakeElement) ID() ElementID { return e.id }

func (e *fakeElement) Rect() Rect {
	return e.host.rectOf(e)
}

// textNode is a child that is not an element.
type textNode struct {
	text string
}

type fakeHost struct {
	items       []*fakeElement
	others      []Node
	placeholder map[ElementID]float64
	scrollTop   float64
	height      float64

	rectReads int
	layouts   int
	onViewport func()
}

func newFakeHost(height float64) *fakeHost {
	return &fakeHost{placeholder: make(map[ElementID]float64), height: height}
}

// add appends n elements of the given height with consecutive ids.
func (h *fakeHost) add(n int, height float64) []Node {
	nodes := make([]Node, 0, n)
	for range n {
		e := &fakeElement{id: ElementID(len(h.items)), height: height, host: h}
		h.items = append(h.items, e)
		nodes = append(nodes, e)
	}
	return nodes
}

func (h *fakeHost) addHeights(heights []float64) []Node {
	nodes := make([]Node, 0, len(heights))
	for _, height := range heights {
		nodes = append(nodes, h.add(1, height)...)
	}
	return nodes
}

func (h *fakeHost) sizeOf(e *fakeElement) float64 {
	if size, ok := h.placeholder[e.id]; ok {
		return size
	}
	return e.height
}

func (h *fakeHost) rectOf(target *fakeElement) Rect {
	h.rectReads++
	top := 0.0
	for _, e := range h.items {
		if e == target {
			return Rect{Top: top, Bottom: top + h.sizeOf(e)}
		}
		top += h.sizeOf(e)
	}
	return Rect{}
}

func (h *fakeHost) Children() Children { return fakeChildren{h} }

func (h *fakeHost) Viewport() Bounds {
	if h.onViewport != nil {
		h.onViewport()
	}
	return Bounds{Low: h.scrollTop, High: h.scrollTop + h.height}
}

func (h *fakeHost) ContentHeight() float64 {
	total := 0.0
	for _, e := range h.items {
		total += h.sizeOf(e)
	}
	return total
}

func (h *fakeHost) RemoveChild(n Node) bool {
	if e, ok := n.(*fakeElement); ok {
		i := slices.Index(h.items, e)
		if i < 0 {
			return false
		}
		h.items = slices.Delete(h.items, i, i+1)
		return true
	}
	i := slices.Index(h.others, n)
	if i < 0 {
		return false
	}
	h.others = slices.Delete(h.others, i, i+1)
	return true
}

func (h *fakeHost) ForceLayout() { h.layouts++ }

type fakeChildren struct {
	host *fakeHost
}

func (c fakeChildren) Len() int { return len(c.host.items) }

func (c fakeChildren) At(i int) Element { return c.host.items[i] }

func (c fakeChildren) IndexOf(e Element) int {
	for i, item := range c.host.items {
		if item.id == e.ID() {
			return i
		}
	}
	return -1
}

// fakeHider applies hide and reveal to the fakeHost synchronously.
type fakeHider struct {
	host    *fakeHost
	hides   int
	reveals int
	touched []ElementID
	reject  error
}

func (h *fakeHider) Hide(e Element, size float64) Completion {
	h.hides++
	h.touched = append(h.touched, e.ID())
	h.host.placeholder[e.ID()] = size
	return Resolved(h.reject)
}

func (h *fakeHider) Reveal(e Element) Completion {
	h.reveals++
	h.touched = append(h.touched, e.ID())
	delete(h.host.placeholder, e.ID())
	return Resolved(h.reject)
}

func (h *fakeHider) IsRevealed(e Element) bool {
	_, hidden := h.host.placeholder[e.ID()]
	return !hidden
}

// fakeObserver records the observed elements.
type fakeObserver struct {
	observed map[ElementID]bool
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{observed: make(map[ElementID]bool)}
}

func (o *fakeObserver) Observe(e Element)   { o.observed[e.ID()] = true }
func (o *fakeObserver) Unobserve(e Element) { delete(o.observed, e.ID()) }

type harness struct {
	host    *fakeHost
	hider   *fakeHider
	queue   *FrameQueue
	manager *Manager
	tracker *Tracker
	resize  *fakeObserver
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Debug = true
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	host := newFakeHost(500)
	hider := &fakeHider{host: host}
	queue := NewFrameQueue()
	opts = append([]Option{WithLogger(discardLogger())}, opts...)
	m, err := NewManager(host, hider, queue, cfg, opts...)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	resize := newFakeObserver()
	return &harness{
		host:    host,
		hider:   hider,
		queue:   queue,
		manager: m,
		tracker: NewTracker(m, host, resize),
		resize:  resize,
	}
}

// populate adds n elements of the given height through the tracker.
func (h *harness) populate(n int, height float64) {
	h.tracker.OnChildrenAdded(h.host.add(n, height))
}

// settle runs frames until no tick is pending and returns the frame count.
func (h *harness) settle(t *testing.T) int {
	t.Helper()
	frames := h.queue.RunUntilIdle(50)
	if h.queue.Pending() != 0 {
		t.Fatalf("did not converge within %d frames", frames)
	}
	return frames
}

func revealedIDs(m *Manager) []ElementID {
	var ids []ElementID
	for _, e := range m.Revealed() {
		ids = append(ids, e.ID())
	}
	slices.Sort(ids)
	return ids
}

func idRange(low, high int) []ElementID {
	var ids []ElementID
	for i := low; i <= high; i++ {
		ids = append(ids, ElementID(i))
	}
	return ids
}

// recoverInvariant runs fn and returns the InvariantError it panicked with.
func recoverInvariant(t *testing.T, fn func()) (ie *InvariantError) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok || !errors.As(err, &ie) {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
	return nil
}
