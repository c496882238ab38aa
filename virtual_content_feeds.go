package vcontent

import (
	"slices"

	"github.com/xqrs/vcontent/virtual"
)

// managerFrames delivers pending notifications before every engine frame, so
// a tick always sees the child list the way the tracker does.
type managerFrames struct {
	c *VirtualContent
}

func (f managerFrames) RequestFrame(fn func()) func() {
	return f.c.frames.RequestFrame(func() {
		f.c.flush()
		fn()
	})
}

// requestFlush schedules a delivery of pending notifications.
func (c *VirtualContent) requestFlush() {
	if c.flushCancel != nil || c.tracker == nil {
		return
	}
	c.flushCancel = c.frames.RequestFrame(c.flush)
}

// flush hands queued notifications to the tracker: mutations first, then size
// changes, then scrolling, then intersections.
func (c *VirtualContent) flush() {
	if c.flushCancel != nil {
		c.flushCancel()
		c.flushCancel = nil
	}

	if records := c.records; len(records) > 0 {
		c.records = nil
		c.tracker.OnMutations(records)
	}
	for _, it := range c.removed {
		if it.owner == nil {
			it.lock.Settle()
		}
	}
	clear(c.removed)
	c.removed = c.removed[:0]

	if c.containerResized {
		c.containerResized = false
		c.tracker.OnContainerResized()
	}
	if resized := c.resize.take(); len(resized) > 0 {
		c.tracker.OnElementsResized(resized)
	}
	if c.scrolled {
		c.scrolled = false
		c.tracker.OnScroll()
	}
	if c.manager.UsesIntersection() && c.intersection.len() > 0 {
		c.layout()
		bounds := virtual.DesiredBounds(c.Viewport(), c.cfg.BufferFraction, c.contentHeight)
		if entries := c.intersection.check(bounds); len(entries) > 0 {
			c.tracker.OnIntersections(entries)
		}
	}
}

// resizeFeed collects items whose height may have changed.
type resizeFeed struct {
	observed map[virtual.ElementID]bool
	queued   []virtual.Element
	seen     map[virtual.ElementID]bool
}

func newResizeFeed() *resizeFeed {
	return &resizeFeed{
		observed: make(map[virtual.ElementID]bool),
		seen:     make(map[virtual.ElementID]bool),
	}
}

func (f *resizeFeed) Observe(e virtual.Element) {
	f.observed[e.ID()] = true
}

func (f *resizeFeed) Unobserve(e virtual.Element) {
	delete(f.observed, e.ID())
}

// notify queues e once until the next take.
func (f *resizeFeed) notify(e virtual.Element) {
	if f.seen[e.ID()] {
		return
	}
	f.seen[e.ID()] = true
	f.queued = append(f.queued, e)
}

// take returns the queued elements that are still observed.
func (f *resizeFeed) take() []virtual.Element {
	if len(f.queued) == 0 {
		return nil
	}
	out := slices.DeleteFunc(f.queued, func(e virtual.Element) bool {
		return !f.observed[e.ID()]
	})
	f.queued = nil
	clear(f.seen)
	return out
}

// intersectionFeed reports observed items entering or leaving a bounds. An
// item is reported on its first check after being observed.
type intersectionFeed struct {
	entries map[virtual.ElementID]*intersection
	notify  func()
}

type intersection struct {
	item         *Item
	reported     bool
	intersecting bool
}

func newIntersectionFeed(notify func()) *intersectionFeed {
	return &intersectionFeed{
		entries: make(map[virtual.ElementID]*intersection),
		notify:  notify,
	}
}

func (f *intersectionFeed) Observe(e virtual.Element) {
	it, ok := e.(*Item)
	if !ok {
		return
	}
	if _, ok := f.entries[it.ID()]; ok {
		return
	}
	f.entries[it.ID()] = &intersection{item: it}
	f.notify()
}

func (f *intersectionFeed) Unobserve(e virtual.Element) {
	delete(f.entries, e.ID())
}

func (f *intersectionFeed) len() int {
	return len(f.entries)
}

func (f *intersectionFeed) reset() {
	clear(f.entries)
}

// check compares every observed item with bounds and returns the changes in
// id order. An item that only touches an edge of bounds is outside, the same
// rule the window uses.
func (f *intersectionFeed) check(bounds virtual.Bounds) []virtual.IntersectionEntry {
	var out []virtual.IntersectionEntry
	for _, in := range f.entries {
		it := in.item
		hit := it.owner != nil && it.bottom > bounds.Low && it.top < bounds.High
		if in.reported && hit == in.intersecting {
			continue
		}
		in.reported = true
		in.intersecting = hit
		out = append(out, virtual.IntersectionEntry{Element: it, Intersecting: hit})
	}
	slices.SortFunc(out, func(a, b virtual.IntersectionEntry) int {
		switch {
		case a.Element.ID() < b.Element.ID():
			return -1
		case a.Element.ID() > b.Element.ID():
			return 1
		}
		return 0
	})
	return out
}

var (
	_ virtual.FrameScheduler = managerFrames{}
	_ virtual.Observer       = &resizeFeed{}
	_ virtual.Observer       = &intersectionFeed{}
)
