package virtual

import (
	"log/slog"
)

// Tracker turns host notifications into manager bookkeeping and tick
// requests. Every element added to the container is hidden straight away;
// the next tick reveals the ones near the viewport.
type Tracker struct {
	manager *Manager
	host    Host
	resize  Observer
	logger  *slog.Logger
}

// NewTracker returns a tracker feeding m. resize, when not nil, is told about
// every element entering or leaving the container.
func NewTracker(m *Manager, host Host, resize Observer) *Tracker {
	return &Tracker{
		manager: m,
		host:    host,
		resize:  resize,
		logger:  m.logger,
	}
}

// nodeKey identifies a node across records. Elements are keyed by ID; other
// nodes must be comparable (hosts pass pointers).
func nodeKey(n Node) any {
	if e, ok := n.(Element); ok {
		return e.ID()
	}
	return n
}

// OnMutations applies a batch of records. A node added and removed within the
// batch cancels out; the remaining removals are applied before the remaining
// additions.
func (t *Tracker) OnMutations(records []MutationRecord) {
	type change struct {
		node  Node
		net   int
		moved bool
	}
	var order []any
	changes := make(map[any]*change)
	touch := func(n Node, delta int) {
		key := nodeKey(n)
		c, ok := changes[key]
		if !ok {
			c = &change{node: n}
			changes[key] = c
			order = append(order, key)
		}
		if (c.net > 0 && delta < 0) || (c.net < 0 && delta > 0) {
			c.moved = true
		}
		c.net += delta
		c.node = n
	}
	for _, r := range records {
		for _, n := range r.Removed {
			touch(n, -1)
		}
		for _, n := range r.Added {
			touch(n, +1)
		}
	}

	var added, removed []Node
	moved := false
	for _, key := range order {
		c := changes[key]
		switch {
		case c.net < 0:
			removed = append(removed, c.node)
		case c.net > 0:
			added = append(added, c.node)
		case c.moved:
			// Removed and re-inserted: only the position changed, which the
			// next tick picks up.
			if e, ok := c.node.(Element); ok && t.host.Children().IndexOf(e) >= 0 {
				moved = true
			}
		}
	}

	if len(removed) > 0 {
		t.OnChildrenRemoved(removed)
	}
	if len(added) > 0 {
		t.OnChildrenAdded(added)
	}
	if moved {
		t.manager.ScheduleUpdate()
	}
}

// OnChildrenAdded hides new elements and removes any node that is not an
// element from the container.
func (t *Tracker) OnChildrenAdded(nodes []Node) {
	scheduled := false
	for _, n := range nodes {
		e, ok := n.(Element)
		if !ok {
			if t.host.RemoveChild(n) {
				t.logger.Debug("virtual: removed non-element child", "node", n)
			}
			continue
		}
		t.manager.Adopt(e)
		if t.resize != nil {
			t.resize.Observe(e)
		}
		scheduled = true
	}
	if scheduled {
		t.manager.ScheduleUpdate()
	}
}

// OnChildrenRemoved forgets removed elements.
func (t *Tracker) OnChildrenRemoved(nodes []Node) {
	scheduled := false
	for _, n := range nodes {
		e, ok := n.(Element)
		if !ok {
			continue
		}
		t.manager.Release(e)
		if t.resize != nil {
			t.resize.Unobserve(e)
		}
		scheduled = true
	}
	if scheduled {
		t.manager.ScheduleUpdate()
	}
}

// OnElementsResized marks the sizes of elements as stale.
func (t *Tracker) OnElementsResized(elements []Element) {
	if len(elements) == 0 {
		return
	}
	for _, e := range elements {
		t.manager.Invalidate(e)
	}
	t.manager.ScheduleUpdate()
}

// OnContainerResized handles a change of the viewport size.
func (t *Tracker) OnContainerResized() {
	t.manager.ScheduleUpdate()
}

// OnScroll handles a viewport scroll. It is ignored while the intersection
// feed drives ticks.
func (t *Tracker) OnScroll() {
	if t.manager.UsesIntersection() {
		return
	}
	t.manager.ScheduleUpdate()
}

// OnIntersections requests a tick when an observed element crossed the
// buffered viewport.
func (t *Tracker) OnIntersections(entries []IntersectionEntry) {
	for _, entry := range entries {
		if entry.Element != nil && t.manager.Observing(entry.Element) {
			t.manager.ScheduleUpdate()
			return
		}
	}
}
