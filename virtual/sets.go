package virtual

import "slices"

// VisibilityState is an insertion-ordered set of elements. The manager uses
// one as the authoritative record of revealed elements.
type VisibilityState struct {
	members map[ElementID]Element
	order   []ElementID
}

// NewVisibilityState returns an empty set.
func NewVisibilityState() *VisibilityState {
	return &VisibilityState{members: make(map[ElementID]Element)}
}

// Add inserts e. It reports false if e was already present.
func (s *VisibilityState) Add(e Element) bool {
	id := e.ID()
	if _, ok := s.members[id]; ok {
		return false
	}
	s.members[id] = e
	s.order = append(s.order, id)
	return true
}

// Delete removes e. It reports false if e was not present.
func (s *VisibilityState) Delete(e Element) bool {
	return s.DeleteID(e.ID())
}

// DeleteID removes the element with the given id.
func (s *VisibilityState) DeleteID(id ElementID) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// Has reports whether e is in the set.
func (s *VisibilityState) Has(e Element) bool {
	_, ok := s.members[e.ID()]
	return ok
}

// HasID reports whether an element with the given id is in the set.
func (s *VisibilityState) HasID(id ElementID) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of elements.
func (s *VisibilityState) Len() int {
	return len(s.members)
}

// Elements returns the members in insertion order.
func (s *VisibilityState) Elements() []Element {
	out := make([]Element, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id])
	}
	return out
}

// Clear removes all elements.
func (s *VisibilityState) Clear() {
	clear(s.members)
	s.order = s.order[:0]
}

// Difference returns the elements of s that are not in other (s - other).
func (s *VisibilityState) Difference(other *VisibilityState) []Element {
	var out []Element
	for _, id := range s.order {
		if !other.HasID(id) {
			out = append(out, s.members[id])
		}
	}
	return out
}

// Diff returns the edits that turn s into next: the elements to hide and the
// elements to reveal.
func (s *VisibilityState) Diff(next *VisibilityState) (toHide, toReveal []Element) {
	return s.Difference(next), next.Difference(s)
}
