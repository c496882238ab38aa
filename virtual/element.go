package virtual

// ElementID is a stable handle for an element, assigned by the host. All
// per-element bookkeeping in this package is keyed by it.
type ElementID uint64

// Rect is the vertical extent of an element in content coordinates. Top is
// inclusive and Bottom exclusive for layout purposes; the locator decides how
// edges are attributed when an offset falls exactly on one.
type Rect struct {
	Top    float64
	Bottom float64
}

// Height returns the height of the rect.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Node is anything a host keeps in the container's child list. Only nodes that
// also implement Element can be revealed or hidden.
type Node any

// Element is a renderable child of the container.
type Element interface {
	// ID returns the element's stable identity.
	ID() ElementID
	// Rect returns the element's current extent. Hosts may run a layout pass
	// to answer it, so callers keep the number of calls low.
	Rect() Rect
}

// Children is the ordered child list of the container. The order must match
// increasing offsets.
type Children interface {
	Len() int
	At(index int) Element
	// IndexOf returns the position of e, or -1 if e is not a child.
	IndexOf(e Element) int
}

// Next returns the sibling following e, or nil at the end of the chain.
func Next(children Children, e Element) Element {
	i := children.IndexOf(e)
	if i < 0 || i+1 >= children.Len() {
		return nil
	}
	return children.At(i + 1)
}

// Previous returns the sibling preceding e, or nil at the start of the chain.
func Previous(children Children, e Element) Element {
	i := children.IndexOf(e)
	if i <= 0 {
		return nil
	}
	return children.At(i - 1)
}

// Host is the container the engine manages.
type Host interface {
	// Children returns the current child elements in order.
	Children() Children
	// Viewport returns the visible range in content coordinates.
	Viewport() Bounds
	// ContentHeight returns the total height of the laid out content.
	ContentHeight() float64
	// RemoveChild detaches n from the container. It reports false when n was
	// not a child.
	RemoveChild(n Node) bool
	// ForceLayout synchronously applies pending state changes and lays out the
	// children.
	ForceLayout()
}

// Observer is a per-element notification source (resize or intersection).
type Observer interface {
	Observe(e Element)
	Unobserve(e Element)
}

// MutationRecord is one structural change of the child list.
type MutationRecord struct {
	Added   []Node
	Removed []Node
}

// IntersectionEntry reports whether an observed element intersects the
// buffered viewport.
type IntersectionEntry struct {
	Element      Element
	Intersecting bool
}
