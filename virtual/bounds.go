package virtual

import (
	"fmt"
	"iter"
)

// Bounds is a range of pixels from Low to High. LowElement, if set, is the
// element whose top edge is Low, and HighElement, if set, is the element whose
// bottom edge is High.
type Bounds struct {
	Low  float64
	High float64

	LowElement  Element
	HighElement Element
}

// NewBounds returns bounds for the pixel range [low, high]. It reports
// ErrInvertedBounds when low > high.
func NewBounds(low, high float64) (Bounds, error) {
	if low > high {
		return Bounds{}, fmt.Errorf("%w: %g > %g", ErrInvertedBounds, low, high)
	}
	return Bounds{Low: low, High: high}, nil
}

// ElementBounds returns the bounds spanning from the top of low to the bottom
// of high.
func ElementBounds(low, high Element) Bounds {
	return Bounds{
		Low:         low.Rect().Top,
		High:        high.Rect().Bottom,
		LowElement:  low,
		HighElement: high,
	}
}

// Size returns the pixel length of the range.
func (b Bounds) Size() float64 {
	return b.High - b.Low
}

// Valid reports whether Low <= High.
func (b Bounds) Valid() bool {
	return b.Low <= b.High
}

// Anchored reports whether both ends are tied to elements.
func (b Bounds) Anchored() bool {
	return b.LowElement != nil && b.HighElement != nil
}

// Contains reports whether offset lies within [Low, High].
func (b Bounds) Contains(offset float64) bool {
	return offset >= b.Low && offset <= b.High
}

// Overlaps reports whether the two ranges intersect or touch.
func (b Bounds) Overlaps(other Bounds) bool {
	low, high := b, other
	if other.Low < b.Low {
		low, high = other, b
	}
	return low.High >= high.Low
}

// Merge returns the union of the two ranges. The ranges must overlap or be
// adjacent.
func (b Bounds) Merge(other Bounds) (Bounds, error) {
	if !b.Overlaps(other) {
		return Bounds{}, fmt.Errorf("%w: [%g, %g] and [%g, %g]", ErrDisjointBounds, b.Low, b.High, other.Low, other.High)
	}
	result := b
	if other.Low < b.Low || (other.Low == b.Low && b.LowElement == nil) {
		result.Low, result.LowElement = other.Low, other.LowElement
	}
	if other.High > b.High || (other.High == b.High && b.HighElement == nil) {
		result.High, result.HighElement = other.High, other.HighElement
	}
	return result, nil
}

// Minus returns the parts of b not covered by other.
//
//	b:      -----------
//	other:    ------
//	result: --      ---
//
// Remaining pieces are anchored to the siblings just outside other when
// other is anchored.
func (b Bounds) Minus(children Children, other Bounds) []Bounds {
	var result []Bounds
	if b.Low < other.Low {
		piece := Bounds{Low: b.Low, High: min(other.Low, b.High), LowElement: b.LowElement}
		if other.LowElement != nil && children != nil {
			piece.HighElement = Previous(children, other.LowElement)
		}
		result = append(result, piece)
	}
	if b.High > other.High {
		piece := Bounds{Low: max(other.High, b.Low), High: b.High, HighElement: b.HighElement}
		if other.HighElement != nil && children != nil {
			piece.LowElement = Next(children, other.HighElement)
		}
		result = append(result, piece)
	}
	return result
}

// SameEnds reports whether both bounds are anchored to the same elements.
func (b Bounds) SameEnds(other Bounds) bool {
	return sameElement(b.LowElement, other.LowElement) && sameElement(b.HighElement, other.HighElement)
}

// Elements iterates from LowElement to HighElement following the sibling
// order. The walk always terminates: it stops at HighElement or at the end of
// the chain, whichever comes first. Use Walk to learn whether HighElement was
// actually reached.
func (b Bounds) Elements(children Children) iter.Seq[Element] {
	return func(yield func(Element) bool) {
		b.walk(children, yield)
	}
}

// Walk calls fn for every element of the bounds and reports
// ErrUnreachableBound when the chain ended before HighElement.
func (b Bounds) Walk(children Children, fn func(Element)) error {
	reached := b.walk(children, func(e Element) bool {
		fn(e)
		return true
	})
	if !reached && b.LowElement != nil {
		return ErrUnreachableBound
	}
	return nil
}

// walk reports whether HighElement was reached.
func (b Bounds) walk(children Children, yield func(Element) bool) bool {
	if b.LowElement == nil || children == nil {
		return false
	}
	start := children.IndexOf(b.LowElement)
	if start < 0 {
		return false
	}
	for i := start; i < children.Len(); i++ {
		e := children.At(i)
		if !yield(e) {
			return sameElement(e, b.HighElement)
		}
		if sameElement(e, b.HighElement) {
			return true
		}
	}
	return false
}

// ElementSet returns the IDs of all elements within the bounds.
func (b Bounds) ElementSet(children Children) *VisibilityState {
	set := NewVisibilityState()
	for e := range b.Elements(children) {
		set.Add(e)
	}
	return set
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%g, %g]", b.Low, b.High)
}

func sameElement(a, b Element) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}
