package virtual

// Direction selects the end of a bounds that grows or shrinks.
type Direction int

const (
	// Up moves the low end (towards smaller offsets).
	Up Direction = iota
	// Down moves the high end (towards larger offsets).
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// WindowCalculator derives runs of elements covering pixel ranges. Growth uses
// estimated sizes so that hidden elements never need to be laid out; the
// manager corrects any error on the next tick.
type WindowCalculator struct {
	sizes *SizeEstimator
}

// NewWindowCalculator returns a calculator estimating with sizes.
func NewWindowCalculator(sizes *SizeEstimator) *WindowCalculator {
	return &WindowCalculator{sizes: sizes}
}

// DesiredBounds expands viewport by bufferFraction of its height on each side
// and clamps the result to [0, contentHeight].
func DesiredBounds(viewport Bounds, bufferFraction, contentHeight float64) Bounds {
	buffer := viewport.Size() * bufferFraction
	low := max(viewport.Low-buffer, 0)
	high := min(viewport.High+buffer, contentHeight)
	if high < low {
		high = low
	}
	return Bounds{Low: low, High: high}
}

// BoundsForRange returns the minimal run of children covering [low, high].
func (w *WindowCalculator) BoundsForRange(children Children, low, high float64) (Bounds, error) {
	lowIndex, err := LocateIndex(children, low, BiasLow)
	if err != nil {
		return Bounds{}, err
	}
	highIndex, err := LocateIndex(children, high, BiasHigh)
	if err != nil {
		return Bounds{}, err
	}
	// An empty range sitting on a shared edge resolves to two neighbours in
	// reverse order.
	if highIndex < lowIndex {
		highIndex = lowIndex
	}
	return ElementBounds(children.At(lowIndex), children.At(highIndex)), nil
}

// Seed returns single-element bounds for the element covering offset. The high
// edge is estimated rather than measured.
func (w *WindowCalculator) Seed(children Children, offset float64) (Bounds, error) {
	e, err := Locate(children, offset, BiasLow)
	if err != nil {
		return Bounds{}, err
	}
	top := e.Rect().Top
	return Bounds{Low: top, High: top + w.sizes.Estimate(e), LowElement: e, HighElement: e}, nil
}

// GrowBounds extends current towards target one sibling at a time, adding the
// estimated size of each sibling, until the target edge is covered or the end
// of the chain is reached.
func (w *WindowCalculator) GrowBounds(children Children, current, target Bounds, dir Direction) Bounds {
	switch dir {
	case Up:
		e, low := current.LowElement, current.Low
		for e != nil && low > target.Low {
			prev := Previous(children, e)
			if prev == nil {
				break
			}
			e = prev
			low -= w.sizes.Estimate(e)
		}
		current.Low, current.LowElement = low, e
	case Down:
		e, high := current.HighElement, current.High
		for e != nil && high < target.High {
			next := Next(children, e)
			if next == nil {
				break
			}
			e = next
			high += w.sizes.Estimate(e)
		}
		current.High, current.HighElement = high, e
	}
	return current
}

// ShrinkBounds trims elements lying entirely outside target from one end of
// current, stopping at the first element that is still at least partially
// inside. The opposite end is never trimmed.
func (w *WindowCalculator) ShrinkBounds(children Children, current, target Bounds, dir Direction) Bounds {
	if !current.Anchored() {
		return current
	}
	switch dir {
	case Up:
		e := current.LowElement
		r := e.Rect()
		for !sameElement(e, current.HighElement) && r.Bottom <= target.Low {
			next := Next(children, e)
			if next == nil {
				break
			}
			e, r = next, next.Rect()
		}
		current.Low, current.LowElement = r.Top, e
	case Down:
		e := current.HighElement
		r := e.Rect()
		for !sameElement(e, current.LowElement) && r.Top >= target.High {
			prev := Previous(children, e)
			if prev == nil {
				break
			}
			e, r = prev, prev.Rect()
		}
		current.High, current.HighElement = r.Bottom, e
	}
	return current
}

// intersects reports whether the two ranges share more than an edge.
func intersects(a, b Bounds) bool {
	return a.Low < b.High && b.Low < a.High
}
