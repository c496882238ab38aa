package virtual

// Bias chooses the element returned when an offset is not strictly inside a
// single element.
type Bias int

const (
	// BiasLow attributes shared edges to the element starting there
	// (extents are [top, bottom)) and resolves gaps to the lower element.
	BiasLow Bias = iota
	// BiasHigh attributes shared edges to the element ending there
	// (extents are (top, bottom]) and resolves gaps to the higher element.
	BiasHigh
)

func (b Bias) String() string {
	if b == BiasHigh {
		return "high"
	}
	return "low"
}

// LocateIndex binary searches children, assumed sorted by increasing offset,
// for the element covering offset. It reads at most O(log n) rects.
func LocateIndex(children Children, offset float64, bias Bias) (int, error) {
	n := children.Len()
	if n == 0 {
		return -1, ErrEmptySequence
	}
	if n == 1 {
		return 0, nil
	}

	low, high := 0, n-1
	for low <= high {
		mid := low + (high-low)/2
		r := children.At(mid).Rect()
		switch {
		case below(r, offset, bias):
			low = mid + 1
		case above(r, offset, bias):
			high = mid - 1
		default:
			return mid, nil
		}
	}

	// No rect contains offset. high is now the last element before it and
	// low the first element after it.
	index := low
	if bias == BiasLow {
		index = high
	}
	return min(max(index, 0), n-1), nil
}

// Locate is LocateIndex returning the element itself.
func Locate(children Children, offset float64, bias Bias) (Element, error) {
	i, err := LocateIndex(children, offset, bias)
	if err != nil {
		return nil, err
	}
	return children.At(i), nil
}

// below reports whether the rect lies entirely before offset.
func below(r Rect, offset float64, bias Bias) bool {
	if bias == BiasLow {
		return r.Bottom <= offset
	}
	return r.Bottom < offset
}

// above reports whether the rect lies entirely after offset.
func above(r Rect, offset float64, bias Bias) bool {
	if bias == BiasLow {
		return r.Top > offset
	}
	return r.Top >= offset
}
