package virtual

import (
	"errors"
	"testing"
)

// newLaidOut returns a host with revealed elements of the given heights.
func newLaidOut(heights ...float64) *fakeHost {
	h := newFakeHost(500)
	h.addHeights(heights)
	return h
}

func TestLocateIndex(t *testing.T) {
	// [0,50) [50,100) [100,150) [150,200)
	host := newLaidOut(50, 50, 50, 50)
	children := host.Children()

	tests := []struct {
		name   string
		offset float64
		bias   Bias
		want   int
	}{
		{"inside low", 75, BiasLow, 1},
		{"inside high", 75, BiasHigh, 1},
		{"shared edge low", 100, BiasLow, 2},
		{"shared edge high", 100, BiasHigh, 1},
		{"start low", 0, BiasLow, 0},
		{"start high", 0, BiasHigh, 0},
		{"end low", 200, BiasLow, 3},
		{"end high", 200, BiasHigh, 3},
		{"before first", -30, BiasLow, 0},
		{"before first high", -30, BiasHigh, 0},
		{"past last", 900, BiasLow, 3},
		{"past last high", 900, BiasHigh, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocateIndex(children, tt.offset, tt.bias)
			if err != nil {
				t.Fatalf("LocateIndex failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("LocateIndex(%g, %v) = %d, want %d", tt.offset, tt.bias, got, tt.want)
			}
		})
	}
}

func TestLocateZeroHeight(t *testing.T) {
	// [0,50) [50,50) [50,100): the empty element never owns an offset.
	host := newLaidOut(50, 50, 50)
	host.placeholder[1] = 0
	children := host.Children()

	low, err := LocateIndex(children, 50, BiasLow)
	if err != nil {
		t.Fatalf("LocateIndex failed: %v", err)
	}
	high, err := LocateIndex(children, 50, BiasHigh)
	if err != nil {
		t.Fatalf("LocateIndex failed: %v", err)
	}
	if low != 2 {
		t.Errorf("Expected the low bias to pick the element starting at 50, got %d", low)
	}
	if high != 0 {
		t.Errorf("Expected the high bias to pick the element ending at 50, got %d", high)
	}
}

func TestLocateEmpty(t *testing.T) {
	host := newFakeHost(500)
	if _, err := Locate(host.Children(), 10, BiasLow); !errors.Is(err, ErrEmptySequence) {
		t.Errorf("Expected ErrEmptySequence, got %v", err)
	}
}

func TestLocateSingle(t *testing.T) {
	host := newLaidOut(50)
	for _, offset := range []float64{-10, 0, 25, 50, 1000} {
		e, err := Locate(host.Children(), offset, BiasHigh)
		if err != nil {
			t.Fatalf("Locate failed: %v", err)
		}
		if e.ID() != 0 {
			t.Errorf("Locate(%g) = %d, want 0", offset, e.ID())
		}
	}
}

// TestLocateReadsLogarithmically bounds the rect reads of a search.
func TestLocateReadsLogarithmically(t *testing.T) {
	host := newFakeHost(500)
	host.add(1024, 10)
	host.rectReads = 0

	if _, err := Locate(host.Children(), 5555, BiasLow); err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if host.rectReads > 11 {
		t.Errorf("Expected at most 11 rect reads, got %d", host.rectReads)
	}
}
