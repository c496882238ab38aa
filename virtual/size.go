package virtual

import "fmt"

// DefaultHeightEstimate is the size guessed for elements before anything has
// been measured.
const DefaultHeightEstimate = 100

type sizeRecord struct {
	height   float64
	valid    bool
	measured bool
	snapshot float64
	frozen   bool
}

// SizeEstimator tracks measured element heights and a running average used to
// guess the heights of elements that were never measured.
//
// TotalMeasured and MeasuredCount are maintained incrementally on every
// insert, update and delete.
type SizeEstimator struct {
	records       map[ElementID]*sizeRecord
	totalMeasured float64
	measuredCount int
	defaultHeight float64

	// rendered reports whether an element can be measured.
	rendered func(Element) bool
}

// NewSizeEstimator returns an estimator that falls back to defaultHeight and
// refuses to measure elements for which rendered returns false. A nil rendered
// accepts every element.
func NewSizeEstimator(defaultHeight float64, rendered func(Element) bool) *SizeEstimator {
	if defaultHeight <= 0 {
		defaultHeight = DefaultHeightEstimate
	}
	return &SizeEstimator{
		records:       make(map[ElementID]*sizeRecord),
		defaultHeight: defaultHeight,
		rendered:      rendered,
	}
}

// Measure reads the current height of e and records it.
func (s *SizeEstimator) Measure(e Element) error {
	if s.rendered != nil && !s.rendered(e) {
		return fmt.Errorf("%w: measure element %d", ErrInvalidState, e.ID())
	}
	height := e.Rect().Height()
	rec, ok := s.records[e.ID()]
	if !ok {
		rec = &sizeRecord{}
		s.records[e.ID()] = rec
	}
	if rec.measured {
		s.totalMeasured += height - rec.height
	} else {
		s.totalMeasured += height
		s.measuredCount++
		rec.measured = true
	}
	rec.height = height
	rec.valid = true
	rec.frozen = false
	return nil
}

// EnsureValid measures e unless a valid measurement is already recorded.
func (s *SizeEstimator) EnsureValid(e Element) error {
	if rec, ok := s.records[e.ID()]; ok && rec.valid {
		return nil
	}
	return s.Measure(e)
}

// Estimate returns the last measured height of e if known, otherwise the
// running average.
func (s *SizeEstimator) Estimate(e Element) float64 {
	if rec, ok := s.records[e.ID()]; ok && rec.measured {
		return rec.height
	}
	return s.Average()
}

// Average returns the mean of all measured heights, or the default estimate if
// nothing was measured yet.
func (s *SizeEstimator) Average() float64 {
	if s.measuredCount == 0 {
		return s.defaultHeight
	}
	return s.totalMeasured / float64(s.measuredCount)
}

// Invalidate marks the recorded height of e as stale. The stale value is still
// used as the estimate until e is measured again.
func (s *SizeEstimator) Invalidate(e Element) {
	if rec, ok := s.records[e.ID()]; ok {
		rec.valid = false
	}
}

// RecordSnapshot freezes the placeholder size handed to the hider when e was
// hidden.
func (s *SizeEstimator) RecordSnapshot(e Element, size float64) {
	rec, ok := s.records[e.ID()]
	if !ok {
		rec = &sizeRecord{}
		s.records[e.ID()] = rec
	}
	rec.snapshot = size
	rec.frozen = true
}

// Snapshot returns the placeholder size recorded when e was last hidden.
func (s *SizeEstimator) Snapshot(e Element) (float64, bool) {
	rec, ok := s.records[e.ID()]
	if !ok || !rec.frozen {
		return 0, false
	}
	return rec.snapshot, true
}

// Remove discards all bookkeeping for e.
func (s *SizeEstimator) Remove(e Element) {
	s.RemoveID(e.ID())
}

// RemoveID discards all bookkeeping for the element with the given id.
func (s *SizeEstimator) RemoveID(id ElementID) {
	rec, ok := s.records[id]
	if !ok {
		return
	}
	if rec.measured {
		s.totalMeasured -= rec.height
		s.measuredCount--
	}
	delete(s.records, id)
}

// Has reports whether any record exists for e.
func (s *SizeEstimator) Has(e Element) bool {
	_, ok := s.records[e.ID()]
	return ok
}

// Valid reports whether e has a current measurement.
func (s *SizeEstimator) Valid(e Element) bool {
	rec, ok := s.records[e.ID()]
	return ok && rec.valid
}

// Len returns the number of records.
func (s *SizeEstimator) Len() int {
	return len(s.records)
}

// TotalMeasured returns the sum of all measured heights.
func (s *SizeEstimator) TotalMeasured() float64 {
	return s.totalMeasured
}

// MeasuredCount returns the number of measured elements.
func (s *SizeEstimator) MeasuredCount() int {
	return s.measuredCount
}
