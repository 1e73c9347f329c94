package model

import (
	"errors"
	"sort"
)

// Sentinel errors for rate maps.
var (
	// ErrMapOverlap indicates intervals that overlap or are not sorted by start.
	ErrMapOverlap = errors.New("model: rate map intervals must be sorted and disjoint")

	// ErrMapBounds indicates an interval with end <= start.
	ErrMapBounds = errors.New("model: rate map interval end must exceed start")
)

// RateInterval is one half-open region [Start,End) carrying a rate.
type RateInterval struct {
	Start int
	End   int
	Value float64
}

// RateMap is an ordered sequence of disjoint half-open intervals mapping
// chromosome positions to rates (a mutation-rate or recombination-rate
// track). The zero value is an empty map: Find always returns the default.
type RateMap struct {
	ivals []RateInterval
}

// NewRateMap validates and adopts the given intervals, which must be
// sorted by Start and pairwise disjoint.
// Complexity: O(n)
func NewRateMap(ivals []RateInterval) (*RateMap, error) {
	for i, iv := range ivals {
		if iv.End <= iv.Start {
			return nil, ErrMapBounds
		}
		if i > 0 && iv.Start < ivals[i-1].End {
			return nil, ErrMapOverlap
		}
	}
	own := make([]RateInterval, len(ivals))
	copy(own, ivals)
	return &RateMap{ivals: own}, nil
}

// Len returns the number of intervals in the map.
func (m *RateMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.ivals)
}

// Find returns the rate at pos, or def when pos is uncovered.
// Complexity: O(log n)
func (m *RateMap) Find(pos int, def float64) float64 {
	if m == nil || len(m.ivals) == 0 {
		return def
	}
	// first interval with End > pos
	i := sort.Search(len(m.ivals), func(i int) bool { return m.ivals[i].End > pos })
	if i < len(m.ivals) && m.ivals[i].Start <= pos {
		return m.ivals[i].Value
	}
	return def
}

// Intervals returns the underlying intervals, in order. The slice must
// not be mutated.
func (m *RateMap) Intervals() []RateInterval {
	if m == nil {
		return nil
	}
	return m.ivals
}
