package model

import (
	"errors"
	"math"
)

// Sentinel errors for grid construction.
var (
	// ErrNoTimes indicates a grid was requested with fewer than two time points.
	ErrNoTimes = errors.New("model: at least two time points required")

	// ErrTimesNotSorted indicates time points that do not strictly increase from zero.
	ErrTimesNotSorted = errors.New("model: time points must start at 0 and strictly increase")
)

// DefaultDelta is the log-spacing density used when discretizing time.
// Larger values pack more of the grid near the present; as delta
// approaches 0 the spacing becomes linear.
const DefaultDelta = 0.01

// TimeGrid is a discretization of continuous time (in generations) into
// K points. Times[0] is always 0. Steps[i] = Times[i+1]-Times[i] with
// Steps[K-1] = +Inf, so the topmost interval is unbounded. CoalSteps is
// the 2K half-step grid: CoalSteps[2i] spans from Times[i] up to the
// coalescent midpoint of interval i, CoalSteps[2i+1] from the midpoint
// up to Times[i+1]. The midpoints sit either linearly between time
// points or on the same log spacing as the grid itself.
type TimeGrid struct {
	Times     []float64
	Steps     []float64
	CoalSteps []float64
}

// TimePoint returns the i-th log-spaced discretization point for a grid
// of n intervals reaching maxTime, with spacing density delta.
// Complexity: O(1)
func TimePoint(i, n int, maxTime, delta float64) float64 {
	return (math.Exp(float64(i)/float64(n)*math.Log(1.0+delta*maxTime)) - 1) / delta
}

// NewLogTimeGrid builds a K-point grid log-spaced from 0 to maxTime.
// Complexity: O(K)
func NewLogTimeGrid(ntimes int, maxTime, delta float64) (*TimeGrid, error) {
	if ntimes < 2 {
		return nil, ErrNoTimes
	}
	if delta <= 0 {
		delta = DefaultDelta
	}
	times := make([]float64, ntimes)
	for i := range times {
		times[i] = TimePoint(i, ntimes-1, maxTime, delta)
	}
	return newTimeGrid(times, false, delta)
}

// NewLinearTimeGrid builds a K-point grid with uniform spacing step.
// Coalescent midpoints are placed halfway between time points.
// Complexity: O(K)
func NewLinearTimeGrid(ntimes int, step float64) (*TimeGrid, error) {
	if ntimes < 2 {
		return nil, ErrNoTimes
	}
	times := make([]float64, ntimes)
	for i := range times {
		times[i] = float64(i) * step
	}
	return newTimeGrid(times, true, 0)
}

// NewTimeGrid builds a grid from explicit time points, which must start
// at 0 and strictly increase. Midpoints are placed linearly.
// Complexity: O(K)
func NewTimeGrid(times []float64) (*TimeGrid, error) {
	own := make([]float64, len(times))
	copy(own, times)
	return newTimeGrid(own, true, 0)
}

func newTimeGrid(times []float64, linear bool, delta float64) (*TimeGrid, error) {
	k := len(times)
	if k < 2 {
		return nil, ErrNoTimes
	}
	if times[0] != 0 {
		return nil, ErrTimesNotSorted
	}
	for i := 1; i < k; i++ {
		if times[i] <= times[i-1] {
			return nil, ErrTimesNotSorted
		}
	}

	steps := make([]float64, k)
	for i := 0; i < k-1; i++ {
		steps[i] = times[i+1] - times[i]
	}
	steps[k-1] = math.Inf(1)

	return &TimeGrid{
		Times:     times,
		Steps:     steps,
		CoalSteps: coalSteps(times, linear, delta),
	}, nil
}

// coalSteps builds the half-step widths around each interval midpoint.
// The two widths of the unbounded top interval are +Inf.
func coalSteps(times []float64, linear bool, delta float64) []float64 {
	k := len(times)
	cs := make([]float64, 2*k)
	for i := 0; i < k-1; i++ {
		mid := midpoint(times[i], times[i+1], linear, delta)
		cs[2*i] = mid - times[i]
		cs[2*i+1] = times[i+1] - mid
	}
	cs[2*k-2] = math.Inf(1)
	cs[2*k-1] = math.Inf(1)
	return cs
}

// midpoint places the coalescent midpoint of [lo,hi]: halfway when
// linear, on the grid's own log spacing otherwise.
func midpoint(lo, hi float64, linear bool, delta float64) float64 {
	if linear || delta <= 0 {
		return (lo + hi) / 2
	}
	return (math.Sqrt((1+delta*lo)*(1+delta*hi)) - 1) / delta
}

// NumTimes returns K, the number of time points.
func (g *TimeGrid) NumTimes() int { return len(g.Times) }

// Delta returns Times[i+1]-Times[i]; the top interval is +Inf.
func (g *TimeGrid) Delta(i int) float64 { return g.Steps[i] }
