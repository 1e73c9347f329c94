package model

import (
	"errors"
)

// Sentinel errors for model construction.
var (
	// ErrPopsizeMismatch indicates a popsize vector whose length differs from ntimes.
	ErrPopsizeMismatch = errors.New("model: popsize count does not match ntimes")

	// ErrBadRate indicates a negative mutation or recombination rate.
	ErrBadRate = errors.New("model: rates must be non-negative")

	// ErrNoGrid indicates a model built without a time grid.
	ErrNoGrid = errors.New("model: a time grid is required")
)

// Model holds the time discretization scheme and the parameters of the
// sequentially Markov coalescent: per-interval haploid effective
// population sizes, per-generation-per-site mutation and recombination
// rates, the infinite-sites log penalty, phasing flags, and optional
// position-indexed rate tracks.
//
// A Model is immutable after New. LocalModel views alias the grid and
// popsize storage rather than copying it.
type Model struct {
	Grid     *TimeGrid
	Popsizes []float64

	Mu  float64 // mutations / generation / site
	Rho float64 // recombinations / generation / site

	// InfSitesPenalty is the log-scale penalty added per column that
	// would require more than one mutation, when infinite sites is on.
	InfSitesPenalty float64
	InfSites        bool

	Unphased    bool
	SamplePhase int

	MutMap    *RateMap
	RecombMap *RateMap
}

// Option configures a Model before validation.
type Option func(*Model)

// WithPopsizes sets per-interval haploid population sizes (length must
// equal the grid's ntimes).
func WithPopsizes(popsizes []float64) Option {
	return func(m *Model) {
		m.Popsizes = append([]float64(nil), popsizes...)
	}
}

// WithInfSites enables the infinite-sites penalty at the given log scale.
func WithInfSites(penalty float64) Option {
	return func(m *Model) {
		m.InfSites = true
		m.InfSitesPenalty = penalty
	}
}

// WithUnphased marks the input data as unphased; SamplePhase selects the
// phase-sampling period (0 disables phase sampling).
func WithUnphased(samplePhase int) Option {
	return func(m *Model) {
		m.Unphased = true
		m.SamplePhase = samplePhase
	}
}

// WithMutMap attaches a position-indexed mutation-rate track.
func WithMutMap(t *RateMap) Option {
	return func(m *Model) { m.MutMap = t }
}

// WithRecombMap attaches a position-indexed recombination-rate track.
func WithRecombMap(t *RateMap) Option {
	return func(m *Model) { m.RecombMap = t }
}

// New builds a Model over grid with a constant population size and the
// given scalar rates, then applies opts and validates.
// Complexity: O(K)
func New(grid *TimeGrid, popsize, mu, rho float64, opts ...Option) (*Model, error) {
	if grid == nil {
		return nil, ErrNoGrid
	}
	m := &Model{
		Grid: grid,
		Mu:   mu,
		Rho:  rho,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.Popsizes == nil {
		m.Popsizes = make([]float64, grid.NumTimes())
		for i := range m.Popsizes {
			m.Popsizes[i] = popsize
		}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) validate() error {
	if len(m.Popsizes) != m.Grid.NumTimes() {
		return ErrPopsizeMismatch
	}
	if m.Mu < 0 || m.Rho < 0 {
		return ErrBadRate
	}
	return nil
}

// NumTimes returns the number of time points K.
func (m *Model) NumTimes() int { return m.Grid.NumTimes() }

// LocalModel returns a view of m with Mu and Rho overridden from the
// rate tracks at pos. The view shares the grid and popsize storage.
// Complexity: O(log n) in the track sizes.
func (m *Model) LocalModel(pos int) Model {
	local := *m
	local.Mu = m.MutMap.Find(pos, m.Mu)
	local.Rho = m.RecombMap.Find(pos, m.Rho)
	return local
}

// LocalRho returns the recombination rate at pos.
func (m *Model) LocalRho(pos int) float64 {
	return m.RecombMap.Find(pos, m.Rho)
}

// LocalMu returns the mutation rate at pos.
func (m *Model) LocalMu(pos int) float64 {
	return m.MutMap.Find(pos, m.Mu)
}

// MinTime returns a dummy age below the first non-zero time point, used
// when a detached lineage needs a strictly positive placeholder height.
func (m *Model) MinTime() float64 {
	return m.Grid.Times[1] * 0.1
}
