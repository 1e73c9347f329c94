// Package model defines the demographic and mutational parameters the
// threading HMM samples under: a discretized time grid, per-interval
// effective population sizes, mutation and recombination rates, and
// optional position-indexed rate tracks.
//
// Overview:
//
//   - TimeGrid discretizes continuous time into K points t[0..K-1] with
//     t[0]=0, either log-spaced up to a maximum time or taken verbatim.
//     Derived from it are the interval widths Steps (the last one +Inf)
//     and the half-step CoalSteps grid used for coalescent midpoints.
//   - Model bundles a shared *TimeGrid and popsize vector with the
//     scalar rates mu and rho, the infinite-sites penalty, phasing
//     flags, and optional RateMap tracks for position-dependent rates.
//   - LocalModel(pos) produces a cheap view of a Model with mu and rho
//     overridden from the tracks at pos. Views alias the grid and
//     popsize storage; neither is ever copied.
//
// Concurrency:
//
//	A Model and everything it references is immutable after New returns,
//	so views and replicas may alias it freely across goroutines.
//
// Errors (sentinels):
//
//	ErrNoTimes          — grid construction with fewer than two time points.
//	ErrTimesNotSorted   — time points not strictly increasing from 0.
//	ErrPopsizeMismatch  — popsize vector length differs from ntimes.
//	ErrBadRate          — negative mu or rho.
//	ErrMapOverlap       — rate map intervals overlap or are unsorted.
//	ErrMapBounds        — rate map interval with end <= start.
package model
