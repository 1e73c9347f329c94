// Package resample drives the Gibbs step of ARG sampling: choose a
// lineage and a genomic region, strip the lineage out of the local
// trees there, and re-thread it with the HMM sampler.
//
// A Resampler owns nothing but its configuration; each Step takes a
// block sequence and returns a new one, leaving the input intact. The
// whole mutation sequence (split → remove leaf → re-thread → apply
// SPRs → remove null SPRs) is atomic from the caller's viewpoint: on
// any recoverable failure (an all-zero forward column under infinite
// sites) the input sequence is returned unchanged along with the error,
// and the caller may retry with a different window.
//
// Run iterates Steps over all lineages round-robin, streaming the
// per-iteration statistics line (iter, joint, likelihood, prior,
// recombs, arglen) as TSV and through the configured logger.
//
// Concurrency: a Resampler and the sequences it reads are safe to share
// across chains only because Step never mutates them; each chain must
// own its block sequence and RNG.
package resample
