// Package sites reads and writes the line-oriented sites format and
// serves aligned columns to the threading HMM.
//
// A sites file holds a NAMES header naming the sequences, a REGION
// header fixing the chromosome and the 1-based inclusive coordinate
// range, and one data row per variant position: the position and a
// column string over {A,C,G,T,N} (or {0,1} for unphased data), one
// character per named sequence, strictly increasing in position.
//
// Internally coordinates are 0-based half-open, matching the block
// sequences; positions without a data row are invariant and served as
// a uniform background base, so emission probabilities stay exact under
// Jukes-Cantor while the storage stays sparse. Masked regions serve 'N'
// everywhere, which the emitter treats as neutral.
//
// The TSV rate-map reader (chrom, start, end, rate; half-open,
// disjoint, sorted) also lives here, feeding model.RateMap.
package sites
