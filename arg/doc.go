// Package arg maintains an Ancestral Recombination Graph as an ordered
// sequence of local-tree blocks spanning a half-open genomic interval
// [Start,End): each block carries a tree, the SPR that produced it from
// its predecessor, the node permutation between the two arenas, and the
// block's width in sites.
//
// Invariants (enforced by Validate, relied on everywhere):
//
//   - The first block has a null SPR and a nil mapping.
//   - On a null edge the mapping is a topology-preserving bijection; on
//     a non-null edge the mapping sends every node of the previous tree
//     to its continuation except the node broken by the SPR, and the
//     recoal node joins the mapped coal partner.
//   - Block widths sum to End-Start.
//
// Surgery:
//
//   - Partition splits a sequence at a position, cloning the straddling
//     tree so the two halves share no storage.
//   - Append concatenates two sequences, recomputing the suture mapping
//     with tree.MapCongruent and dissolving the redundant null edge.
//   - RemoveNullSPRs coalesces blocks whose connecting SPR is identity.
//
// Statistics:
//
//	Prior, TotalLength and CountRecombs provide the coalescent
//	log-prior, total branch length ("arglen") and recombination count
//	the sampling loop reports each iteration. SamplePrior draws an
//	initial single-block ARG from the discretized coalescent.
package arg
