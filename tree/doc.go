// Package tree implements the local coalescent tree: a single binary
// genealogy over n leaves whose node ages index a discretized time grid,
// together with the Subtree-Prune-Regraft (SPR) operation that carries
// one local tree into the next along the genome.
//
// Representation:
//
//   - A LocalTree is an index-based arena: a fixed-length slice of node
//     records whose Parent and Children fields hold node indices or the
//     NoNode sentinel. The tree owns its records exclusively; cloning is
//     O(n) and shares nothing.
//   - Leaves occupy indices 0..n-1 and carry no sequence identity of
//     their own — the owning block sequence maps leaf index to sequence
//     id, so trees stay id-free and swappable.
//   - Ages are integer indices into a time grid of K points. No node may
//     sit at the top point K-1; a parent is never younger than a child
//     (it may share the child's age).
//
// Operations:
//
//   - ApplySPR performs the regraft in place, reusing the broken node as
//     the new recoalescence node (including the edge case of
//     recoalescing onto the branch that was just broken).
//   - CountLineages sweeps every branch across the time intervals it
//     spans and reports per-interval branch, recombination-point and
//     coalescing-point counts — the raw material of the transition
//     matrices.
//   - Length computes tree length under the threading-HMM rules
//     (optionally including the basal stub above the root).
//   - MapCongruent reconciles two topologically compatible trees into a
//     node-to-node mapping by leaf identity and postorder LCA.
//
// Errors:
//
//	Validation helpers return ErrInvariant-family sentinels; mutating
//	operations trust validated inputs and never allocate.
package tree
