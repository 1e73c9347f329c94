// Package thread performs ARG surgery around one lineage: realizing a
// sampled threading path as local trees and SPR operations (Add), and
// stripping an existing lineage back out (Remove).
//
// Adding a thread grows every arena by two nodes — the thread's leaf
// takes the next leaf index and the new coalescence node the last slot;
// old internal nodes shift up by one so leaves stay contiguous. Within
// a block, a path change becomes a thread-side SPR applied to a copy of
// the augmented tree: the thread's attachment node is always the broken
// node, so base-node labels stay stable across every split. At block
// seams the base SPR is re-expressed on the augmented arenas, with the
// attachment node standing in for whichever branch segment it absorbed.
//
// Removing a thread deletes the leaf and its attachment node from every
// tree, composes the strip renumberings into the block mappings, and
// re-derives each connecting SPR from the surviving structure; edges
// whose recombination lived on the removed lineage dissolve into null
// edges and are coalesced away.
package thread
