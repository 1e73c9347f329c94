// Package smc serializes block sequences to the line-oriented SMC text
// format and parses them back.
//
// A file holds NAMES and REGION headers followed by per-block records:
//
//	TREE <start> <end> <newick>
//	SPR <position> <recomb_node> <recomb_time> <coal_node> <coal_time>
//
// Coordinates are 1-based inclusive in the file. Newick labels are the
// canonical exported node labels (leaves carry their sequence id,
// internal nodes their arena index); branch lengths are in generations,
// so node ages are recovered by accumulating heights from the leaves
// and snapping to the model's time grid. An SPR record names nodes of
// the tree immediately preceding it and sits at the last position of
// that tree's block.
//
// Writing goes through the one canonical exporter (arg.Export); parsing
// rebuilds the node mappings from each SPR and validates the whole
// sequence before returning it.
package smc
