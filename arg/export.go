package arg

import "github.com/skfile/argweaver/tree"

// Export is the canonical flat rendering of a block sequence: per-block
// parent and age vectors plus the connecting SPRs, with node labels
// permuted so each leaf carries its external sequence id. Serializers
// and bindings consume this one exporter.
type Export struct {
	Parents [][]int
	Ages    [][]int
	Sprs    []tree.Spr
	Lens    []int
}

// Export flattens the sequence. Leaf j of every tree is relabeled to
// SeqIDs[j]; internal labels are the arena indices.
// Complexity: O(#blocks · n)
func (lt *LocalTrees) Export() *Export {
	nnodes := lt.NumNodes()
	nleaves := lt.NumLeaves()

	perm := make([]int, nnodes)
	for i := 0; i < nleaves; i++ {
		perm[i] = lt.SeqIDs[i]
	}
	for i := nleaves; i < nnodes; i++ {
		perm[i] = i
	}

	out := &Export{
		Parents: make([][]int, len(lt.Blocks)),
		Ages:    make([][]int, len(lt.Blocks)),
		Sprs:    make([]tree.Spr, len(lt.Blocks)),
		Lens:    make([]int, len(lt.Blocks)),
	}
	for i, b := range lt.Blocks {
		parents := make([]int, nnodes)
		ages := make([]int, nnodes)
		for j := range b.Tree.Nodes {
			p := b.Tree.Nodes[j].Parent
			if p != tree.NoNode {
				p = perm[p]
			}
			parents[perm[j]] = p
			ages[perm[j]] = b.Tree.Nodes[j].Age
		}
		out.Parents[i] = parents
		out.Ages[i] = ages
		out.Lens[i] = b.Len

		if !b.Spr.IsNull() {
			out.Sprs[i] = tree.Spr{
				RecombNode: perm[b.Spr.RecombNode],
				RecombTime: b.Spr.RecombTime,
				CoalNode:   perm[b.Spr.CoalNode],
				CoalTime:   b.Spr.CoalTime,
			}
		} else {
			out.Sprs[i] = tree.NullSpr()
		}
	}
	return out
}
