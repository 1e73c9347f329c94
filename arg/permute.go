package arg

import (
	"fmt"

	"github.com/skfile/argweaver/tree"
)

// PermuteLeaves renumbers every arena in the sequence so that leaf i
// carries want[i], which must be a permutation of the current id table.
// Internal indices are untouched; SPRs and mappings are relabeled in
// place. Used to restore the original leaf order after a lineage is
// removed and re-threaded.
// Complexity: O(#blocks · n)
func (lt *LocalTrees) PermuteLeaves(want []int) error {
	n := lt.NumLeaves()
	if len(want) != n {
		return ErrSeqIDMismatch
	}

	perm := make([]int, lt.NumNodes())
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n; i++ {
		target := -1
		for j := 0; j < n; j++ {
			if want[j] == lt.SeqIDs[i] {
				target = j
				break
			}
		}
		if target < 0 {
			return fmt.Errorf("seqid %d not in target table: %w", lt.SeqIDs[i], ErrSeqIDMismatch)
		}
		perm[i] = target
	}

	relabel := func(x int) int {
		if x == tree.NoNode {
			return tree.NoNode
		}
		return perm[x]
	}

	for _, b := range lt.Blocks {
		old := b.Tree.Nodes
		nodes := make([]tree.Node, len(old))
		for i := range old {
			nodes[perm[i]] = tree.Node{
				Parent:   relabel(old[i].Parent),
				Children: [2]int{relabel(old[i].Children[0]), relabel(old[i].Children[1])},
				Age:      old[i].Age,
			}
		}
		b.Tree.Nodes = nodes
		b.Tree.SetRoot()

		if !b.Spr.IsNull() {
			b.Spr.RecombNode = perm[b.Spr.RecombNode]
			b.Spr.CoalNode = perm[b.Spr.CoalNode]
		}
		if b.Mapping != nil {
			remapped := make([]int, len(b.Mapping))
			for i, m := range b.Mapping {
				remapped[perm[i]] = relabel(m)
			}
			b.Mapping = remapped
		}
	}

	lt.SeqIDs = append(lt.SeqIDs[:0], want...)
	return nil
}
