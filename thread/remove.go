package thread

import (
	"fmt"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/tree"
)

// Remove strips the lineage of one sequence id out of the block
// sequence: every tree loses the leaf and its attachment node, block
// mappings absorb the renumbering, and each connecting SPR is
// re-derived from the surviving structure. Edges whose recombination
// lived on the removed lineage dissolve into null edges and are
// coalesced away. The input is not modified.
// Complexity: O(#blocks · n)
func Remove(lt *arg.LocalTrees, ntimes, seqid int) (*arg.LocalTrees, error) {
	leafIdx := -1
	for i, id := range lt.SeqIDs {
		if id == seqid {
			leafIdx = i
			break
		}
	}
	if leafIdx < 0 {
		return nil, fmt.Errorf("seqid %d: %w", seqid, ErrLeafNotFound)
	}

	seqids := make([]int, 0, len(lt.SeqIDs)-1)
	for i, id := range lt.SeqIDs {
		if i != leafIdx {
			seqids = append(seqids, id)
		}
	}
	out := arg.New(lt.Chrom, lt.Start, seqids)

	var prevOrig, prevRes *tree.LocalTree
	var prevStrip []int // previous original index -> previous residual index

	for _, b := range lt.Blocks {
		att := b.Tree.Nodes[leafIdx].Parent
		strip, residual := stripLeaf(b.Tree, leafIdx, att)

		nb := &arg.Block{Tree: residual, Spr: tree.NullSpr(), Len: b.Len}
		if prevRes != nil {
			// compose: previous residual -> previous original -> this
			// original -> this residual
			mapping := make([]int, residual.NumNodes())
			for old, sNew := range prevStrip {
				if sNew == tree.NoNode {
					continue
				}
				img := b.Mapping[old]
				if img == tree.NoNode {
					mapping[sNew] = tree.NoNode
				} else {
					mapping[sNew] = strip[img]
				}
			}
			nb.Mapping = mapping

			if b.Spr.IsNull() || b.Spr.RecombNode == leafIdx {
				// no recombination, or one that moved only the removed
				// lineage: the residual trees are identical
				nb.Spr = tree.NullSpr()
				if err := repairBijection(mapping, prevRes, residual, out.SeqIDs); err != nil {
					return nil, err
				}
			} else {
				spr, err := deriveSpr(prevOrig, residual, b.Spr, mapping, prevStrip, leafIdx)
				if err != nil {
					return nil, err
				}
				nb.Spr = spr
			}
		}

		out.Push(nb)
		prevOrig, prevRes, prevStrip = b.Tree, residual, strip
	}

	out.RemoveNullSPRs()
	if err := out.Validate(ntimes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEdge, err)
	}
	return out, nil
}

// repairBijection completes a residual null-edge mapping whose broken
// slot lost its image with the removed lineage: the two residual trees
// are congruent, so the absent image is recovered by reconciliation.
func repairBijection(mapping []int, prevRes, res *tree.LocalTree, seqids []int) error {
	missing := 0
	for _, m := range mapping {
		if m == tree.NoNode {
			missing++
		}
	}
	if missing == 0 {
		return nil
	}
	full := tree.MapCongruent(prevRes, seqids, res, seqids)
	for i, m := range mapping {
		if m == tree.NoNode {
			mapping[i] = full[i]
		}
	}
	for _, m := range mapping {
		if m == tree.NoNode {
			return fmt.Errorf("residual null edge not bijective: %w", ErrEdge)
		}
	}
	return nil
}

// stripLeaf removes leaf and its parent att from t, compacting indices
// so leaves stay contiguous. Returns the old→new index map (NoNode for
// the two removed nodes) and the residual tree.
func stripLeaf(t *tree.LocalTree, leaf, att int) ([]int, *tree.LocalTree) {
	nleaves := t.NumLeaves()
	strip := make([]int, t.NumNodes())

	next := 0
	for i := 0; i < nleaves; i++ {
		if i == leaf {
			strip[i] = tree.NoNode
			continue
		}
		strip[i] = next
		next++
	}
	for i := nleaves; i < t.NumNodes(); i++ {
		if i == att {
			strip[i] = tree.NoNode
			continue
		}
		strip[i] = next
		next++
	}

	res := tree.New(t.NumNodes() - 2)
	sib := t.Sibling(leaf)
	grand := t.Nodes[att].Parent

	for i := range t.Nodes {
		if strip[i] == tree.NoNode {
			continue
		}
		n := t.Nodes[i]
		if i == sib {
			n.Parent = grand
		}
		nn := tree.Node{Age: n.Age, Parent: tree.NoNode, Children: [2]int{tree.NoNode, tree.NoNode}}
		if n.Parent != tree.NoNode {
			nn.Parent = strip[n.Parent]
		}
		for k, c := range n.Children {
			if c == tree.NoNode {
				continue
			}
			if c == att {
				c = sib
			}
			nn.Children[k] = strip[c]
		}
		res.Nodes[strip[i]] = nn
	}
	res.SetRoot()
	return strip, res
}

// deriveSpr re-expresses a base SPR on the residual trees: the
// recombination keeps its time, sliding to the sibling's continuation
// when it sat on the removed attachment branch; the coalescence point
// is read off the surviving recoal junction.
func deriveSpr(
	prevOrig, cur *tree.LocalTree, sigma tree.Spr,
	mapping, prevStrip []int, leafIdx int,
) (tree.Spr, error) {
	rnode := prevStrip[sigma.RecombNode]
	if rnode == tree.NoNode {
		// the recombination sat on the removed attachment branch; the
		// removed leaf's sibling carries that span in the residual
		rnode = prevStrip[prevOrig.Sibling(leafIdx)]
	}

	m := mapping[rnode]
	if m == tree.NoNode {
		return tree.Spr{}, fmt.Errorf("recomb branch broken in residual: %w", ErrEdge)
	}
	recoal := cur.Nodes[m].Parent
	if recoal == tree.NoNode {
		return tree.Spr{}, fmt.Errorf("recomb branch has no residual recoal: %w", ErrEdge)
	}
	other := cur.Sibling(m)

	cnode := tree.NoNode
	for x, img := range mapping {
		if img == other {
			cnode = x
			break
		}
	}
	if cnode == tree.NoNode {
		return tree.Spr{}, fmt.Errorf("coal partner has no pre-image: %w", ErrEdge)
	}

	return tree.Spr{
		RecombNode: rnode,
		RecombTime: sigma.RecombTime,
		CoalNode:   cnode,
		CoalTime:   cur.Nodes[recoal].Age,
	}, nil
}
