package tree

// ApplySPR performs the regraft in place.
//
// Before:                         After:
//
//	    bp          cp                bp         cp
//	   /  \           \              /  \          \
//	  rc               c            rs              rc
//	 /  \                                          /  \
//	r    rs                                       r    c
//
// r = recomb branch, rs = its sibling, rc = the broken node (reused as
// the recoalescence node), bp = parent of rc, c = coal branch, cp = its
// parent. The SPR must be legal on the pre-image tree; the broken node
// rc takes age CoalTime and the root is recomputed.
// Complexity: O(n) (root rescan; relinking is O(1))
func ApplySPR(t *LocalTree, spr Spr) {
	nodes := t.Nodes

	// recoal is also the node being broken
	recoal := nodes[spr.RecombNode].Parent

	c := nodes[recoal].Children
	other := 0
	if c[0] == spr.RecombNode {
		other = 1
	}
	recombSib := c[other]
	brokeParent := nodes[recoal].Parent

	// link the sibling past the broken node
	nodes[recombSib].Parent = brokeParent
	x := 0
	if brokeParent != NoNode {
		bc := nodes[brokeParent].Children
		if bc[0] != recoal {
			x = 1
		}
		nodes[brokeParent].Children[x] = recombSib
	}

	if spr.CoalNode == recoal {
		// recoalescing onto the branch that was just broken: the
		// sibling stands in for the coal branch
		nodes[recoal].Children[other] = recombSib
		nodes[recoal].Parent = nodes[recombSib].Parent
		nodes[recombSib].Parent = recoal
		if brokeParent != NoNode {
			nodes[brokeParent].Children[x] = recoal
		}
	} else {
		nodes[recoal].Children[other] = spr.CoalNode
		nodes[recoal].Parent = nodes[spr.CoalNode].Parent
		nodes[spr.CoalNode].Parent = recoal

		p := nodes[recoal].Parent
		if p != NoNode {
			if nodes[p].Children[0] == spr.CoalNode {
				nodes[p].Children[0] = recoal
			} else {
				nodes[p].Children[1] = recoal
			}
		}
	}
	nodes[recoal].Age = spr.CoalTime

	t.SetRoot()
}

// MappingAfterSPR fills mapping with the node correspondence induced by
// applying spr to last: identity for every node except the broken one
// (the parent of the recomb branch), which maps to NoNode.
// Complexity: O(n)
func MappingAfterSPR(last *LocalTree, spr Spr, mapping []int) {
	for i := range mapping {
		mapping[i] = i
	}
	if !spr.IsNull() {
		mapping[last.Nodes[spr.RecombNode].Parent] = NoNode
	}
}

// InverseSPR returns the SPR that, applied to ApplySPR(pre, spr),
// restores pre. It prunes the same subtree at the same time and
// regrafts it at its old attachment point: on the old sibling's branch,
// unless the forward SPR recoalesced below that point on the sibling
// itself, in which case the old point now lies on the reused recoal
// node's branch.
func InverseSPR(pre *LocalTree, spr Spr) Spr {
	recoal := pre.Nodes[spr.RecombNode].Parent
	oldAge := pre.Nodes[recoal].Age
	sib := pre.Sibling(spr.RecombNode)

	coal := sib
	if spr.CoalNode == sib && spr.CoalTime < oldAge {
		coal = recoal
	}
	return Spr{
		RecombNode: spr.RecombNode,
		RecombTime: spr.RecombTime,
		CoalNode:   coal,
		CoalTime:   oldAge,
	}
}
