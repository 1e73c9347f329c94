package tree

import "fmt"

// Validate checks the structural invariants of a single tree: every
// child points back to its parent, exactly one root, no parent younger
// than a child (equal ages are accepted), and no node at the top time
// point ntimes-1.
// Complexity: O(n)
func Validate(t *LocalTree, ntimes int) error {
	nnodes := t.NumNodes()
	for i := range t.Nodes {
		n := &t.Nodes[i]
		for _, c := range n.Children {
			if c == NoNode {
				continue
			}
			if c < 0 || c >= nnodes {
				return fmt.Errorf("node %d child out of range: %w", i, ErrInvariantTree)
			}
			if t.Nodes[c].Parent != i {
				return fmt.Errorf("node %d child %d does not point back: %w", i, c, ErrInvariantTree)
			}
			if t.Nodes[c].Age > n.Age {
				return fmt.Errorf("node %d younger than child %d: %w", i, c, ErrInvariantAge)
			}
		}
		if n.Parent == NoNode {
			if t.Root != i {
				return fmt.Errorf("parentless node %d is not the root: %w", i, ErrInvariantTree)
			}
		} else if n.Parent < 0 || n.Parent >= nnodes {
			return fmt.Errorf("node %d parent out of range: %w", i, ErrInvariantTree)
		}
		if n.Age >= ntimes-1 {
			return fmt.Errorf("node %d at top time point: %w", i, ErrInvariantAge)
		}
	}
	if t.Root == NoNode || t.Nodes[t.Root].Parent != NoNode {
		return fmt.Errorf("bad root: %w", ErrInvariantTree)
	}
	return nil
}

// ValidatePostorder checks that order is a correct children-first
// traversal of t ending at the root.
func ValidatePostorder(t *LocalTree, order []int) error {
	if len(order) != t.NumNodes() {
		return fmt.Errorf("postorder length: %w", ErrInvariantTree)
	}
	if order[len(order)-1] != t.Root {
		return fmt.Errorf("postorder does not end at root: %w", ErrInvariantTree)
	}
	seen := make([]bool, t.NumNodes())
	for _, node := range order {
		seen[node] = true
		n := &t.Nodes[node]
		if !n.IsLeaf() && (!seen[n.Children[0]] || !seen[n.Children[1]]) {
			return fmt.Errorf("node %d emitted before a child: %w", node, ErrInvariantTree)
		}
	}
	return nil
}

// ValidateSPR checks that spr is legal on its pre-image tree last and
// consistent with the post-image tree cur under mapping: recombination
// and coalescence times within their branches, recomb no later than
// coal, the recomb-bearing branch unbroken, and the recoal node in cur
// joined to the right partner.
// Complexity: O(1)
func ValidateSPR(last, cur *LocalTree, spr Spr, mapping []int) error {
	if spr.IsNull() {
		return fmt.Errorf("null spr on a non-null edge: %w", ErrInvariantSPR)
	}
	ln := last.Nodes

	if mapping[spr.RecombNode] == NoNode {
		return fmt.Errorf("recomb-bearing branch broken: %w", ErrInvariantMapping)
	}
	if spr.RecombTime > spr.CoalTime {
		return fmt.Errorf("recomb above coal: %w", ErrInvariantSPR)
	}

	// recombination within its branch
	if spr.RecombTime < ln[spr.RecombNode].Age ||
		spr.RecombTime > ln[ln[spr.RecombNode].Parent].Age {
		return fmt.Errorf("recomb time outside branch: %w", ErrInvariantSPR)
	}

	// coalescence within its branch (no upper bound on the root branch)
	if spr.CoalTime < ln[spr.CoalNode].Age {
		return fmt.Errorf("coal time below branch: %w", ErrInvariantSPR)
	}
	if p := ln[spr.CoalNode].Parent; p != NoNode && spr.CoalTime > ln[p].Age {
		return fmt.Errorf("coal time above branch: %w", ErrInvariantSPR)
	}

	// the recoal node of cur must join the mapped coal partner
	recoal := cur.Nodes[mapping[spr.RecombNode]].Parent
	other := cur.Sibling(mapping[spr.RecombNode])
	if mapping[spr.CoalNode] != NoNode {
		if other != mapping[spr.CoalNode] {
			return fmt.Errorf("recoal partner mismatch: %w", ErrInvariantMapping)
		}
	} else {
		// the coal branch was the broken one; its stand-in is the
		// mapped sibling of the recomb branch
		lastOther := last.Sibling(spr.RecombNode)
		if mapping[lastOther] == NoNode ||
			cur.Nodes[mapping[lastOther]].Parent != recoal {
			return fmt.Errorf("broken coal stand-in mismatch: %w", ErrInvariantMapping)
		}
	}
	return nil
}
