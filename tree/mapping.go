package tree

// MapCongruent returns a node-to-node correspondence from t1 to t2.
// Leaves are matched on sequence id (ids1[i] names leaf i of t1, ids2
// likewise for t2); internal nodes are reconciled in postorder as the
// LCA of their mapped children. An internal node whose children both
// map inherits their common parent in t2; with a single mapped child it
// inherits that child's image; otherwise NoNode. Two topologically
// identical trees with identical id tables yield a bijection.
// Complexity: O(n²) on leaf matching, O(n) on reconciliation
func MapCongruent(t1 *LocalTree, ids1 []int, t2 *LocalTree, ids2 []int) []int {
	nleaves1 := t1.NumLeaves()
	nleaves2 := t2.NumLeaves()

	mapping := make([]int, t1.NumNodes())
	for i := range mapping {
		mapping[i] = NoNode
	}

	// reconcile leaves on sequence id
	for i := 0; i < nleaves1; i++ {
		for j := 0; j < nleaves2; j++ {
			if ids2[j] == ids1[i] {
				mapping[i] = j
				break
			}
		}
	}

	// reconcile internal nodes bottom-up
	order := t1.Postorder(nil)
	for _, j := range order {
		n := &t1.Nodes[j]
		if n.IsLeaf() {
			continue
		}
		m0 := mapping[n.Children[0]]
		m1 := mapping[n.Children[1]]
		switch {
		case m0 != NoNode && m1 != NoNode:
			// both children map: their LCA is the shared parent
			mapping[j] = t2.Nodes[m0].Parent
		case m0 != NoNode:
			mapping[j] = m0
		case m1 != NoNode:
			mapping[j] = m1
		default:
			mapping[j] = NoNode
		}
	}
	return mapping
}
