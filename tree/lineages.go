package tree

import "github.com/skfile/argweaver/model"

// CountLineages sweeps each branch across the time intervals it spans
// and counts, per interval: branches alive, possible recombination
// points, and possible coalescing points. Recombination and coalescence
// are also permitted at the top of a branch; the root branch extends to
// ntimes-2 and the topmost interval always reports exactly one branch.
// Complexity: O(n·K)
func CountLineages(t *LocalTree, ntimes int) (nbranches, nrecombs, ncoals []int) {
	nbranches = make([]int, ntimes)
	nrecombs = make([]int, ntimes)
	ncoals = make([]int, ntimes)

	for i := range t.Nodes {
		parentAge := t.BranchTop(i, ntimes)
		for j := t.Nodes[i].Age; j < parentAge; j++ {
			nbranches[j]++
			nrecombs[j]++
			ncoals[j]++
		}
		// events at the top of the branch
		nrecombs[parentAge]++
		ncoals[parentAge]++
		if t.Nodes[i].Parent == NoNode {
			nbranches[parentAge]++
		}
	}

	nbranches[ntimes-1] = 1
	return nbranches, nrecombs, ncoals
}

// Length returns the total branch length of t in generations. With
// basal set, the stub above the root (one grid interval) is included.
// Complexity: O(n)
func Length(t *LocalTree, grid *model.TimeGrid, basal bool) float64 {
	times := grid.Times
	total := 0.0
	for i := range t.Nodes {
		p := t.Nodes[i].Parent
		age := t.Nodes[i].Age
		if p == NoNode {
			if basal {
				total += times[age+1] - times[age]
			}
			continue
		}
		total += times[t.Nodes[p].Age] - times[age]
	}
	return total
}

// LengthWithBranch returns the tree length after a new branch rising
// from time 0 to the grid point at timeIdx is attached onto node.
// treelen is Length(t, grid, true), or negative to recompute. When the
// new branch rises above the root, the basal stub moves with it.
// Complexity: O(1) given treelen, O(n) otherwise
func LengthWithBranch(t *LocalTree, grid *model.TimeGrid, node, timeIdx int, treelen float64, basal bool) float64 {
	times := grid.Times
	if treelen < 0 {
		treelen = Length(t, grid, true)
	}

	rootAge := t.Nodes[t.Root].Age
	rootTime := times[rootAge+1] - times[rootAge]
	treelen -= rootTime // discount the basal stub

	blen := times[timeIdx]
	treelen2 := treelen + blen
	if node == t.Root {
		// the new branch rises above the root: the root lineage
		// lengthens to meet it and the basal stub moves up
		treelen2 += blen - times[rootAge]
		rootTime = times[timeIdx+1] - times[timeIdx]
	}

	if basal {
		return treelen2 + rootTime
	}
	return treelen2
}

// BasalBranch returns the width of the basal stub above the root after
// a new branch is attached onto node at the grid point timeIdx.
func BasalBranch(t *LocalTree, grid *model.TimeGrid, node, timeIdx int) float64 {
	times := grid.Times
	if node == t.Root {
		return times[timeIdx+1] - times[timeIdx]
	}
	rootAge := t.Nodes[t.Root].Age
	return times[rootAge+1] - times[rootAge]
}
