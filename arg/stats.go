package arg

import (
	"math"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// CountRecombs returns the number of recombinations in the sequence
// (one per non-null edge).
func (lt *LocalTrees) CountRecombs() int {
	n := 0
	for _, b := range lt.Blocks {
		if !b.Spr.IsNull() {
			n++
		}
	}
	return n
}

// TotalLength returns the "arglen" statistic: total branch length
// summed over sites, Σ blocks treelen·width.
// Complexity: O(#blocks · n)
func (lt *LocalTrees) TotalLength(m *model.Model) float64 {
	total := 0.0
	for _, b := range lt.Blocks {
		total += tree.Length(b.Tree, m.Grid, false) * float64(b.Len)
	}
	return total
}

// coalRates returns the cumulative coalescent rate per lineage below
// each time point: C[0]=0, C[k] = C[k-1] + dt[k-1]·nbranches[k-1]/(2·N[k-1]).
func coalRates(nbranches []int, m *model.Model) []float64 {
	k := m.NumTimes()
	c := make([]float64, k)
	for i := 1; i < k; i++ {
		c[i] = c[i-1] + m.Grid.Steps[i-1]*float64(nbranches[i-1])/(2*m.Popsizes[i-1])
	}
	return c
}

// treePrior returns the log-probability of a single local tree under
// the discretized coalescent: per-interval survival of the open lineage
// pairs plus a coalescence density per internal node.
func treePrior(t *tree.LocalTree, m *model.Model) float64 {
	k := m.NumTimes()
	nbranches, _, _ := tree.CountLineages(t, k)

	lp := 0.0
	for i := 0; i < k-1; i++ {
		n := float64(nbranches[i])
		lp -= n * (n - 1) / 2 * m.Grid.Steps[i] / (2 * m.Popsizes[i])
	}
	for i := t.NumLeaves(); i < t.NumNodes(); i++ {
		age := t.Nodes[i].Age
		lp += math.Log(1 / (2 * m.Popsizes[age]))
	}
	return lp
}

// Prior returns the log-prior of the whole sequence under the
// sequentially Markov coalescent: the first tree's coalescent density,
// per-site no-recombination survival along every block, and for each
// non-null edge the recombination placement and recoalescence density.
// Complexity: O(#blocks · n · K)
func (lt *LocalTrees) Prior(m *model.Model) float64 {
	if len(lt.Blocks) == 0 {
		return 0
	}
	lp := treePrior(lt.Blocks[0].Tree, m)

	pos := lt.Start
	var prev *tree.LocalTree
	for i, b := range lt.Blocks {
		treelen := tree.Length(b.Tree, m.Grid, false)

		if i > 0 {
			rho := m.LocalRho(pos)
			if b.Spr.IsNull() {
				// identity edge: no recombination between the blocks
				lp -= rho * treelen
			} else {
				prevLen := tree.Length(prev, m.Grid, false)
				nbranches, _, ncoals := tree.CountLineages(prev, m.NumTimes())
				c := coalRates(nbranches, m)

				// a recombination somewhere on the previous tree
				lp += math.Log(1 - math.Exp(-math.Max(rho*prevLen, rho)))
				// the freed lineage survives up to the coal interval
				// and recoalesces among the branches open there
				rt, ct := b.Spr.RecombTime, b.Spr.CoalTime
				lp -= c[ct] - c[rt]
				n := float64(nbranches[ct])
				if ct < m.NumTimes()-1 {
					lp += math.Log(1 - math.Exp(-m.Grid.Steps[ct]*n/(2*m.Popsizes[ct])))
				}
				lp -= math.Log(float64(ncoals[ct]))
			}
		}

		// no recombination at the block's remaining sites
		lp -= m.LocalRho(pos) * treelen * float64(b.Len-1)

		pos += b.Len
		prev = b.Tree
	}
	return lp
}
