package hmm

import (
	"math"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// TreeColumnLikelihood is the Felsenstein pruning likelihood of one
// column on a full local tree (no thread involved): down partials only,
// rooted in the stationary distribution. Columns of all-missing data
// contribute 1.0.
// Complexity: O(n)
func TreeColumnLikelihood(m *model.Model, t *tree.LocalTree, order []int, col []byte, down [][4]float64) float64 {
	mu := m.Mu
	times := m.Grid.Times
	seen := false

	for _, v := range order {
		n := &t.Nodes[v]
		if n.IsLeaf() {
			x := BaseIndex(col[v])
			if x >= 0 {
				seen = true
			}
			for b := 0; b < 4; b++ {
				if x < 0 || x == b {
					down[v][b] = 1
				} else {
					down[v][b] = 0
				}
			}
			continue
		}
		for b := 0; b < 4; b++ {
			prod := 1.0
			for _, c := range n.Children {
				p := jukesCantor(mu, times[n.Age]-times[t.Nodes[c].Age])
				msg := 0.0
				for y := 0; y < 4; y++ {
					msg += p.prob(b, y) * down[c][y]
				}
				prod *= msg
			}
			down[v][b] = prod
		}
	}
	if !seen {
		return 1.0
	}

	lik := 0.0
	for b := 0; b < 4; b++ {
		lik += 0.25 * down[t.Root][b]
	}
	return lik
}

// ARGLikelihood is the data log-likelihood of the whole sequence: the
// product over positions of each column's pruning likelihood on its
// governing tree, under the position-local mutation rate.
// Complexity: O(L·n)
func ARGLikelihood(m *model.Model, lt *arg.LocalTrees, seqs SequenceSource) float64 {
	total := 0.0
	col := make([]byte, lt.NumLeaves())

	pos := lt.Start
	for _, b := range lt.Blocks {
		order := b.Tree.Postorder(nil)
		down := make([][4]float64, b.Tree.NumNodes())
		local := m.LocalModel(pos)

		for end := pos + b.Len; pos < end; pos++ {
			for leaf := 0; leaf < lt.NumLeaves(); leaf++ {
				col[leaf] = seqs.Base(lt.SeqIDs[leaf], pos)
			}
			total += math.Log(TreeColumnLikelihood(&local, b.Tree, order, col, down))
		}
	}
	return total
}
