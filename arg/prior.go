package arg

import (
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// SamplePrior draws an initial single-block ARG for a fresh chain: one
// coalescent tree over nleaves sampled from the discretized prior.
// Within each grid interval, pairwise coalescence waiting times are
// exponential at rate k(k-1)/2 per 2N; events are snapped to the
// interval's lower time point. Any lineages still open at the top
// interval coalesce there (no node may sit at K-1).
// Complexity: O(n·K)
func SamplePrior(m *model.Model, chrom string, start, end, nleaves int, src xrand.Source) *LocalTrees {
	rng := xrand.New(src)
	k := m.NumTimes()

	t := tree.New(2*nleaves - 1)
	active := make([]int, nleaves)
	for i := range active {
		active[i] = i
	}
	next := nleaves

	coalesce := func(age int) {
		i := rng.Intn(len(active))
		a := active[i]
		active[i] = active[len(active)-1]
		active = active[:len(active)-1]
		j := rng.Intn(len(active))
		b := active[j]

		t.Nodes[next] = tree.Node{
			Parent:   tree.NoNode,
			Children: [2]int{a, b},
			Age:      age,
		}
		t.Nodes[a].Parent = next
		t.Nodes[b].Parent = next
		active[j] = next
		next++
	}

	for i := 0; i < k-2 && len(active) > 1; i++ {
		elapsed := 0.0
		for len(active) > 1 {
			n := float64(len(active))
			exp := distuv.Exponential{
				Rate: n * (n - 1) / 2 / (2 * m.Popsizes[i]),
				Src:  src,
			}
			elapsed += exp.Rand()
			if elapsed >= m.Grid.Steps[i] {
				break
			}
			coalesce(i)
		}
	}
	// everything still open coalesces in the unbounded top interval
	for len(active) > 1 {
		coalesce(k - 2)
	}
	t.Root = 2*nleaves - 2

	seqids := make([]int, nleaves)
	for i := range seqids {
		seqids[i] = i
	}
	lt := New(chrom, start, seqids)
	lt.Push(&Block{Tree: t, Spr: tree.NullSpr(), Len: end - start})
	return lt
}
