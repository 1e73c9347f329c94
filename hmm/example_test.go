package hmm_test

import (
	"fmt"
	"math/rand"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/hmm"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

type flatSeqs struct{}

func (flatSeqs) Base(seqid, pos int) byte { return 'A' }

// //////////////////////////////////////////////////////////////////////////////
// ExampleForwardPass
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	Thread a second sequence against a one-leaf "ARG" with no
//	recombination (rho = 0). The forward pass scans 30 identical
//	sites; because recombination is impossible, the sampled path
//	never moves, and the thread coalesces at one time interval for
//	the whole chromosome.
//
// Use case:
//
//	The degenerate two-sequence problem — the smallest real threading
//	instance, and the one whose posterior is the pure coalescent.
//
// Complexity: O(L·K) here — the single branch makes |S| = K-1.
func ExampleForwardPass() {
	grid, _ := model.NewTimeGrid([]float64{0, 1000, 4000, 16000})
	m, _ := model.New(grid, 1e4, 0, 0)

	t1 := tree.NewFromParents([]int{tree.NoNode}, []int{0})
	lt := arg.New("chr1", 0, []int{0})
	lt.Push(&arg.Block{Tree: t1, Spr: tree.NullSpr(), Len: 30})

	ft, _ := hmm.ForwardPass(m, lt, flatSeqs{}, 1)
	path, _ := ft.Traceback(rand.New(rand.NewSource(4)))

	constant := true
	for _, s := range path {
		if s != path[0] {
			constant = false
		}
	}
	fmt.Println("positions:", len(path), "constant:", constant, "branch:", path[0].Node)

	// Output:
	// positions: 30 constant: true branch: 0
}
