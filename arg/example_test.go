package arg_test

import (
	"fmt"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/tree"
)

// //////////////////////////////////////////////////////////////////////////////
// ExampleLocalTrees_Partition
// //////////////////////////////////////////////////////////////////////////////
//
// Scenario:
//
//	A two-block sequence over three sequences is split in the interior
//	of its first block, then stitched back together with an empty
//	middle. After null-SPR removal the original block structure is
//	restored — the round trip the resampler's splicing relies on.
//
// Complexity: O(#blocks + n²) for the append reconciliation.
func ExampleLocalTrees_Partition() {
	t1 := tree.NewFromParents([]int{3, 3, 4, 4, tree.NoNode}, []int{0, 0, 0, 1, 3})
	spr := tree.Spr{RecombNode: 0, RecombTime: 0, CoalNode: 2, CoalTime: 2}
	t2 := t1.Clone()
	tree.ApplySPR(t2, spr)
	mapping := make([]int, t1.NumNodes())
	tree.MappingAfterSPR(t1, spr, mapping)

	lt := arg.New("chr1", 0, []int{0, 1, 2})
	lt.Push(&arg.Block{Tree: t1, Spr: tree.NullSpr(), Len: 60})
	lt.Push(&arg.Block{Tree: t2, Spr: spr, Mapping: mapping, Len: 40})

	right, _ := lt.Partition(25)
	fmt.Println("left:", lt.Length(), "right:", right.Length())

	_ = arg.Append(lt, right)
	lt.RemoveNullSPRs()
	fmt.Println("blocks:", len(lt.Blocks), "recombs:", lt.CountRecombs(), "span:", lt.Length())

	// Output:
	// left: 25 right: 75
	// blocks: 2 recombs: 1 span: 100
}
