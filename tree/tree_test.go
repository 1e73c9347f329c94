package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// fiveLeafTree builds the caterpillar ((((0,1)5,2)6,3)7,4)8 with ages
// 1,2,3,4 on the internal nodes.
func fiveLeafTree(t *testing.T) *tree.LocalTree {
	t.Helper()
	parents := []int{5, 5, 6, 7, 8, 6, 7, 8, tree.NoNode}
	ages := []int{0, 0, 0, 0, 0, 1, 2, 3, 4}
	lt := tree.NewFromParents(parents, ages)
	require.NoError(t, tree.Validate(lt, 6))
	return lt
}

// TestNewFromParents_Structure verifies parent/child symmetry and root
// discovery.
func TestNewFromParents_Structure(t *testing.T) {
	lt := fiveLeafTree(t)

	assert.Equal(t, 8, lt.Root)
	assert.Equal(t, 5, lt.NumLeaves())
	assert.Equal(t, 9, lt.NumNodes())
	assert.Equal(t, [2]int{0, 1}, lt.Nodes[5].Children)
	assert.Equal(t, 1, lt.Sibling(0))
	assert.Equal(t, tree.NoNode, lt.Sibling(lt.Root))
}

// TestPostorder_ChildrenFirst checks the traversal contract.
func TestPostorder_ChildrenFirst(t *testing.T) {
	lt := fiveLeafTree(t)
	order := lt.Postorder(nil)
	assert.NoError(t, tree.ValidatePostorder(lt, order))
}

// TestApplySPR_Basic prunes leaf 0 at time 1 and regrafts onto leaf 3 at
// time 3, then checks the regraft shape and the recoal node's new age.
func TestApplySPR_Basic(t *testing.T) {
	lt := fiveLeafTree(t)
	spr := tree.Spr{RecombNode: 0, RecombTime: 1, CoalNode: 3, CoalTime: 3}

	tree.ApplySPR(lt, spr)

	require.NoError(t, tree.Validate(lt, 6))
	// the broken node 5 is reused as the recoal node above leaf 3
	assert.Equal(t, 5, lt.Nodes[0].Parent)
	assert.Equal(t, 5, lt.Nodes[3].Parent)
	assert.Equal(t, 3, lt.Nodes[5].Age)
	// leaf 1 was linked past the broken node
	assert.Equal(t, 6, lt.Nodes[1].Parent)
}

// TestApplySPR_CoalOntoBroken exercises the edge case of recoalescing
// onto the very branch that was broken.
func TestApplySPR_CoalOntoBroken(t *testing.T) {
	lt := fiveLeafTree(t)
	// break node 5 (parent of leaf 0) and recoalesce onto it, higher up
	spr := tree.Spr{RecombNode: 0, RecombTime: 0, CoalNode: 5, CoalTime: 2}

	tree.ApplySPR(lt, spr)

	require.NoError(t, tree.Validate(lt, 6))
	assert.Equal(t, 2, lt.Nodes[5].Age)
	// topology is unchanged up to the recoal age: 0 and 1 still join at 5
	assert.Equal(t, 5, lt.Nodes[0].Parent)
	assert.Equal(t, 5, lt.Nodes[1].Parent)
}

// TestApplySPR_BrokenRoot breaks the root itself and checks that the
// reused broken node is rediscovered as the root, then validates.
func TestApplySPR_BrokenRoot(t *testing.T) {
	lt := fiveLeafTree(t)
	// prune the subtree under node 7, which breaks root 8, and recoalesce
	// onto leaf 4's branch at the old root age: node 8 is rebuilt there
	spr := tree.Spr{RecombNode: 7, RecombTime: 4, CoalNode: 4, CoalTime: 4}

	tree.ApplySPR(lt, spr)

	require.NoError(t, tree.Validate(lt, 6))
	assert.Equal(t, 8, lt.Root, "broken node 8 is reused as the root")
	assert.Equal(t, 4, lt.Nodes[8].Age)
}

// TestInverseSPR_RoundTrip applies an SPR and its inverse and expects
// the starting tree back.
func TestInverseSPR_RoundTrip(t *testing.T) {
	cases := []tree.Spr{
		{RecombNode: 0, RecombTime: 1, CoalNode: 3, CoalTime: 3},
		{RecombNode: 0, RecombTime: 0, CoalNode: 5, CoalTime: 2},
		{RecombNode: 2, RecombTime: 1, CoalNode: 1, CoalTime: 1},
		{RecombNode: 7, RecombTime: 4, CoalNode: 4, CoalTime: 4},
	}
	for _, spr := range cases {
		lt := fiveLeafTree(t)
		want := lt.Clone()

		inv := tree.InverseSPR(lt, spr)
		tree.ApplySPR(lt, spr)
		require.NoError(t, tree.Validate(lt, 6))
		tree.ApplySPR(lt, inv)

		require.NoError(t, tree.Validate(lt, 6))
		assert.Equal(t, want.Nodes, lt.Nodes, "spr %+v must round-trip", spr)
		assert.Equal(t, want.Root, lt.Root)
	}
}

// TestCountLineages_SumsToBranchIntervals checks the global invariant:
// branch-interval counts sum to the total branch span of the tree, and
// the top interval always reports one branch.
func TestCountLineages_SumsToBranchIntervals(t *testing.T) {
	lt := fiveLeafTree(t)
	const ntimes = 6

	nbranches, nrecombs, ncoals := tree.CountLineages(lt, ntimes)

	// each of the 2(n-1) coalescing branch spans contributes its
	// interval count; for the caterpillar: leaves span 1..4 intervals
	total := 0
	for i := 0; i < ntimes-1; i++ {
		total += nbranches[i]
	}
	span := 0
	for i := range lt.Nodes {
		span += lt.BranchTop(i, ntimes) - lt.Nodes[i].Age
	}
	assert.Equal(t, span+1, total, "root branch adds its top interval")
	assert.Equal(t, 1, nbranches[ntimes-1], "top interval reports one branch")

	// recomb/coal points include branch tops
	for i := 0; i < ntimes-1; i++ {
		assert.GreaterOrEqual(t, nrecombs[i], nbranches[i])
		assert.GreaterOrEqual(t, ncoals[i], nbranches[i])
	}
}

// TestCountLineages_TwoLeaves pins exact counts on the smallest tree.
func TestCountLineages_TwoLeaves(t *testing.T) {
	lt := tree.NewFromParents([]int{2, 2, tree.NoNode}, []int{0, 0, 2})
	const ntimes = 4

	nbranches, nrecombs, ncoals := tree.CountLineages(lt, ntimes)

	assert.Equal(t, []int{2, 2, 1, 1}, nbranches)
	assert.Equal(t, []int{2, 2, 3, 0}, nrecombs)
	assert.Equal(t, []int{2, 2, 3, 0}, ncoals)
}

// TestLength_BasalStub verifies tree length with and without the stub.
func TestLength_BasalStub(t *testing.T) {
	g, err := model.NewTimeGrid([]float64{0, 10, 20, 30, 40, 50})
	require.NoError(t, err)
	lt := fiveLeafTree(t)

	// leaves rise to 10,10,20,30,40; internals 10->20, 20->30, 30->40
	want := 10.0 + 10 + 20 + 30 + 40 + 10 + 10 + 10
	assert.InDelta(t, want, tree.Length(lt, g, false), 1e-9)
	assert.InDelta(t, want+10, tree.Length(lt, g, true), 1e-9, "stub spans one interval above the root")
}

// TestLengthWithBranch_AboveRoot checks the rule that the basal stub
// moves up when the new branch rises above the root.
func TestLengthWithBranch_AboveRoot(t *testing.T) {
	g, err := model.NewTimeGrid([]float64{0, 10, 20, 30})
	require.NoError(t, err)
	lt := tree.NewFromParents([]int{2, 2, tree.NoNode}, []int{0, 0, 1})

	base := tree.Length(lt, g, true)
	// attach below the root: new branch of length times[1]
	got := tree.LengthWithBranch(lt, g, 0, 1, base, false)
	assert.InDelta(t, 20+10, got, 1e-9)

	// attach onto the root at time 2: root lineage stretches to 20
	got = tree.LengthWithBranch(lt, g, lt.Root, 2, base, false)
	assert.InDelta(t, 20+20+10, got, 1e-9)

	// with basal: stub now spans interval 2
	got = tree.LengthWithBranch(lt, g, lt.Root, 2, base, true)
	assert.InDelta(t, 20+20+10+10, got, 1e-9)
}

// TestMapCongruent_Identity — identical trees with identical id tables
// map node-for-node (spec invariant: identity bijection).
func TestMapCongruent_Identity(t *testing.T) {
	lt := fiveLeafTree(t)
	ids := []int{0, 1, 2, 3, 4}

	m := tree.MapCongruent(lt, ids, lt.Clone(), ids)

	for i := range m {
		assert.Equal(t, i, m[i])
	}
}

// TestMapCongruent_PermutedLeaves matches leaves through permuted id
// tables and still reconciles the internals to a bijection.
func TestMapCongruent_PermutedLeaves(t *testing.T) {
	lt1 := fiveLeafTree(t)
	ids1 := []int{10, 11, 12, 13, 14}

	// same shape, leaves relabeled: leaves 0 and 1 trade sequence ids
	lt2 := fiveLeafTree(t)
	ids2 := []int{11, 10, 12, 13, 14}

	m := tree.MapCongruent(lt1, ids1, lt2, ids2)

	assert.Equal(t, 1, m[0])
	assert.Equal(t, 0, m[1])
	for i := 2; i < len(m); i++ {
		assert.Equal(t, i, m[i], "internals and remaining leaves are fixed points")
	}
}

// TestValidate_CatchesCorruption flips a parent pointer and expects the
// invariant error.
func TestValidate_CatchesCorruption(t *testing.T) {
	lt := fiveLeafTree(t)
	lt.Nodes[0].Parent = 7

	err := tree.Validate(lt, 6)
	assert.ErrorIs(t, err, tree.ErrInvariantTree)
}

// TestValidate_TopTimePoint rejects a node at K-1.
func TestValidate_TopTimePoint(t *testing.T) {
	lt := fiveLeafTree(t)
	err := tree.Validate(lt, 5) // root sits at age 4 == K-1
	assert.ErrorIs(t, err, tree.ErrInvariantAge)
}

// TestValidateSPR_Bounds rejects out-of-branch recombination times and
// inverted recomb/coal ordering.
func TestValidateSPR_Bounds(t *testing.T) {
	last := fiveLeafTree(t)
	mapping := make([]int, last.NumNodes())

	bad := tree.Spr{RecombNode: 0, RecombTime: 3, CoalNode: 4, CoalTime: 3}
	cur := last.Clone()
	tree.MappingAfterSPR(last, bad, mapping)
	err := tree.ValidateSPR(last, cur, bad, mapping)
	assert.ErrorIs(t, err, tree.ErrInvariantSPR, "recomb above its branch")

	bad = tree.Spr{RecombNode: 2, RecombTime: 2, CoalNode: 0, CoalTime: 1}
	tree.MappingAfterSPR(last, bad, mapping)
	err = tree.ValidateSPR(last, cur, bad, mapping)
	assert.ErrorIs(t, err, tree.ErrInvariantSPR, "coal below recomb")
}

// TestValidateSPR_Consistent accepts a legal SPR against its true
// post-image.
func TestValidateSPR_Consistent(t *testing.T) {
	last := fiveLeafTree(t)
	spr := tree.Spr{RecombNode: 0, RecombTime: 1, CoalNode: 3, CoalTime: 3}

	cur := last.Clone()
	tree.ApplySPR(cur, spr)
	mapping := make([]int, last.NumNodes())
	tree.MappingAfterSPR(last, spr, mapping)

	assert.NoError(t, tree.ValidateSPR(last, cur, spr, mapping))
}
