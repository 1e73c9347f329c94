package thread

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/hmm"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// Sentinel errors for thread surgery.
var (
	// ErrPathLength indicates a path that does not cover the sequence.
	ErrPathLength = errors.New("thread: path length does not match sequence span")

	// ErrLeafNotFound indicates a sequence id absent from the leaf table.
	ErrLeafNotFound = errors.New("thread: sequence id not present")

	// ErrEdge indicates a boundary that could not be realized as a
	// legal SPR; it marks an inconsistent path and is a bug.
	ErrEdge = errors.New("thread: unrealizable block edge")
)

// Augment returns base with a thread leaf attached onto the branch and
// time of s. Old leaves keep their indices, the thread leaf takes index
// n, old internal nodes shift up by one, and the new attachment node
// takes the last slot.
// Complexity: O(n)
func Augment(base *tree.LocalTree, s hmm.State) *tree.LocalTree {
	r := base.NumLeaves()
	renum := func(x int) int {
		if x == tree.NoNode || x < r {
			return x
		}
		return x + 1
	}

	aug := tree.New(base.NumNodes() + 2)
	for i := range base.Nodes {
		n := &base.Nodes[i]
		aug.Nodes[renum(i)] = tree.Node{
			Parent:   renum(n.Parent),
			Children: [2]int{renum(n.Children[0]), renum(n.Children[1])},
			Age:      n.Age,
		}
	}

	leaf, att := r, base.NumNodes()+1
	v := renum(s.Node)
	p := aug.Nodes[v].Parent
	aug.Nodes[att] = tree.Node{Parent: p, Children: [2]int{v, leaf}, Age: s.Time}
	aug.Nodes[leaf] = tree.Node{Parent: att, Children: [2]int{tree.NoNode, tree.NoNode}}
	aug.Nodes[v].Parent = att
	if p != tree.NoNode {
		if aug.Nodes[p].Children[0] == v {
			aug.Nodes[p].Children[0] = att
		} else {
			aug.Nodes[p].Children[1] = att
		}
	}
	aug.SetRoot()
	return aug
}

// Add realizes a sampled threading path as a new block sequence: every
// tree gains the thread's leaf and attachment node, path changes within
// a block become thread-side SPRs on cloned trees, and base SPRs are
// re-expressed on the augmented arenas at block seams. The input
// sequence is not modified; its null edges must already be dissolved
// (RemoveNullSPRs). path holds one state per position in
// [lt.Start, lt.End), each on its own block's tree. The thread's
// sequence id is appended to the leaf table.
// Complexity: O(L·n_changes + #blocks·n)
func Add(m *model.Model, lt *arg.LocalTrees, path []hmm.State, threadID int, rng *rand.Rand) (*arg.LocalTrees, error) {
	if len(path) != lt.Length() {
		return nil, ErrPathLength
	}

	r := lt.NumLeaves()
	leaf, att := r, 2*r

	out := arg.New(lt.Chrom, lt.Start,
		append(append([]int(nil), lt.SeqIDs...), threadID))

	var aug *tree.LocalTree
	var cur hmm.State
	pendingSpr := tree.NullSpr()
	var pendingMapping []int
	segLen := 0

	push := func() {
		out.Push(&arg.Block{Tree: aug, Spr: pendingSpr, Mapping: pendingMapping, Len: segLen})
		segLen = 0
	}

	p := 0
	for bi, b := range lt.Blocks {
		local := m.LocalModel(lt.Start + p)
		rs := newRecombSampler(&local, hmm.CountLineages(b.Tree, m.NumTimes()))
		blockStart := p

		for end := p + b.Len; p < end; p++ {
			s := path[p]
			switch {
			case aug == nil:
				aug = Augment(b.Tree, s)
				cur = s

			case p == blockStart:
				// seam: re-express the base SPR on the augmented arenas
				a2 := Augment(b.Tree, s)
				spr, mapping, err := seamEdge(
					lt.Blocks[bi-1].Tree, b.Tree, b.Spr, b.Mapping,
					cur, s, aug, a2, r, leaf, att)
				if err != nil {
					return nil, err
				}
				push()
				pendingSpr, pendingMapping = spr, mapping
				aug, cur = a2, s

			case s != cur:
				// path change inside the block: thread-side SPR
				spr := threadSPR(rng, rs, b.Tree, cur, s, r)
				push()
				next := aug.Clone()
				tree.ApplySPR(next, spr)
				pendingMapping = make([]int, aug.NumNodes())
				tree.MappingAfterSPR(aug, spr, pendingMapping)
				pendingSpr = spr
				aug = next
				cur = s
			}
			segLen++
		}
	}
	push()

	if err := out.Validate(m.NumTimes()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEdge, err)
	}
	return out, nil
}

// recombSampler draws recombination time intervals for thread SPRs,
// weighted the same way the transition vectors integrate over them:
// interval width times branch opportunity, carried up by the survival
// factor.
type recombSampler struct {
	weights []float64
}

func newRecombSampler(m *model.Model, lc *hmm.LineageCounts) *recombSampler {
	k := m.NumTimes()
	steps := m.Grid.Steps
	w := make([]float64, k-1)
	c := 0.0
	for b := 0; b < k-1; b++ {
		w[b] = steps[b] * float64(lc.NBranches[b]+1) /
			float64(lc.NRecombs[b]+1) * math.Exp(c)
		c += steps[b] * float64(lc.NBranches[b]) / (2 * m.Popsizes[b])
	}
	return &recombSampler{weights: w}
}

// sample draws k in [lo,hi] proportional to the weights.
func (rs *recombSampler) sample(rng *rand.Rand, lo, hi int) int {
	if hi >= len(rs.weights) {
		hi = len(rs.weights) - 1
	}
	if lo > hi {
		return hi
	}
	total := 0.0
	for k := lo; k <= hi; k++ {
		total += rs.weights[k]
	}
	r := rng.Float64() * total
	for k := lo; k < hi; k++ {
		r -= rs.weights[k]
		if r < 0 {
			return k
		}
	}
	return hi
}

// threadSPR realizes one in-block path change (v1,a)->(v2,b) as an SPR
// on the augmented tree. The recombination sits on the thread's own
// branch, or — for a same-branch time change — on the base branch
// itself; either way the attachment node is the one broken.
func threadSPR(rng *rand.Rand, rs *recombSampler, base *tree.LocalTree, from, to hmm.State, r int) tree.Spr {
	renum := func(x int) int {
		if x < r {
			return x
		}
		return x + 1
	}
	leaf, att := r, 2*r
	v1, a := from.Node, from.Time
	v2, b := to.Node, to.Time

	k := rs.sample(rng, 0, min(a, b))

	if v1 != v2 {
		return tree.Spr{RecombNode: leaf, RecombTime: k, CoalNode: renum(v2), CoalTime: b}
	}

	// same-branch move: the attachment slides along one lineage, split
	// at the old junction between the base branch below and the
	// attachment node above
	coal := renum(v1)
	if b > a {
		coal = att
	}
	if k >= base.Nodes[v1].Age && rng.Intn(2) == 0 {
		// recombination on the base branch; it recoalesces onto the
		// thread's own lineage
		baseCoal := leaf
		if b > a {
			baseCoal = att
		}
		return tree.Spr{RecombNode: renum(v1), RecombTime: k, CoalNode: baseCoal, CoalTime: b}
	}
	return tree.Spr{RecombNode: leaf, RecombTime: k, CoalNode: coal, CoalTime: b}
}

// seamEdge re-expresses the base SPR on the augmented arenas for the
// thread moving from sPrev to sNext across a block boundary. The
// attachment node stands in for whichever segment of the previous
// attachment branch the SPR touches above the junction, and the mapping
// extends the base mapping with the thread leaf and attachment node.
func seamEdge(
	prevBase, curBase *tree.LocalTree, sigma tree.Spr, baseMap []int,
	sPrev, sNext hmm.State, a1, a2 *tree.LocalTree, r, leaf, att int,
) (tree.Spr, []int, error) {
	renum := func(x int) int {
		if x == tree.NoNode || x < r {
			return x
		}
		return x + 1
	}

	if sigma.IsNull() {
		// bijective carry: the thread must ride the mapping unchanged
		if baseMap == nil || sNext.Node != baseMap[sPrev.Node] || sNext.Time != sPrev.Time {
			return tree.Spr{}, nil, fmt.Errorf("thread moved across a null edge: %w", ErrEdge)
		}
		mapping := extendMapping(prevBase, baseMap, renum, leaf, att, att)
		return tree.NullSpr(), mapping, nil
	}

	v1, a := sPrev.Node, sPrev.Time
	relabel := func(x, when int) int {
		if x == v1 && when > a {
			return att
		}
		return renum(x)
	}

	broken := prevBase.Nodes[sigma.RecombNode].Parent
	sib := prevBase.Sibling(sigma.RecombNode)
	recoal2 := curBase.Nodes[baseMap[sigma.RecombNode]].Parent

	spr := tree.Spr{
		RecombNode: relabel(sigma.RecombNode, sigma.RecombTime),
		RecombTime: sigma.RecombTime,
		CoalNode:   relabel(sigma.CoalNode, sigma.CoalTime),
		CoalTime:   sigma.CoalTime,
	}
	switch {
	case v1 == sigma.RecombNode && a == sigma.RecombTime &&
		sNext == (hmm.State{Node: baseMap[sigma.RecombNode], Time: sigma.RecombTime}):
		// the thread left with the pruned subtree: the joint lineage
		// recombined, so the attachment node is the recombining branch
		spr.RecombNode = att

	case v1 == sigma.CoalNode && a == sigma.CoalTime &&
		sNext == (hmm.State{Node: belowTarget(baseMap, sigma, sib), Time: sigma.CoalTime}):
		// the incoming lineage landed just above the thread's junction
		spr.CoalNode = att

	case v1 == sigma.CoalNode && a == sigma.CoalTime &&
		sNext == (hmm.State{Node: recoal2, Time: sigma.CoalTime}):
		// the incoming lineage landed just below; sigma stands as-is
	}

	mapping := extendMapping(prevBase, baseMap, renum, leaf, att, att)
	if a1.Nodes[spr.RecombNode].Parent == att {
		// the attachment node is the one broken by this edge; the base
		// broken node survives as the new attachment
		mapping[att] = tree.NoNode
		mapping[renum(broken)] = att
	}

	if err := tree.ValidateSPR(a1, a2, spr, mapping); err != nil {
		return tree.Spr{}, nil, fmt.Errorf("%w: %v", ErrEdge, err)
	}
	return spr, mapping, nil
}

// extendMapping lifts a base node mapping onto the augmented arenas.
func extendMapping(prevBase *tree.LocalTree, baseMap []int, renum func(int) int, leaf, att, attImage int) []int {
	mapping := make([]int, prevBase.NumNodes()+2)
	for x := range prevBase.Nodes {
		mapping[renum(x)] = renum(baseMap[x])
	}
	mapping[leaf] = leaf
	mapping[att] = attImage
	return mapping
}

// belowTarget is the branch carrying the coal point's continuation: the
// mapped coal branch, or the mapped sibling when the coal branch was
// the broken one.
func belowTarget(baseMap []int, sigma tree.Spr, sib int) int {
	if baseMap[sigma.CoalNode] != tree.NoNode {
		return baseMap[sigma.CoalNode]
	}
	return baseMap[sib]
}
