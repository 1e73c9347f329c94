package hmm

import (
	"errors"

	"github.com/skfile/argweaver/tree"
)

// Sentinel errors for the threading HMM.
var (
	// ErrNumeric indicates an all-zero forward column: the data are
	// incompatible with every state (infinite-sites conflict).
	ErrNumeric = errors.New("hmm: forward column vanished")

	// ErrNoStates indicates a requested state that is not in the tree's
	// state space.
	ErrNoStates = errors.New("hmm: state not in the tree's state space")
)

// State is one (branch, time-interval) coalescence point for the thread.
type State struct {
	Node int
	Time int
}

// States enumerates the state space of a local tree in node-major
// order: for each branch, every admissible interval ascending. The
// node-major layout keeps a branch's states contiguous, which the
// compressed forward update relies on.
type States []State

// StatesFor builds the state set of t: branch v admits times from
// age(v) up to the parent's age inclusive; the root branch runs to
// ntimes-2.
// Complexity: O(n·K)
func StatesFor(t *tree.LocalTree, ntimes int) States {
	var states States
	for v := range t.Nodes {
		top := t.BranchTop(v, ntimes)
		for i := t.Nodes[v].Age; i <= top; i++ {
			states = append(states, State{Node: v, Time: i})
		}
	}
	return states
}

// StateLookup resolves (node,time) pairs to state indices in O(1),
// exploiting the node-major contiguous layout.
type StateLookup struct {
	first []int // index of the branch's first state
	base  []int // the branch's lowest admissible time
	count []int // number of states on the branch
}

// NewStateLookup indexes states, which must be in StatesFor order.
// Complexity: O(|S|)
func NewStateLookup(t *tree.LocalTree, states States) *StateLookup {
	l := &StateLookup{
		first: make([]int, t.NumNodes()),
		base:  make([]int, t.NumNodes()),
		count: make([]int, t.NumNodes()),
	}
	for i := range l.first {
		l.first[i] = -1
	}
	for i, s := range states {
		if l.first[s.Node] == -1 {
			l.first[s.Node] = i
			l.base[s.Node] = s.Time
		}
		l.count[s.Node]++
	}
	return l
}

// Lookup returns the index of (node,time), or -1 when absent.
func (l *StateLookup) Lookup(node, time int) int {
	if l.first[node] == -1 || time < l.base[node] ||
		time >= l.base[node]+l.count[node] {
		return -1
	}
	return l.first[node] + time - l.base[node]
}

// LineageCounts caches the per-interval branch, recombination-point and
// coalescing-point counts of one local tree.
type LineageCounts struct {
	NBranches []int
	NRecombs  []int
	NCoals    []int
}

// CountLineages tallies t across the grid.
func CountLineages(t *tree.LocalTree, ntimes int) *LineageCounts {
	nb, nr, nc := tree.CountLineages(t, ntimes)
	return &LineageCounts{NBranches: nb, NRecombs: nr, NCoals: nc}
}
