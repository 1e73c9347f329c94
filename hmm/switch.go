package hmm

import (
	"math"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// SwitchMatrix is the compressed between-block transition operator for
// a boundary carrying SPR σ. Two source states are special and carry
// whole rows: RecoalSrc, the state at σ's recombination point, whose
// junction either leaves with the pruned subtree or stays on the broken
// lineage; and RecombSrc, the state at σ's coalescence point, where the
// incoming lineage interposes just above or just below the junction.
// Every other source moves deterministically to Determ[i] with
// probability DetermProb[i] and to nothing else.
type SwitchMatrix struct {
	NStates1 int
	NStates2 int

	RecoalSrc int
	RecombSrc int

	Determ     []int
	DetermProb []float64
	RecoalRow  []float64
	RecombRow  []float64
}

// DeterministicTransitions returns, for each non-special source state,
// the unique target state index in states2 (and -1 for the two special
// sources). A state rides its branch through the node mapping; states
// on the broken branch reroute to the sibling's continuation; states on
// the recombining branch above the recombination point belong to the
// dissolving segment and reroute to the broken lineage at its old age;
// whenever a surviving branch was truncated below the state's time, the
// state walks up to the lineage spanning it.
// Complexity: O(|S1|)
func DeterministicTransitions(
	last, cur *tree.LocalTree, spr tree.Spr, mapping []int,
	states1 States, lookup2 *StateLookup, ntimes int,
) []int {
	broken := last.Nodes[spr.RecombNode].Parent
	sib := last.Sibling(spr.RecombNode)
	brokenAge := last.Nodes[broken].Age

	next := make([]int, len(states1))
	for i, s := range states1 {
		v, t := s.Node, s.Time

		if (v == spr.RecombNode && t == spr.RecombTime) ||
			(v == spr.CoalNode && t == spr.CoalTime) {
			next[i] = -1
			continue
		}

		var node2, t2 int
		switch {
		case v == spr.RecombNode && t > spr.RecombTime:
			// the segment above the recombination point dissolves;
			// the thread's junction survives on the broken lineage
			node2, t2 = mapping[sib], brokenAge
		case mapping[v] == tree.NoNode:
			// v is the broken node; its span is absorbed by the sibling
			node2, t2 = mapping[sib], t
		default:
			node2, t2 = mapping[v], t
		}

		// walk up to the lineage spanning t2
		for {
			p := cur.Nodes[node2].Parent
			if p == tree.NoNode || t2 <= cur.Nodes[p].Age {
				break
			}
			node2 = p
		}
		next[i] = lookup2.Lookup(node2, t2)
	}
	return next
}

// NewSwitchMatrix builds the compressed boundary operator between the
// states of last and cur under spr and mapping.
// Complexity: O(|S1| + |S2| + K)
func NewSwitchMatrix(
	m *model.Model, last, cur *tree.LocalTree, spr tree.Spr, mapping []int,
	states1, states2 States, lc2 *LineageCounts,
) *SwitchMatrix {
	lookup1 := NewStateLookup(last, states1)
	lookup2 := NewStateLookup(cur, states2)
	ntimes := m.NumTimes()

	sw := &SwitchMatrix{
		NStates1:  len(states1),
		NStates2:  len(states2),
		RecoalSrc: lookup1.Lookup(spr.RecombNode, spr.RecombTime),
		RecombSrc: lookup1.Lookup(spr.CoalNode, spr.CoalTime),
		Determ: DeterministicTransitions(
			last, cur, spr, mapping, states1, lookup2, ntimes),
		DetermProb: make([]float64, len(states1)),
	}
	if sw.RecombSrc == sw.RecoalSrc {
		sw.RecombSrc = -1
	}

	// deterministic carries are certain
	for i := range sw.DetermProb {
		sw.DetermProb[i] = 1.0
	}

	// recoal source: the thread sat exactly at the recombination point.
	// It either left with the pruned subtree (staying on the recomb
	// branch's continuation) or stayed behind on the broken lineage.
	broken := last.Nodes[spr.RecombNode].Parent
	sib := last.Sibling(spr.RecombNode)
	sw.RecoalRow = splitRow(len(states2),
		lookup2.Lookup(mapping[spr.RecombNode], spr.RecombTime),
		lookup2.Lookup(mapping[sib], last.Nodes[broken].Age))

	// recomb source: the incoming lineage recoalesced exactly at the
	// thread's junction; the thread ends up just below it (on the coal
	// branch's continuation) or just above (on the new recoal branch).
	below := mapping[spr.CoalNode]
	if below == tree.NoNode {
		below = mapping[sib]
	}
	recoal2 := cur.Nodes[mapping[spr.RecombNode]].Parent
	sw.RecombRow = splitRow(len(states2),
		lookup2.Lookup(below, spr.CoalTime),
		lookup2.Lookup(recoal2, spr.CoalTime))
	return sw
}

// splitRow spreads unit mass evenly over the given target indices,
// merging duplicates and dropping absent (-1) entries.
func splitRow(n int, targets ...int) []float64 {
	row := make([]float64, n)
	valid := 0
	for _, j := range targets {
		if j >= 0 {
			valid++
		}
	}
	if valid == 0 {
		return row
	}
	for _, j := range targets {
		if j >= 0 {
			row[j] += 1.0 / float64(valid)
		}
	}
	return row
}

// Prob returns log P(i→j) under the switch operator.
func (sw *SwitchMatrix) Prob(i, j int) float64 {
	switch i {
	case sw.RecoalSrc:
		return math.Log(sw.RecoalRow[j])
	case sw.RecombSrc:
		return math.Log(sw.RecombRow[j])
	default:
		if sw.Determ[i] == j {
			return math.Log(sw.DetermProb[i])
		}
		return math.Inf(-1)
	}
}

// Apply advances a scaled forward vector across the boundary:
// out[j] = Σ_i alpha[i]·P(i→j).
// Complexity: O(|S1| + |S2|)
func (sw *SwitchMatrix) Apply(alpha, out []float64) {
	for j := range out {
		out[j] = 0
	}
	for i, j := range sw.Determ {
		if i == sw.RecoalSrc || i == sw.RecombSrc || j < 0 {
			continue
		}
		out[j] += alpha[i] * sw.DetermProb[i]
	}
	if sw.RecoalSrc >= 0 {
		a := alpha[sw.RecoalSrc]
		for j, p := range sw.RecoalRow {
			out[j] += a * p
		}
	}
	if sw.RecombSrc >= 0 {
		a := alpha[sw.RecombSrc]
		for j, p := range sw.RecombRow {
			out[j] += a * p
		}
	}
}
