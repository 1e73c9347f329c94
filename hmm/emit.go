package hmm

import (
	"math"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// BaseIndex maps a nucleotide to 0..3, or -1 for N, gaps and any other
// ambiguity code.
func BaseIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	default:
		return -1
	}
}

// jc holds the two Jukes-Cantor transition probabilities for one branch
// length: staying on the same base and moving to a specific other one.
type jc struct {
	same float64
	diff float64
}

func jukesCantor(mu, generations float64) jc {
	e := math.Exp(-4.0 / 3.0 * mu * generations)
	return jc{same: 0.25 + 0.75*e, diff: 0.25 - 0.25*e}
}

func (p jc) prob(x, y int) float64 {
	if x == y {
		return p.same
	}
	return p.diff
}

// Emitter prices one alignment column for every state of a local tree:
// the Felsenstein pruning likelihood of the column with the thread's
// base attached at the state's branch and time, under Jukes-Cantor.
// One O(n) sweep per column fills down partials (data below each node)
// and above messages (everything else, conditioned at the top of each
// branch); each state then costs O(1) alphabet work.
type Emitter struct {
	m      *model.Model
	t      *tree.LocalTree
	states States
	order  []int

	down  [][4]float64 // at the node, from below
	up    [][4]float64 // at the node, from everything else
	above [][4]float64 // at the top of the node's branch, from outside

	branchLen []float64 // generations from node to parent
}

// NewEmitter prepares partial-likelihood storage for t.
// Complexity: O(n)
func NewEmitter(m *model.Model, t *tree.LocalTree, states States) *Emitter {
	n := t.NumNodes()
	e := &Emitter{
		m:         m,
		t:         t,
		states:    states,
		order:     t.Postorder(nil),
		down:      make([][4]float64, n),
		up:        make([][4]float64, n),
		above:     make([][4]float64, n),
		branchLen: make([]float64, n),
	}
	times := m.Grid.Times
	for v := range t.Nodes {
		if p := t.Nodes[v].Parent; p != tree.NoNode {
			e.branchLen[v] = times[t.Nodes[p].Age] - times[t.Nodes[v].Age]
		}
	}
	return e
}

// Column fills out[j] with the emission probability of each state for
// the leaf column col (indexed by leaf index) and the thread's base.
// A missing thread base emits 1.0 everywhere; with infinite sites on,
// a column whose minimum mutation count exceeds one is penalized by
// exp(InfSitesPenalty).
// Complexity: O(n + |S|)
func (e *Emitter) Column(col []byte, threadBase byte, out []float64) {
	d := BaseIndex(threadBase)
	if d < 0 {
		for j := range out {
			out[j] = 1.0
		}
		return
	}

	mu := e.m.Mu
	t := e.t
	times := e.m.Grid.Times

	// down partials, leaves up
	for _, v := range e.order {
		n := &t.Nodes[v]
		if n.IsLeaf() {
			x := BaseIndex(col[v])
			for b := 0; b < 4; b++ {
				if x < 0 || x == b {
					e.down[v][b] = 1
				} else {
					e.down[v][b] = 0
				}
			}
			continue
		}
		c0, c1 := n.Children[0], n.Children[1]
		p0 := jukesCantor(mu, e.branchLen[c0])
		p1 := jukesCantor(mu, e.branchLen[c1])
		for b := 0; b < 4; b++ {
			m0, m1 := 0.0, 0.0
			for y := 0; y < 4; y++ {
				m0 += p0.prob(b, y) * e.down[c0][y]
				m1 += p1.prob(b, y) * e.down[c1][y]
			}
			e.down[v][b] = m0 * m1
		}
	}

	// above messages, root down
	for b := 0; b < 4; b++ {
		e.up[t.Root][b] = 0.25
		e.above[t.Root][b] = 0.25
	}
	for i := len(e.order) - 1; i >= 0; i-- {
		v := e.order[i]
		n := &t.Nodes[v]
		if n.IsLeaf() {
			continue
		}
		for _, c := range n.Children {
			s := n.Children[0] + n.Children[1] - c
			ps := jukesCantor(mu, e.branchLen[s])
			pc := jukesCantor(mu, e.branchLen[c])
			for b := 0; b < 4; b++ {
				sib := 0.0
				for y := 0; y < 4; y++ {
					sib += ps.prob(b, y) * e.down[s][y]
				}
				e.above[c][b] = e.up[v][b] * sib
			}
			for b := 0; b < 4; b++ {
				m := 0.0
				for y := 0; y < 4; y++ {
					m += pc.prob(y, b) * e.above[c][y]
				}
				e.up[c][b] = m
			}
		}
	}

	penalty := 1.0
	if e.m.InfSites && e.minMutations(col, d) > 1 {
		penalty = math.Exp(e.m.InfSitesPenalty)
	}

	for j, s := range e.states {
		v, b := s.Node, s.Time
		age := t.Nodes[v].Age
		low := jukesCantor(mu, times[b]-times[age])
		thread := jukesCantor(mu, times[b])

		var high jc
		top := v == t.Root
		if !top {
			pAge := t.Nodes[t.Nodes[v].Parent].Age
			high = jukesCantor(mu, times[pAge]-times[b])
		}

		lik := 0.0
		for x := 0; x < 4; x++ {
			below := 0.0
			for y := 0; y < 4; y++ {
				below += low.prob(x, y) * e.down[v][y]
			}
			abv := 0.0
			if top {
				abv = 0.25
			} else {
				for y := 0; y < 4; y++ {
					abv += high.prob(x, y) * e.above[v][y]
				}
			}
			lik += below * abv * thread.prob(x, d)
		}
		out[j] = lik * penalty
	}
}

// minMutations is the Fitch parsimony count of the column on the base
// topology, plus one when the thread carries an allele absent from the
// column (attaching it anywhere forces one extra mutation).
func (e *Emitter) minMutations(col []byte, threadBase int) int {
	t := e.t
	sets := make([]uint8, t.NumNodes())
	count := 0
	present := uint8(0)
	for _, v := range e.order {
		n := &t.Nodes[v]
		if n.IsLeaf() {
			x := BaseIndex(col[v])
			if x < 0 {
				sets[v] = 0xF
			} else {
				sets[v] = 1 << uint(x)
				present |= sets[v]
			}
			continue
		}
		inter := sets[n.Children[0]] & sets[n.Children[1]]
		if inter == 0 {
			sets[v] = sets[n.Children[0]] | sets[n.Children[1]]
			count++
		} else {
			sets[v] = inter
		}
	}
	if present&(1<<uint(threadBase)) == 0 && present != 0 {
		count++
	}
	return count
}
