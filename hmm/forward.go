package hmm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// SequenceSource supplies aligned bases by external sequence id and
// chromosome position. Missing data and masked regions return 'N'.
type SequenceSource interface {
	Base(seqid, pos int) byte
}

// blockTables bundles everything the sampler derives per block: the
// state space, the compressed transition matrix under the block-local
// model, the emitter, and the switch operator from the previous block.
type blockTables struct {
	start  int
	tree   *tree.LocalTree
	local  model.Model
	states States
	lookup *StateLookup
	lc     *LineageCounts
	tm     *TransMatrix
	em     *Emitter
	sw     *SwitchMatrix // nil on the first block
}

// ForwardTable is the output of the forward pass: per-position scaled
// forward vectors plus the derived per-block tables, ready for
// stochastic traceback.
type ForwardTable struct {
	Trees   *arg.LocalTrees
	LogProb float64

	blocks  []*blockTables
	alphas  [][]float64
	blockOf []int
}

// PassOption tweaks a forward pass.
type PassOption func(*passConfig)

type passConfig struct {
	start *State
}

// WithStartState conditions the pass to begin in the given state of the
// first block's tree (used when resampling a bounded window whose left
// edge must rejoin the surrounding ARG).
func WithStartState(s State) PassOption {
	return func(c *passConfig) { c.start = &s }
}

// ForwardPass runs the scaled forward recursion for threading the
// sequence threadID through lt, left to right, applying a SwitchMatrix
// at every block seam. Returns ErrNumeric when some column zeroes out.
// Complexity: O(L·(|S|+n·K)) time, O(L·|S|) memory
func ForwardPass(m *model.Model, lt *arg.LocalTrees, seqs SequenceSource, threadID int, opts ...PassOption) (*ForwardTable, error) {
	var cfg passConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	length := lt.Length()
	k := m.NumTimes()

	ft := &ForwardTable{
		Trees:   lt,
		blocks:  make([]*blockTables, len(lt.Blocks)),
		alphas:  make([][]float64, length),
		blockOf: make([]int, length),
	}

	ws := newForwardWorkspace(k)
	col := make([]byte, lt.NumLeaves())
	prevCol := make([]byte, lt.NumLeaves())

	pos := lt.Start
	p := 0
	var prev *blockTables
	var prevAlpha []float64

	for bi, b := range lt.Blocks {
		local := m.LocalModel(pos)
		bt := &blockTables{
			start:  pos,
			tree:   b.Tree,
			local:  local,
			states: StatesFor(b.Tree, k),
		}
		bt.lookup = NewStateLookup(b.Tree, bt.states)
		bt.lc = CountLineages(b.Tree, k)
		bt.tm = NewTransMatrix(&bt.local, b.Tree, bt.lc)
		bt.em = NewEmitter(&bt.local, b.Tree, bt.states)
		if prev != nil {
			if b.Spr.IsNull() {
				bt.sw = identitySwitch(prev, bt, b.Mapping)
			} else {
				bt.sw = NewSwitchMatrix(&bt.local, prev.tree, b.Tree,
					b.Spr, b.Mapping, prev.states, bt.states, bt.lc)
			}
		}
		ft.blocks[bi] = bt

		emit := make([]float64, len(bt.states))
		emitFresh := false

		for end := pos + b.Len; pos < end; pos, p = pos+1, p+1 {
			threadBase := seqs.Base(threadID, pos)
			for leaf := 0; leaf < lt.NumLeaves(); leaf++ {
				col[leaf] = seqs.Base(lt.SeqIDs[leaf], pos)
			}
			// identical adjacent columns reuse the emission vector
			if !emitFresh || threadBase != prevThreadBase(ft, p, seqs, threadID) ||
				!bytesEqual(col, prevCol) {
				bt.em.Column(col, threadBase, emit)
				emitFresh = true
			}
			copy(prevCol, col)

			alpha := make([]float64, len(bt.states))
			switch {
			case p == 0:
				if cfg.start != nil {
					j := bt.lookup.Lookup(cfg.start.Node, cfg.start.Time)
					if j < 0 {
						return nil, fmt.Errorf("start state %+v: %w", *cfg.start, ErrNoStates)
					}
					alpha[j] = emit[j]
				} else {
					prior := StatePriors(&bt.local, bt.lc, bt.states)
					for j := range alpha {
						alpha[j] = prior[j] * emit[j]
					}
				}
			case prevAlpha != nil && ft.blockOf[p-1] != bi:
				bt.sw.Apply(prevAlpha, alpha)
				for j := range alpha {
					alpha[j] *= emit[j]
				}
			default:
				bt.tm.ForwardColumn(bt.tree, bt.states, prevAlpha, emit, alpha, ws)
			}

			norm := floats.Sum(alpha)
			if norm <= 0 || math.IsNaN(norm) {
				return nil, fmt.Errorf("position %d: %w", pos, ErrNumeric)
			}
			floats.Scale(1/norm, alpha)
			ft.LogProb += math.Log(norm)

			ft.alphas[p] = alpha
			ft.blockOf[p] = bi
			prevAlpha = alpha
		}
		prev = bt
	}
	return ft, nil
}

// identitySwitch builds the boundary operator for a null edge: every
// state carries over through the bijective node mapping with certainty.
func identitySwitch(prev, cur *blockTables, mapping []int) *SwitchMatrix {
	sw := &SwitchMatrix{
		NStates1:   len(prev.states),
		NStates2:   len(cur.states),
		RecoalSrc:  -1,
		RecombSrc:  -1,
		Determ:     make([]int, len(prev.states)),
		DetermProb: make([]float64, len(prev.states)),
		RecoalRow:  make([]float64, len(cur.states)),
		RecombRow:  make([]float64, len(cur.states)),
	}
	for i, s := range prev.states {
		sw.Determ[i] = cur.lookup.Lookup(mapping[s.Node], s.Time)
		sw.DetermProb[i] = 1.0
	}
	return sw
}

func bytesEqual(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// prevThreadBase recalls the thread base of the previous position; used
// only to decide emission reuse.
func prevThreadBase(ft *ForwardTable, p int, seqs SequenceSource, threadID int) byte {
	if p == 0 {
		return 0
	}
	return seqs.Base(threadID, ft.Trees.Start+p-1)
}

// StateAt returns the block tables governing the global position pos
// and the scaled forward vector stored for it.
func (ft *ForwardTable) StateAt(pos int) (*blockTables, []float64) {
	p := pos - ft.Trees.Start
	return ft.blocks[ft.blockOf[p]], ft.alphas[p]
}

// Length returns the number of scanned positions.
func (ft *ForwardTable) Length() int { return len(ft.alphas) }

// BlockStates exposes the state space derived for block bi.
func (ft *ForwardTable) BlockStates(bi int) States { return ft.blocks[bi].states }
