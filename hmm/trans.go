package hmm

import (
	"math"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// TransMatrix is the compressed in-block transition operator. For
// source (v1,a) and target (v2,b) the transition probability is
//
//	v1 != v2:  D[a]·E[b]·(B[min(a,b)] − 1{a<=b}·G[a])
//	v1 == v2:  D[a]·E[b]·(2·B[min(a,b)] − 2·1{a<=b}·G[a] − B[min(c,b)])
//	           + 1{a==b}·NoRecombs[a],    c = age(v1)
//
// where the vectors are functions of the model, the lineage counts and
// the tree length:
//
//	C[k]        cumulative per-lineage coalescent rate below k
//	D[a]        recombination probability at the site given the tree
//	            lengthened by a thread reaching a, per unit opportunity
//	E[b]        coalescence density into interval b, discounted by the
//	            survival exp(−C[b]) and shared among coalescing points
//	B[m]        recombination opportunity accumulated over k<=m, each
//	            interval carried up by exp(+C[k]) so that D·E·B telescopes
//	            into Σ_k P(recomb at k)·P(survive k..b)·P(coal at b)
//	G[a]        the over-counted share of interval a, where the thread
//	            branch ends and contributes only its top point
//	NoRecombs[a] probability of no recombination at the site
//
// It must be rebuilt whenever the model, the lineage counts, or the
// tree length change.
type TransMatrix struct {
	NTimes int

	B         []float64
	C         []float64
	D         []float64
	E         []float64
	G         []float64
	NoRecombs []float64
}

// NewTransMatrix computes the vectors for t under m and lc.
// Complexity: O(K)
func NewTransMatrix(m *model.Model, t *tree.LocalTree, lc *LineageCounts) *TransMatrix {
	k := m.NumTimes()
	times := m.Grid.Times
	steps := m.Grid.Steps
	rho := m.Rho

	tm := &TransMatrix{
		NTimes:    k,
		B:         make([]float64, k),
		C:         make([]float64, k),
		D:         make([]float64, k),
		E:         make([]float64, k),
		G:         make([]float64, k),
		NoRecombs: make([]float64, k),
	}

	treelen := tree.Length(t, m.Grid, false)
	rootAge := t.Nodes[t.Root].Age

	for b := 1; b < k; b++ {
		tm.C[b] = tm.C[b-1] +
			steps[b-1]*float64(lc.NBranches[b-1])/(2*m.Popsizes[b-1])
	}

	for b := 0; b < k-1; b++ {
		// tree length with the thread rising to b; the basal stub
		// follows the higher of b and the root
		treelen2 := treelen + times[b]
		basal := steps[rootAge]
		if b > rootAge {
			treelen2 += times[b] - times[rootAge]
			basal = steps[b]
		}
		treelen2b := treelen2 + basal

		recomb := math.Max(rho*treelen2, rho)
		tm.D[b] = (1 - math.Exp(-recomb)) / treelen2b
		tm.NoRecombs[b] = math.Exp(-recomb)

		coal := 1.0
		if b < k-2 {
			coal = 1 - math.Exp(-steps[b]*float64(lc.NBranches[b])/(2*m.Popsizes[b]))
		}
		tm.E[b] = coal * math.Exp(-tm.C[b]) / float64(lc.NCoals[b])

		w := steps[b] * float64(lc.NBranches[b]+1) / float64(lc.NRecombs[b]+1)
		g := steps[b] / float64(lc.NRecombs[b]+1)
		if b > 0 {
			tm.B[b] = tm.B[b-1]
		}
		tm.B[b] += w * math.Exp(tm.C[b])
		tm.G[b] = g * math.Exp(tm.C[b])
	}
	return tm
}

// Prob returns log P((v1,a) → (v2,b)) for states s1, s2 on the tree
// whose ages give c = age(v1). Exposed for the traceback and tests; the
// forward pass uses ForwardColumn instead.
func (tm *TransMatrix) Prob(t *tree.LocalTree, s1, s2 State) float64 {
	a, b := s1.Time, s2.Time
	ind := 0.0
	if a <= b {
		ind = 1.0
	}
	var p float64
	if s1.Node != s2.Node {
		p = tm.D[a] * tm.E[b] * (tm.B[min(a, b)] - ind*tm.G[a])
	} else {
		c := t.Nodes[s1.Node].Age
		p = tm.D[a] * tm.E[b] *
			(2*tm.B[min(a, b)] - 2*ind*tm.G[a] - tm.B[min(c, b)])
		if a == b {
			p += tm.NoRecombs[a]
		}
	}
	// analytic zeros may round slightly negative
	if p <= 0 {
		return math.Inf(-1)
	}
	return math.Log(p)
}

// ForwardColumn advances a scaled forward vector one site: out[j] =
// emit[j] · Σ_i alpha[i]·P(i→j), exploiting the factorization so the
// whole column costs O(|S| + n·K). states must be in StatesFor order;
// scratch vectors are reused across calls via the workspace.
func (tm *TransMatrix) ForwardColumn(t *tree.LocalTree, states States, alpha, emit, out []float64, ws *forwardWorkspace) {
	k := tm.NTimes
	ws.reset(k)

	// per-time sums of alpha·D across all branches
	for i, s := range states {
		ws.tsum[s.Time] += alpha[i] * tm.D[s.Time]
	}
	// prefix of tsum·(B−G) and suffix of tsum
	acc := 0.0
	for a := 0; a < k; a++ {
		acc += ws.tsum[a] * (tm.B[a] - tm.G[a])
		ws.pre[a] = acc
	}
	acc = 0.0
	for a := k - 1; a >= 0; a-- {
		ws.suf[a] = acc
		acc += ws.tsum[a]
	}

	// off-diagonal mass for every target time b, then per-branch
	// corrections for the same-branch formula and the diagonal
	i := 0
	for i < len(states) {
		v := states[i].Node
		lo := i
		for i < len(states) && states[i].Node == v {
			i++
		}
		// branch-local sums over the same shapes
		bacc := 0.0
		for j := lo; j < i; j++ {
			a := states[j].Time
			tv := alpha[j] * tm.D[a]
			ws.tsumv[a] = tv
			bacc += tv
		}
		pacc := 0.0
		for j := lo; j < i; j++ {
			a := states[j].Time
			pacc += ws.tsumv[a] * (tm.B[a] - tm.G[a])
			ws.prev[a] = pacc
		}
		sacc := 0.0
		for j := i - 1; j >= lo; j-- {
			a := states[j].Time
			ws.sufv[a] = sacc
			sacc += ws.tsumv[a]
		}

		c := t.Nodes[v].Age
		for j := lo; j < i; j++ {
			b := states[j].Time
			all := ws.pre[b] + tm.B[b]*ws.suf[b]
			same := ws.prev[b] + tm.B[b]*ws.sufv[b] - tm.B[min(c, b)]*bacc
			out[j] = emit[j] * (tm.E[b]*(all+same) + alpha[j]*tm.NoRecombs[b])
			if out[j] < 0 {
				out[j] = 0
			}
		}

		// clear branch scratch
		for j := lo; j < i; j++ {
			a := states[j].Time
			ws.tsumv[a] = 0
			ws.prev[a] = 0
			ws.sufv[a] = 0
		}
	}
}

// ForwardColumnDense runs the fused update with a fresh workspace and
// returns the new column. Convenience for tests and one-shot callers;
// the sampler reuses a workspace across the whole pass instead.
func ForwardColumnDense(tm *TransMatrix, t *tree.LocalTree, states States, alpha, emit []float64) []float64 {
	out := make([]float64, len(states))
	tm.ForwardColumn(t, states, alpha, emit, out, newForwardWorkspace(tm.NTimes))
	return out
}

// forwardWorkspace holds the O(K) scratch of ForwardColumn so the per
// site update allocates nothing.
type forwardWorkspace struct {
	tsum, pre, suf    []float64
	tsumv, prev, sufv []float64
}

func newForwardWorkspace(k int) *forwardWorkspace {
	return &forwardWorkspace{
		tsum:  make([]float64, k),
		pre:   make([]float64, k),
		suf:   make([]float64, k),
		tsumv: make([]float64, k),
		prev:  make([]float64, k),
		sufv:  make([]float64, k),
	}
}

func (ws *forwardWorkspace) reset(k int) {
	for i := 0; i < k; i++ {
		ws.tsum[i] = 0
		ws.pre[i] = 0
		ws.suf[i] = 0
	}
}

// StatePriors returns the stationary coalescence distribution over
// states: the probability a fresh lineage survives to interval b and
// coalesces there, shared among the coalescing points. Normalized.
// Complexity: O(|S|)
func StatePriors(m *model.Model, lc *LineageCounts, states States) []float64 {
	k := m.NumTimes()
	steps := m.Grid.Steps

	c := make([]float64, k)
	for b := 1; b < k; b++ {
		c[b] = c[b-1] + steps[b-1]*float64(lc.NBranches[b-1])/(2*m.Popsizes[b-1])
	}

	prior := make([]float64, len(states))
	total := 0.0
	for i, s := range states {
		b := s.Time
		coal := 1.0
		if b < k-2 {
			coal = 1 - math.Exp(-steps[b]*float64(lc.NBranches[b])/(2*m.Popsizes[b]))
		}
		prior[i] = coal * math.Exp(-c[b]) / float64(lc.NCoals[b])
		total += prior[i]
	}
	for i := range prior {
		prior[i] /= total
	}
	return prior
}
