package resample_test

import (
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	xrand "golang.org/x/exp/rand"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/resample"
)

const ntimes = 6

func testModel(t *testing.T) *model.Model {
	t.Helper()
	g, err := model.NewLogTimeGrid(ntimes, 200e3, model.DefaultDelta)
	require.NoError(t, err)
	m, err := model.New(g, 1e4, 2e-8, 1.5e-8)
	require.NoError(t, err)
	return m
}

// uniformSeqs serves the same base for every sequence and position;
// every threading is data-equivalent, so steps exercise the machinery
// end to end without contrived alignments.
type uniformSeqs struct{}

func (uniformSeqs) Base(seqid, pos int) byte { return 'A' }

func priorARG(t *testing.T, m *model.Model, n, length int, seed uint64) *arg.LocalTrees {
	t.Helper()
	lt := arg.SamplePrior(m, "chr1", 0, length, n, xrand.NewSource(seed))
	require.NoError(t, lt.Validate(ntimes))
	return lt
}

// TestStep_WholeChromosome re-threads each lineage of a prior ARG and
// keeps the sequence valid throughout.
func TestStep_WholeChromosome(t *testing.T) {
	m := testModel(t)
	lt := priorARG(t, m, 4, 50, 3)
	r := resample.New(m, uniformSeqs{}, rand.New(rand.NewSource(1)))

	cur := lt
	for _, seqid := range []int{0, 1, 2, 3} {
		next, err := r.Step(cur, seqid)
		require.NoError(t, err, "seqid %d", seqid)
		require.NoError(t, next.Validate(ntimes), "seqid %d", seqid)
		assert.Equal(t, lt.SeqIDs, next.SeqIDs, "leaf order restored")
		assert.Equal(t, lt.Length(), next.Length())
		cur = next
	}
}

// TestStep_Deterministic is scenario S5: resampling the same leaf twice
// from the same state with the same seed reproduces the same ARG.
func TestStep_Deterministic(t *testing.T) {
	m := testModel(t)
	lt := priorARG(t, m, 4, 40, 7)

	run := func() *arg.LocalTrees {
		r := resample.New(m, uniformSeqs{}, rand.New(rand.NewSource(99)))
		out, err := r.Step(lt, 2)
		require.NoError(t, err)
		return out
	}
	a, b := run(), run()

	require.Len(t, b.Blocks, len(a.Blocks))
	for i := range a.Blocks {
		assert.Equal(t, a.Blocks[i].Len, b.Blocks[i].Len)
		assert.Equal(t, a.Blocks[i].Tree.Nodes, b.Blocks[i].Tree.Nodes)
		assert.Equal(t, a.Blocks[i].Spr, b.Blocks[i].Spr)
	}
}

// TestStep_Window resamples a bounded region; the ARG outside the
// window keeps its length and leaf table.
func TestStep_Window(t *testing.T) {
	m := testModel(t)
	lt := priorARG(t, m, 4, 80, 11)
	r := resample.New(m, uniformSeqs{}, rand.New(rand.NewSource(5)),
		resample.WithWindow(30))

	next, err := r.Step(lt, 1)
	require.NoError(t, err)
	require.NoError(t, next.Validate(ntimes))
	assert.Equal(t, lt.Length(), next.Length())
	assert.Equal(t, lt.SeqIDs, next.SeqIDs)
}

// TestStep_SingleLeafNoOp: with one lineage there is nothing to thread.
func TestStep_SingleLeafNoOp(t *testing.T) {
	m := testModel(t)
	lt := priorARG(t, m, 1, 20, 1)
	r := resample.New(m, uniformSeqs{}, rand.New(rand.NewSource(1)))

	out, err := r.Step(lt, 0)
	assert.ErrorIs(t, err, resample.ErrTooFewLeaves)
	assert.Same(t, lt, out, "input returned unchanged")
}

// TestRun_StatsStream checks the TSV header and one row per iteration.
func TestRun_StatsStream(t *testing.T) {
	m := testModel(t)
	lt := priorARG(t, m, 3, 30, 13)
	r := resample.New(m, uniformSeqs{}, rand.New(rand.NewSource(2)))

	var buf bytes.Buffer
	_, err := r.Run(lt, 3, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "iter\tjoint\tlikelihood\tprior\trecombs\targlen", lines[0])
	for i, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, 6)
		assert.Equal(t, strconv.Itoa(i), fields[0])
	}
}

// TestMeasure_JointDecomposition: joint = prior + likelihood.
func TestMeasure_JointDecomposition(t *testing.T) {
	m := testModel(t)
	lt := priorARG(t, m, 3, 25, 17)
	r := resample.New(m, uniformSeqs{}, rand.New(rand.NewSource(3)))

	s := r.Measure(0, lt)
	assert.InDelta(t, s.Prior+s.Likelihood, s.Joint, 1e-12)
	assert.Equal(t, 0, s.Recombs, "a prior draw has a single block")
	assert.Greater(t, s.ARGLen, 0.0)
}
