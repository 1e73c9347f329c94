package smc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/smc"
	"github.com/skfile/argweaver/tree"
)

const ntimes = 6

func testGrid(t *testing.T) *model.TimeGrid {
	t.Helper()
	g, err := model.NewTimeGrid([]float64{0, 100, 500, 2000, 8000, 30000})
	require.NoError(t, err)
	return g
}

func twoBlockARG(t *testing.T) *arg.LocalTrees {
	t.Helper()
	t1 := tree.NewFromParents([]int{3, 3, 4, 4, tree.NoNode}, []int{0, 0, 0, 1, 3})
	spr := tree.Spr{RecombNode: 0, RecombTime: 0, CoalNode: 2, CoalTime: 2}
	t2 := t1.Clone()
	tree.ApplySPR(t2, spr)
	mapping := make([]int, t1.NumNodes())
	tree.MappingAfterSPR(t1, spr, mapping)

	lt := arg.New("chr1", 0, []int{0, 1, 2})
	lt.Push(&arg.Block{Tree: t1, Spr: tree.NullSpr(), Len: 60})
	lt.Push(&arg.Block{Tree: t2, Spr: spr, Mapping: mapping, Len: 40})
	require.NoError(t, lt.Validate(ntimes))
	return lt
}

// TestWriteARG_Records checks headers and record layout.
func TestWriteARG_Records(t *testing.T) {
	g := testGrid(t)
	lt := twoBlockARG(t)

	var buf bytes.Buffer
	require.NoError(t, smc.WriteARG(&buf, lt, []string{"s0", "s1", "s2"}, g))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "NAMES\ts0\ts1\ts2", lines[0])
	assert.Equal(t, "REGION\tchr1\t1\t100", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "TREE\t1\t60\t"))
	assert.True(t, strings.HasPrefix(lines[3], "SPR\t60\t0\t0\t2\t500"))
	assert.True(t, strings.HasPrefix(lines[4], "TREE\t61\t100\t"))
}

// TestRoundTrip is spec property 6: serialize then parse back yields a
// structurally equal sequence. The format records parents and ages but
// not the order of a node's two children, so children compare as a set.
func TestRoundTrip(t *testing.T) {
	g := testGrid(t)
	lt := twoBlockARG(t)

	var buf bytes.Buffer
	require.NoError(t, smc.WriteARG(&buf, lt, []string{"s0", "s1", "s2"}, g))

	back, names, err := smc.ReadARG(&buf, g)
	require.NoError(t, err)
	require.NoError(t, back.Validate(ntimes))

	assert.Equal(t, []string{"s0", "s1", "s2"}, names)
	assert.Equal(t, lt.Start, back.Start)
	assert.Equal(t, lt.End, back.End)
	require.Len(t, back.Blocks, len(lt.Blocks))
	for i := range lt.Blocks {
		assert.Equal(t, lt.Blocks[i].Len, back.Blocks[i].Len, "block %d", i)
		assert.Equal(t, lt.Blocks[i].Spr, back.Blocks[i].Spr, "block %d", i)
		require.Len(t, back.Blocks[i].Tree.Nodes, len(lt.Blocks[i].Tree.Nodes), "block %d", i)
		for j, want := range lt.Blocks[i].Tree.Nodes {
			got := back.Blocks[i].Tree.Nodes[j]
			assert.Equal(t, want.Parent, got.Parent, "block %d node %d", i, j)
			assert.Equal(t, want.Age, got.Age, "block %d node %d", i, j)
			assert.ElementsMatch(t, want.Children, got.Children, "block %d node %d", i, j)
		}
	}
}

// TestReadARG_Malformed rejects broken headers and records.
func TestReadARG_Malformed(t *testing.T) {
	g := testGrid(t)

	cases := map[string]string{
		"no headers":    "TREE\t1\t10\t(0:1,1:1)2;\n",
		"bad region":    "NAMES\ta\tb\nREGION\tchr1\tx\t10\n",
		"bad spr":       "NAMES\ta\tb\nREGION\tchr1\t1\t10\nSPR\t5\t0\n",
		"short newick":  "NAMES\ta\tb\nREGION\tchr1\t1\t10\nTREE\t1\t10\t((;\n",
		"span mismatch": "NAMES\ta\tb\nREGION\tchr1\t1\t20\nTREE\t1\t10\t(0:100,1:100)2;\n",
	}
	for name, text := range cases {
		_, _, err := smc.ReadARG(strings.NewReader(text), g)
		assert.Error(t, err, name)
	}
}

// TestNewick_AgesSnap: branch lengths written from the grid snap back
// to exact age indices.
func TestNewick_AgesSnap(t *testing.T) {
	g := testGrid(t)
	lt := twoBlockARG(t)

	var buf bytes.Buffer
	require.NoError(t, smc.WriteARG(&buf, lt, []string{"s0", "s1", "s2"}, g))
	back, _, err := smc.ReadARG(&buf, g)
	require.NoError(t, err)

	for i, b := range back.Blocks {
		for j, n := range b.Tree.Nodes {
			assert.Equal(t, lt.Blocks[i].Tree.Nodes[j].Age, n.Age,
				"block %d node %d", i, j)
		}
	}
}
