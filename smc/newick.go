package smc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// ErrNewick indicates a malformed newick string.
var ErrNewick = errors.New("smc: malformed newick")

// formatNewick renders one exported tree: labels are the exported node
// labels, branch lengths in generations come from the age difference to
// the parent.
func formatNewick(parents, ages []int, grid *model.TimeGrid) string {
	n := len(parents)
	children := make([][]int, n)
	root := -1
	for i, p := range parents {
		if p == tree.NoNode {
			root = i
			continue
		}
		children[p] = append(children[p], i)
	}

	var sb strings.Builder
	var render func(v int)
	render = func(v int) {
		if len(children[v]) > 0 {
			sb.WriteByte('(')
			for k, c := range children[v] {
				if k > 0 {
					sb.WriteByte(',')
				}
				render(c)
			}
			sb.WriteByte(')')
		}
		sb.WriteString(strconv.Itoa(v))
		if p := parents[v]; p != tree.NoNode {
			blen := grid.Times[ages[p]] - grid.Times[ages[v]]
			fmt.Fprintf(&sb, ":%g", blen)
		}
	}
	render(root)
	sb.WriteByte(';')
	return sb.String()
}

// newickNode is one parsed vertex before arena placement.
type newickNode struct {
	label    int
	brlen    float64
	children []*newickNode
}

// parseNewick parses a labeled newick string with branch lengths.
func parseNewick(s string) (*newickNode, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
	node, rest, err := parseSubtree(s)
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, fmt.Errorf("trailing %q: %w", rest, ErrNewick)
	}
	return node, nil
}

func parseSubtree(s string) (*newickNode, string, error) {
	node := &newickNode{}
	if strings.HasPrefix(s, "(") {
		s = s[1:]
		for {
			child, rest, err := parseSubtree(s)
			if err != nil {
				return nil, "", err
			}
			node.children = append(node.children, child)
			s = rest
			if strings.HasPrefix(s, ",") {
				s = s[1:]
				continue
			}
			if strings.HasPrefix(s, ")") {
				s = s[1:]
				break
			}
			return nil, "", fmt.Errorf("unbalanced subtree: %w", ErrNewick)
		}
	}

	// label[:brlen]
	end := strings.IndexAny(s, ",()")
	token := s
	rest := ""
	if end >= 0 {
		token, rest = s[:end], s[end:]
	}
	label := token
	node.brlen = math.NaN()
	if colon := strings.IndexByte(token, ':'); colon >= 0 {
		label = token[:colon]
		blen, err := strconv.ParseFloat(token[colon+1:], 64)
		if err != nil {
			return nil, "", fmt.Errorf("branch length %q: %w", token, ErrNewick)
		}
		node.brlen = blen
	}
	id, err := strconv.Atoi(label)
	if err != nil {
		return nil, "", fmt.Errorf("label %q: %w", label, ErrNewick)
	}
	node.label = id
	return node, rest, nil
}

// buildTree places a parsed newick into an arena, snapping node heights
// to the nearest grid time point.
func buildTree(root *newickNode, nnodes int, grid *model.TimeGrid) (*tree.LocalTree, error) {
	t := tree.New(nnodes)
	placed := make([]bool, nnodes)

	var place func(n *newickNode, parent int) (float64, error)
	place = func(n *newickNode, parent int) (float64, error) {
		if n.label < 0 || n.label >= nnodes || placed[n.label] {
			return 0, fmt.Errorf("label %d out of range: %w", n.label, ErrNewick)
		}
		if len(n.children) > 2 || len(n.children) == 1 {
			return 0, fmt.Errorf("tree is not binary: %w", ErrNewick)
		}
		placed[n.label] = true
		t.Nodes[n.label].Parent = parent

		height := 0.0
		for k, c := range n.children {
			h, err := place(c, n.label)
			if err != nil {
				return 0, err
			}
			t.Nodes[n.label].Children[k] = c.label
			height = h + c.brlen
		}
		t.Nodes[n.label].Age = snapAge(height, grid)
		return height, nil
	}
	if _, err := place(root, tree.NoNode); err != nil {
		return nil, err
	}
	t.SetRoot()
	return t, nil
}

// snapAge maps a height in generations to the nearest grid index below
// the top point.
func snapAge(h float64, grid *model.TimeGrid) int {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i < grid.NumTimes()-1; i++ {
		if d := math.Abs(grid.Times[i] - h); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
