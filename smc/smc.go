package smc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/tree"
)

// ErrFormat indicates a malformed SMC record.
var ErrFormat = errors.New("smc: malformed input")

// WriteARG serializes a block sequence: NAMES and REGION headers, then
// alternating TREE and SPR records through the canonical exporter.
// names is indexed by sequence id.
func WriteARG(w io.Writer, lt *arg.LocalTrees, names []string, grid *model.TimeGrid) error {
	// names is indexed by sequence id, which is exactly the exported
	// leaf label, so the header lists it verbatim
	if _, err := fmt.Fprintf(w, "NAMES\t%s\n", strings.Join(names, "\t")); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "REGION\t%s\t%d\t%d\n", lt.Chrom, lt.Start+1, lt.End); err != nil {
		return err
	}

	ex := lt.Export()
	pos := lt.Start
	for i := range ex.Parents {
		if !ex.Sprs[i].IsNull() {
			s := ex.Sprs[i]
			if _, err := fmt.Fprintf(w, "SPR\t%d\t%d\t%g\t%d\t%g\n",
				pos, s.RecombNode, grid.Times[s.RecombTime],
				s.CoalNode, grid.Times[s.CoalTime]); err != nil {
				return err
			}
		}
		end := pos + ex.Lens[i]
		if _, err := fmt.Fprintf(w, "TREE\t%d\t%d\t%s\n",
			pos+1, end, formatNewick(ex.Parents[i], ex.Ages[i], grid)); err != nil {
			return err
		}
		pos = end
	}
	return nil
}

// ReadARG parses an SMC stream back into a block sequence, rebuilding
// the per-edge node mappings and validating the result. Leaf indices
// follow the order of the NAMES header; the returned names slice maps
// sequence id to name.
func ReadARG(r io.Reader, grid *model.TimeGrid) (*arg.LocalTrees, []string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var names []string
	var lt *arg.LocalTrees
	var pending tree.Spr
	havePending := false
	nnodes := 0
	lineno := 0
	declaredEnd := 0

	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")

		switch fields[0] {
		case "NAMES":
			names = fields[1:]
			nnodes = 2*len(names) - 1

		case "REGION":
			if len(fields) != 4 || names == nil {
				return nil, nil, fmt.Errorf("line %d: bad REGION: %w", lineno, ErrFormat)
			}
			start, err1 := strconv.Atoi(fields[2])
			end, err2 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil || end < start {
				return nil, nil, fmt.Errorf("line %d: bad REGION coordinates: %w", lineno, ErrFormat)
			}
			seqids := make([]int, len(names))
			for i := range seqids {
				seqids[i] = i
			}
			lt = arg.New(fields[1], start-1, seqids)
			declaredEnd = end

		case "SPR":
			if lt == nil || len(fields) != 6 {
				return nil, nil, fmt.Errorf("line %d: bad SPR: %w", lineno, ErrFormat)
			}
			rn, err1 := strconv.Atoi(fields[2])
			rt, err2 := strconv.ParseFloat(fields[3], 64)
			cn, err3 := strconv.Atoi(fields[4])
			ct, err4 := strconv.ParseFloat(fields[5], 64)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				return nil, nil, fmt.Errorf("line %d: bad SPR fields: %w", lineno, ErrFormat)
			}
			pending = tree.Spr{
				RecombNode: rn,
				RecombTime: snapAge(rt, grid),
				CoalNode:   cn,
				CoalTime:   snapAge(ct, grid),
			}
			havePending = true

		case "TREE":
			if lt == nil || len(fields) != 4 {
				return nil, nil, fmt.Errorf("line %d: bad TREE: %w", lineno, ErrFormat)
			}
			start, err1 := strconv.Atoi(fields[1])
			end, err2 := strconv.Atoi(fields[2])
			if err1 != nil || err2 != nil || end < start {
				return nil, nil, fmt.Errorf("line %d: bad TREE span: %w", lineno, ErrFormat)
			}
			root, err := parseNewick(fields[3])
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineno, err)
			}
			t, err := buildTree(root, nnodes, grid)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", lineno, err)
			}

			b := &arg.Block{Tree: t, Spr: tree.NullSpr(), Len: end - start + 1}
			if len(lt.Blocks) > 0 {
				prev := lt.Blocks[len(lt.Blocks)-1].Tree
				mapping := make([]int, nnodes)
				if havePending {
					b.Spr = pending
					tree.MappingAfterSPR(prev, pending, mapping)
				} else {
					tree.MappingAfterSPR(prev, tree.NullSpr(), mapping)
				}
				b.Mapping = mapping
			}
			havePending = false
			lt.Push(b)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if lt == nil {
		return nil, nil, fmt.Errorf("missing headers: %w", ErrFormat)
	}
	if lt.End != declaredEnd {
		return nil, nil, fmt.Errorf("blocks span %d, region ends at %d: %w",
			lt.End, declaredEnd, ErrFormat)
	}
	if err := lt.Validate(grid.NumTimes()); err != nil {
		return nil, nil, err
	}
	return lt, names, nil
}
