package sites

import (
	"errors"
	"sort"
)

// Sentinel errors for the sites format.
var (
	// ErrFormat indicates a malformed header or data line.
	ErrFormat = errors.New("sites: malformed input")

	// ErrOrder indicates data rows not strictly increasing in position.
	ErrOrder = errors.New("sites: positions must strictly increase")

	// ErrColumnWidth indicates a column whose length differs from the
	// number of named sequences.
	ErrColumnWidth = errors.New("sites: column width does not match names")
)

// Background is the base served at positions without a data row. Any
// uniform base yields the same invariant-column likelihood under
// Jukes-Cantor.
const Background byte = 'A'

// Region is a half-open genomic interval.
type Region struct {
	Start int
	End   int
}

// Sites is a sparse alignment over named sequences on one chromosome.
// Coordinates are 0-based half-open.
type Sites struct {
	Names []string
	Chrom string
	Start int
	End   int

	Unphased bool

	positions []int
	columns   [][]byte
	masks     []Region
}

// New returns an empty alignment covering [start,end) on chrom.
func New(chrom string, start, end int, names []string) *Sites {
	return &Sites{
		Names: append([]string(nil), names...),
		Chrom: chrom,
		Start: start,
		End:   end,
	}
}

// NumSeqs returns the number of named sequences.
func (s *Sites) NumSeqs() int { return len(s.Names) }

// NumSites returns the number of stored (variant) positions.
func (s *Sites) NumSites() int { return len(s.positions) }

// Append adds a column at pos, which must exceed all prior positions.
func (s *Sites) Append(pos int, column []byte) error {
	if len(column) != len(s.Names) {
		return ErrColumnWidth
	}
	if n := len(s.positions); n > 0 && pos <= s.positions[n-1] {
		return ErrOrder
	}
	s.positions = append(s.positions, pos)
	s.columns = append(s.columns, append([]byte(nil), column...))
	return nil
}

// SetMasks installs masked regions; positions under a mask serve 'N'.
func (s *Sites) SetMasks(masks []Region) {
	s.masks = append([]Region(nil), masks...)
}

// Masked reports whether pos falls under a mask.
func (s *Sites) Masked(pos int) bool {
	for _, m := range s.masks {
		if pos >= m.Start && pos < m.End {
			return true
		}
	}
	return false
}

// Column returns the stored column at pos and whether one exists.
// Complexity: O(log n)
func (s *Sites) Column(pos int) ([]byte, bool) {
	i := sort.SearchInts(s.positions, pos)
	if i < len(s.positions) && s.positions[i] == pos {
		return s.columns[i], true
	}
	return nil, false
}

// Base serves the nucleotide of sequence seqid at pos: 'N' under a
// mask, the stored column base at a variant site, and the uniform
// background otherwise. Implements the sampler's SequenceSource.
func (s *Sites) Base(seqid, pos int) byte {
	if seqid < 0 || seqid >= len(s.Names) || s.Masked(pos) {
		return 'N'
	}
	if col, ok := s.Column(pos); ok {
		return col[seqid]
	}
	return Background
}

// Positions exposes the stored variant positions in order.
func (s *Sites) Positions() []int { return s.positions }
