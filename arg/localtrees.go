package arg

import (
	"errors"

	"github.com/skfile/argweaver/tree"
)

// Sentinel errors for block-sequence operations.
var (
	// ErrOutOfRange indicates a position outside [Start,End).
	ErrOutOfRange = errors.New("arg: position outside the sequence")

	// ErrSeqIDMismatch indicates two sequences whose leaf id tables differ.
	ErrSeqIDMismatch = errors.New("arg: sequence id tables differ")

	// ErrInvariantBlocks indicates a broken block-sequence invariant.
	ErrInvariantBlocks = errors.New("arg: block sequence invariant violated")
)

// Block is one maximal genomic interval over which the local tree is
// constant. Spr carries the block into existence from its predecessor
// (null on the first block); Mapping sends the predecessor's node
// indices into this block's arena (nil on the first block).
type Block struct {
	Tree    *tree.LocalTree
	Spr     tree.Spr
	Mapping []int
	Len     int
}

// LocalTrees is an ordered block sequence spanning [Start,End) on a
// chromosome, plus the permutation SeqIDs giving the external sequence
// id of each leaf index.
type LocalTrees struct {
	Chrom  string
	Start  int
	End    int
	SeqIDs []int
	Blocks []*Block
}

// New returns an empty sequence anchored at start with the given leaf
// id table. Blocks are appended with Push.
func New(chrom string, start int, seqids []int) *LocalTrees {
	return &LocalTrees{
		Chrom:  chrom,
		Start:  start,
		End:    start,
		SeqIDs: append([]int(nil), seqids...),
	}
}

// Push appends a block and extends End by its width.
func (lt *LocalTrees) Push(b *Block) {
	lt.Blocks = append(lt.Blocks, b)
	lt.End += b.Len
}

// Length returns the spanned width End-Start.
func (lt *LocalTrees) Length() int { return lt.End - lt.Start }

// NumLeaves returns the number of leaves of every tree in the sequence.
func (lt *LocalTrees) NumLeaves() int { return len(lt.SeqIDs) }

// NumNodes returns the arena size 2n-1 of every tree in the sequence.
func (lt *LocalTrees) NumNodes() int { return 2*len(lt.SeqIDs) - 1 }

// BlockAt returns the index and start coordinate of the block
// containing pos.
// Complexity: O(#blocks)
func (lt *LocalTrees) BlockAt(pos int) (idx, blockStart int, err error) {
	if pos < lt.Start || pos >= lt.End {
		return 0, 0, ErrOutOfRange
	}
	start := lt.Start
	for i, b := range lt.Blocks {
		if pos < start+b.Len {
			return i, start, nil
		}
		start += b.Len
	}
	return 0, 0, ErrOutOfRange
}

// TreeAt returns the local tree governing pos.
func (lt *LocalTrees) TreeAt(pos int) (*tree.LocalTree, error) {
	i, _, err := lt.BlockAt(pos)
	if err != nil {
		return nil, err
	}
	return lt.Blocks[i].Tree, nil
}

// removeNullSPRAfter dissolves the edge between Blocks[i] and
// Blocks[i+1] when that edge is null: the two blocks describe the same
// tree, so the earlier one is absorbed into the later and widths sum.
// Returns false when the edge is absent or non-null.
func (lt *LocalTrees) removeNullSPRAfter(i int) bool {
	if i+1 >= len(lt.Blocks) {
		return false
	}
	next := lt.Blocks[i+1]
	if !next.Spr.IsNull() {
		return false
	}
	cur := lt.Blocks[i]

	if cur.Mapping == nil {
		// next becomes the first block and needs no mapping
		next.Mapping = nil
	} else {
		// compose the two mappings and inherit the earlier edge's SPR
		composed := make([]int, len(cur.Mapping))
		for j, m := range cur.Mapping {
			if m == tree.NoNode {
				composed[j] = tree.NoNode
			} else {
				composed[j] = next.Mapping[m]
			}
		}
		next.Mapping = composed
		next.Spr = cur.Spr
	}

	next.Len += cur.Len
	lt.Blocks = append(lt.Blocks[:i], lt.Blocks[i+1:]...)
	return true
}

// RemoveNullSPRs dissolves every null edge in the sequence.
// Complexity: O(#blocks · n)
func (lt *LocalTrees) RemoveNullSPRs() {
	for i := 0; i < len(lt.Blocks); {
		if !lt.removeNullSPRAfter(i) {
			i++
		}
	}
}
