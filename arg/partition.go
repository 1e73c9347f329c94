package arg

import (
	"fmt"

	"github.com/skfile/argweaver/tree"
)

// Partition splits lt at pos into (lt, right): lt keeps [Start,pos),
// the returned sequence owns [pos,End). A block straddling pos is split
// in two, the left half a clone so the halves share no tree storage.
// The right sequence starts fresh: its first block gets a null SPR and
// no mapping (the severed edge is re-established by Append).
// Complexity: O(#blocks + n)
func (lt *LocalTrees) Partition(pos int) (*LocalTrees, error) {
	idx, blockStart, err := lt.BlockAt(pos)
	if err != nil {
		return nil, fmt.Errorf("partition at %d: %w", pos, err)
	}

	right := New(lt.Chrom, pos, lt.SeqIDs)
	right.Blocks = append(right.Blocks, lt.Blocks[idx:]...)
	right.End = lt.End

	first := right.Blocks[0]
	if pos > blockStart {
		// keep the left half of the straddling block
		var mapping []int
		if first.Mapping != nil {
			mapping = append([]int(nil), first.Mapping...)
		}
		left := &Block{
			Tree:    first.Tree.Clone(),
			Spr:     first.Spr,
			Mapping: mapping,
			Len:     pos - blockStart,
		}
		lt.Blocks = append(lt.Blocks[:idx:idx], left)
		first.Len -= pos - blockStart
	} else {
		lt.Blocks = lt.Blocks[:idx:idx]
	}
	first.Spr.SetNull()
	first.Mapping = nil
	lt.End = pos

	return right, nil
}

// Append concatenates other onto lt, which must abut it and share the
// same leaf id table. The suture mapping is recomputed by congruent
// reconciliation and the redundant null edge dissolved; other is left
// empty. The two sequences' boundary trees must be congruent.
// Complexity: O(#blocks + n²)
func Append(lt, other *LocalTrees) error {
	if len(other.Blocks) == 0 {
		return nil
	}
	if lt.End != other.Start {
		return fmt.Errorf("append at %d vs %d: %w", lt.End, other.Start, ErrOutOfRange)
	}
	if len(lt.SeqIDs) != len(other.SeqIDs) {
		return ErrSeqIDMismatch
	}
	for i := range lt.SeqIDs {
		if lt.SeqIDs[i] != other.SeqIDs[i] {
			return ErrSeqIDMismatch
		}
	}

	last := len(lt.Blocks) - 1
	lt.Blocks = append(lt.Blocks, other.Blocks...)
	lt.End = other.End
	other.Blocks = nil
	other.End = other.Start

	if last < 0 {
		// lt was empty; other's first block is already a valid head
		return nil
	}

	suture := lt.Blocks[last+1]
	suture.Mapping = tree.MapCongruent(
		lt.Blocks[last].Tree, lt.SeqIDs, suture.Tree, lt.SeqIDs)
	if !lt.removeNullSPRAfter(last) {
		return ErrInvariantBlocks
	}
	return nil
}
