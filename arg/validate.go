package arg

import (
	"fmt"

	"github.com/skfile/argweaver/tree"
)

// Validate checks the whole-sequence invariants: the first block is a
// null-edge head, every tree is structurally valid, every null edge
// carries a bijective mapping, every non-null edge carries a legal SPR
// consistent with its mapping, and block widths tile [Start,End).
// Complexity: O(#blocks · n · K)
func (lt *LocalTrees) Validate(ntimes int) error {
	if len(lt.Blocks) == 0 {
		if lt.Length() != 0 {
			return fmt.Errorf("empty sequence with nonzero span: %w", ErrInvariantBlocks)
		}
		return nil
	}

	head := lt.Blocks[0]
	if !head.Spr.IsNull() || head.Mapping != nil {
		return fmt.Errorf("first block must be a null-edge head: %w", ErrInvariantBlocks)
	}

	span := 0
	var last *tree.LocalTree
	for i, b := range lt.Blocks {
		if b.Len <= 0 {
			return fmt.Errorf("block %d has width %d: %w", i, b.Len, ErrInvariantBlocks)
		}
		span += b.Len

		if err := tree.Validate(b.Tree, ntimes); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}

		if last != nil {
			if len(b.Mapping) != b.Tree.NumNodes() {
				return fmt.Errorf("block %d mapping length: %w", i, ErrInvariantBlocks)
			}
			if b.Spr.IsNull() {
				if err := validateBijection(b.Mapping); err != nil {
					return fmt.Errorf("block %d: %w", i, err)
				}
			} else if err := tree.ValidateSPR(last, b.Tree, b.Spr, b.Mapping); err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
		}
		last = b.Tree
	}

	if span != lt.Length() {
		return fmt.Errorf("widths sum to %d over span %d: %w", span, lt.Length(), ErrInvariantBlocks)
	}
	return nil
}

func validateBijection(mapping []int) error {
	seen := make([]bool, len(mapping))
	for _, m := range mapping {
		if m == tree.NoNode || m >= len(mapping) || seen[m] {
			return fmt.Errorf("null-edge mapping not a bijection: %w", ErrInvariantBlocks)
		}
		seen[m] = true
	}
	return nil
}
