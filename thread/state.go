package thread

import (
	"fmt"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/hmm"
)

// AttachmentState reports where seqid's lineage joins the tree
// governing pos, expressed on the RESIDUAL arena that Remove would
// produce: the branch is the leaf's sibling (renumbered for the two
// removed slots) and the time is the attachment node's age. Used to
// condition a bounded-window resample at its edges.
// Complexity: O(#blocks + n)
func AttachmentState(lt *arg.LocalTrees, pos, seqid int) (hmm.State, error) {
	leafIdx := -1
	for i, id := range lt.SeqIDs {
		if id == seqid {
			leafIdx = i
			break
		}
	}
	if leafIdx < 0 {
		return hmm.State{}, fmt.Errorf("seqid %d: %w", seqid, ErrLeafNotFound)
	}

	t, err := lt.TreeAt(pos)
	if err != nil {
		return hmm.State{}, err
	}
	att := t.Nodes[leafIdx].Parent
	sib := t.Sibling(leafIdx)

	// residual index: leaves compact over the removed leaf, internals
	// over the removed attachment node
	rIdx := sib
	if leafIdx < sib {
		rIdx--
	}
	if att < sib {
		rIdx--
	}
	return hmm.State{Node: rIdx, Time: t.Nodes[att].Age}, nil
}
