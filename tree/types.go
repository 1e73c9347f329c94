package tree

import "errors"

// NoNode is the sentinel index for "no node": the parent of the root,
// the children of a leaf, and the image of a broken node in a mapping.
const NoNode = -1

// Sentinel errors for tree and SPR validation.
var (
	// ErrInvariantTree indicates broken parent/child links or a bad root.
	ErrInvariantTree = errors.New("tree: parent/child structure violated")

	// ErrInvariantAge indicates a node at the top time point or a parent
	// younger than a child.
	ErrInvariantAge = errors.New("tree: node age ordering violated")

	// ErrInvariantSPR indicates an SPR that is illegal on its pre-image tree.
	ErrInvariantSPR = errors.New("tree: spr out of branch bounds")

	// ErrInvariantMapping indicates a block mapping inconsistent with its SPR.
	ErrInvariantMapping = errors.New("tree: node mapping inconsistent with spr")
)

// Node is one record in a LocalTree arena. Children are both NoNode for
// a leaf; Parent is NoNode for the root. Age indexes the time grid.
type Node struct {
	Parent   int
	Children [2]int
	Age      int
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool { return n.Children[0] == NoNode }

// LocalTree is a binary coalescent tree over n leaves stored as a
// 2n-1 node arena. Leaves occupy indices 0..n-1.
type LocalTree struct {
	Nodes []Node
	Root  int
}

// Spr is one Subtree-Prune-Regraft operation: the branch above
// RecombNode is cut at RecombTime and regrafted onto the branch above
// CoalNode at CoalTime. The null form (all fields NoNode) denotes
// identity between adjacent blocks.
type Spr struct {
	RecombNode int
	RecombTime int
	CoalNode   int
	CoalTime   int
}

// NullSpr returns the identity SPR.
func NullSpr() Spr {
	return Spr{RecombNode: NoNode, RecombTime: NoNode, CoalNode: NoNode, CoalTime: NoNode}
}

// IsNull reports whether s denotes identity.
func (s Spr) IsNull() bool { return s.RecombNode == NoNode }

// SetNull resets s to the identity form.
func (s *Spr) SetNull() { *s = NullSpr() }
