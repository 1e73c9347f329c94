// Package hmm implements the threading hidden Markov model: the machinery
// that scores and samples where one additional lineage (a "thread")
// coalesces into an existing sequence of local trees.
//
// State space:
//
//	For a local tree T, a state (v,i) means "the thread coalesces onto
//	branch v in time interval i". Branch v admits i from its lower
//	node's age up to its parent's age (the root branch runs to K-2), so
//	|S| grows with tree height, not just leaf count.
//
// Compressed transitions:
//
//	Within a block, the transition probability between any two states
//	factors through five time-indexed vectors (B, D, E, G, NoRecombs)
//	plus the cumulative coalescent rate C. The fused ForwardColumn
//	operator exploits the factorization to advance a forward vector in
//	O(|S|+n·K) per site instead of O(|S|²); the matrix entries
//	themselves are exposed only for testing and the traceback.
//
//	Across a block boundary with SPR σ, all but two source states move
//	deterministically (node mapping plus reroutes around the broken
//	branch); the two states at σ's recombination and coalescence points
//	get dense rows. SwitchMatrix stores exactly that.
//
// Emissions:
//
//	Felsenstein pruning under a Jukes-Cantor model, arranged so one
//	O(n) sweep per column (down and up partials) prices every state in
//	O(1). Missing data, ambiguity and masks emit neutrally; with
//	infinite sites on, columns needing more than one mutation are
//	penalized.
//
// Sampling:
//
//	Forward runs the scaled forward recursion left to right, applying a
//	SwitchMatrix at each block seam; Traceback draws a state path right
//	to left from the stored forward vectors. An all-zero column aborts
//	with ErrNumeric (data incompatible under infinite sites).
package hmm
