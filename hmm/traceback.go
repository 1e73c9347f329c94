package hmm

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Traceback draws one state path from the forward table, right to left:
// the last state from its forward vector, every earlier state from the
// normalized product alpha_p[i]·P(i → s_{p+1}). The returned path holds
// one (branch,time) state per scanned position, each expressed on its
// own block's tree.
// Complexity: O(L·|S|)
func (ft *ForwardTable) Traceback(rng *rand.Rand) ([]State, error) {
	length := ft.Length()
	if length == 0 {
		return nil, nil
	}

	path := make([]State, length)

	j, err := sampleIndex(rng, ft.alphas[length-1])
	if err != nil {
		return nil, fmt.Errorf("traceback start: %w", err)
	}
	path[length-1] = ft.blocks[ft.blockOf[length-1]].states[j]
	return ft.traceFrom(rng, path, j)
}

// TracebackFrom draws a path conditioned to end in the given state of
// the last block's tree (the right edge of a bounded resampling
// window).
func (ft *ForwardTable) TracebackFrom(rng *rand.Rand, end State) ([]State, error) {
	length := ft.Length()
	if length == 0 {
		return nil, nil
	}
	last := ft.blocks[ft.blockOf[length-1]]
	j := NewStateLookup(last.tree, last.states).Lookup(end.Node, end.Time)
	if j < 0 || ft.alphas[length-1][j] <= 0 {
		return nil, fmt.Errorf("end state %+v: %w", end, ErrNumeric)
	}
	path := make([]State, length)
	path[length-1] = last.states[j]
	return ft.traceFrom(rng, path, j)
}

func (ft *ForwardTable) traceFrom(rng *rand.Rand, path []State, j int) ([]State, error) {
	length := ft.Length()
	weights := make([]float64, 0, 64)

	for p := length - 2; p >= 0; p-- {
		curBlock := ft.blocks[ft.blockOf[p]]
		nextBlock := ft.blocks[ft.blockOf[p+1]]
		alpha := ft.alphas[p]

		if cap(weights) < len(alpha) {
			weights = make([]float64, len(alpha))
		}
		weights = weights[:len(alpha)]
		if curBlock == nextBlock {
			for i := range alpha {
				lp := nextBlock.tm.Prob(curBlock.tree, curBlock.states[i], nextBlock.states[j])
				weights[i] = alpha[i] * math.Exp(lp)
			}
		} else {
			for i := range alpha {
				weights[i] = alpha[i] * math.Exp(nextBlock.sw.Prob(i, j))
			}
		}

		next, err := sampleIndex(rng, weights)
		if err != nil {
			return nil, fmt.Errorf("traceback at offset %d: %w", p, err)
		}
		j = next
		path[p] = curBlock.states[j]
	}
	return path, nil
}

// sampleIndex draws an index proportional to the (unnormalized,
// non-negative) weights.
func sampleIndex(rng *rand.Rand, w []float64) (int, error) {
	total := floats.Sum(w)
	if total <= 0 || math.IsNaN(total) {
		return 0, ErrNumeric
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, v := range w {
		acc += v
		if r < acc {
			return i, nil
		}
	}
	return len(w) - 1, nil
}
