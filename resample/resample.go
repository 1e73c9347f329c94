package resample

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/hmm"
	"github.com/skfile/argweaver/model"
	"github.com/skfile/argweaver/thread"
)

// ErrTooFewLeaves indicates a sequence with fewer than two lineages;
// there is nothing to resample.
var ErrTooFewLeaves = errors.New("resample: need at least two lineages")

// Options configures a Resampler.
type Options struct {
	// Window bounds the resampled region width; 0 re-threads whole
	// chromosomes.
	Window int

	// Logger receives per-iteration progress; nil disables logging.
	Logger *logrus.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithWindow bounds each resampled region to at most w sites.
func WithWindow(w int) Option {
	return func(o *Options) { o.Window = w }
}

// WithLogger attaches a structured logger for per-iteration progress.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Resampler re-threads one lineage at a time through a block sequence.
type Resampler struct {
	model *model.Model
	seqs  hmm.SequenceSource
	rng   *rand.Rand
	opts  Options
}

// New builds a Resampler over m and seqs driven by rng.
func New(m *model.Model, seqs hmm.SequenceSource, rng *rand.Rand, opts ...Option) *Resampler {
	r := &Resampler{model: m, seqs: seqs, rng: rng}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// Step removes the given lineage over one region and re-threads it,
// returning the updated sequence. With no window configured the whole
// chromosome is re-threaded from the prior; with a window, the pass is
// conditioned to rejoin the surrounding ARG at both edges. On a
// recoverable numeric failure the input is returned unchanged together
// with the error.
func (r *Resampler) Step(lt *arg.LocalTrees, seqid int) (*arg.LocalTrees, error) {
	if lt.NumLeaves() < 2 {
		return lt, ErrTooFewLeaves
	}
	k := r.model.NumTimes()

	if r.opts.Window <= 0 || r.opts.Window >= lt.Length() {
		return r.rethread(lt, seqid, nil, nil)
	}

	// pick a window [a,b) and condition on the attachment at its edges;
	// edges slide off existing block boundaries so that splitting and
	// re-suturing always joins congruent trees
	width := r.opts.Window
	a := lt.Start + r.rng.Intn(lt.Length()-width+1)
	b := a + width
	a = slideOffBoundary(lt, a, lt.Start)
	b = slideOffBoundary(lt, b, a+1)

	start, err := thread.AttachmentState(lt, a, seqid)
	if err != nil {
		return lt, err
	}
	end, err := thread.AttachmentState(lt, b-1, seqid)
	if err != nil {
		return lt, err
	}

	work := cloneSequence(lt)
	var left, right *arg.LocalTrees
	mid := work
	if a > work.Start {
		mid, err = work.Partition(a)
		if err != nil {
			return lt, err
		}
		left = work
	}
	if b < mid.End {
		right, err = mid.Partition(b)
		if err != nil {
			return lt, err
		}
	}

	mid2, err := r.rethread(mid, seqid, &start, &end)
	if err != nil {
		return lt, err
	}

	if left == nil {
		left = mid2
	} else if err := arg.Append(left, mid2); err != nil {
		return lt, err
	}
	if right != nil {
		if err := arg.Append(left, right); err != nil {
			return lt, err
		}
	}
	left.RemoveNullSPRs()
	if err := left.Validate(k); err != nil {
		return lt, err
	}
	return left, nil
}

// rethread strips seqid from lt and samples a fresh threading for it,
// optionally conditioned at the edges.
func (r *Resampler) rethread(lt *arg.LocalTrees, seqid int, start, end *hmm.State) (*arg.LocalTrees, error) {
	k := r.model.NumTimes()

	resid, err := thread.Remove(lt, k, seqid)
	if err != nil {
		return lt, err
	}

	var passOpts []hmm.PassOption
	if start != nil {
		passOpts = append(passOpts, hmm.WithStartState(*start))
	}
	ft, err := hmm.ForwardPass(r.model, resid, r.seqs, seqid, passOpts...)
	if err != nil {
		return lt, err
	}

	var path []hmm.State
	if end != nil {
		path, err = ft.TracebackFrom(r.rng, *end)
	} else {
		path, err = ft.Traceback(r.rng)
	}
	if err != nil {
		return lt, err
	}

	out, err := thread.Add(r.model, resid, path, seqid, r.rng)
	if err != nil {
		return lt, err
	}
	if err := out.PermuteLeaves(lt.SeqIDs); err != nil {
		return lt, err
	}
	out.RemoveNullSPRs()
	return out, nil
}

// slideOffBoundary moves pos left until it is no longer the first
// position of a block (or hits floor). A split at a block's first
// position would sever a recombination edge and leave incongruent
// suture trees.
func slideOffBoundary(lt *arg.LocalTrees, pos, floor int) int {
	for pos > floor {
		_, blockStart, err := lt.BlockAt(pos)
		if err != nil || pos != blockStart {
			break
		}
		pos--
	}
	return pos
}

// cloneSequence deep-copies a block sequence so partitioning cannot
// disturb the caller's copy.
func cloneSequence(lt *arg.LocalTrees) *arg.LocalTrees {
	out := arg.New(lt.Chrom, lt.Start, lt.SeqIDs)
	for _, b := range lt.Blocks {
		var mapping []int
		if b.Mapping != nil {
			mapping = append([]int(nil), b.Mapping...)
		}
		out.Push(&arg.Block{Tree: b.Tree.Clone(), Spr: b.Spr, Mapping: mapping, Len: b.Len})
	}
	return out
}

func (r *Resampler) logStep(s Stats) {
	if r.opts.Logger == nil {
		return
	}
	r.opts.Logger.WithFields(logrus.Fields{
		"iter":       s.Iter,
		"joint":      s.Joint,
		"likelihood": s.Likelihood,
		"prior":      s.Prior,
		"recombs":    s.Recombs,
		"arglen":     s.ARGLen,
	}).Info("resample iteration")
}

func (r *Resampler) String() string {
	return fmt.Sprintf("resampler(window=%d)", r.opts.Window)
}
