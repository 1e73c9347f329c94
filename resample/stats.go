package resample

import (
	"fmt"
	"io"

	"github.com/skfile/argweaver/arg"
	"github.com/skfile/argweaver/hmm"
)

// Stats is one row of the per-iteration statistics stream.
type Stats struct {
	Iter       int
	Joint      float64
	Likelihood float64
	Prior      float64
	Recombs    int
	ARGLen     float64
}

// Measure computes the statistics of a block sequence under the
// resampler's model and data.
func (r *Resampler) Measure(iter int, lt *arg.LocalTrees) Stats {
	prior := lt.Prior(r.model)
	lik := hmm.ARGLikelihood(r.model, lt, r.seqs)
	return Stats{
		Iter:       iter,
		Joint:      prior + lik,
		Likelihood: lik,
		Prior:      prior,
		Recombs:    lt.CountRecombs(),
		ARGLen:     lt.TotalLength(r.model),
	}
}

// WriteStatsHeader emits the TSV header of the statistics stream.
func WriteStatsHeader(w io.Writer) error {
	_, err := fmt.Fprintln(w, "iter\tjoint\tlikelihood\tprior\trecombs\targlen")
	return err
}

// Write emits one TSV row.
func (s Stats) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d\t%f\t%f\t%f\t%d\t%f\n",
		s.Iter, s.Joint, s.Likelihood, s.Prior, s.Recombs, s.ARGLen)
	return err
}

// Run performs iters resampling steps, one lineage per step in
// round-robin order, streaming one statistics row per iteration to w
// (which may be nil).
// The returned sequence is the final state; on a recoverable failure
// the iteration is skipped and the previous state kept.
func (r *Resampler) Run(lt *arg.LocalTrees, iters int, w io.Writer) (*arg.LocalTrees, error) {
	if w != nil {
		if err := WriteStatsHeader(w); err != nil {
			return lt, err
		}
	}
	cur := lt
	for iter := 0; iter < iters; iter++ {
		seqid := cur.SeqIDs[iter%len(cur.SeqIDs)]
		next, err := r.Step(cur, seqid)
		if err == nil {
			cur = next
		} else if r.opts.Logger != nil {
			r.opts.Logger.WithError(err).WithField("iter", iter).
				Warn("resample step aborted")
		}

		s := r.Measure(iter, cur)
		r.logStep(s)
		if w != nil {
			if err := s.Write(w); err != nil {
				return cur, err
			}
		}
	}
	return cur, nil
}
