// Package argweaver infers Ancestral Recombination Graphs (ARGs) from
// aligned genomic sequences under the Sequentially Markov Coalescent.
//
// 🧬 What is argweaver?
//
//	A library implementing the threading-HMM engine at the heart of ARG
//	sampling:
//		• Model: discretized time grid, population sizes, mutation and
//		  recombination rates, position-indexed rate tracks
//		• Local trees: a sequence of marginal genealogies connected by
//		  Subtree-Prune-Regraft (SPR) operations
//		• Threading HMM: compressed transition matrices, Felsenstein
//		  emissions, forward dynamic programming and sampled traceback
//		• Thread surgery: convert a sampled path into SPRs, splice a
//		  lineage into (or strip it out of) an existing ARG
//		• Resampling: the Gibbs step that removes and re-threads one
//		  lineage over a genomic window
//
// Everything is organized under focused subpackages:
//
//	model/    — time discretization, Ne, mu/rho, rate maps
//	tree/     — LocalTree, Spr, SPR application, lineage counts
//	arg/      — ordered block sequence of local trees + statistics
//	hmm/      — state space, transition/emission matrices, sampler
//	thread/   — path→SPR conversion, add/remove a thread
//	resample/ — leaf and window selection, the resampling loop
//	sites/    — sites-file alignment columns and masks
//	smc/      — Newick and SMC text serialization
//
// The core is single-threaded by design: a Sampler or Resampler owns its
// LocalTrees exclusively for the duration of a step. Run independent MCMC
// replicas in parallel instead; the shared parts of a Model are read-only
// and may be aliased across goroutines.
package argweaver
