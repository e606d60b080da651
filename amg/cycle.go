package amg

import (
	"math"

	"github.com/gofasp/gofasp/internal/flog"
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/smoother"
	"github.com/gofasp/gofasp/spmat"
)

// Cycle runs one multigrid correction starting from level 0's current
// b/x (both already set by the caller on h.Levels[0]) and leaves the
// correction in h.Levels[0].X (section 4.6).
func (h *Hierarchy) Cycle() {
	h.cycleAt(0, h.Param.Cycle)
}

// cycleAt runs one correction at level l as a cycle of the given kind. kind
// is threaded explicitly rather than read from h.Param.Cycle at every level
// so an F-cycle's second recursive call can force a plain V-cycle beneath
// it (section 4.6: "recurse once with F (deeper) and once with V"), instead
// of re-entering as F again.
func (h *Hierarchy) cycleAt(l int, kind params.CycleKind) {
	lvl := h.Levels[l]
	if l == len(h.Levels)-1 {
		h.solveCoarsest(lvl)
		return
	}

	smoother.RunSweeps(lvl.Smoother, lvl.B, lvl.X, h.Param.PreSweeps)

	next := h.Levels[l+1]
	r := make([]float64, lvl.A.Rows)
	lvl.A.MatVec(r, lvl.X)
	for i := range r {
		r[i] = lvl.B[i] - r[i]
	}
	next.B = make([]float64, next.A.Rows)
	lvl.R.MatVec(next.B, r)
	for i := range next.X {
		next.X[i] = 0
	}

	switch kind {
	case params.CycleW:
		h.cycleAt(l+1, kind)
		h.cycleAt(l+1, kind)
	case params.CycleF:
		if l+2 < len(h.Levels) {
			h.cycleAt(l+1, params.CycleF) // deeper recursion once
		}
		h.cycleAt(l+1, params.CycleV) // then a plain V-cycle pass
	case params.CycleAMLI:
		h.cycleAt(l+1, kind)
		if h.AMLI != nil && l+2 < len(h.Levels) {
			h.runAMLI(l + 1)
		}
	default: // CycleV
		h.cycleAt(l+1, kind)
	}

	e := next.X
	if h.Param.CoarseScaling {
		e = scaleCoarseCorrection(e, next.A, next.B)
	}
	lvl.P.AxpyMatVec(1, e, lvl.X)

	smoother.RunSweeps(lvl.Smoother, lvl.B, lvl.X, h.Param.PostSweeps)
}

// runAMLI implements the nonlinear-AMLI inner solve (section 4.6): k
// iterations of a flexible Krylov method at level l, preconditioned by the
// level-(l+1) cycle (one level deeper than l, i.e. what the caller already
// recursed into).
func (h *Hierarchy) runAMLI(l int) {
	lvl := h.Levels[l]
	apply := func(r, z []float64) {
		lvl.B = r
		for i := range lvl.X {
			lvl.X[i] = 0
		}
		h.cycleAt(l, h.Param.Cycle)
		copy(z, lvl.X)
	}
	matvec := func(y, x []float64) { lvl.A.MatVec(y, x) }
	h.AMLI(matvec, apply, lvl.B, lvl.X, h.Param.AMLIDegree)
}

// scaleCoarseCorrection applies the optional coarse-scaling factor
// alpha = <e,b>/<e,Ae> (section 4.6), returning a new scaled slice.
func scaleCoarseCorrection(e []float64, a *spmat.CSR, b []float64) []float64 {
	ae := make([]float64, len(e))
	a.MatVec(ae, e)
	var num, den float64
	for i := range e {
		num += e[i] * b[i]
		den += e[i] * ae[i]
	}
	if math.Abs(den) < spmat.EpsTiny {
		return e
	}
	alpha := num / den
	scaled := make([]float64, len(e))
	for i := range e {
		scaled[i] = alpha * e[i]
	}
	return scaled
}

// solveCoarsest solves the coarsest level's system directly (dense LU) or
// by a bounded number of smoother sweeps, per section 4.5's coarsest-level
// contract.
func (h *Hierarchy) solveCoarsest(lvl *Level) {
	n := lvl.A.Rows
	if h.Param.CoarsestSolve == params.CoarsestDirect && n > 0 {
		dense := spmat.NewSmallDense(n)
		for i := 0; i < n; i++ {
			lvl.A.Row(i, func(j int, v float64) { dense.Set(i, j, v) })
		}
		f := dense.Factor()
		if f.Ok() {
			f.Solve(lvl.B, lvl.X)
			return
		}
		flog.Warning("amg: coarsest-level direct solve found a singular system, falling back to smoothing")
	}
	sm := buildSmoother(lvl.A, h.Param)
	smoother.RunSweeps(sm, lvl.B, lvl.X, 20)
}
