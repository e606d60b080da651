// Package amg builds and applies the classical Ruge-Stuben algebraic
// multigrid hierarchy: setup (coarsening, interpolation, Galerkin coarse
// operator, per-level smoother data) and cycling (V/W/F/nonlinear-AMLI),
// per sections 4.5-4.6.
package amg

import (
	"github.com/gofasp/gofasp/coarsen"
	"github.com/gofasp/gofasp/ilu"
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/smoother"
	"github.com/gofasp/gofasp/spmat"
)

// Level owns everything one grid level of the hierarchy needs: the
// operator, prolongation/restriction, work vectors, and the level's
// smoother, mirroring the AMG_data level bundle of section 3.
type Level struct {
	A *spmat.CSR
	P *spmat.CSR // prolongation from the next-coarser level to this level; nil at the coarsest level
	R *spmat.CSR // restriction from this level to the next-coarser level (P^T); nil at the coarsest level

	Markers []coarsen.Marker // C/F/isolated markers used to build P from this level

	X, B, W []float64 // work vectors sized to this level's dimension

	Smoother smoother.Sweeper
	ILU      *ilu.Factors
}

// Hierarchy is the full multilevel structure plus the parameters used to
// build and cycle it.
type Hierarchy struct {
	Levels []*Level
	Param  params.AMGParam

	// AMLI, if set, provides the flexible-Krylov inner solve nonlinear
	// AMLI cycling needs (section 4.6). It is nil for V/W/F cycles.
	AMLI FlexibleSolver
}

// FlexibleSolver runs k iterations of a flexible Krylov method against the
// operator matvec, using apply as the (possibly nonlinear, i.e. varying
// between iterations) preconditioner, correcting x in place given
// right-hand side b. It is the seam the nonlinear-AMLI cycle uses to call
// out to krylov.FGMRESFlexible or krylov.GCGFlexible without amg importing
// krylov (see DESIGN.md: the wiring happens in precond, which imports
// both).
type FlexibleSolver func(matvec func(y, x []float64), apply func(r, z []float64), b, x []float64, k int)

// NumLevels returns the number of levels actually built.
func (h *Hierarchy) NumLevels() int { return len(h.Levels) }

// Setup builds a full hierarchy from the fine-level matrix a, repeating
// coarsen -> interpolate -> Galerkin until (a) coarse size <= cutoff, (b)
// max levels reached, or (c) coarsening makes no progress (section 4.5).
func Setup(a *spmat.CSR, param params.AMGParam) (*Hierarchy, error) {
	h := &Hierarchy{Param: param}
	cur := a

	for len(h.Levels) < param.MaxLevels {
		n := cur.Rows
		lvl := &Level{
			A: cur,
			X: make([]float64, n),
			B: make([]float64, n),
			W: make([]float64, n),
		}
		h.Levels = append(h.Levels, lvl)

		if n <= param.CoarseDOFCutoff {
			break
		}

		cl, err := coarsen.Coarsen(cur, param)
		if err != nil {
			return nil, err
		}
		if cl.NCoarse == 0 || cl.NCoarse == n {
			// no progress: stop with the current level as coarsest.
			break
		}
		lvl.Markers = cl.Markers

		p := Interpolate(cur, cl, param.TruncationEps)
		r := p.Transpose()
		next := Galerkin(r, cur, p)

		lvl.P = p
		lvl.R = r

		cur = next
	}

	buildSmoothers(h, param)
	return h, nil
}

// buildSmoothers constructs the per-level relaxation (and, for the
// coarsest level, nothing — that level is solved directly or iteratively
// by Cycle itself) per section 4.5's "per-level smoother build."
func buildSmoothers(h *Hierarchy, param params.AMGParam) {
	for i, lvl := range h.Levels {
		if i == len(h.Levels)-1 {
			continue // coarsest level: handled by CoarsestSolve in Cycle
		}
		lvl.Smoother = buildSmoother(lvl.A, param)
		if param.Smoother == params.SmootherILU {
			f := ilu.Factorize(lvl.A, params.ILUParam{Relax: param.Relaxation})
			lvl.ILU = f
			lvl.Smoother = smoother.NewILU(lvl.A, f)
		}
	}
}

func buildSmoother(a *spmat.CSR, param params.AMGParam) smoother.Sweeper {
	switch param.Smoother {
	case params.SmootherJacobi:
		return smoother.NewJacobi(a, param.Relaxation)
	case params.SmootherGSForward:
		return smoother.NewGaussSeidel(a, smoother.Ascending, 1)
	case params.SmootherGSBackward:
		return smoother.NewGaussSeidel(a, smoother.Descending, 1)
	case params.SmootherSOR:
		return smoother.NewGaussSeidel(a, smoother.Ascending, param.Relaxation)
	case params.SmootherPolynomial:
		return smoother.NewCSRPolynomial(a, 2)
	case params.SmootherGSSymmetric:
		fallthrough
	default:
		return &symmetricGS{
			fwd: smoother.NewGaussSeidel(a, smoother.Ascending, 1),
			bwd: smoother.NewGaussSeidel(a, smoother.Descending, 1),
		}
	}
}

// symmetricGS runs one forward and one backward Gauss-Seidel sweep per
// call, the usual "symmetric GS" smoother used as an AMG default.
type symmetricGS struct{ fwd, bwd smoother.Sweeper }

func (s *symmetricGS) Sweep(b, u []float64) {
	s.fwd.Sweep(b, u)
	s.bwd.Sweep(b, u)
}
