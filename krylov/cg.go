package krylov

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CG is the preconditioned conjugate gradient method (section 4.7),
// following the resume-state-machine shape of the teacher's cg.go but with
// its own vector fields instead of an indexed Context.Vectors array, so the
// state machine stays self-contained and Context keeps the plain
// Src/Dst/Residual shape of iterative.go. Like BiCGStab and GCG, it treats
// a near-zero <Ap,p> as a breakdown and hands it to the driver as an error
// rather than dividing by it.
type CG struct {
	r, z, p, ap []float64
	rho, rhoPrev float64
	first        bool
	resume       int
}

func (cg *CG) Init(dim int) {
	cg.r = reuse(cg.r, dim)
	cg.z = reuse(cg.z, dim)
	cg.p = reuse(cg.p, dim)
	cg.ap = reuse(cg.ap, dim)
	cg.first = true
	cg.resume = 1
}

func (cg *CG) Iterate(ctx *Context) (Operation, error) {
	switch cg.resume {
	case 1:
		if cg.first {
			copy(cg.r, ctx.Residual)
		}
		ctx.Src, ctx.Dst = cg.r, cg.z
		cg.resume = 2
		return PSolve, nil
	case 2:
		cg.rho = floats.Dot(cg.r, cg.z)
		if !cg.first {
			beta := cg.rho / cg.rhoPrev
			floats.AddScaled(cg.z, beta, cg.p) // z <- z + beta*p
		}
		copy(cg.p, cg.z)

		ctx.Src, ctx.Dst = cg.p, cg.ap
		cg.resume = 3
		return MatVec, nil
	case 3:
		denom := floats.Dot(cg.p, cg.ap)
		if math.Abs(denom) < dlamchE*dlamchE {
			cg.resume = 0
			return NoOperation, errors.New("cg: <Ap,p> breakdown")
		}
		alpha := cg.rho / denom
		floats.AddScaled(cg.r, -alpha, cg.ap)
		floats.AddScaled(ctx.X, alpha, cg.p)
		copy(ctx.Residual, cg.r)
		ctx.ResidualNorm = floats.Norm(cg.r, 2)
		cg.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			cg.resume = 0
			return EndIteration, nil
		}
		cg.rhoPrev = cg.rho
		cg.first = false
		cg.resume = 1
		return EndIteration, nil
	default:
		panic("krylov: CG.Init not called")
	}
}

func reuse(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}
