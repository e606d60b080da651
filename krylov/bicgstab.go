package krylov

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

const dlamchE = 1.0 / (1 << 53)

// BiCGStab is BiConjugate Gradient Stabilized for non-symmetric systems
// (section 4.7), ported from the teacher's bicgstab.go almost verbatim
// since it already uses the plain Src/Dst Context shape. bestX/bestNorm
// tracking (the section 4.7 safe-net best-solution restore) lives in the
// shared driver, not here: BiCGStab's own job is only to detect the two
// breakdown conditions (rho, omega near zero) and hand them to the driver
// as an error.
type BiCGStab struct {
	first  bool
	resume int

	rho, rhoPrev float64
	alpha        float64
	omega        float64

	rt   []float64
	p    []float64
	v    []float64
	t    []float64
	phat []float64
	s    []float64
	shat []float64
}

func (b *BiCGStab) Init(dim int) {
	b.rt = reuse(b.rt, dim)
	b.p = reuse(b.p, dim)
	b.v = reuse(b.v, dim)
	b.t = reuse(b.t, dim)
	b.phat = reuse(b.phat, dim)
	b.s = reuse(b.s, dim)
	b.shat = reuse(b.shat, dim)
	b.first = true
	b.resume = 1
}

func (b *BiCGStab) Iterate(ctx *Context) (Operation, error) {
	switch b.resume {
	case 1:
		if b.first {
			copy(b.rt, ctx.Residual)
		}
		b.rho = floats.Dot(b.rt, ctx.Residual)
		if math.Abs(b.rho) < dlamchE*dlamchE {
			b.resume = 0
			return NoOperation, errors.New("bicgstab: rho breakdown")
		}
		if b.first {
			copy(b.p, ctx.Residual)
		} else {
			beta := (b.rho / b.rhoPrev) * (b.alpha / b.omega)
			floats.AddScaled(b.p, -b.omega, b.v)
			floats.Scale(beta, b.p)
			floats.Add(b.p, ctx.Residual)
		}
		ctx.Src, ctx.Dst = b.p, b.phat
		b.resume = 2
		return PSolve, nil
	case 2:
		ctx.Src, ctx.Dst = b.phat, b.v
		b.resume = 3
		return MatVec, nil
	case 3:
		b.alpha = b.rho / floats.Dot(b.rt, b.v)
		floats.AddScaled(ctx.Residual, -b.alpha, b.v)
		copy(b.s, ctx.Residual)
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Converged = false
		b.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			floats.AddScaled(ctx.X, b.alpha, b.phat)
			b.resume = 0
			return EndIteration, nil
		}
		ctx.Src, ctx.Dst = ctx.Residual, b.shat
		b.resume = 5
		return PSolve, nil
	case 5:
		ctx.Src, ctx.Dst = b.shat, b.t
		b.resume = 6
		return MatVec, nil
	case 6:
		b.omega = floats.Dot(b.t, b.s) / floats.Dot(b.t, b.t)
		floats.AddScaled(ctx.X, b.alpha, b.phat)
		floats.AddScaled(ctx.X, b.omega, b.shat)
		floats.AddScaled(ctx.Residual, -b.omega, b.t)
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Converged = false
		b.resume = 7
		return CheckResidualNorm, nil
	case 7:
		if ctx.Converged {
			b.resume = 0
			return EndIteration, nil
		}
		if math.Abs(b.omega) < dlamchE*dlamchE {
			b.resume = 0
			return NoOperation, errors.New("bicgstab: omega breakdown")
		}
		b.rhoPrev = b.rho
		b.first = false
		b.resume = 1
		return EndIteration, nil
	default:
		panic("krylov: BiCGStab.Init not called")
	}
}
