package krylov

import "gonum.org/v1/gonum/floats"

// GCG is the generalized conjugate gradient method (section 4.7): like
// FGMRES it allows the preconditioner to vary between iterations, but
// instead of building an orthonormal Krylov basis it keeps a window of up
// to Restart A-orthogonal search directions (Orthomin-style), which is
// cheaper per iteration than FGMRES's Arnoldi process at the cost of a
// weaker optimality guarantee once restarted. This is the flexible
// counterpart to CG the way FGMRES is the flexible counterpart to GMRES.
type GCG struct {
	Restart int

	resume int
	i      int
	dim    int

	p, ap []float64 // Restart*dim each, row i is direction/A-direction i
	w     []float64
	rold  float64
}

func (g *GCG) Init(dim int) {
	if g.Restart <= 0 {
		g.Restart = dim
	}
	g.dim = dim
	g.p = reuse(g.p, g.Restart*dim)
	g.ap = reuse(g.ap, g.Restart*dim)
	g.w = reuse(g.w, dim)
	g.i = 0
	g.resume = 1
}

func (g *GCG) slot(i int) (p, ap []float64) {
	lo, hi := i*g.dim, (i+1)*g.dim
	return g.p[lo:hi], g.ap[lo:hi]
}

func (g *GCG) Iterate(ctx *Context) (Operation, error) {
	switch g.resume {
	case 1:
		pi, _ := g.slot(g.i)
		ctx.Src, ctx.Dst = ctx.Residual, pi
		g.resume = 2
		return PSolve, nil
	case 2:
		pi, _ := g.slot(g.i)
		ctx.Src, ctx.Dst = pi, g.w
		g.resume = 3
		return MatVec, nil
	case 3:
		pi, api := g.slot(g.i)
		copy(api, g.w)
		for j := 0; j < g.i; j++ {
			pj, apj := g.slot(j)
			denom := floats.Dot(apj, apj)
			if denom < epsFloor {
				continue
			}
			beta := floats.Dot(api, apj) / denom
			floats.AddScaled(api, -beta, apj)
			floats.AddScaled(pi, -beta, pj)
		}

		denom := floats.Dot(api, api)
		if denom < epsFloor {
			g.resume = 0
			return NoOperation, errBreakdown
		}
		alpha := floats.Dot(ctx.Residual, api) / denom
		floats.AddScaled(ctx.X, alpha, pi)
		floats.AddScaled(ctx.Residual, -alpha, api)
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Converged = false
		g.resume = 4
		return CheckResidualNorm, nil
	case 4:
		if ctx.Converged {
			g.resume = 0
			return EndIteration, nil
		}
		g.i++
		if g.i >= g.Restart {
			g.i = 0
		}
		g.resume = 1
		return EndIteration, nil
	default:
		panic("krylov: GCG.Init not called")
	}
}

var errBreakdown = gcgBreakdown{}

type gcgBreakdown struct{}

func (gcgBreakdown) Error() string { return "gcg: A-orthogonalization breakdown" }
