package krylov

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// FGMRES is flexible GMRES: unlike GMRES, which applies one fixed
// preconditioner throughout a cycle, FGMRES stores the preconditioned
// basis Z = M^-1 V explicitly and builds the update from Z instead of V,
// so the "preconditioner" may vary from one inner iteration to the next
// (section 4.7's flexible-Krylov requirement, needed by nonlinear-AMLI
// cycling, which uses a whole multigrid cycle — itself nonlinear across
// calls — as the inner preconditioner). Structurally this is GMRES's
// Arnoldi-plus-Givens core with a second stored basis.
type FGMRES struct {
	Restart int

	resume int
	i      int

	s, w, av []float64
	v, z     []float64
	ldv      int
	h        []float64
	ldh      int
	givs     []givens
}

func (g *FGMRES) Init(dim int) {
	if g.Restart <= 0 || g.Restart > dim {
		g.Restart = dim
	}
	g.s = reuse(g.s, dim)
	g.w = reuse(g.w, dim)
	g.av = reuse(g.av, dim)

	k := g.Restart
	g.ldv = dim
	g.v = reuse(g.v, g.ldv*(k+1))
	g.z = reuse(g.z, g.ldv*k)
	g.ldh = k + 1
	g.h = reuse(g.h, g.ldh*k)
	if cap(g.givs) < k {
		g.givs = make([]givens, k)
	} else {
		g.givs = g.givs[:k]
	}
	g.resume = 1
}

func (g *FGMRES) Iterate(ctx *Context) (Operation, error) {
	n := len(ctx.X)
	ldv := g.ldv
	switch g.resume {
	case 1:
		rnorm := floats.Norm(ctx.Residual, 2)
		copy(g.v[:n], ctx.Residual)
		if rnorm > epsFloor {
			floats.Scale(1/rnorm, g.v[:n])
		}
		for i := range g.s {
			g.s[i] = 0
		}
		g.s[0] = rnorm
		g.i = 0
		fallthrough
	case 2:
		i := g.i
		if i == g.Restart {
			g.resume = 6
			return NoOperation, nil
		}
		ctx.Src, ctx.Dst = g.v[i*ldv:i*ldv+n], g.z[i*ldv:i*ldv+n]
		g.resume = 3
		return PSolve, nil
		// Solve M z_i = v_i; z_i (not v_i) is what the update combines.
	case 3:
		ctx.Src, ctx.Dst = g.z[g.i*ldv:g.i*ldv+n], g.w
		g.resume = 4
		return MatVec, nil
		// Compute A z_i.
	case 4:
		i := g.i
		h, ldh := g.h, g.ldh
		for k := 0; k <= i; k++ {
			vk := g.v[k*ldv : k*ldv+n]
			hki := floats.Dot(vk, g.w)
			h[k+i*ldh] = hki
			floats.AddScaled(g.w, -hki, vk)
		}
		wnorm := floats.Norm(g.w, 2)
		hi := h[i*ldh : i*ldh+g.Restart+1]
		h[i+1+i*ldh] = wnorm
		vip1 := g.v[(i+1)*ldv : (i+1)*ldv+n]
		copy(vip1, g.w)
		if wnorm > epsFloor {
			floats.Scale(1/wnorm, vip1)
		}

		for j := 0; j < i; j++ {
			hi[j], hi[j+1] = rotvec(hi[j], hi[j+1], g.givs[j])
		}
		g.givs[i] = drotg(hi[i], hi[i+1])
		hi[i], hi[i+1] = rotvec(hi[i], hi[i+1], g.givs[i])
		g.s[i], g.s[i+1] = rotvec(g.s[i], g.s[i+1], g.givs[i])

		ctx.ResidualNorm = math.Abs(g.s[i+1])
		ctx.Converged = false
		g.resume = 5
		return CheckResidualNorm, nil
	case 5:
		if ctx.Converged {
			g.update(ctx.X)
			g.resume = 0
			return EndIteration, nil
		}
		g.i++
		g.resume = 2
		return NoOperation, nil
	case 6:
		g.update(ctx.X)
		g.resume = 7
		return ComputeResidual, nil
	case 7:
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Converged = false
		g.resume = 8
		return CheckResidualNorm, nil
	case 8:
		if ctx.Converged {
			g.resume = 0
			return EndIteration, nil
		}
		g.resume = 1
		return EndIteration, nil
	default:
		panic("krylov: FGMRES.Init not called")
	}
}

func (g *FGMRES) update(x []float64) {
	i := g.i
	y := make([]float64, i+1)
	copy(y, g.s[:i+1])
	bi := blas64.Implementation()
	bi.Dtrsv(blas.Lower, blas.Trans, blas.NonUnit, i+1, g.h, g.ldh, y, 1)
	n := len(x)
	ldv := g.ldv
	for j := 0; j <= i; j++ {
		zj := g.z[j*ldv : j*ldv+n]
		floats.AddScaled(x, y[j], zj)
	}
}
