package krylov

import (
	"math"

	"github.com/gofasp/gofasp/internal/flog"
	"github.com/gofasp/gofasp/params"
	"gonum.org/v1/gonum/floats"
)

const epsFloor = 1e-300

// Solve drives method to convergence against a*x=b, starting from x0 (nil
// means the zero vector), applying precond (nil means no preconditioning).
// It implements the driver-level safety nets of section 4.7: stagnation
// detection (MaxStag consecutive too-small updates triggers
// ErrorSolverStag) and a sol-stagnation floor (‖x‖∞ collapsing while the
// residual has not converged triggers ErrorSolverSolstag). It does not
// check whether Tolerance is reachable in floating point and never returns
// ErrorSolverTolsmall.
func Solve(a Operator, b []float64, x0 []float64, method Method, precond Preconditioner, param params.ITSParam) (Result, error) {
	dim := len(b)
	if precond == nil {
		precond = identityPrecond{}
	}

	ctx := &Context{X: make([]float64, dim), Residual: make([]float64, dim)}
	if x0 != nil {
		copy(ctx.X, x0)
		a.MatVec(ctx.Residual, ctx.X)
		for i := range ctx.Residual {
			ctx.Residual[i] = b[i] - ctx.Residual[i]
		}
	} else {
		copy(ctx.Residual, b)
	}

	bnorm := floats.Norm(b, 2)
	if bnorm < epsFloor {
		bnorm = 1
	}
	r0norm := floats.Norm(ctx.Residual, 2)
	ctx.ResidualNorm = r0norm

	den := denominator(param.StopType, a, precond, b, ctx.Residual, ctx.X, bnorm)
	if den < epsFloor {
		den = epsFloor
	}

	// A residual that is already within tolerance before the first
	// iteration (x0 solves the system, or b is already zero) must return
	// immediately: every Method below divides by quantities derived from
	// the residual and would break down on an exact zero.
	if math.Abs(r0norm)/den < param.Tolerance || r0norm < param.AbsTolerance {
		return Result{X: ctx.X, Iterations: 0, ResidualNorm: r0norm, Status: params.Status(0)}, nil
	}

	method.Init(dim)

	bestX := append([]float64(nil), ctx.X...)
	bestNorm := r0norm
	lastX := append([]float64(nil), ctx.X...)
	stagCount := 0
	falseConvRestarts := 0
	iterations := 0
	tmp := make([]float64, dim)
	dx := make([]float64, dim)

	for {
		op, err := method.Iterate(ctx)
		if err != nil {
			return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.ErrorSolverMisc},
				params.NewError(params.ErrorSolverMisc, iterations, err.Error())
		}

		switch op {
		case NoOperation:

		case ComputeResidual:
			a.MatVec(ctx.Residual, ctx.X)
			for i := range ctx.Residual {
				ctx.Residual[i] = b[i] - ctx.Residual[i]
			}

		case MatVec:
			a.MatVec(ctx.Dst, ctx.Src)

		case PSolve:
			if err := precond.Apply(ctx.Dst, ctx.Src); err != nil {
				return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.ErrorAllocMem}, err
			}

		case CheckResidualNorm:
			rel := math.Abs(ctx.ResidualNorm) / den
			ctx.Converged = rel < param.Tolerance || ctx.ResidualNorm < param.AbsTolerance

		case EndIteration:
			iterations++
			flog.Iteration(param.PrintLevel, "krylov", iterations, ctx.ResidualNorm/den)

			if ctx.ResidualNorm < bestNorm {
				bestNorm = ctx.ResidualNorm
				copy(bestX, ctx.X)
			}

			if ctx.Converged {
				// False-convergence recheck: some methods (GMRES) report an
				// estimated residual norm. Recompute the true residual and
				// re-verify before accepting.
				a.MatVec(tmp, ctx.X)
				for i := range tmp {
					tmp[i] = b[i] - tmp[i]
				}
				trueNorm := floats.Norm(tmp, 2)
				if trueNorm/den < param.Tolerance*10 || falseConvRestarts >= param.MaxRestartFalseConv {
					// The reported iterate can still be a NaN (e.g. a
					// breakdown that slipped through as "converged") or,
					// for BiCGStab in particular, can regress past
					// best-so-far on its last step. Restore bestX rather
					// than hand back a solution worse than one already seen.
					if hasNaN(ctx.X) || trueNorm > bestNorm*(1+param.StagRatio*param.Tolerance) {
						return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.Status(iterations)}, nil
					}
					return Result{X: ctx.X, Iterations: iterations, ResidualNorm: trueNorm, Status: params.Status(iterations)}, nil
				}
				falseConvRestarts++
				copy(ctx.Residual, tmp)
				ctx.ResidualNorm = trueNorm
				ctx.Converged = false
				method.Init(dim)
				continue
			}

			xnorm := floats.Norm(ctx.X, 2)
			if floats.Norm(ctx.X, math.Inf(1)) < param.SolutionFloor && ctx.ResidualNorm/den >= param.Tolerance {
				return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.ErrorSolverSolstag},
					params.NewError(params.ErrorSolverSolstag, iterations, "")
			}

			// Stagnation is measured on the solution update ‖Δx‖/‖x‖, not
			// the residual (section 4.7), since a method can keep moving x
			// by a shrinking-but-nonzero amount while its reported residual
			// norm holds nearly steady, and vice versa.
			update := 0.0
			if xnorm > epsFloor {
				for i := range dx {
					dx[i] = ctx.X[i] - lastX[i]
				}
				update = floats.Norm(dx, 2) / xnorm
			}
			copy(lastX, ctx.X)

			if update < param.StagRatio*param.Tolerance {
				stagCount++
				if stagCount >= param.MaxStag {
					return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.ErrorSolverStag},
						params.NewError(params.ErrorSolverStag, iterations, "")
				}
				// Recovery: recompute the explicit residual and restart the
				// method's internal vectors from the current x, the same
				// recovery the false-convergence recheck above performs,
				// rather than continuing to iterate on a state the method
				// itself may have driven into a degenerate corner.
				a.MatVec(ctx.Residual, ctx.X)
				for i := range ctx.Residual {
					ctx.Residual[i] = b[i] - ctx.Residual[i]
				}
				ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
				method.Init(dim)
			} else {
				stagCount = 0
			}

			if iterations >= param.MaxIterations {
				return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.ErrorSolverMaxit},
					params.NewError(params.ErrorSolverMaxit, iterations, "")
			}

		default:
			return Result{X: bestX, Iterations: iterations, ResidualNorm: bestNorm, Status: params.ErrorSolverType},
				params.NewError(params.ErrorSolverType, iterations, "unknown operation")
		}
	}
}

func hasNaN(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// denominator picks the stopping-criterion divisor named by stop (section
// 6): ‖r0‖ for StopRelRes, sqrt(|<r0,Mr0>|) for StopRelPrecRes, ‖x0‖ for
// StopModRelRes (falling back to ‖b‖ when x0 is the zero vector).
func denominator(stop params.StopType, a Operator, precond Preconditioner, b, r0, x0 []float64, bnorm float64) float64 {
	switch stop {
	case params.StopRelPrecRes:
		z := make([]float64, len(r0))
		if err := precond.Apply(z, r0); err != nil {
			return bnorm
		}
		return math.Sqrt(math.Abs(floats.Dot(r0, z)))
	case params.StopModRelRes:
		n := floats.Norm(x0, 2)
		if n < epsFloor {
			return bnorm
		}
		return n
	default:
		n := floats.Norm(r0, 2)
		if n < epsFloor {
			return bnorm
		}
		return n
	}
}
