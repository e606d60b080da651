package krylov

import "github.com/gofasp/gofasp/params"

// opFunc and precondFunc adapt bare closures to Operator/Preconditioner,
// the shape amg.Hierarchy's cycle recursion calls out with (matvec and
// apply closures over one AMG level) rather than concrete types.
type opFunc func(y, x []float64)

func (f opFunc) MatVec(y, x []float64) { f(y, x) }

type precondFunc func(r, z []float64)

func (f precondFunc) Apply(z, r []float64) error {
	f(r, z)
	return nil
}

// FGMRESFlexible runs k inner FGMRES iterations against matvec/apply and
// writes the result into x, matching amg.FlexibleSolver's signature
// exactly (a plain func value assigns to that named type without amg
// needing to import krylov, and without krylov needing to import amg —
// see DESIGN.md's note on the FlexibleSolver seam). This is the default
// inner solve nonlinear-AMLI cycling uses (section 4.6).
func FGMRESFlexible(matvec func(y, x []float64), apply func(r, z []float64), b, x []float64, k int) {
	if k <= 0 {
		k = 2
	}
	method := &FGMRES{Restart: k}
	param := flexibleParam(k)
	res, _ := Solve(opFunc(matvec), b, x, method, precondFunc(apply), param)
	copy(x, res.X)
}

// GCGFlexible is FGMRESFlexible's cheaper Orthomin-style sibling, useful when
// the per-iteration Arnoldi cost of FGMRES is not worth paying for a
// short, fixed-length AMLI inner solve.
func GCGFlexible(matvec func(y, x []float64), apply func(r, z []float64), b, x []float64, k int) {
	if k <= 0 {
		k = 2
	}
	method := &GCG{Restart: k}
	param := flexibleParam(k)
	res, _ := Solve(opFunc(matvec), b, x, method, precondFunc(apply), param)
	copy(x, res.X)
}

func flexibleParam(k int) params.ITSParam {
	return params.ITSParam{
		StopType:            params.StopRelRes,
		MaxIterations:       k,
		Tolerance:           1e-10,
		AbsTolerance:        1e-24,
		StagRatio:           1e-4,
		MaxStag:             k + 1,
		MaxRestartFalseConv: 0,
		SolutionFloor:       1e-20,
	}
}
