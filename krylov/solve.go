package krylov

import "github.com/gofasp/gofasp/params"

// SolveSystem dispatches to the Method named by param.Solver (section
// 4.7's top-level solver selection: CG, BiCGStab, GMRES, FGMRES, or GCG),
// then runs it through the shared driver. GMRES is right-preconditioned
// restarted GMRES; since that is exactly FGMRES run with a preconditioner
// that never varies between inner iterations, SolverGMRES is served by
// FGMRES directly instead of duplicating its Arnoldi state machine.
func SolveSystem(a Operator, b, x0 []float64, precond Preconditioner, param params.ITSParam) (Result, error) {
	var method Method
	switch param.Solver {
	case params.SolverCG:
		method = &CG{}
	case params.SolverBiCGStab:
		method = &BiCGStab{}
	case params.SolverGMRES, params.SolverFGMRES:
		method = &FGMRES{Restart: param.Restart}
	case params.SolverGCG:
		method = &GCG{Restart: param.Restart}
	default:
		return Result{}, params.NewError(params.ErrorSolverType, 0, "unknown solver kind")
	}
	return Solve(a, b, x0, method, precond, param)
}
