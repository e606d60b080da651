// Package krylov implements the Krylov-subspace drivers of section 4.7: PCG,
// BiCGStab (with a safe-net best-solution restore), restarted GMRES/FGMRES,
// and GCG. Every driver follows the teacher's reverse-communication shape
// (vladimir-ch-iterative's Method/Context/Operation split in its
// iterative.go): a Method decides what operation the caller should perform
// next, and a shared driver loop performs it, so convergence checking,
// stagnation/false-convergence safety nets, and statistics are written once
// instead of once per solver.
package krylov

import "github.com/gofasp/gofasp/params"

// Operation names what the driver must do before calling Iterate again,
// mirroring iterative.go's Operation but trimmed to what this module's
// solvers actually need (no transpose operations: none of CG, BiCGStab,
// GMRES, FGMRES, or GCG as specified require A^T).
type Operation int

const (
	NoOperation Operation = iota
	MatVec
	PSolve
	ComputeResidual
	CheckResidualNorm
	EndIteration
)

// Context mediates between a Method and the driver loop, matching
// iterative.go's Context shape.
type Context struct {
	X            []float64
	Residual     []float64
	ResidualNorm float64
	Converged    bool

	Src, Dst []float64
}

// Method is one Krylov algorithm's state machine.
type Method interface {
	Init(dim int)
	Iterate(ctx *Context) (Operation, error)
}

// Operator is the minimal contract a Krylov driver needs from a matrix,
// satisfied by spmat.CSR, spmat.BSR, and spmat.STR alike (section 4.1's
// uniform SpMV contract).
type Operator interface {
	MatVec(y, x []float64)
}

// Preconditioner matches precond.Preconditioner without importing precond
// (which will in turn import krylov to wire flexible solvers into AMG,
// see precond/amli.go), avoiding a cycle the same way amg.FlexibleSolver
// does.
type Preconditioner interface {
	Apply(z, r []float64) error
}

// identityPrecond is used when no Preconditioner is supplied.
type identityPrecond struct{}

func (identityPrecond) Apply(z, r []float64) error {
	copy(z, r)
	return nil
}

// Result summarizes a completed solve.
type Result struct {
	X            []float64
	Iterations   int
	ResidualNorm float64
	Status       params.Status
}
