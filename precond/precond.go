// Package precond gives every relaxation, factorization, and multilevel
// cycle built so far a uniform preconditioner contract, and composes them
// additively or multiplicatively (section 4.8). This is also where the
// amg.FlexibleSolver seam is wired to a real flexible Krylov driver, since
// this package is free to import both amg and krylov without creating a
// cycle.
package precond

import (
	"github.com/gofasp/gofasp/amg"
	"github.com/gofasp/gofasp/ilu"
	"github.com/gofasp/gofasp/smoother"
	"github.com/gofasp/gofasp/spmat"
)

// Preconditioner solves M z = r approximately and stores the result in z,
// mirroring the teacher's PSolve func(dst, rhs []float64) error contract
// (iterative.go's Settings.PSolve) but as a named type so precond can carry
// composition helpers.
type Preconditioner interface {
	Apply(z, r []float64) error
}

// Func adapts a plain function to Preconditioner, matching how the teacher
// itself accepts PSolve as a bare closure.
type Func func(z, r []float64) error

func (f Func) Apply(z, r []float64) error { return f(z, r) }

// Identity is the trivial preconditioner M = I.
type Identity struct{}

func (Identity) Apply(z, r []float64) error {
	copy(z, r)
	return nil
}

// Diagonal implements M = diag(A), the cheapest real preconditioner and the
// one named explicitly in spec.md's PCG scenario (S1: "PCG with diagonal
// preconditioner").
type Diagonal struct {
	inv []float64
}

// NewDiagonal builds a Diagonal preconditioner from a's diagonal, applying
// the same "substitute epsilon" rule as smoother.Jacobi for a zero entry.
func NewDiagonal(a *spmat.CSR) *Diagonal {
	d := a.Diag()
	inv := make([]float64, len(d))
	for i, v := range d {
		if v == 0 {
			v = spmat.EpsTiny
		}
		inv[i] = 1 / v
	}
	return &Diagonal{inv: inv}
}

func (p *Diagonal) Apply(z, r []float64) error {
	for i := range z {
		z[i] = p.inv[i] * r[i]
	}
	return nil
}

// Sweeper wraps any smoother.Sweeper (Jacobi, Gauss-Seidel, SOR, Schwarz,
// polynomial) as a preconditioner: apply is n sweeps of relaxation starting
// from z=0, i.e. M^-1 r is whatever n sweeps of the smoother produce for
// the residual system A z = r.
type Sweeper struct {
	S      smoother.Sweeper
	Sweeps int
}

// NewSweeper wraps s to apply n sweeps per PSolve call; n<=0 defaults to 1.
func NewSweeper(s smoother.Sweeper, n int) *Sweeper {
	if n <= 0 {
		n = 1
	}
	return &Sweeper{S: s, Sweeps: n}
}

func (p *Sweeper) Apply(z, r []float64) error {
	for i := range z {
		z[i] = 0
	}
	smoother.RunSweeps(p.S, r, z, p.Sweeps)
	return nil
}

// ILU wraps a precomputed ilu.Factors as a preconditioner: z = (LU)^-1 r.
type ILU struct {
	F *ilu.Factors
}

func NewILU(f *ilu.Factors) *ILU { return &ILU{F: f} }

func (p *ILU) Apply(z, r []float64) error {
	p.F.Solve(r, z)
	return nil
}

// AMGCycle wraps an amg.Hierarchy as a preconditioner: one V/W/F/AMLI
// cycle, starting from z=0, is the approximate solve of A z = r (section
// 4.8's "AMG as preconditioner" composition).
type AMGCycle struct {
	H *amg.Hierarchy
}

func NewAMGCycle(h *amg.Hierarchy) *AMGCycle { return &AMGCycle{H: h} }

func (p *AMGCycle) Apply(z, r []float64) error {
	lvl := p.H.Levels[0]
	lvl.B = r
	for i := range z {
		z[i] = 0
	}
	lvl.X = z
	p.H.Cycle()
	return nil
}

// Additive composes preconditioners as z = sum_i M_i^-1 r, the parallel
// (Jacobi-style) composition of section 4.8.
type Additive struct {
	Members []Preconditioner
}

func NewAdditive(members ...Preconditioner) *Additive { return &Additive{Members: members} }

func (p *Additive) Apply(z, r []float64) error {
	for i := range z {
		z[i] = 0
	}
	tmp := make([]float64, len(z))
	for _, m := range p.Members {
		if err := m.Apply(tmp, r); err != nil {
			return err
		}
		for i := range z {
			z[i] += tmp[i]
		}
	}
	return nil
}

// Multiplicative composes preconditioners sequentially (Gauss-Seidel-style
// block composition of section 4.8): each member corrects the running
// residual left by the previous one.
type Multiplicative struct {
	A       *spmat.CSR
	Members []Preconditioner
}

func NewMultiplicative(a *spmat.CSR, members ...Preconditioner) *Multiplicative {
	return &Multiplicative{A: a, Members: members}
}

func (p *Multiplicative) Apply(z, r []float64) error {
	n := len(z)
	for i := range z {
		z[i] = 0
	}
	res := make([]float64, n)
	copy(res, r)
	corr := make([]float64, n)
	ar := make([]float64, n)
	for _, m := range p.Members {
		if err := m.Apply(corr, res); err != nil {
			return err
		}
		for i := range z {
			z[i] += corr[i]
		}
		p.A.MatVec(ar, corr)
		for i := range res {
			res[i] -= ar[i]
		}
	}
	return nil
}
