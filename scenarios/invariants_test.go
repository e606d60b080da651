package scenarios_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gonum.org/v1/gonum/floats"

	"github.com/gofasp/gofasp/amg"
	"github.com/gofasp/gofasp/coarsen"
	"github.com/gofasp/gofasp/krylov"
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/precond"
	"github.com/gofasp/gofasp/spmat"
)

var _ = Describe("testable invariants", func() {

	// Invariant 1: for an SPD system, unpreconditioned CG's residual norm
	// is non-increasing from one iteration to the next. Drive CG's Method
	// state machine directly (the same reverse-communication protocol
	// krylov.Solve uses) to observe every intermediate residual norm.
	It("keeps CG's residual norm monotone non-increasing on an SPD system", func() {
		n := 20
		a := poisson1D(n)
		b := make([]float64, n)
		for i := range b {
			b[i] = 1
		}

		cg := &krylov.CG{}
		cg.Init(n)
		ctx := &krylov.Context{X: make([]float64, n), Residual: append([]float64(nil), b...)}
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)

		var norms []float64
		done := false
		for i := 0; i < 4*n && !done; i++ {
			op, err := cg.Iterate(ctx)
			Expect(err).NotTo(HaveOccurred())
			switch op {
			case krylov.MatVec:
				a.MatVec(ctx.Dst, ctx.Src)
			case krylov.PSolve:
				copy(ctx.Dst, ctx.Src)
			case krylov.CheckResidualNorm:
				ctx.Converged = ctx.ResidualNorm < 1e-10
			case krylov.EndIteration:
				norms = append(norms, ctx.ResidualNorm)
				done = ctx.Converged
			}
		}

		Expect(len(norms)).To(BeNumerically(">", 1))
		for k := 1; k < len(norms); k++ {
			Expect(norms[k]).To(BeNumerically("<=", norms[k-1]*(1+1e-9)))
		}
	})

	// Invariant 2: a zero right-hand side with a zero initial iterate must
	// converge in zero iterations, never entering the driver loop.
	It("returns the zero iterate in zero iterations for a zero right-hand side", func() {
		n := 6
		a := poisson1D(n)
		b := make([]float64, n)
		res, err := krylov.SolveSystem(a, b, nil, nil, params.DefaultITSParam())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(Equal(0))
		for _, v := range res.X {
			Expect(v).To(BeZero())
		}
	})

	// Invariant 3: preconditioning with precond.Identity produces the same
	// iterate sequence as no preconditioner at all.
	It("makes an explicit identity preconditioner behave exactly like no preconditioner", func() {
		a := poisson1D(15)
		b := make([]float64, 15)
		for i := range b {
			b[i] = 1
		}
		param := params.DefaultITSParam()

		plain, err := krylov.SolveSystem(a, b, nil, nil, param)
		Expect(err).NotTo(HaveOccurred())
		withIdentity, err := krylov.SolveSystem(a, b, nil, precond.Identity{}, param)
		Expect(err).NotTo(HaveOccurred())

		Expect(withIdentity.Iterations).To(Equal(plain.Iterations))
		for i := range plain.X {
			Expect(withIdentity.X[i]).To(BeNumerically("~", plain.X[i], 1e-12))
		}
	})

	// Invariant 4: a well-conditioned SPD solve that converges normally must
	// not be misreported as stagnation (ErrorSolverStag), which would be a
	// false positive of the section 4.7 safety net.
	It("does not false-positive stagnation on a convergent SPD solve", func() {
		a := poisson1D(30)
		b := make([]float64, 30)
		for i := range b {
			b[i] = 1
		}
		_, err := krylov.SolveSystem(a, b, nil, nil, params.DefaultITSParam())
		Expect(err).NotTo(HaveOccurred())
	})

	// Invariant 5: the Galerkin coarse operator must equal P^T A P; it is
	// checked column by column against an independent R*(A*P) computation
	// to within 1e-9.
	It("keeps the AMG coarse operator equal to R*A*P for R=P^T", func() {
		a := poisson2D(8)
		amgParam := params.DefaultAMGParam()

		cl, err := coarsen.Coarsen(a, amgParam)
		Expect(err).NotTo(HaveOccurred())
		Expect(cl.NCoarse).To(BeNumerically(">", 0))
		Expect(cl.NCoarse).To(BeNumerically("<", a.Rows))

		p := amg.Interpolate(a, cl, amgParam.TruncationEps)
		r := p.Transpose()
		coarseA := amg.Galerkin(r, a, p)

		Expect(coarseA.Rows).To(Equal(cl.NCoarse))
		Expect(coarseA.Cols).To(Equal(cl.NCoarse))

		// Recompute R*(A*P) independently via dense matvecs on unit
		// vectors and compare column by column.
		for j := 0; j < cl.NCoarse; j++ {
			ej := make([]float64, cl.NCoarse)
			ej[j] = 1
			pej := make([]float64, a.Rows)
			p.MatVec(pej, ej)
			apej := make([]float64, a.Rows)
			a.MatVec(apej, pej)
			want := make([]float64, cl.NCoarse)
			r.MatVec(want, apej)

			for i := 0; i < cl.NCoarse; i++ {
				Expect(coarseA.At(i, j)).To(BeNumerically("~", want[i], 1e-9))
			}
		}
	})

	// Invariant 6: every vertex is marked exactly one of Fine, Coarse, or
	// Isolated -- C and F never overlap.
	It("keeps the C/F/isolated markers pairwise disjoint and exhaustive", func() {
		a := poisson2D(10)
		cl, err := coarsen.Coarsen(a, params.DefaultAMGParam())
		Expect(err).NotTo(HaveOccurred())
		Expect(len(cl.Markers)).To(Equal(a.Rows))

		nCoarse, nFine, nIso := 0, 0, 0
		for _, m := range cl.Markers {
			switch m {
			case coarsen.Coarse:
				nCoarse++
			case coarsen.Fine:
				nFine++
			case coarsen.Isolated:
				nIso++
			default:
				Fail("marker outside {Fine, Coarse, Isolated}")
			}
		}
		Expect(nCoarse).To(Equal(cl.NCoarse))
		Expect(nCoarse + nFine + nIso).To(Equal(a.Rows))
	})

	// Invariant 7: classical Ruge-Stuben interpolation reproduces constants
	// exactly, i.e. every row of P sums to 1.
	It("keeps every prolongation row summing to 1", func() {
		a := poisson2D(8)
		amgParam := params.DefaultAMGParam()
		cl, err := coarsen.Coarsen(a, amgParam)
		Expect(err).NotTo(HaveOccurred())

		p := amg.Interpolate(a, cl, 0) // no truncation, so the exact identity holds
		for i := 0; i < p.Rows; i++ {
			if cl.Markers[i] == coarsen.Isolated {
				continue
			}
			var sum float64
			p.Row(i, func(_ int, v float64) { sum += v })
			Expect(sum).To(BeNumerically("~", 1, 1e-9))
		}
	})

	// Invariant 8: solving the coarsest level directly twice in a row from
	// the same right-hand side is idempotent -- the second solve leaves the
	// residual at (near) machine-epsilon since the first already zeroed it.
	It("makes the coarsest-level direct solve idempotent", func() {
		a := poisson1D(5)
		small := spmat.NewSmallDense(5)
		for i := 0; i < 5; i++ {
			for j := 0; j < 5; j++ {
				small.Set(i, j, a.At(i, j))
			}
		}
		dense := small.Factor()
		Expect(dense.Ok()).To(BeTrue())

		b := []float64{1, 2, 3, 4, 5}
		x1 := make([]float64, 5)
		dense.Solve(b, x1)

		r := make([]float64, 5)
		a.MatVec(r, x1)
		for i := range r {
			r[i] = b[i] - r[i]
		}
		correction := make([]float64, 5)
		dense.Solve(r, correction)
		for _, c := range correction {
			Expect(c).To(BeNumerically("~", 0, 1e-9))
		}
	})
})
