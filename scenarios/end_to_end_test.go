package scenarios_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gofasp/gofasp/amg"
	"github.com/gofasp/gofasp/ilu"
	"github.com/gofasp/gofasp/krylov"
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/precond"
)

var _ = Describe("end-to-end solver scenarios", func() {

	// S1: 1-D Poisson, n=7, PCG with a diagonal preconditioner. The exact
	// solution of tridiag(-1,2,-1) x = 1 is x_i = i(n+1-i)/2.
	It("S1: solves 1-D Poisson with PCG and a diagonal preconditioner", func() {
		n := 7
		a := poisson1D(n)
		b := make([]float64, n)
		for i := range b {
			b[i] = 1
		}
		diag := precond.NewDiagonal(a)
		param := params.DefaultITSParam()
		param.Solver = params.SolverCG
		param.MaxIterations = n + 3 // exact CG theory guarantees n steps; leave floating-point rounding slack

		res, err := krylov.SolveSystem(a, b, nil, diag, param)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(BeNumerically("<=", n+3))

		for i := 0; i < n; i++ {
			want := float64(i+1) * float64(n-i) / 2
			Expect(res.X[i]).To(BeNumerically("~", want, 1e-6))
		}
	})

	// S2: 2-D Poisson on a 16x16 grid, PCG preconditioned by one AMG V-cycle
	// per iteration.
	It("S2: solves 2-D Poisson with AMG-preconditioned PCG", func() {
		n := 16
		a := poisson2D(n)
		dim := n * n
		b := make([]float64, dim)
		for i := range b {
			b[i] = 1
		}

		h, err := amg.Setup(a, params.DefaultAMGParam())
		Expect(err).NotTo(HaveOccurred())
		Expect(h.NumLevels()).To(BeNumerically(">", 1))

		amgPC := precond.NewAMGCycle(h)
		param := params.DefaultITSParam()
		param.Solver = params.SolverCG
		param.MaxIterations = 15
		param.Tolerance = 1e-10

		res, err := krylov.SolveSystem(a, b, nil, amgPC, param)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(BeNumerically("<=", 15))
		Expect(a.Norm2Residual(b, res.X)).To(BeNumerically("<", 1e-8))
	})

	// S3: a nonsymmetric 64-point advection-diffusion discretization, solved
	// by BiCGStab preconditioned with ILU(0).
	It("S3: solves nonsymmetric advection-diffusion with BiCGStab and ILU(0)", func() {
		n := 64
		a := advectionDiffusion1D(n, 1.0, 20.0)
		b := make([]float64, n)
		for i := range b {
			b[i] = 1
		}

		f := ilu.Factorize(a, params.DefaultILUParam())
		iluPC := precond.NewILU(f)

		param := params.DefaultITSParam()
		param.Solver = params.SolverBiCGStab
		param.MaxIterations = 200
		param.Tolerance = 1e-8

		res, err := krylov.SolveSystem(a, b, nil, iluPC, param)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(BeNumerically("<=", 200))
		Expect(a.Norm2Residual(b, res.X)).To(BeNumerically("<", 1e-6))
	})

	// S4: artificial stagnation. A=I, b=x0=e1, so the very first residual is
	// already zero and the driver should report convergence in 0 iterations
	// rather than stagnating its way to an error.
	It("S4: reports immediate convergence rather than stagnation when r0=0", func() {
		n := 5
		a := identity(n)
		b := make([]float64, n)
		b[0] = 1
		x0 := make([]float64, n)
		x0[0] = 1

		param := params.DefaultITSParam()
		res, err := krylov.SolveSystem(a, b, x0, nil, param)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(Equal(0))
		Expect(res.X).To(Equal(x0))
	})

	// S5: a 1x1 zero matrix is the simplest possible rank-deficient system:
	// GCG's very first A-orthogonalization step divides by <Ap,Ap>=0 and the
	// driver must surface that as ErrorSolverMisc rather than looping to
	// MaxIterations.
	It("S5: reports ErrorSolverMisc on a rank-deficient breakdown", func() {
		a := zeroDiagonal1x1()
		b := []float64{1}

		param := params.DefaultITSParam()
		param.Solver = params.SolverGCG

		_, err := krylov.SolveSystem(a, b, nil, nil, param)
		Expect(err).To(HaveOccurred())
		var serr *params.SolverError
		Expect(errors.As(err, &serr)).To(BeTrue())
		Expect(serr.Status).To(Equal(params.ErrorSolverMisc))
	})

	// S6: MatrixMarket -> CSR round trip through mmio, checked against
	// direct matvec on random vectors rather than trusting the encoding.
	It("S6: round-trips a matrix through MatrixMarket text format", func() {
		a := poisson1D(9)
		buf := marketBuffer(a)

		got, err := readMarket(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Rows).To(Equal(a.Rows))

		xs := randomVectors(a.Cols, 10)
		for _, x := range xs {
			want := make([]float64, a.Rows)
			have := make([]float64, a.Rows)
			a.MatVec(want, x)
			got.MatVec(have, x)
			for i := range want {
				Expect(have[i]).To(BeNumerically("~", want[i], 1e-9))
			}
		}
	})
})
