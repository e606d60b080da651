package smoother

import (
	"github.com/gofasp/gofasp/spmat"
)

// STRJacobi is the blockwise Jacobi smoother for a structured matrix with
// Nc>1 coupled unknowns per node: each node's correction solves its local
// Nc*Nc diagonal block (section 4.3: "For STR with nc > 1 each node is an
// nc×nc block and the inverse is applied blockwise").
type STRJacobi struct {
	A     *spmat.STR
	Omega float64
	diag  []*spmat.LUFactors
}

// NewSTRJacobi factors every diagonal block once at construction time.
func NewSTRJacobi(a *spmat.STR, omega float64) *STRJacobi {
	nc := a.Nc
	ngrid := a.Ngrid()
	diag := make([]*spmat.LUFactors, ngrid)
	for n := 0; n < ngrid; n++ {
		d := &spmat.SmallDense{N: nc, Val: append([]float64(nil), a.DiagBlock(n)...)}
		diag[n] = d.Factor()
	}
	return &STRJacobi{A: a, Omega: omega, diag: diag}
}

// Sweep implements Sweeper.
func (s *STRJacobi) Sweep(b, u []float64) {
	nc := s.A.Nc
	ngrid := s.A.Ngrid()
	r := make([]float64, len(u))
	s.A.MatVec(r, u)
	for i := range r {
		r[i] = b[i] - r[i]
	}
	corr := make([]float64, nc)
	for n := 0; n < ngrid; n++ {
		if !s.diag[n].Ok() {
			continue
		}
		s.diag[n].Solve(r[n*nc:n*nc+nc], corr)
		for c := 0; c < nc; c++ {
			u[n*nc+c] += s.Omega * corr[c]
		}
	}
}

// STRGaussSeidel is the blockwise ascending/descending Gauss-Seidel
// smoother for structured matrices.
type STRGaussSeidel struct {
	A     *spmat.STR
	Order Order
	Omega float64
	diag  []*spmat.LUFactors
}

// NewSTRGaussSeidel factors every diagonal block once.
func NewSTRGaussSeidel(a *spmat.STR, order Order, omega float64) *STRGaussSeidel {
	nc := a.Nc
	ngrid := a.Ngrid()
	diag := make([]*spmat.LUFactors, ngrid)
	for n := 0; n < ngrid; n++ {
		d := &spmat.SmallDense{N: nc, Val: append([]float64(nil), a.DiagBlock(n)...)}
		diag[n] = d.Factor()
	}
	return &STRGaussSeidel{A: a, Order: order, Omega: omega, diag: diag}
}

// Sweep implements Sweeper.
func (s *STRGaussSeidel) Sweep(b, u []float64) {
	nc := s.A.Nc
	ngrid := s.A.Ngrid()

	visit := func(n int) {
		if !s.diag[n].Ok() {
			return
		}
		local := make([]float64, nc)
		copy(local, b[n*nc:n*nc+nc])
		s.A.Neighbors(n, func(m int, block []float64) {
			blockMulAddNeg(nc, block, u[m*nc:m*nc+nc], local)
		})
		corr := make([]float64, nc)
		s.diag[n].Solve(local, corr)
		for c := 0; c < nc; c++ {
			u[n*nc+c] = (1-s.Omega)*u[n*nc+c] + s.Omega*corr[c]
		}
	}

	if s.Order == Descending {
		for n := ngrid - 1; n >= 0; n-- {
			visit(n)
		}
	} else {
		for n := 0; n < ngrid; n++ {
			visit(n)
		}
	}
}

// blockMulAddNeg computes y -= A*x for a row-major nc*nc block.
func blockMulAddNeg(nc int, a, x, y []float64) {
	tmp := make([]float64, nc)
	spmat.BlockMulAdd(nc, a, x, tmp)
	for i := range y {
		y[i] -= tmp[i]
	}
}
