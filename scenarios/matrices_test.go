package scenarios_test

import "github.com/gofasp/gofasp/spmat"

// poisson1D builds A = tridiag(-1, 2, -1), the S1 scenario matrix.
func poisson1D(n int) *spmat.CSR {
	coo := spmat.NewCOO(n, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			coo.Add(i, i-1, -1)
		}
		coo.Add(i, i, 2)
		if i < n-1 {
			coo.Add(i, i+1, -1)
		}
	}
	return coo.ToCSR()
}

// poisson2D builds the five-point stencil on an n x n grid with Dirichlet
// zero boundary conditions, the S2 scenario matrix.
func poisson2D(n int) *spmat.CSR {
	dim := n * n
	coo := spmat.NewCOO(dim, dim)
	idx := func(r, c int) int { return r*n + c }
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			i := idx(r, c)
			coo.Add(i, i, 4)
			if r > 0 {
				coo.Add(i, idx(r-1, c), -1)
			}
			if r < n-1 {
				coo.Add(i, idx(r+1, c), -1)
			}
			if c > 0 {
				coo.Add(i, idx(r, c-1), -1)
			}
			if c < n-1 {
				coo.Add(i, idx(r, c+1), -1)
			}
		}
	}
	return coo.ToCSR()
}

// advectionDiffusion1D builds a nonsymmetric first-order-upwind
// advection-diffusion operator -eps*u'' + v*u' discretized on n points, the
// S3 scenario matrix.
func advectionDiffusion1D(n int, eps, v float64) *spmat.CSR {
	coo := spmat.NewCOO(n, n)
	h := 1.0 / float64(n+1)
	diffOff := -eps / (h * h)
	diffDiag := 2 * eps / (h * h)
	advDiag := v / h
	advOff := -v / h
	for i := 0; i < n; i++ {
		diag := diffDiag + advDiag
		coo.Add(i, i, diag)
		if i > 0 {
			coo.Add(i, i-1, diffOff+advOff)
		}
		if i < n-1 {
			coo.Add(i, i+1, diffOff)
		}
	}
	return coo.ToCSR()
}

func identity(n int) *spmat.CSR {
	coo := spmat.NewCOO(n, n)
	for i := 0; i < n; i++ {
		coo.Add(i, i, 1)
	}
	return coo.ToCSR()
}

// zeroDiagonalBreakdown returns a matrix identical to poisson1D except row
// mid's diagonal is zeroed.
func zeroDiagonalBreakdown(n, mid int) *spmat.CSR {
	a := poisson1D(n)
	for k := a.Ia[mid]; k < a.Ia[mid+1]; k++ {
		if a.Ja[k] == mid {
			a.Val[k] = 0
		}
	}
	return a
}
