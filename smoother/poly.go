package smoother

import "math"

// Polynomial is the Chebyshev-like polynomial smoother of section 4.3: a
// fixed-degree polynomial in D^-1*A built from an estimate of the spectral
// range [Mu0, Mu1].
type Polynomial struct {
	A      MatVecer
	Degree int
	diag   []float64
	Mu0    float64
	Mu1    float64
}

// MatVecer is the minimal matrix capability the polynomial smoother needs;
// it is satisfied by *spmat.CSR (and, via a thin adapter, BSR/STR), so the
// same smoother works across formats without depending on spmat.CSR
// directly.
type MatVecer interface {
	MatVec(y, x []float64)
}

// NewPolynomial builds a degree-`degree` Chebyshev smoother for a matrix of
// dimension rows, with diag the diagonal of A (already epsilon-guarded by
// the caller).
//
// Mu0 = 1/‖D^-1 A‖_∞ and Mu1 = 4*Mu0, per section 4.3. The row-infinity
// norm of D^-1 A is estimated directly from diag and a row-sum callback.
func NewPolynomial(a MatVecer, rows int, diag []float64, rowAbsSum func(i int) float64, degree int) *Polynomial {
	var normInf float64
	for i := 0; i < rows; i++ {
		v := rowAbsSum(i) / math.Abs(diag[i])
		if v > normInf {
			normInf = v
		}
	}
	mu0 := 1 / normInf
	return &Polynomial{A: a, Degree: degree, diag: diag, Mu0: mu0, Mu1: 4 * mu0}
}

// AutoDegree implements the degree heuristic from Open Question 3:
// ndeg0 = floor(log(2(2+θ+1/θ)/(θ-1/θ)²)/log(θ) + 1), with κ=θ estimated
// as smax/smin and smin = smax/8. It is offered as a starting point, not a
// fixed law (see DESIGN.md).
func AutoDegree(smax float64) int {
	smin := smax / 8
	theta := smax / smin // = 8, by construction of the heuristic.
	num := 2 * (2 + theta + 1/theta)
	den := (theta - 1/theta) * (theta - 1/theta)
	nd := math.Floor(math.Log(num/den)/math.Log(theta) + 1)
	if nd < 1 {
		nd = 1
	}
	return int(nd)
}

// Sweep implements Sweeper via the three-term Chebyshev semi-iterative
// recurrence.
func (s *Polynomial) Sweep(b, u []float64) {
	n := len(u)
	theta := (s.Mu1 + s.Mu0) / 2
	delta := (s.Mu1 - s.Mu0) / 2
	sigma := theta / delta
	rho := 1 / sigma

	r := make([]float64, n)
	d := make([]float64, n)
	z := make([]float64, n)

	s.A.MatVec(r, u)
	for i := range r {
		r[i] = b[i] - r[i]
	}
	for k := 0; k < s.Degree; k++ {
		for i := range z {
			z[i] = r[i] / s.diag[i]
		}
		if k == 0 {
			for i := range d {
				d[i] = z[i] / theta
			}
		} else {
			rhoNew := 1 / (2*sigma - rho)
			for i := range d {
				d[i] = rhoNew*rho*d[i] + 2*rhoNew/delta*z[i]
			}
			rho = rhoNew
		}
		for i := range u {
			u[i] += d[i]
		}
		s.A.MatVec(r, u)
		for i := range r {
			r[i] = b[i] - r[i]
		}
	}
}
