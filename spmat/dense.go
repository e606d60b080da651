package spmat

import "math"

// EpsTiny is the ill-conditioning threshold used by the small dense
// kernels: an inverse whose |det| falls below it sets the returned Ok flag
// to false instead of dividing by (near) zero.
const EpsTiny = 1e-24

// SmallDense is a dense n×n matrix stored row-major, used for the tiny
// per-node/per-block systems that appear in Schwarz smoothing, STR block
// relaxation, and the AMG coarsest-level direct solve.
type SmallDense struct {
	N   int
	Val []float64 // row-major, len N*N
}

// NewSmallDense allocates a zeroed n×n dense matrix.
func NewSmallDense(n int) *SmallDense {
	return &SmallDense{N: n, Val: make([]float64, n*n)}
}

// At and Set index the row-major backing array.
func (m *SmallDense) At(i, j int) float64     { return m.Val[i*m.N+j] }
func (m *SmallDense) Set(i, j int, v float64) { m.Val[i*m.N+j] = v }

// MatVec computes y <- A*x for a dense n×n matrix, dispatching to unrolled
// kernels for n in {2,3,5,7} and a generic loop otherwise.
func (m *SmallDense) MatVec(y, x []float64) {
	for i := range y {
		y[i] = 0
	}
	BlockMulAdd(m.N, m.Val, x, y)
}

// AxpyMatVec computes y <- y + sign*A*x, sign = +1 or -1.
func (m *SmallDense) AxpyMatVec(sign float64, x, y []float64) {
	tmp := make([]float64, m.N)
	m.MatVec(tmp, x)
	for i := range y {
		y[i] += sign * tmp[i]
	}
}

// Mul computes C <- A*B for two dense n×n matrices.
func Mul(a, b *SmallDense) *SmallDense {
	n := a.N
	c := NewSmallDense(n)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			aik := a.Val[i*n+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				c.Val[i*n+j] += aik * b.Val[k*n+j]
			}
		}
	}
	return c
}

// Invert computes A^-1 in place. Ok is false when the matrix is judged
// ill-conditioned (|det| < EpsTiny); callers should then treat the block as
// singular and skip it (section 4.2).
func (m *SmallDense) Invert() (ok bool) {
	switch m.N {
	case 2:
		return invert2(m.Val)
	case 3:
		return invert3(m.Val)
	default:
		return invertLU(m.Val, m.N)
	}
}

func invert2(a []float64) bool {
	det := a[0]*a[3] - a[1]*a[2]
	if math.Abs(det) < EpsTiny {
		return false
	}
	inv := 1 / det
	a[0], a[1], a[2], a[3] = a[3]*inv, -a[1]*inv, -a[2]*inv, a[0]*inv
	return true
}

func invert3(a []float64) bool {
	a00, a01, a02 := a[0], a[1], a[2]
	a10, a11, a12 := a[3], a[4], a[5]
	a20, a21, a22 := a[6], a[7], a[8]

	c00 := a11*a22 - a12*a21
	c01 := a12*a20 - a10*a22
	c02 := a10*a21 - a11*a20
	det := a00*c00 + a01*c01 + a02*c02
	if math.Abs(det) < EpsTiny {
		return false
	}
	inv := 1 / det

	c10 := a02*a21 - a01*a22
	c11 := a00*a22 - a02*a20
	c12 := a01*a20 - a00*a21
	c20 := a01*a12 - a02*a11
	c21 := a02*a10 - a00*a12
	c22 := a00*a11 - a01*a10

	a[0], a[1], a[2] = c00*inv, c10*inv, c20*inv
	a[3], a[4], a[5] = c01*inv, c11*inv, c21*inv
	a[6], a[7], a[8] = c02*inv, c12*inv, c22*inv
	return true
}

// invertLU inverts n×n a (row-major, overwritten in place) via LU with
// partial pivoting. It is the fallback path for n=5, n=7, and every other
// size not given an explicit formula (section 4.2).
func invertLU(a []float64, n int) bool {
	lu := append([]float64(nil), a...)
	piv := make([]int, n)
	if !factorLU(lu, n, piv) {
		return false
	}
	// Solve LU * X = I column by column.
	e := make([]float64, n)
	x := make([]float64, n)
	for col := 0; col < n; col++ {
		for i := range e {
			e[i] = 0
		}
		e[col] = 1
		solveLU(lu, n, piv, e, x)
		for row := 0; row < n; row++ {
			a[row*n+col] = x[row]
		}
	}
	return true
}

// factorLU performs in-place LU decomposition with partial pivoting of the
// row-major n×n matrix a, recording row swaps in piv (piv[k] is the pivot
// row for step k). It returns false if a pivot is judged singular.
func factorLU(a []float64, n int, piv []int) bool {
	for k := 0; k < n; k++ {
		maxVal, maxRow := math.Abs(a[k*n+k]), k
		for i := k + 1; i < n; i++ {
			if v := math.Abs(a[i*n+k]); v > maxVal {
				maxVal, maxRow = v, i
			}
		}
		piv[k] = maxRow
		if maxVal < EpsTiny {
			return false
		}
		if maxRow != k {
			for j := 0; j < n; j++ {
				a[k*n+j], a[maxRow*n+j] = a[maxRow*n+j], a[k*n+j]
			}
		}
		pivot := a[k*n+k]
		for i := k + 1; i < n; i++ {
			factor := a[i*n+k] / pivot
			a[i*n+k] = factor
			if factor == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				a[i*n+j] -= factor * a[k*n+j]
			}
		}
	}
	return true
}

// solveLU solves A*x = b given the LU factorization (with pivots) produced
// by factorLU.
func solveLU(lu []float64, n int, piv []int, b, x []float64) {
	copy(x, b)
	for k := 0; k < n; k++ {
		if piv[k] != k {
			x[k], x[piv[k]] = x[piv[k]], x[k]
		}
	}
	// Forward substitution with the unit-lower-triangular L.
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < i; j++ {
			sum += lu[i*n+j] * x[j]
		}
		x[i] -= sum
	}
	// Back substitution with the upper-triangular U.
	for i := n - 1; i >= 0; i-- {
		var sum float64
		for j := i + 1; j < n; j++ {
			sum += lu[i*n+j] * x[j]
		}
		x[i] = (x[i] - sum) / lu[i*n+i]
	}
}

// LUFactors exposes the LU factorization step for callers (Schwarz smoother
// setup) that need to factor a block once and apply it many times without
// paying for a full inverse.
type LUFactors struct {
	N    int
	LU   []float64
	Piv  []int
	ok   bool
}

// Factor computes the LU factorization of m with partial pivoting.
func (m *SmallDense) Factor() *LUFactors {
	n := m.N
	f := &LUFactors{N: n, LU: append([]float64(nil), m.Val...), Piv: make([]int, n)}
	f.ok = factorLU(f.LU, n, f.Piv)
	return f
}

// Ok reports whether the factorization found the block non-singular.
func (f *LUFactors) Ok() bool { return f.ok }

// Solve computes x = A^-1*b using the stored factorization.
func (f *LUFactors) Solve(b, x []float64) {
	solveLU(f.LU, f.N, f.Piv, b, x)
}
