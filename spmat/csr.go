// Package spmat implements the sparse and small-dense kernels the solver
// engine is built on: compressed sparse row (CSR), block sparse row (BSR),
// and structured-grid (STR) matrices, plus the COO staging format used to
// build them.
//
// Every format exposes at minimum a residual-style AXPY product, a
// replacing SpMV, a transpose SpMV, a diagonal extractor, and a transpose
// constructor, matching section 4.1 of the design.
package spmat

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CSR is a compressed sparse row matrix with zero-based indices. Ia has
// length Rows+1; Ja and Val have length Ia[Rows]. Rows in Ja are not
// required to be sorted unless a routine's contract says so.
type CSR struct {
	Rows, Cols int
	Ia         []int
	Ja         []int
	Val        []float64
}

// NewCSR allocates a CSR with the given index arrays already known (nnz is
// derived from ia[rows]).
func NewCSR(rows, cols int, ia, ja []int, val []float64) *CSR {
	if len(ia) != rows+1 {
		panic("spmat: ia has wrong length")
	}
	nnz := ia[rows]
	if len(ja) != nnz || len(val) != nnz {
		panic("spmat: ja/val length does not match ia[rows]")
	}
	return &CSR{Rows: rows, Cols: cols, Ia: ia, Ja: ja, Val: val}
}

// NNZ returns the number of stored entries.
func (a *CSR) NNZ() int { return a.Ia[a.Rows] }

// RowNNZ returns the number of stored entries in row i.
func (a *CSR) RowNNZ(i int) int { return a.Ia[i+1] - a.Ia[i] }

// Dims implements gonum/mat.Matrix.
func (a *CSR) Dims() (r, c int) { return a.Rows, a.Cols }

// At implements gonum/mat.Matrix. It is O(row bandwidth); it exists for
// interoperability with gonum routines and tests, not for hot loops.
func (a *CSR) At(i, j int) float64 {
	for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
		if a.Ja[k] == j {
			return a.Val[k]
		}
	}
	return 0
}

// T implements gonum/mat.Matrix.
func (a *CSR) T() mat.Matrix { return mat.Transpose{Matrix: a} }

// Row calls f for every (col, val) pair stored in row i.
func (a *CSR) Row(i int, f func(col int, val float64)) {
	for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
		f(a.Ja[k], a.Val[k])
	}
}

// checkDim panics with a description naming the mismatched dimension; the
// design treats dimension mismatch as fatal (section 4.1: "Errors.
// Dimension mismatch is fatal.").
func checkDim(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("spmat: "+format, args...))
	}
}

// AxpyMatVec computes y <- alpha*A*x + y.
func (a *CSR) AxpyMatVec(alpha float64, x, y []float64) {
	checkDim(len(x) == a.Cols, "AxpyMatVec: len(x)=%d != cols=%d", len(x), a.Cols)
	checkDim(len(y) == a.Rows, "AxpyMatVec: len(y)=%d != rows=%d", len(y), a.Rows)
	for i := 0; i < a.Rows; i++ {
		var sum float64
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			sum += a.Val[k] * x[a.Ja[k]]
		}
		y[i] += alpha * sum
	}
}

// MatVec computes y <- A*x, replacing the contents of y.
func (a *CSR) MatVec(y, x []float64) {
	checkDim(len(x) == a.Cols, "MatVec: len(x)=%d != cols=%d", len(x), a.Cols)
	checkDim(len(y) == a.Rows, "MatVec: len(y)=%d != rows=%d", len(y), a.Rows)
	for i := 0; i < a.Rows; i++ {
		var sum float64
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			sum += a.Val[k] * x[a.Ja[k]]
		}
		y[i] = sum
	}
}

// MatTransVec computes y <- A^T*x, replacing the contents of y.
func (a *CSR) MatTransVec(y, x []float64) {
	checkDim(len(x) == a.Rows, "MatTransVec: len(x)=%d != rows=%d", len(x), a.Rows)
	checkDim(len(y) == a.Cols, "MatTransVec: len(y)=%d != cols=%d", len(y), a.Cols)
	for i := range y {
		y[i] = 0
	}
	for i := 0; i < a.Rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			y[a.Ja[k]] += a.Val[k] * xi
		}
	}
}

// Diag returns the diagonal of A as a dense vector, 0 where a row has no
// diagonal entry stored.
func (a *CSR) Diag() []float64 {
	n := a.Rows
	if a.Cols < n {
		n = a.Cols
	}
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if a.Ja[k] == i {
				d[i] = a.Val[k]
				break
			}
		}
	}
	return d
}

// Transpose returns A^T as a new, canonical (duplicate-free) CSR. It never
// rounds: entries are copied, not recomputed, so transpose(transpose(A))
// reproduces A exactly modulo in-row ordering.
func (a *CSR) Transpose() *CSR {
	rows, cols := a.Cols, a.Rows
	ia := make([]int, rows+1)
	for _, j := range a.Ja {
		ia[j+1]++
	}
	for i := 0; i < rows; i++ {
		ia[i+1] += ia[i]
	}
	nnz := ia[rows]
	ja := make([]int, nnz)
	val := make([]float64, nnz)
	next := append([]int(nil), ia[:rows]...)
	for i := 0; i < a.Rows; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			p := next[j]
			ja[p] = i
			val[p] = a.Val[k]
			next[j]++
		}
	}
	return &CSR{Rows: rows, Cols: cols, Ia: ia, Ja: ja, Val: val}
}

// Clone returns a deep copy of A.
func (a *CSR) Clone() *CSR {
	return &CSR{
		Rows: a.Rows, Cols: a.Cols,
		Ia:  append([]int(nil), a.Ia...),
		Ja:  append([]int(nil), a.Ja...),
		Val: append([]float64(nil), a.Val...),
	}
}

// Norm2Residual returns ‖b - A*x‖_2, allocating one scratch vector.
func (a *CSR) Norm2Residual(b, x []float64) float64 {
	r := make([]float64, a.Rows)
	a.MatVec(r, x)
	floats.Scale(-1, r)
	floats.Add(r, b)
	return floats.Norm(r, 2)
}

// SortRows sorts the column indices (and matching values) within every row
// in place. Several routines (triangular solves, ILU) require sorted rows.
func (a *CSR) SortRows() {
	for i := 0; i < a.Rows; i++ {
		lo, hi := a.Ia[i], a.Ia[i+1]
		insertionSortRow(a.Ja[lo:hi], a.Val[lo:hi])
	}
}

func insertionSortRow(ja []int, val []float64) {
	for i := 1; i < len(ja); i++ {
		j, jv := ja[i], val[i]
		k := i - 1
		for k >= 0 && ja[k] > j {
			ja[k+1] = ja[k]
			val[k+1] = val[k]
			k--
		}
		ja[k+1] = j
		val[k+1] = jv
	}
}
