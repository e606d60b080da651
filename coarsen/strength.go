package coarsen

import (
	"math"

	"github.com/gofasp/gofasp/spmat"
)

// Strength is the strong-connection graph S of a matrix: for each row i, the
// set of columns j (j != i) that the coarsening strategy judges strongly
// connected. It is stored as a CSR-shaped index structure with no values,
// grounded on the FASP iCSRmat used by generate_S / generate_S_rs.
type Strength struct {
	Rows, Cols int
	Ia         []int
	Ja         []int
}

// NNZ returns the number of strong edges recorded.
func (s *Strength) NNZ() int { return s.Ia[s.Rows] }

// Row calls f for every column j strongly connected to row i.
func (s *Strength) Row(i int, f func(j int)) {
	for k := s.Ia[i]; k < s.Ia[i+1]; k++ {
		f(s.Ja[k])
	}
}

// Transpose returns S^T: for each column j of S, the set of rows i with
// j in S(i). Splitting phase one needs S^T to compute lambda_i =
// |{k : i in S(k)}|.
func (s *Strength) Transpose() *Strength {
	rows, cols := s.Cols, s.Rows
	ia := make([]int, rows+1)
	for _, j := range s.Ja {
		ia[j+1]++
	}
	for i := 0; i < rows; i++ {
		ia[i+1] += ia[i]
	}
	ja := make([]int, ia[rows])
	next := append([]int(nil), ia[:rows]...)
	for i := 0; i < s.Rows; i++ {
		for k := s.Ia[i]; k < s.Ia[i+1]; k++ {
			j := s.Ja[k]
			ja[next[j]] = i
			next[j]++
		}
	}
	return &Strength{Rows: rows, Cols: cols, Ia: ia, Ja: ja}
}

// GenerateSModified builds the strong-connection graph using the modified
// Ruge-Stuben test (section 4.4): for each row, row_scale = min_j a_ij and
// row_sum = |sum_j a_ij| / max(SMALLREAL, |a_ii|). If row_sum exceeds
// maxRowSum (and maxRowSum < 1), every dependency in that row is weak.
// Otherwise (i,j) is strong iff a_ij < epsilon*row_scale and j != i.
func GenerateSModified(a *spmat.CSR, epsilon, maxRowSum float64) *Strength {
	const smallReal = 1e-300
	row := a.Rows
	diag := a.Diag()

	ia := make([]int, row+1)
	strong := make([]bool, len(a.Ja))

	for i := 0; i < row; i++ {
		lo, hi := a.Ia[i], a.Ia[i+1]
		rowScale, rowSum := 0.0, 0.0
		for k := lo; k < hi; k++ {
			v := a.Val[k]
			if v < rowScale {
				rowScale = v
			}
			rowSum += v
		}
		denom := math.Abs(diag[i])
		if denom < smallReal {
			denom = smallReal
		}
		rowSum = math.Abs(rowSum) / denom

		if rowSum > maxRowSum && maxRowSum < 1 {
			continue // every dependency in this row stays weak
		}
		for k := lo; k < hi; k++ {
			j := a.Ja[k]
			if j == i {
				continue
			}
			if a.Val[k] < epsilon*rowScale {
				strong[k] = true
				ia[i+1]++
			}
		}
	}
	for i := 0; i < row; i++ {
		ia[i+1] += ia[i]
	}
	ja := make([]int, ia[row])
	idx := 0
	for i := 0; i < row; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if strong[k] {
				ja[idx] = a.Ja[k]
				idx++
			}
		}
	}
	return &Strength{Rows: row, Cols: a.Cols, Ia: ia, Ja: ja}
}

// classicalKind selects the classical RS strength test variant.
type classicalKind int

const (
	negOnly classicalKind = iota
	absValue
)

// GenerateSClassical builds the strong-connection graph using the classical
// Ruge-Stuben test (section 4.4): edge (i,j) is strong iff -a_ij >=
// epsilon*max_k(-a_ik) (negOnly) or |a_ij| >= epsilon*max_k|a_ik| (absValue),
// excluding the diagonal from both the max and the test.
func GenerateSClassical(a *spmat.CSR, epsilon float64, kind classicalKind) *Strength {
	row := a.Rows
	amax := make([]float64, row)
	for i := 0; i < row; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if a.Ja[k] == i {
				continue
			}
			var v float64
			if kind == negOnly {
				v = -a.Val[k]
			} else {
				v = math.Abs(a.Val[k])
			}
			if v > amax[i] {
				amax[i] = v
			}
		}
	}

	strongAt := func(i, k int) bool {
		if a.Ja[k] == i {
			return false
		}
		var v float64
		if kind == negOnly {
			v = -a.Val[k]
		} else {
			v = math.Abs(a.Val[k])
		}
		return v >= epsilon*amax[i]
	}

	ia := make([]int, row+1)
	for i := 0; i < row; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if strongAt(i, k) {
				ia[i+1]++
			}
		}
	}
	for i := 0; i < row; i++ {
		ia[i+1] += ia[i]
	}
	ja := make([]int, ia[row])
	idx := 0
	for i := 0; i < row; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if strongAt(i, k) {
				ja[idx] = a.Ja[k]
				idx++
			}
		}
	}
	return &Strength{Rows: row, Cols: a.Cols, Ia: ia, Ja: ja}
}
