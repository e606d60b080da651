package amg

import "github.com/gofasp/gofasp/spmat"

// Galerkin computes the coarse operator r*a*p via the two-product method
// (ap = a*p, then r*ap), maintaining canonical form with no stored zeros
// (section 4.5). r is expected to be p^T but the two-product method works
// for any conformable r.
func Galerkin(r, a, p *spmat.CSR) *spmat.CSR {
	ap := spgemm(a, p)
	return spgemm(r, ap)
}

// spgemm computes c = a*b for two CSR matrices using row-wise
// accumulation: for each row i of a, accumulate sum_k a[i,k]*b[k,:] into a
// dense scatter map, then compact into canonical CSR.
func spgemm(a, b *spmat.CSR) *spmat.CSR {
	rows := a.Rows
	cols := b.Cols
	ia := make([]int, rows+1)

	acc := make(map[int]float64, 16)
	rowsJa := make([][]int, rows)
	rowsVal := make([][]float64, rows)

	for i := 0; i < rows; i++ {
		for k := range acc {
			delete(acc, k)
		}
		for ki := a.Ia[i]; ki < a.Ia[i+1]; ki++ {
			k := a.Ja[ki]
			aik := a.Val[ki]
			if aik == 0 {
				continue
			}
			for kj := b.Ia[k]; kj < b.Ia[k+1]; kj++ {
				j := b.Ja[kj]
				acc[j] += aik * b.Val[kj]
			}
		}
		row := make([]int, 0, len(acc))
		for j := range acc {
			row = append(row, j)
		}
		insertionSortInts(row)
		vals := make([]float64, len(row))
		nz := 0
		for _, j := range row {
			v := acc[j]
			if v == 0 {
				continue
			}
			row[nz] = j
			vals[nz] = v
			nz++
		}
		row = row[:nz]
		vals = vals[:nz]
		rowsJa[i] = row
		rowsVal[i] = vals
		ia[i+1] = ia[i] + nz
	}

	ja := make([]int, ia[rows])
	val := make([]float64, ia[rows])
	for i := 0; i < rows; i++ {
		copy(ja[ia[i]:ia[i+1]], rowsJa[i])
		copy(val[ia[i]:ia[i+1]], rowsVal[i])
	}

	return &spmat.CSR{Rows: rows, Cols: cols, Ia: ia, Ja: ja, Val: val}
}

func insertionSortInts(a []int) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j] > v {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}
