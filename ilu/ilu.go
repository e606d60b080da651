// Package ilu implements level-of-fill incomplete LU factorization and the
// fused triangular solve used both as a standalone smoother/preconditioner
// and as the per-level factorization AMG setup can select (section 4.3,
// 4.5, 4.8).
package ilu

import (
	"math"
	"sort"

	"github.com/gofasp/gofasp/internal/flog"
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/spmat"
)

const levelInfinite = 1 << 30

// Factors is a fused ILU(k) factorization: L (unit lower triangular) and U
// (upper triangular) share one sparsity pattern per row, exactly as the
// reference ijlu/luval layout does, so a solve only ever walks one CSR-like
// structure instead of two.
type Factors struct {
	N       int
	Ia      []int
	Ja      []int
	Val     []float64 // off-diagonal: L multiplier (col<row) or U entry (col>row); DiagPtr slot: U_ii.
	DiagPtr []int     // index into Ja/Val of the diagonal entry of each row.
}

// Factorize computes the ILU(param.LevelOfFill) factorization of a. Fill
// levels are computed symbolically first (Saad, Iterative Methods for
// Sparse Linear Systems, Alg. 10.4-10.5), then the numeric elimination
// walks only that pattern.
func Factorize(a *spmat.CSR, param params.ILUParam) *Factors {
	n := a.Rows
	pattern := symbolicLevels(a, param.LevelOfFill)

	ia := make([]int, n+1)
	for i := 0; i < n; i++ {
		ia[i+1] = ia[i] + len(pattern[i])
	}
	ja := make([]int, ia[n])
	val := make([]float64, ia[n])
	diagPtr := make([]int, n)

	row := make(map[int]float64, 16)
	for i := 0; i < n; i++ {
		for k := range row {
			delete(row, k)
		}
		a.Row(i, func(col int, v float64) { row[col] = v })

		cols := pattern[i]
		// Eliminate against previously factored rows k < i that are in
		// this row's pattern, in increasing column order.
		for _, k := range cols {
			if k >= i {
				break
			}
			aik, has := row[k]
			if !has || aik == 0 {
				continue
			}
			ukk := diagVal(ja, val, diagPtr[k])
			factor := aik / ukk
			if param.DropTol > 0 && math.Abs(factor) < param.DropTol {
				delete(row, k)
				continue
			}
			row[k] = factor
			for p := ia[k]; p < ia[k+1]; p++ {
				j := ja[p]
				if j <= k {
					continue // only U part of row k (columns > k).
				}
				row[j] -= factor * val[p]
			}
		}

		for idx, col := range cols {
			ja[ia[i]+idx] = col
			v := row[col]
			if col == i && v == 0 {
				v = param.Relax // avoid an exact zero pivot; see Warning below.
			}
			val[ia[i]+idx] = v
			if col == i {
				diagPtr[i] = ia[i] + idx
			}
		}
	}
	return &Factors{N: n, Ia: ia, Ja: ja, Val: val, DiagPtr: diagPtr}
}

func diagVal(ja []int, val []float64, ptr int) float64 {
	v := val[ptr]
	if math.Abs(v) < 1e-300 {
		flog.Warning("ilu: near-zero pivot at column %d, substituting epsilon", ja[ptr])
		return 1e-300
	}
	return v
}

// symbolicLevels computes, for every row, the sorted set of columns whose
// fill level is <= levelOfFill, always including the pattern of A and the
// diagonal.
func symbolicLevels(a *spmat.CSR, levelOfFill int) [][]int {
	n := a.Rows
	levels := make([]map[int]int, n)
	for i := 0; i < n; i++ {
		levels[i] = make(map[int]int)
		levels[i][i] = 0
		a.Row(i, func(col int, _ float64) {
			if col != i {
				levels[i][col] = 0
			}
		})
	}
	for i := 0; i < n; i++ {
		cols := sortedKeys(levels[i])
		for _, k := range cols {
			if k >= i {
				break
			}
			lik := levels[i][k]
			for j, lkj := range levels[k] {
				if j <= k {
					continue
				}
				newLevel := lik + lkj + 1
				if newLevel > levelOfFill {
					continue
				}
				if old, ok := levels[i][j]; !ok || newLevel < old {
					levels[i][j] = newLevel
				}
			}
		}
	}
	pattern := make([][]int, n)
	for i := range levels {
		pattern[i] = sortedKeys(levels[i])
	}
	return pattern
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Solve computes z = (LU)^-1 r via forward substitution with L (unit
// diagonal) followed by back substitution with U.
func (f *Factors) Solve(r, z []float64) {
	n := f.N
	y := make([]float64, n)
	copy(y, r)
	for i := 0; i < n; i++ {
		var sum float64
		for p := f.Ia[i]; p < f.DiagPtr[i]; p++ {
			sum += f.Val[p] * y[f.Ja[p]]
		}
		y[i] -= sum
	}
	copy(z, y)
	for i := n - 1; i >= 0; i-- {
		var sum float64
		for p := f.DiagPtr[i] + 1; p < f.Ia[i+1]; p++ {
			sum += f.Val[p] * z[f.Ja[p]]
		}
		z[i] = (z[i] - sum) / f.Val[f.DiagPtr[i]]
	}
}
