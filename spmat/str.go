package spmat

// STR is a structured-grid operator: a fixed nx*ny*nz grid with Nc coupled
// unknowns per node and a fixed set of off-diagonal band Offsets (in grid
// index units). Diag holds one Nc*Nc row-major block per grid node.
// Offdiag[k] holds one Nc*Nc block for every node whose Offsets[k]-shifted
// neighbor exists; entries whose target falls outside [0, Ngrid) are
// skipped by the SpMV kernels rather than stored (section 4.1).
type STR struct {
	Nx, Ny, Nz int
	Nc         int
	Offsets    []int
	Diag       []float64   // len Ngrid*Nc*Nc
	Offdiag    [][]float64 // Offdiag[k] has len (Ngrid-|Offsets[k]|)*Nc*Nc
}

// Ngrid returns nx*ny*nz.
func (a *STR) Ngrid() int { return a.Nx * a.Ny * a.Nz }

// Dim returns the full scalar dimension Ngrid*Nc.
func (a *STR) Dim() int { return a.Ngrid() * a.Nc }

// bandLen returns the number of stored blocks along band k.
func (a *STR) bandLen(k int) int {
	off := a.Offsets[k]
	if off < 0 {
		off = -off
	}
	return a.Ngrid() - off
}

// AxpyMatVec computes y <- alpha*A*x + y.
func (a *STR) AxpyMatVec(alpha float64, x, y []float64) {
	nc := a.Nc
	ngrid := a.Ngrid()
	checkDim(len(x) == ngrid*nc, "str AxpyMatVec: bad x length")
	checkDim(len(y) == ngrid*nc, "str AxpyMatVec: bad y length")

	tmp := make([]float64, ngrid*nc)
	for n := 0; n < ngrid; n++ {
		yb := tmp[n*nc : n*nc+nc]
		BlockMulAdd(nc, a.Diag[n*nc*nc:(n+1)*nc*nc], x[n*nc:n*nc+nc], yb)
	}
	for k, off := range a.Offsets {
		band := a.Offdiag[k]
		blen := a.bandLen(k)
		for row := 0; row < blen; row++ {
			// The reference stencil is indexed so that band entry
			// "row" couples node `src` to node `src+off`, where src
			// is row if off>=0 and row-off if off<0; both forms are
			// the same set of nodes, just walked from either end.
			var src int
			if off >= 0 {
				src = row
			} else {
				src = row - off
			}
			dst := src + off
			if dst < 0 || dst >= ngrid {
				continue // out-of-range clamp (section 4.1)
			}
			blk := band[row*nc*nc : (row+1)*nc*nc]
			BlockMulAdd(nc, blk, x[src*nc:src*nc+nc], tmp[dst*nc:dst*nc+nc])
		}
	}
	for i := range tmp {
		y[i] += alpha * tmp[i]
	}
}

// MatVec computes y <- A*x, replacing y.
func (a *STR) MatVec(y, x []float64) {
	for i := range y {
		y[i] = 0
	}
	a.AxpyMatVec(1, x, y)
}

// MatTransVec computes y <- A^T*x. Because the off-diagonal bands couple
// node src to node src+off symmetrically in storage, the transpose walks
// the same bands with source and destination swapped.
func (a *STR) MatTransVec(y, x []float64) {
	nc := a.Nc
	ngrid := a.Ngrid()
	for i := range y {
		y[i] = 0
	}
	for n := 0; n < ngrid; n++ {
		blk := a.Diag[n*nc*nc : (n+1)*nc*nc]
		blkT := make([]float64, nc*nc)
		transposeBlock(nc, blk, blkT)
		BlockMulAdd(nc, blkT, x[n*nc:n*nc+nc], y[n*nc:n*nc+nc])
	}
	for k, off := range a.Offsets {
		band := a.Offdiag[k]
		blen := a.bandLen(k)
		blkT := make([]float64, nc*nc)
		for row := 0; row < blen; row++ {
			var src int
			if off >= 0 {
				src = row
			} else {
				src = row - off
			}
			dst := src + off
			if dst < 0 || dst >= ngrid {
				continue
			}
			blk := band[row*nc*nc : (row+1)*nc*nc]
			transposeBlock(nc, blk, blkT)
			BlockMulAdd(nc, blkT, x[dst*nc:dst*nc+nc], y[src*nc:src*nc+nc])
		}
	}
}

// DiagBlock returns the Nc*Nc row-major diagonal block at grid node n.
func (a *STR) DiagBlock(n int) []float64 {
	nc := a.Nc
	return a.Diag[n*nc*nc : (n+1)*nc*nc]
}

// Neighbors calls f(m, block) for every off-diagonal node m coupled to node
// n, i.e. every stored Nc*Nc block realizing the matrix entry A[n,m].
func (a *STR) Neighbors(n int, f func(m int, block []float64)) {
	nc := a.Nc
	ngrid := a.Ngrid()
	for k, off := range a.Offsets {
		band := a.Offdiag[k]
		blen := a.bandLen(k)
		if off < 0 {
			if n >= blen {
				continue
			}
			src := n - off // off<0, so this is n+|off|.
			if src < 0 || src >= ngrid {
				continue
			}
			f(src, band[n*nc*nc:(n+1)*nc*nc])
		} else {
			row := n - off
			if row < 0 || row >= blen {
				continue
			}
			f(row, band[row*nc*nc:(row+1)*nc*nc])
		}
	}
}
