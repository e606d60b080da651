package spmat

// StorageManner selects how the nb×nb dense tiles of a BSR matrix are laid
// out in memory. The design only requires row-major tiles; the constant
// exists so the on-disk format (section 6) can name its convention
// explicitly.
type StorageManner int

const (
	RowMajorBlocks StorageManner = iota
	ColMajorBlocks
)

// BSR is a block sparse row matrix: like CSR, but each stored "entry" is an
// Nb×Nb dense tile. Ia has length Rows+1 (in block units); Ja has length
// NNZB; Val has length NNZB*Nb*Nb.
type BSR struct {
	Rows, Cols int // block-row and block-column counts.
	Nb         int
	Storage    StorageManner
	Ia         []int
	Ja         []int
	Val        []float64
}

// NewBSR allocates a BSR with known index arrays.
func NewBSR(rows, cols, nb int, storage StorageManner, ia, ja []int, val []float64) *BSR {
	if len(ia) != rows+1 {
		panic("spmat: bsr ia has wrong length")
	}
	nnzb := ia[rows]
	if len(ja) != nnzb || len(val) != nnzb*nb*nb {
		panic("spmat: bsr ja/val length mismatch")
	}
	return &BSR{Rows: rows, Cols: cols, Nb: nb, Storage: storage, Ia: ia, Ja: ja, Val: val}
}

// NNZB returns the number of stored blocks.
func (a *BSR) NNZB() int { return a.Ia[a.Rows] }

// FullRows, FullCols return the matrix shape in scalar (not block) units.
func (a *BSR) FullRows() int { return a.Rows * a.Nb }
func (a *BSR) FullCols() int { return a.Cols * a.Nb }

// block returns the k-th stored tile as a row-major nb*nb slice view,
// converting from column-major storage first if necessary.
func (a *BSR) block(k int, scratch []float64) []float64 {
	nb := a.Nb
	blk := a.Val[k*nb*nb : (k+1)*nb*nb]
	if a.Storage == RowMajorBlocks {
		return blk
	}
	for r := 0; r < nb; r++ {
		for c := 0; c < nb; c++ {
			scratch[r*nb+c] = blk[c*nb+r]
		}
	}
	return scratch
}

// AxpyMatVec computes y <- alpha*A*x + y over the full scalar dimensions.
func (a *BSR) AxpyMatVec(alpha float64, x, y []float64) {
	nb := a.Nb
	checkDim(len(x) == a.FullCols(), "bsr AxpyMatVec: bad x length")
	checkDim(len(y) == a.FullRows(), "bsr AxpyMatVec: bad y length")
	scratch := make([]float64, nb*nb)
	yb := make([]float64, nb)
	for i := 0; i < a.Rows; i++ {
		for v := range yb {
			yb[v] = 0
		}
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			blk := a.block(k, scratch)
			BlockMulAdd(nb, blk, x[j*nb:j*nb+nb], yb)
		}
		for v := 0; v < nb; v++ {
			y[i*nb+v] += alpha * yb[v]
		}
	}
}

// MatVec computes y <- A*x, replacing y.
func (a *BSR) MatVec(y, x []float64) {
	for i := range y {
		y[i] = 0
	}
	a.AxpyMatVec(1, x, y)
}

// MatTransVec computes y <- A^T*x, replacing y.
func (a *BSR) MatTransVec(y, x []float64) {
	nb := a.Nb
	checkDim(len(x) == a.FullRows(), "bsr MatTransVec: bad x length")
	checkDim(len(y) == a.FullCols(), "bsr MatTransVec: bad y length")
	for v := range y {
		y[v] = 0
	}
	scratch := make([]float64, nb*nb)
	scratchT := make([]float64, nb*nb)
	yb := make([]float64, nb)
	for i := 0; i < a.Rows; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			blk := a.block(k, scratch)
			transposeBlock(nb, blk, scratchT)
			for v := range yb {
				yb[v] = 0
			}
			BlockMulAdd(nb, scratchT, x[i*nb:i*nb+nb], yb)
			for v := 0; v < nb; v++ {
				y[j*nb+v] += yb[v]
			}
		}
	}
}

// Diag returns the block-diagonal of A: one nb*nb row-major tile per block
// row that has a stored diagonal block, nil otherwise.
func (a *BSR) Diag() [][]float64 {
	nb := a.Nb
	diag := make([][]float64, a.Rows)
	scratch := make([]float64, nb*nb)
	for i := 0; i < a.Rows; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if a.Ja[k] == i {
				blk := a.block(k, scratch)
				d := make([]float64, nb*nb)
				copy(d, blk)
				diag[i] = d
				break
			}
		}
	}
	return diag
}

func transposeBlock(nb int, in, out []float64) {
	for r := 0; r < nb; r++ {
		for c := 0; c < nb; c++ {
			out[c*nb+r] = in[r*nb+c]
		}
	}
}

// BlockMulAdd computes y += A*x for an nb×nb row-major block A, dispatching
// to unrolled kernels for nb in {2,3,5,7} and falling back to a generic
// triple loop otherwise (section 4.1: "any other nb falls back to a generic
// triple loop").
func BlockMulAdd(nb int, a, x, y []float64) {
	switch nb {
	case 2:
		y[0] += a[0]*x[0] + a[1]*x[1]
		y[1] += a[2]*x[0] + a[3]*x[1]
	case 3:
		y[0] += a[0]*x[0] + a[1]*x[1] + a[2]*x[2]
		y[1] += a[3]*x[0] + a[4]*x[1] + a[5]*x[2]
		y[2] += a[6]*x[0] + a[7]*x[1] + a[8]*x[2]
	case 5:
		blockMulAddUnrolled(5, a, x, y)
	case 7:
		blockMulAddUnrolled(7, a, x, y)
	default:
		for r := 0; r < nb; r++ {
			var sum float64
			row := a[r*nb : r*nb+nb]
			for c := 0; c < nb; c++ {
				sum += row[c] * x[c]
			}
			y[r] += sum
		}
	}
}

// blockMulAddUnrolled is the shared body for the nb=5 and nb=7
// specializations: still a nested loop, but over a compile-time-known small
// nb so the compiler can keep it register-resident, as the BSR matrix
// chooses per section 4.1 ("the choice is made by the BSR matrix, not by
// the caller").
func blockMulAddUnrolled(nb int, a, x, y []float64) {
	for r := 0; r < nb; r++ {
		var sum float64
		row := a[r*nb : r*nb+nb]
		for c := 0; c < nb; c++ {
			sum += row[c] * x[c]
		}
		y[r] += sum
	}
}
