package spmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// blockIdentityBSR builds a 2-block-row BSR with nb=2 identity diagonal
// blocks and a single 2x2 off-diagonal coupling block.
func blockIdentityBSR() *BSR {
	nb := 2
	ia := []int{0, 1, 3}
	ja := []int{0, 0, 1}
	val := make([]float64, 3*nb*nb)
	// Block 0: I at (0,0).
	val[0], val[3] = 1, 1
	// Block 1: coupling (1,0) = [[1,0],[0,1]]*0.5.
	val[4], val[7] = 0.5, 0.5
	// Block 2: I at (1,1).
	val[8], val[11] = 1, 1
	return NewBSR(2, 2, nb, RowMajorBlocks, ia, ja, val)
}

func TestBSRMatVec(t *testing.T) {
	a := blockIdentityBSR()
	x := []float64{1, 2, 3, 4}
	y := make([]float64, 4)
	a.MatVec(y, x)
	// row0 = I*[1,2] = [1,2]
	// row1 = 0.5*I*[1,2] + I*[3,4] = [3.5, 5]
	assert.InDeltaSlice(t, []float64{1, 2, 3.5, 5}, y, 1e-12)
}

func TestBSRDiagBlocks(t *testing.T) {
	a := blockIdentityBSR()
	d := a.Diag()
	assert.Equal(t, []float64{1, 0, 0, 1}, d[0])
	assert.Equal(t, []float64{1, 0, 0, 1}, d[1])
}

func TestBlockMulAddGenericMatchesManualLoop(t *testing.T) {
	// n=4 exercises the generic fallback; compare against a manual
	// triple loop.
	n := 4
	a := make([]float64, n*n)
	for i := range a {
		a[i] = float64(i + 1)
	}
	x := []float64{1, 2, 3, 4}
	y1 := make([]float64, n)
	BlockMulAdd(n, a, x, y1)

	y2 := make([]float64, n)
	for r := 0; r < n; r++ {
		var sum float64
		for c := 0; c < n; c++ {
			sum += a[r*n+c] * x[c]
		}
		y2[r] = sum
	}
	assert.InDeltaSlice(t, y2, y1, 1e-12)
}
