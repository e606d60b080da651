package spmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tridiag(n int) *CSR {
	coo := NewCOO(n, n)
	for i := 0; i < n; i++ {
		coo.Add(i, i, 2)
		if i > 0 {
			coo.Add(i, i-1, -1)
		}
		if i < n-1 {
			coo.Add(i, i+1, -1)
		}
	}
	return coo.ToCSR()
}

func TestCSRMatVec(t *testing.T) {
	a := tridiag(4)
	x := []float64{1, 1, 1, 1}
	y := make([]float64, 4)
	a.MatVec(y, x)
	assert.Equal(t, []float64{1, 0, 0, 1}, y)
}

func TestCSRAxpy(t *testing.T) {
	a := tridiag(3)
	x := []float64{1, 2, 3}
	y := []float64{10, 10, 10}
	a.AxpyMatVec(2, x, y)
	// A*x = [2*1-2, -1+2*2-3, -2+2*3] = [0, 0, 4]
	assert.InDeltaSlice(t, []float64{10, 10, 18}, y, 1e-12)
}

func TestCSRDiag(t *testing.T) {
	a := tridiag(5)
	d := a.Diag()
	for _, v := range d {
		assert.Equal(t, 2.0, v)
	}
}

func TestCSRTransposeInvolution(t *testing.T) {
	coo := NewCOO(3, 3)
	coo.Add(0, 1, 5)
	coo.Add(1, 2, -3)
	coo.Add(2, 0, 7)
	a := coo.ToCSR()
	tt := a.Transpose().Transpose()
	require.Equal(t, a.Rows, tt.Rows)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, a.At(i, j), tt.At(i, j))
		}
	}
}

func TestCSRMatTransVec(t *testing.T) {
	coo := NewCOO(2, 3)
	coo.Add(0, 0, 1)
	coo.Add(0, 2, 2)
	coo.Add(1, 1, 3)
	a := coo.ToCSR()
	x := []float64{1, 1}
	y := make([]float64, 3)
	a.MatTransVec(y, x)
	assert.Equal(t, []float64{1, 3, 2}, y)
}

func TestCOODeduplicates(t *testing.T) {
	coo := NewCOO(2, 2)
	coo.Add(0, 0, 1)
	coo.Add(0, 0, 2)
	coo.Add(1, 1, 5)
	a := coo.ToCSR()
	assert.Equal(t, 3.0, a.At(0, 0))
	assert.Equal(t, 5.0, a.At(1, 1))
	assert.Equal(t, 2, a.NNZ())
}
