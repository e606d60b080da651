package mmio_test

import (
	"bytes"
	"testing"

	"github.com/gofasp/gofasp/mmio"
	"github.com/gofasp/gofasp/spmat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCSR() *spmat.CSR {
	return spmat.NewCSR(3, 3,
		[]int{0, 2, 4, 5},
		[]int{0, 1, 0, 1, 2},
		[]float64{2, -1, -1, 2, 3},
	)
}

func TestCSRRoundTrip(t *testing.T) {
	a := sampleCSR()
	var buf bytes.Buffer
	require.NoError(t, mmio.WriteCSR(&buf, a))

	got, err := mmio.ReadCSR(&buf)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, got.Rows)
	assert.Equal(t, a.Ia, got.Ia)
	assert.Equal(t, a.Ja, got.Ja)
	assert.InDeltaSlice(t, a.Val, got.Val, 1e-12)
}

func TestIJRoundTrip(t *testing.T) {
	a := sampleCSR()
	var buf bytes.Buffer
	require.NoError(t, mmio.WriteIJ(&buf, a))

	got, err := mmio.ReadIJ(&buf)
	require.NoError(t, err)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			assert.InDelta(t, a.At(i, j), got.At(i, j), 1e-12)
		}
	}
}

func TestMatrixMarketRoundTrip(t *testing.T) {
	a := sampleCSR()
	var buf bytes.Buffer
	require.NoError(t, mmio.WriteMatrixMarket(&buf, a))

	got, err := mmio.ReadMatrixMarket(&buf)
	require.NoError(t, err)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			assert.InDelta(t, a.At(i, j), got.At(i, j), 1e-12)
		}
	}
}

func TestMatrixMarketSymmetricExpandsToGeneral(t *testing.T) {
	src := "%%MatrixMarket matrix coordinate real symmetric\n" +
		"3 3 2\n" +
		"2 1 5.0\n" +
		"3 3 9.0\n"
	got, err := mmio.ReadMatrixMarket(bytes.NewBufferString(src))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got.At(1, 0), 1e-12)
	assert.InDelta(t, 5.0, got.At(0, 1), 1e-12)
	assert.InDelta(t, 9.0, got.At(2, 2), 1e-12)
}

func TestVectorRoundTrip(t *testing.T) {
	v := []float64{1, 2.5, -3, 0}
	var buf bytes.Buffer
	require.NoError(t, mmio.WriteVector(&buf, v))

	got, err := mmio.ReadVector(&buf)
	require.NoError(t, err)
	assert.InDeltaSlice(t, v, got, 1e-12)
}

func TestSTRRoundTrip(t *testing.T) {
	a := &spmat.STR{
		Nx: 2, Ny: 2, Nz: 1, Nc: 1,
		Offsets: []int{-1, 1},
		Diag:    []float64{4, 4, 4, 4},
		Offdiag: [][]float64{{-1, -1, -1}, {-1, -1, -1}},
	}
	var buf bytes.Buffer
	require.NoError(t, mmio.WriteSTR(&buf, a))

	got, err := mmio.ReadSTR(&buf)
	require.NoError(t, err)
	assert.Equal(t, a.Nx, got.Nx)
	assert.Equal(t, a.Offsets, got.Offsets)
	assert.InDeltaSlice(t, a.Diag, got.Diag, 1e-12)
	for k := range a.Offdiag {
		assert.InDeltaSlice(t, a.Offdiag[k], got.Offdiag[k], 1e-12)
	}
}

func TestBSRRoundTrip(t *testing.T) {
	a := spmat.NewBSR(2, 2, 2, spmat.RowMajorBlocks,
		[]int{0, 1, 2},
		[]int{0, 1},
		[]float64{2, 0, 0, 2, 3, 0, 0, 3},
	)
	var buf bytes.Buffer
	require.NoError(t, mmio.WriteBSR(&buf, a))

	got, err := mmio.ReadBSR(&buf)
	require.NoError(t, err)
	assert.Equal(t, a.Nb, got.Nb)
	assert.Equal(t, a.Ia, got.Ia)
	assert.Equal(t, a.Ja, got.Ja)
	assert.InDeltaSlice(t, a.Val, got.Val, 1e-12)
}
