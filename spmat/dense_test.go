package spmat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvert2(t *testing.T) {
	m := &SmallDense{N: 2, Val: []float64{4, 7, 2, 6}}
	ok := m.Invert()
	require.True(t, ok)
	// det = 24-14=10; inv = [[0.6,-0.7],[-0.2,0.4]]
	assert.InDeltaSlice(t, []float64{0.6, -0.7, -0.2, 0.4}, m.Val, 1e-12)
}

func TestInvertSingularFlagged(t *testing.T) {
	m := &SmallDense{N: 2, Val: []float64{1, 2, 2, 4}}
	ok := m.Invert()
	assert.False(t, ok)
}

func TestInvertLUAgreesForGenericAndSpecialSizes(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for _, n := range []int{2, 3, 4, 5, 7, 6} {
		a := NewSmallDense(n)
		for i := range a.Val {
			a.Val[i] = rnd.Float64()
		}
		for i := 0; i < n; i++ {
			a.Val[i*n+i] += float64(n) // diagonally dominant, well-conditioned
		}
		orig := append([]float64(nil), a.Val...)
		ok := a.Invert()
		require.True(t, ok, "n=%d", n)

		// A * A^-1 should be the identity.
		prod := Mul(&SmallDense{N: n, Val: orig}, a)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want := 0.0
				if i == j {
					want = 1.0
				}
				assert.InDelta(t, want, prod.At(i, j), 1e-8, "n=%d i=%d j=%d", n, i, j)
			}
		}
	}
}

func TestLUFactorsSolve(t *testing.T) {
	m := &SmallDense{N: 3, Val: []float64{4, 3, 0, 3, 4, -1, 0, -1, 4}}
	f := m.Factor()
	require.True(t, f.Ok())
	b := []float64{7, 6, 3}
	x := make([]float64, 3)
	f.Solve(b, x)
	y := make([]float64, 3)
	m.MatVec(y, x)
	assert.InDeltaSlice(t, b, y, 1e-9)
}
