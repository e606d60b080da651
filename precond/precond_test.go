package precond_test

import (
	"testing"

	"github.com/gofasp/gofasp/amg"
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/precond"
	"github.com/gofasp/gofasp/spmat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poisson1D(n int) *spmat.CSR {
	ia := make([]int, n+1)
	var ja []int
	var val []float64
	for i := 0; i < n; i++ {
		if i > 0 {
			ja = append(ja, i-1)
			val = append(val, -1)
		}
		ja = append(ja, i)
		val = append(val, 2)
		if i < n-1 {
			ja = append(ja, i+1)
			val = append(val, -1)
		}
		ia[i+1] = len(ja)
	}
	return spmat.NewCSR(n, n, ia, ja, val)
}

func TestDiagonalPreconditionerMatchesInverse(t *testing.T) {
	a := poisson1D(5)
	p := precond.NewDiagonal(a)
	r := []float64{2, 2, 2, 2, 2}
	z := make([]float64, 5)
	require.NoError(t, p.Apply(z, r))
	for _, v := range z {
		assert.InDelta(t, 1.0, v, 1e-12)
	}
}

func TestAMGCyclePreconditionerReducesResidual(t *testing.T) {
	n := 63
	a := poisson1D(n)
	h, err := amg.Setup(a, params.DefaultAMGParam())
	require.NoError(t, err)
	require.Greater(t, h.NumLevels(), 1)

	p := precond.NewAMGCycle(h)
	r := make([]float64, n)
	for i := range r {
		r[i] = 1
	}
	z := make([]float64, n)
	require.NoError(t, p.Apply(z, r))

	ar := make([]float64, n)
	a.MatVec(ar, z)
	var resid float64
	for i := range ar {
		d := r[i] - ar[i]
		resid += d * d
	}
	var rnorm float64
	for _, v := range r {
		rnorm += v * v
	}
	assert.Less(t, resid, rnorm) // one cycle should reduce the residual norm
}

func TestWithAMLIWiresFlexibleSolver(t *testing.T) {
	a := poisson1D(31)
	param := params.DefaultAMGParam()
	param.Cycle = params.CycleAMLI
	h, err := amg.Setup(a, param)
	require.NoError(t, err)
	precond.WithAMLI(h)
	assert.NotNil(t, h.AMLI)
}
