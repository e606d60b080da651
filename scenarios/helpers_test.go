package scenarios_test

import (
	"bytes"

	"github.com/gofasp/gofasp/mmio"
	"github.com/gofasp/gofasp/spmat"
)

// zeroDiagonal1x1 is the smallest possible rank-deficient operator: a 1x1
// matrix whose only entry is zero.
func zeroDiagonal1x1() *spmat.CSR {
	return spmat.NewCSR(1, 1, []int{0, 1}, []int{0}, []float64{0})
}

func marketBuffer(a *spmat.CSR) *bytes.Buffer {
	var buf bytes.Buffer
	if err := mmio.WriteMatrixMarket(&buf, a); err != nil {
		panic(err)
	}
	return &buf
}

func readMarket(buf *bytes.Buffer) (*spmat.CSR, error) {
	return mmio.ReadMatrixMarket(buf)
}

// randomVectors returns n deterministic pseudo-random vectors of length dim,
// generated with a fixed linear congruential sequence so the S6 scenario
// stays reproducible without depending on math/rand's global state.
func randomVectors(dim, n int) [][]float64 {
	state := uint64(0x2545F4914F6CDD1D)
	next := func() float64 {
		state = state*6364136223846793005 + 1442695040888963407
		return float64(state>>11) / float64(1<<53)
	}
	vecs := make([][]float64, n)
	for k := range vecs {
		v := make([]float64, dim)
		for i := range v {
			v[i] = next()*2 - 1
		}
		vecs[k] = v
	}
	return vecs
}
