package coarsen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/spmat"
)

func poisson1D(n int) *spmat.CSR {
	coo := spmat.NewCOO(n, n)
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

func TestGenerateSModifiedStrengthOnPoisson(t *testing.T) {
	a := poisson1D(5)
	s := GenerateSModified(a, 0.25, 0.9)
	// every interior row has two strong neighbors, boundary rows have one.
	assert.Equal(t, 1, s.Ia[1]-s.Ia[0])
	assert.Equal(t, 2, s.Ia[2]-s.Ia[1])
	assert.Equal(t, 1, s.Ia[5]-s.Ia[4])
}

func TestGenerateSClassicalNegMatchesModifiedOnMMatrix(t *testing.T) {
	a := poisson1D(6)
	sMod := GenerateSModified(a, 0.25, 0.9)
	sNeg := GenerateSClassical(a, 0.25, negOnly)
	assert.Equal(t, sMod.NNZ(), sNeg.NNZ())
}

func TestFormCoarseLevelProducesDisjointCF(t *testing.T) {
	a := poisson1D(9)
	s := GenerateSModified(a, 0.25, 0.9)
	markers, ncoarse := FormCoarseLevel(a, s)
	require.Len(t, markers, 9)
	assert.Greater(t, ncoarse, 0)
	assert.Less(t, ncoarse, 9)
	count := 0
	for _, m := range markers {
		if m == Coarse {
			count++
		}
	}
	assert.Equal(t, ncoarse, count)
}

func TestFormCoarseLevelEveryFPointHasCSupport(t *testing.T) {
	a := poisson1D(15)
	s := GenerateSModified(a, 0.25, 0.9)
	markers, _ := FormCoarseLevel(a, s)
	for i, m := range markers {
		if m != Fine {
			continue
		}
		hasCNeighbor := false
		s.Row(i, func(j int) {
			if markers[j] == Coarse {
				hasCNeighbor = true
			}
		})
		assert.True(t, hasCNeighbor, "F-point %d has no strong C-neighbor at all", i)
	}
}

func TestGenerateSparsityPRowShapes(t *testing.T) {
	a := poisson1D(7)
	s := GenerateSModified(a, 0.25, 0.9)
	markers, ncoarse := FormCoarseLevel(a, s)
	coarseMap := make([]int, 7)
	idx := 0
	for i, m := range markers {
		if m == Coarse {
			coarseMap[i] = idx
			idx++
		} else {
			coarseMap[i] = -1
		}
	}
	p := GenerateSparsityP(s, markers, coarseMap, ncoarse)
	assert.Equal(t, 7, p.Rows)
	assert.Equal(t, ncoarse, p.Cols)
	for i, m := range markers {
		nnz := p.RowNNZ(i)
		if m == Coarse {
			assert.Equal(t, 1, nnz)
		}
		if m == Isolated {
			assert.Equal(t, 0, nnz)
		}
	}
}

func TestCoarsenTopLevelWiring(t *testing.T) {
	a := poisson1D(11)
	param := params.DefaultAMGParam()
	lvl, err := Coarsen(a, param)
	require.NoError(t, err)
	assert.Equal(t, lvl.NCoarse, lvl.P.Cols)
	assert.Equal(t, 11, lvl.P.Rows)
}

// fixedRowCounter reports the same row size for every row, used to build a
// directed Strength graph directly without going through GenerateSModified
// (which always yields a symmetric graph on the symmetric matrices used
// elsewhere in this file).
type fixedRowCounter int

func (n fixedRowCounter) RowNNZ(int) int { return int(n) }

func TestFormCoarseLevelOnAsymmetricStrengthGraph(t *testing.T) {
	// A directed strength graph (S(i) not symmetric): row i's dependency
	// targets are all j > i, so the Step-3 seeding loop's demotion-
	// propagation touches an undecided neighbor that has not had its own
	// turn in the outer loop yet. That is exactly the path
	// bumpAndReinsert's j<i / j>=i split guards against corrupting.
	s := &Strength{
		Rows: 6, Cols: 6,
		Ia: []int{0, 2, 3, 4, 4, 5, 5},
		Ja: []int{1, 2, 3, 3, 5},
	}
	markers, ncoarse := FormCoarseLevel(fixedRowCounter(2), s)
	require.Len(t, markers, 6)
	assert.Greater(t, ncoarse, 0)
	assert.Less(t, ncoarse, 6)

	count := 0
	for _, m := range markers {
		require.Contains(t, []Marker{Fine, Coarse, Isolated}, m)
		if m == Coarse {
			count++
		}
	}
	assert.Equal(t, ncoarse, count)
}

func TestCompatibleRelaxationCoarsensPoisson(t *testing.T) {
	a := poisson1D(20)
	cr := params.DefaultCRParam()
	markers, ncoarse := CompatibleRelaxation(a, cr)
	require.Len(t, markers, 20)
	assert.Greater(t, ncoarse, 0)
	assert.Less(t, ncoarse, 20)
}
