// Package coarsen builds the pieces of one Ruge-Stuben AMG level that don't
// require numerical interpolation values: the strong-connection graph, the
// C/F marker per vertex, and the sparsity pattern of the prolongation
// operator. Numerical interpolation weights and the Galerkin triple product
// are the AMG setup package's job (section 4.5); this package only decides
// structure (section 4.4).
package coarsen

import (
	"github.com/gofasp/gofasp/params"
	"github.com/gofasp/gofasp/spmat"
)

// Marker classifies a vertex after C/F splitting.
type Marker int

const (
	// Fine marks a fine-grid ("F") vertex.
	Fine Marker = iota
	// Coarse marks a coarse-grid ("C") vertex.
	Coarse
	// Isolated marks a vertex whose row stores at most one entry
	// (typically just the diagonal): it is excluded from the splitting
	// entirely.
	Isolated
)

// Level is the structural output of one coarsening pass.
type Level struct {
	S         *Strength   // strong-connection graph of A
	Markers   []Marker    // one entry per fine-level row
	NCoarse   int         // number of Coarse vertices
	CoarseMap []int       // CoarseMap[i] is the coarse index of C-vertex i, -1 otherwise
	P         *spmat.CSR  // sparsity pattern of the prolongation; Val entries are placeholders (1 for C-rows, 0 for F-rows)
}

// Coarsen runs one full structural coarsening pass over a: strength graph,
// C/F split, and P sparsity, dispatching on param.Coarsening (section 4.4).
func Coarsen(a *spmat.CSR, param params.AMGParam) (*Level, error) {
	var s *Strength
	switch param.Coarsening {
	case params.CoarseningRSModified, params.CoarseningCR:
		s = GenerateSModified(a, param.StrongThreshold, param.MaxRowSum)
	case params.CoarseningRSClassicalNeg:
		s = GenerateSClassical(a, param.StrongThreshold, negOnly)
	case params.CoarseningRSClassicalAbs:
		s = GenerateSClassical(a, param.StrongThreshold, absValue)
	default:
		s = GenerateSModified(a, param.StrongThreshold, param.MaxRowSum)
	}

	var markers []Marker
	var ncoarse int
	if param.Coarsening == params.CoarseningCR {
		markers, ncoarse = CompatibleRelaxation(a, param.CR)
	} else {
		markers, ncoarse = FormCoarseLevel(a, s)
	}

	coarseMap := make([]int, a.Rows)
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

	return &Level{S: s, Markers: markers, NCoarse: ncoarse, CoarseMap: coarseMap, P: p}, nil
}
