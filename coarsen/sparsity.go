package coarsen

import "github.com/gofasp/gofasp/spmat"

// GenerateSparsityP builds the sparsity pattern of the prolongation matrix
// from the strength graph and C/F markers (section 4.4): a C-row gets a
// single unit entry at its own coarse index, an isolated row is empty, and
// an F-row gets one entry per strong C-neighbor. Values are placeholders
// (1 for the C-row identity entries, 0 for the F-row entries AMG setup will
// fill in with actual interpolation weights).
func GenerateSparsityP(s *Strength, markers []Marker, coarseMap []int, ncoarse int) *spmat.CSR {
	row := s.Rows
	ia := make([]int, row+1)

	for i := 0; i < row; i++ {
		switch markers[i] {
		case Fine:
			s.Row(i, func(j int) {
				if markers[j] == Coarse {
					ia[i+1]++
				}
			})
		case Isolated:
			ia[i+1] = 0
		case Coarse:
			ia[i+1] = 1
		}
	}
	for i := 0; i < row; i++ {
		ia[i+1] += ia[i]
	}

	nnz := ia[row]
	ja := make([]int, nnz)
	val := make([]float64, nnz)
	idx := 0
	for i := 0; i < row; i++ {
		switch markers[i] {
		case Fine:
			s.Row(i, func(j int) {
				if markers[j] == Coarse {
					ja[idx] = coarseMap[j]
					val[idx] = 0
					idx++
				}
			})
		case Coarse:
			ja[idx] = coarseMap[i]
			val[idx] = 1
			idx++
		}
	}

	return spmat.NewCSR(row, ncoarse, ia, ja, val)
}
