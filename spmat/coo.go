package spmat

import "sort"

// COO is a coordinate-format staging matrix: unordered (row, col, val)
// triples, as produced by a finite-element assembler or read from an IJ or
// MatrixMarket file. Repeated (row, col) pairs are summed on conversion to
// CSR, matching the "dense-to-sparse converter from COO triples with
// deduplication (sum-of-duplicates)" contract of section 4.1.
type COO struct {
	Rows, Cols int
	I, J       []int
	V          []float64
}

// NewCOO returns an empty COO staging matrix of the given shape.
func NewCOO(rows, cols int) *COO {
	return &COO{Rows: rows, Cols: cols}
}

// Add appends one (i, j, v) triple. Duplicates are allowed and are summed
// by ToCSR.
func (c *COO) Add(i, j int, v float64) {
	checkDim(0 <= i && i < c.Rows, "COO.Add: row %d out of range [0,%d)", i, c.Rows)
	checkDim(0 <= j && j < c.Cols, "COO.Add: col %d out of range [0,%d)", j, c.Cols)
	c.I = append(c.I, i)
	c.J = append(c.J, j)
	c.V = append(c.V, v)
}

// ToCSR converts the staged triples into a canonical CSR matrix: rows are
// sorted by column index, and duplicate (row, col) pairs are summed.
func (c *COO) ToCSR() *CSR {
	n := len(c.I)
	order := make([]int, n)
	for k := range order {
		order[k] = k
	}
	sort.Slice(order, func(x, y int) bool {
		ix, iy := order[x], order[y]
		if c.I[ix] != c.I[iy] {
			return c.I[ix] < c.I[iy]
		}
		return c.J[ix] < c.J[iy]
	})

	ia := make([]int, c.Rows+1)
	ja := make([]int, 0, n)
	val := make([]float64, 0, n)

	row := 0
	lastRow, lastCol := -1, -1
	for _, k := range order {
		i, j, v := c.I[k], c.J[k], c.V[k]
		if i == lastRow && j == lastCol {
			val[len(val)-1] += v
			continue
		}
		for row < i {
			ia[row+1] = len(ja)
			row++
		}
		ja = append(ja, j)
		val = append(val, v)
		lastRow, lastCol = i, j
	}
	for row < c.Rows {
		ia[row+1] = len(ja)
		row++
	}
	return &CSR{Rows: c.Rows, Cols: c.Cols, Ia: ia, Ja: ja, Val: val}
}
