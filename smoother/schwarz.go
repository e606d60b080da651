package smoother

import "github.com/gofasp/gofasp/spmat"

// SchwarzBlock is one overlapping local subdomain: the global node indices
// it covers and the LU factorization of the local dense subsystem A
// restricted to (and only to) those nodes.
type SchwarzBlock struct {
	Nodes   []int
	Factors *spmat.LUFactors
}

// Schwarz is the block (multiplicative) Schwarz smoother of section 4.3:
// build, per node, a small dense subsystem covering the node plus a
// supplied neighbor list, factor it once, and apply by residual-update
// sweeps.
type Schwarz struct {
	A      *spmat.CSR
	Blocks []SchwarzBlock
}

// NewSchwarz builds the per-block factorizations from a caller-supplied
// list of overlapping neighborhoods (one []int of global node indices per
// block).
func NewSchwarz(a *spmat.CSR, neighborhoods [][]int) *Schwarz {
	blocks := make([]SchwarzBlock, len(neighborhoods))
	for bi, nodes := range neighborhoods {
		n := len(nodes)
		idx := make(map[int]int, n)
		for k, g := range nodes {
			idx[g] = k
		}
		dense := spmat.NewSmallDense(n)
		for r, g := range nodes {
			a.Row(g, func(j int, v float64) {
				if c, ok := idx[j]; ok {
					dense.Set(r, c, v)
				}
			})
		}
		blocks[bi] = SchwarzBlock{Nodes: nodes, Factors: dense.Factor()}
	}
	return &Schwarz{A: a, Blocks: blocks}
}

// Sweep implements Sweeper: for each block, solve its local system against
// the current global residual and add the correction into u, updating the
// residual before moving to the next block (multiplicative composition).
func (s *Schwarz) Sweep(b, u []float64) {
	n := s.A.Rows
	r := make([]float64, n)
	s.A.MatVec(r, u)
	for i := range r {
		r[i] = b[i] - r[i]
	}
	for _, blk := range s.Blocks {
		if !blk.Factors.Ok() {
			continue
		}
		m := len(blk.Nodes)
		rl := make([]float64, m)
		for k, g := range blk.Nodes {
			rl[k] = r[g]
		}
		zl := make([]float64, m)
		blk.Factors.Solve(rl, zl)
		for k, g := range blk.Nodes {
			u[g] += zl[k]
		}
		s.A.MatVec(r, u)
		for i := range r {
			r[i] = b[i] - r[i]
		}
	}
}
