package mmio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/gofasp/gofasp/spmat"
)

// ReadSTR reads the structured-grid format of section 6: line 1 is
// "nx ny nz"; then nc; then nband; then "|diag|" followed by that many diag
// entries; then, for each of the nband bands, "offset length" followed by
// length entries.
func ReadSTR(r io.Reader) (*spmat.STR, error) {
	sc := newScanner(r)

	nx, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading STR grid dims")
	}
	ny, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading STR grid dims")
	}
	nz, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading STR grid dims")
	}
	nc, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading STR nc")
	}
	nband, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading STR nband")
	}

	ndiag, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading STR diag length")
	}
	diag := make([]float64, ndiag)
	for i := range diag {
		v, err := sc.float()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading STR diag[%d]", i)
		}
		diag[i] = v
	}

	offsets := make([]int, nband)
	offdiag := make([][]float64, nband)
	for k := 0; k < nband; k++ {
		off, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading STR band %d offset", k)
		}
		length, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading STR band %d length", k)
		}
		offsets[k] = off
		band := make([]float64, length)
		for i := range band {
			v, err := sc.float()
			if err != nil {
				return nil, errors.Wrapf(err, "mmio: reading STR band %d entry %d", k, i)
			}
			band[i] = v
		}
		offdiag[k] = band
	}

	return &spmat.STR{Nx: nx, Ny: ny, Nz: nz, Nc: nc, Offsets: offsets, Diag: diag, Offdiag: offdiag}, nil
}

// WriteSTR writes a in ReadSTR's format.
func WriteSTR(w io.Writer, a *spmat.STR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", a.Nx, a.Ny, a.Nz)
	fmt.Fprintln(bw, a.Nc)
	fmt.Fprintln(bw, len(a.Offsets))
	fmt.Fprintln(bw, len(a.Diag))
	for _, v := range a.Diag {
		fmt.Fprintln(bw, v)
	}
	for k, off := range a.Offsets {
		band := a.Offdiag[k]
		fmt.Fprintf(bw, "%d %d\n", off, len(band))
		for _, v := range band {
			fmt.Fprintln(bw, v)
		}
	}
	return bw.Flush()
}
