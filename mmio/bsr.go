package mmio

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/gofasp/gofasp/spmat"
)

// ReadBSR reads the block sparse row format of section 6: line 1 is
// "ROW COL NNZ" (block-row, block-col, block-nnz counts); then nb; then
// storage_manner; then "|IA|" + IA; then "|JA|" + JA; then "|val|" + val.
func ReadBSR(r io.Reader) (*spmat.BSR, error) {
	sc := newScanner(r)

	rows, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR header")
	}
	cols, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR header")
	}
	if _, err := sc.int(); err != nil { // NNZ is redundant with |JA| below; consumed and discarded.
		return nil, errors.Wrap(err, "mmio: reading BSR header")
	}
	nb, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR block size")
	}
	storageCode, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR storage manner")
	}

	niaLen, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR |IA|")
	}
	ia := make([]int, niaLen)
	for i := range ia {
		v, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading BSR ia[%d]", i)
		}
		ia[i] = v
	}

	njaLen, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR |JA|")
	}
	ja := make([]int, njaLen)
	for i := range ja {
		v, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading BSR ja[%d]", i)
		}
		ja[i] = v
	}

	nvalLen, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading BSR |val|")
	}
	val := make([]float64, nvalLen)
	for i := range val {
		v, err := sc.float()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading BSR val[%d]", i)
		}
		val[i] = v
	}

	return spmat.NewBSR(rows, cols, nb, spmat.StorageManner(storageCode), ia, ja, val), nil
}

// WriteBSR writes a in ReadBSR's format.
func WriteBSR(w io.Writer, a *spmat.BSR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", a.Rows, a.Cols, a.NNZB())
	fmt.Fprintln(bw, a.Nb)
	fmt.Fprintln(bw, int(a.Storage))
	fmt.Fprintln(bw, len(a.Ia))
	for _, v := range a.Ia {
		fmt.Fprintln(bw, v)
	}
	fmt.Fprintln(bw, len(a.Ja))
	for _, v := range a.Ja {
		fmt.Fprintln(bw, v)
	}
	fmt.Fprintln(bw, len(a.Val))
	for _, v := range a.Val {
		fmt.Fprintln(bw, v)
	}
	return bw.Flush()
}
