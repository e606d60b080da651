package mmio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ReadVector reads a dense vector: line 1 is n, then n values.
func ReadVector(r io.Reader) ([]float64, error) {
	sc := newScanner(r)
	n, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading vector length")
	}
	v := make([]float64, n)
	for i := range v {
		f, err := sc.float()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading vector[%d]", i)
		}
		v[i] = f
	}
	return v, nil
}

// WriteVector writes v in ReadVector's format.
func WriteVector(w io.Writer, v []float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, len(v))
	for _, f := range v {
		fmt.Fprintln(bw, strconv.FormatFloat(f, 'e', -1, 64))
	}
	return bw.Flush()
}

// ReadIndexedVector reads the IJ vector variant: line 1 is n, then n lines
// of "index value" into a dense vector of length n (indices 0-based).
func ReadIndexedVector(r io.Reader) ([]float64, error) {
	sc := newScanner(r)
	n, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading indexed vector length")
	}
	v := make([]float64, n)
	for k := 0; k < n; k++ {
		idx, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading indexed vector entry %d", k)
		}
		val, err := sc.float()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading indexed vector entry %d", k)
		}
		if idx < 0 || idx >= n {
			return nil, errors.Errorf("mmio: index %d out of range [0,%d)", idx, n)
		}
		v[idx] = val
	}
	return v, nil
}
