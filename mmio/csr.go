// Package mmio implements the matrix and vector file formats of section 6:
// CSR text, coordinate (IJ), MatrixMarket, STR, BSR, and dense vectors.
// Every reader/writer is built on bufio/strconv rather than a third-party
// parsing library: none of the retrieved example repos import a
// MatrixMarket or coordinate-format parser (see DESIGN.md), and this is
// exactly the kind of boundary-facing text I/O section 7 says stdlib-only
// code is appropriate for.
package mmio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/gofasp/gofasp/spmat"
)

// ReadCSR reads the CSR text format of fasp_dcsr_read: line 1 is n; the
// next n+1 lines are Ia (1-indexed on disk, converted to 0-indexed here);
// the next nnz lines are Ja (also 1-indexed on disk); the next nnz lines
// are the values.
func ReadCSR(r io.Reader) (*spmat.CSR, error) {
	sc := newScanner(r)

	n, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading CSR dimension")
	}

	ia := make([]int, n+1)
	for i := range ia {
		v, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading CSR ia[%d]", i)
		}
		ia[i] = v - 1
	}

	nnz := ia[n]
	ja := make([]int, nnz)
	for k := range ja {
		v, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading CSR ja[%d]", k)
		}
		ja[k] = v - 1
	}

	val := make([]float64, nnz)
	for k := range val {
		v, err := sc.float()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading CSR val[%d]", k)
		}
		val[k] = v
	}

	return spmat.NewCSR(n, n, ia, ja, val), nil
}

// WriteCSR writes a in the format ReadCSR understands.
func WriteCSR(w io.Writer, a *spmat.CSR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, a.Rows)
	for _, v := range a.Ia {
		fmt.Fprintln(bw, v+1)
	}
	for _, v := range a.Ja {
		fmt.Fprintln(bw, v+1)
	}
	for _, v := range a.Val {
		fmt.Fprintln(bw, strconv.FormatFloat(v, 'e', -1, 64))
	}
	return bw.Flush()
}

// ReadIJ reads the 0-indexed coordinate format: line 1 is "nrow ncol nnz";
// each remaining line is "i j v".
func ReadIJ(r io.Reader) (*spmat.CSR, error) {
	sc := newScanner(r)
	nrow, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading IJ header")
	}
	ncol, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading IJ header")
	}
	nnz, err := sc.int()
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading IJ header")
	}

	coo := spmat.NewCOO(nrow, ncol)
	for k := 0; k < nnz; k++ {
		i, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading IJ triple %d", k)
		}
		j, err := sc.int()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading IJ triple %d", k)
		}
		v, err := sc.float()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading IJ triple %d", k)
		}
		coo.Add(i, j, v)
	}
	return coo.ToCSR(), nil
}

// WriteIJ writes a in 0-indexed coordinate format.
func WriteIJ(w io.Writer, a *spmat.CSR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", a.Rows, a.Cols, a.NNZ())
	for i := 0; i < a.Rows; i++ {
		a.Row(i, func(j int, v float64) {
			fmt.Fprintf(bw, "%d %d %s\n", i, j, strconv.FormatFloat(v, 'e', -1, 64))
		})
	}
	return bw.Flush()
}

// scanner is a small whitespace/newline-agnostic token reader shared by
// every text format in this package: the on-disk formats freely mix
// one-value-per-line and space-separated layouts, so tokenizing on any
// run of whitespace (bufio.ScanWords) is simpler and more robust than
// tracking line boundaries.
type scanner struct {
	sc *bufio.Scanner
}

func newScanner(r io.Reader) *scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	return &scanner{sc: sc}
}

func (s *scanner) token() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return s.sc.Text(), nil
}

func (s *scanner) int() (int, error) {
	tok, err := s.token()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(tok))
}

func (s *scanner) float() (float64, error) {
	tok, err := s.token()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(tok), 64)
}
