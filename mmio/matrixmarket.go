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

// ReadMatrixMarket reads a NIST MatrixMarket coordinate file (1-indexed on
// disk). A "symmetric" header expands to full general storage by mirroring
// every off-diagonal entry (nnz -> 2*nnz-m, section 6).
func ReadMatrixMarket(r io.Reader) (*spmat.CSR, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "mmio: reading MatrixMarket banner")
	}
	symmetric := strings.Contains(strings.ToLower(header), "symmetric")
	if !strings.HasPrefix(header, "%%MatrixMarket") {
		return nil, errors.New("mmio: missing %%MatrixMarket banner")
	}

	var rows, cols, nnz int
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, errors.Wrap(err, "mmio: reading MatrixMarket size line")
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 3 {
			return nil, errors.New("mmio: malformed MatrixMarket size line")
		}
		if rows, err = strconv.Atoi(fields[0]); err != nil {
			return nil, errors.Wrap(err, "mmio: parsing rows")
		}
		if cols, err = strconv.Atoi(fields[1]); err != nil {
			return nil, errors.Wrap(err, "mmio: parsing cols")
		}
		if nnz, err = strconv.Atoi(fields[2]); err != nil {
			return nil, errors.Wrap(err, "mmio: parsing nnz")
		}
		break
	}

	coo := spmat.NewCOO(rows, cols)
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)
	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	for k := 0; k < nnz; k++ {
		itok, err := next()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading MatrixMarket entry %d", k)
		}
		jtok, err := next()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading MatrixMarket entry %d", k)
		}
		vtok, err := next()
		if err != nil {
			return nil, errors.Wrapf(err, "mmio: reading MatrixMarket entry %d", k)
		}
		i, err := strconv.Atoi(itok)
		if err != nil {
			return nil, errors.Wrap(err, "mmio: parsing row index")
		}
		j, err := strconv.Atoi(jtok)
		if err != nil {
			return nil, errors.Wrap(err, "mmio: parsing col index")
		}
		v, err := strconv.ParseFloat(vtok, 64)
		if err != nil {
			return nil, errors.Wrap(err, "mmio: parsing value")
		}
		i--
		j--
		coo.Add(i, j, v)
		if symmetric && i != j {
			coo.Add(j, i, v)
		}
	}

	return coo.ToCSR(), nil
}

// WriteMatrixMarket writes a as a general (non-symmetric) coordinate file.
func WriteMatrixMarket(w io.Writer, a *spmat.CSR) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "%%MatrixMarket matrix coordinate real general")
	fmt.Fprintf(bw, "%d %d %d\n", a.Rows, a.Cols, a.NNZ())
	for i := 0; i < a.Rows; i++ {
		a.Row(i, func(j int, v float64) {
			fmt.Fprintf(bw, "%d %d %s\n", i+1, j+1, strconv.FormatFloat(v, 'e', -1, 64))
		})
	}
	return bw.Flush()
}
