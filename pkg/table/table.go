package table

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrMalformed reports a missing, empty, ragged or too narrow table. Since
// the simulator gives little feedback of its own, this is usually the first
// sign that a simulation went wrong.
var ErrMalformed = errors.New("malformed or missing table")

// Table is a numeric simulator output table, one row per sweep point.
type Table struct {
	data *mat.Dense
}

// Load reads a whitespace separated table and requires at least minCols
// columns. Blank lines and lines starting with '#' or '*' are skipped.
func Load(path string, minCols int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	defer f.Close()

	var (
		values []float64
		cols   int
		rows   int
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '*' {
			continue
		}
		fields := strings.Fields(text)
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, errors.Wrapf(ErrMalformed, "%s:%d: %d columns, expected %d", path, line, len(fields), cols)
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformed, "%s:%d: %v", path, line, err)
			}
			values = append(values, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	if rows == 0 {
		return nil, errors.Wrapf(ErrMalformed, "%s: no data rows", path)
	}
	if cols < minCols {
		return nil, errors.Wrapf(ErrMalformed, "%s: %d columns, need %d", path, cols, minCols)
	}

	return &Table{data: mat.NewDense(rows, cols, values)}, nil
}

func (t *Table) Rows() int {
	r, _ := t.data.Dims()
	return r
}

func (t *Table) Cols() int {
	_, c := t.data.Dims()
	return c
}

// Col returns a copy of column i.
func (t *Table) Col(i int) []float64 {
	return mat.Col(nil, i, t.data)
}
