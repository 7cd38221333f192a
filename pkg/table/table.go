// Package table is the boundary between row-oriented tabular data and the
// column slices the rest of statml consumes. Cells are kept as text and
// numeric columns are parsed on extraction. The markers "", "NA" and "NaN"
// denote a missing cell.
package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"statml/pkg/stats"
)

var (
	ErrEmpty         = errors.New("table: empty table")
	ErrShape         = errors.New("table: ragged rows")
	ErrUnknownColumn = errors.New("table: unknown column")
	ErrNotNumeric    = errors.New("table: column is not numeric")
	ErrStrategy      = errors.New("table: unknown imputation strategy")
	ErrBins          = errors.New("table: bin count must be positive")
)

// Table is an immutable grid of text cells with named columns.
type Table struct {
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
	NRows   int        `json:"n_rows"`
	NCols   int        `json:"n_cols"`
}

// New copies columns and rows into a Table. Every row must have one cell per
// column.
func New(columns []string, rows [][]string) (*Table, error) {
	if len(columns) == 0 {
		return nil, ErrEmpty
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column %q: %w", c, ErrShape)
		}
		seen[c] = true
	}
	t := &Table{
		Columns: append([]string(nil), columns...),
		Data:    make([][]string, len(rows)),
		NRows:   len(rows),
		NCols:   len(columns),
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(r), len(columns), ErrShape)
		}
		t.Data[i] = append([]string(nil), r...)
	}
	return t, nil
}

// FromFloats builds a Table from a numeric matrix.
func FromFloats(columns []string, X [][]float64) (*Table, error) {
	rows := make([][]string, len(X))
	for i, r := range X {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return New(columns, rows)
}

// Missing reports whether s is one of the missing-cell markers.
func Missing(s string) bool { return s == "" || s == "NA" || s == "NaN" }

func (t *Table) index(name string) (int, error) {
	for j, c := range t.Columns {
		if c == name {
			return j, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownColumn)
}

// Raw returns a copy of the text cells of a column.
func (t *Table) Raw(name string) ([]string, error) {
	j, err := t.index(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, t.NRows)
	for i, r := range t.Data {
		out[i] = r[j]
	}
	return out, nil
}

// Floats parses a column, mapping missing cells to NaN.
func (t *Table) Floats(name string) ([]float64, error) {
	raw, err := t.Raw(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		if Missing(s) {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q row %d = %q: %w", name, i, s, ErrNotNumeric)
		}
		out[i] = v
	}
	return out, nil
}

// Column returns the finite values of a numeric column in row order.
func (t *Table) Column(name string) (stats.CleanSequence, error) {
	x, err := t.Floats(name)
	if err != nil {
		return nil, err
	}
	c, _ := stats.Clean(x)
	return c, nil
}

// Numeric reports whether every present cell of the column parses as a number.
func (t *Table) Numeric(name string) (bool, error) {
	raw, err := t.Raw(name)
	if err != nil {
		return false, err
	}
	for _, s := range raw {
		if Missing(s) {
			continue
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// Matrix assembles the named numeric columns, in the given order, into a
// row-major matrix. With no names every column is used. Missing cells are
// NaN.
func (t *Table) Matrix(names ...string) ([][]float64, error) {
	if len(names) == 0 {
		names = t.Columns
	}
	if t.NRows == 0 {
		return nil, ErrEmpty
	}
	X := make([][]float64, t.NRows)
	for i := range X {
		X[i] = make([]float64, len(names))
	}
	for j, name := range names {
		col, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		for i, v := range col {
			X[i][j] = v
		}
	}
	return X, nil
}

// Labels integer-codes a categorical column. Codes follow the order in
// which categories first appear; categories[k] is the value coded k.
func (t *Table) Labels(name string) (codes []float64, categories []string, err error) {
	raw, err := t.Raw(name)
	if err != nil {
		return nil, nil, err
	}
	index := map[string]int{}
	codes = make([]float64, len(raw))
	for i, s := range raw {
		k, ok := index[s]
		if !ok {
			k = len(categories)
			index[s] = k
			categories = append(categories, s)
		}
		codes[i] = float64(k)
	}
	return codes, categories, nil
}

// OneHot expands a categorical column into one indicator column per
// category, ordered as Labels orders them.
func (t *Table) OneHot(name string) ([][]float64, []string, error) {
	codes, categories, err := t.Labels(name)
	if err != nil {
		return nil, nil, err
	}
	out := make([][]float64, len(codes))
	for i, k := range codes {
		out[i] = make([]float64, len(categories))
		out[i][int(k)] = 1
	}
	return out, categories, nil
}

// Frequency replaces every category with its relative frequency.
func (t *Table) Frequency(name string) ([]float64, error) {
	raw, err := t.Raw(name)
	if err != nil {
		return nil, err
	}
	counts := map[string]float64{}
	for _, s := range raw {
		counts[s]++
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		out[i] = counts[s] / float64(len(raw))
	}
	return out, nil
}
