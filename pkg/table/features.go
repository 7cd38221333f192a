package table

import (
	"fmt"
	"math"
	"strconv"
)

// Polynomial returns a copy of t with the degree-2 terms of the named numeric
// columns appended: "a^2" for squares and "a*b" for cross products, pair by
// pair in column order. With no names every column is used. A term is missing
// when either factor is.
func (t *Table) Polynomial(names ...string) (*Table, error) {
	if len(names) == 0 {
		names = t.Columns
	}
	cols := make([][]float64, len(names))
	for j, name := range names {
		c, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		cols[j] = c
	}
	columns := append([]string(nil), t.Columns...)
	rows := make([][]string, t.NRows)
	for i, r := range t.Data {
		rows[i] = append([]string(nil), r...)
	}
	for a := range names {
		for b := a; b < len(names); b++ {
			if a == b {
				columns = append(columns, names[a]+"^2")
			} else {
				columns = append(columns, names[a]+"*"+names[b])
			}
			for i := range rows {
				rows[i] = append(rows[i], formatCell(cols[a][i]*cols[b][i]))
			}
		}
	}
	return New(columns, rows)
}

// Bin returns a copy of t with a column name+"_bin" holding the equal-width
// bin index, in [0, n), of every present cell of the numeric column name.
// The bins span the column's finite range; a constant column falls in bin 0.
func (t *Table) Bin(name string, n int) (*Table, error) {
	if n < 1 {
		return nil, fmt.Errorf("%d bins: %w", n, ErrBins)
	}
	col, err := t.Floats(name)
	if err != nil {
		return nil, err
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range col {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return nil, fmt.Errorf("%q has no values to bin: %w", name, ErrEmpty)
	}
	width := (hi - lo) / float64(n)
	columns := append(append([]string(nil), t.Columns...), name+"_bin")
	rows := make([][]string, t.NRows)
	for i, r := range t.Data {
		rows[i] = append(append([]string(nil), r...), "")
		v := col[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		k := 0
		if width > 0 {
			k = min(int((v-lo)/width), n-1)
		}
		rows[i][len(r)] = strconv.Itoa(k)
	}
	return New(columns, rows)
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
