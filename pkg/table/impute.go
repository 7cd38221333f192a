package table

import (
	"fmt"
	"math"
	"strconv"

	"statml/pkg/stats"
)

// Imputation strategies.
const (
	ImputeMean     = "mean"
	ImputeMedian   = "median"
	ImputeMode     = "mode"
	ImputeConstant = "constant"
)

// Impute returns a copy of t whose missing cells in column name are filled.
// Mean, median and mode are computed over the present cells of a numeric
// column, which must hold at least one value; constant writes fill verbatim
// and works on any column.
func (t *Table) Impute(name, strategy, fill string) (*Table, error) {
	j, err := t.index(name)
	if err != nil {
		return nil, err
	}
	value := fill
	if strategy != ImputeConstant {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		var v float64
		switch strategy {
		case ImputeMean:
			v = stats.Mean(col)
		case ImputeMedian:
			v = stats.Median(col)
		case ImputeMode:
			v = stats.Mode(col)
		default:
			return nil, fmt.Errorf("%q: %w", strategy, ErrStrategy)
		}
		if math.IsNaN(v) {
			return nil, fmt.Errorf("%q has no values to impute from: %w", name, ErrEmpty)
		}
		value = strconv.FormatFloat(v, 'g', -1, 64)
	}
	out, err := New(t.Columns, t.Data)
	if err != nil {
		return nil, err
	}
	for _, r := range out.Data {
		if Missing(r[j]) {
			r[j] = value
		}
	}
	return out, nil
}

// MissingRatio is the fraction of missing cells in column name.
func (t *Table) MissingRatio(name string) (float64, error) {
	raw, err := t.Raw(name)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}
	n := 0
	for _, s := range raw {
		if Missing(s) {
			n++
		}
	}
	return float64(n) / float64(len(raw)), nil
}

// DropSparse returns a copy of t without the columns whose missing ratio
// exceeds threshold, along with the names it dropped.
func (t *Table) DropSparse(threshold float64) (*Table, []string, error) {
	var keep, dropped []string
	var idx []int
	for j, c := range t.Columns {
		r, err := t.MissingRatio(c)
		if err != nil {
			return nil, nil, err
		}
		if r > threshold {
			dropped = append(dropped, c)
			continue
		}
		keep = append(keep, c)
		idx = append(idx, j)
	}
	if len(keep) == 0 {
		return nil, dropped, ErrEmpty
	}
	rows := make([][]string, t.NRows)
	for i, r := range t.Data {
		rows[i] = make([]string, len(idx))
		for k, j := range idx {
			rows[i][k] = r[j]
		}
	}
	out, err := New(keep, rows)
	return out, dropped, err
}
