package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type wireTable struct {
	Columns []string          `json:"columns"`
	Data    []json.RawMessage `json:"data"`
	NRows   int               `json:"n_rows"`
	NCols   int               `json:"n_cols"`
}

// MarshalJSON writes every row as an object keyed by column name, in column
// order. Missing cells become null and cells that read back unchanged as
// numbers become JSON numbers; everything else stays a string.
func (t Table) MarshalJSON() ([]byte, error) {
	rows := make([]json.RawMessage, len(t.Data))
	for i, r := range t.Data {
		if len(r) != len(t.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(r), len(t.Columns), ErrShape)
		}
		var b bytes.Buffer
		b.WriteByte('{')
		for j, c := range t.Columns {
			if j > 0 {
				b.WriteByte(',')
			}
			key, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			b.Write(key)
			b.WriteByte(':')
			cell, err := cellJSON(r[j])
			if err != nil {
				return nil, err
			}
			b.Write(cell)
		}
		b.WriteByte('}')
		rows[i] = b.Bytes()
	}
	return json.Marshal(wireTable{Columns: t.Columns, Data: rows, NRows: t.NRows, NCols: t.NCols})
}

func cellJSON(s string) ([]byte, error) {
	if Missing(s) {
		return []byte("null"), nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(v, 0) && strconv.FormatFloat(v, 'g', -1, 64) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// UnmarshalJSON reads {columns, data, n_rows, n_cols}. Rows are objects keyed
// by column name (absent keys and null are missing cells) or positional
// arrays. Numbers and booleans keep their JSON text. When columns is omitted
// the keys are taken in order of first appearance.
func (t *Table) UnmarshalJSON(data []byte) error {
	var w wireTable
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	type row struct {
		keys   []string
		values []string
		object bool
	}
	parsed := make([]row, len(w.Data))
	columns := w.Columns
	seen := map[string]bool{}
	for i, raw := range w.Data {
		keys, values, object, err := decodeRow(raw)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		parsed[i] = row{keys, values, object}
		if len(w.Columns) > 0 {
			continue
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	index := make(map[string]int, len(columns))
	for j, c := range columns {
		index[c] = j
	}
	rows := make([][]string, len(parsed))
	for i, r := range parsed {
		if !r.object {
			rows[i] = r.values
			continue
		}
		rows[i] = make([]string, len(columns))
		for k, key := range r.keys {
			j, ok := index[key]
			if !ok {
				return fmt.Errorf("row %d key %q: %w", i, key, ErrUnknownColumn)
			}
			rows[i][j] = r.values[k]
		}
	}

	tb, err := New(columns, rows)
	if err != nil {
		return err
	}
	if (w.NRows != 0 && w.NRows != tb.NRows) || (w.NCols != 0 && w.NCols != tb.NCols) {
		return fmt.Errorf("declared %dx%d, data is %dx%d: %w", w.NRows, w.NCols, tb.NRows, tb.NCols, ErrShape)
	}
	*t = *tb
	return nil
}

func decodeRow(raw json.RawMessage) (keys, values []string, object bool, err error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, false, err
	}
	switch tok {
	case json.Delim('{'):
		object = true
	case json.Delim('['):
	default:
		return nil, nil, false, fmt.Errorf("row is %v: %w", tok, ErrShape)
	}
	for dec.More() {
		if object {
			k, err := dec.Token()
			if err != nil {
				return nil, nil, false, err
			}
			key, _ := k.(string)
			keys = append(keys, key)
		}
		v, err := dec.Token()
		if err != nil {
			return nil, nil, false, err
		}
		s, err := cellText(v)
		if err != nil {
			return nil, nil, false, err
		}
		values = append(values, s)
	}
	return keys, values, object, nil
}

func cellText(tok json.Token) (string, error) {
	switch v := tok.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("nested cell %v: %w", tok, ErrShape)
}
