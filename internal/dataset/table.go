package dataset

import "strings"

// Table is an immutable, in-memory set of records. Pipeline stages that add
// columns return a new Table; nothing mutates a Table after construction.
type Table struct {
	Name    string
	Source  string
	Columns []string
	records []Record
}

// NewTable copies recs into a new Table.
func NewTable(name string, columns []string, recs []Record) *Table {
	cp := make([]Record, len(recs))
	copy(cp, recs)
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols, records: cp}
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// At returns a copy of row i.
func (t *Table) At(i int) Record { return t.records[i] }

// Records returns a copy of all rows.
func (t *Table) Records() []Record {
	cp := make([]Record, len(t.records))
	copy(cp, t.records)
	return cp
}

// Map returns a new Table with fn applied to a copy of every row and any new
// column names appended.
func (t *Table) Map(added []string, fn func(i int, r *Record)) *Table {
	recs := t.Records()
	for i := range recs {
		fn(i, &recs[i])
	}
	cols := append(append([]string{}, t.Columns...), added...)
	out := NewTable(t.Name, cols, nil)
	out.Source = t.Source
	out.records = recs
	return out
}

// HasColumn reports whether name is present (case-insensitive).
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if equalFold(c, name) {
			return true
		}
	}
	return false
}

// Premiums returns the PremiumPrice column in row order.
func (t *Table) Premiums() []float64 {
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.PremiumPrice
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
