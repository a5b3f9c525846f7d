// Package query filters a classified table by risk level and computes the
// aggregate tables shown by the explorer. Every query is a pure function of a
// View.
package query

import (
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/features"
)

// View is the subset of a classified table whose RiskLevel is in Levels. It
// holds row indices only; the table is shared and never modified.
type View struct {
	table  *dataset.Table
	rows   []int
	Levels []dataset.RiskLevel
}

// Filter selects rows whose risk level is in levels. An empty set selects
// nothing.
func Filter(t *dataset.Table, levels []dataset.RiskLevel) *View {
	want := make(map[dataset.RiskLevel]bool, len(levels))
	for _, l := range levels {
		want[l] = true
	}
	v := &View{table: t}
	for _, l := range dataset.RiskLevels {
		if want[l] {
			v.Levels = append(v.Levels, l)
		}
	}
	for i := 0; i < t.Len(); i++ {
		if want[t.At(i).RiskLevel] {
			v.rows = append(v.rows, i)
		}
	}
	return v
}

// All selects every risk level.
func All(t *dataset.Table) *View { return Filter(t, dataset.RiskLevels) }

// Len returns the number of selected rows.
func (v *View) Len() int { return len(v.rows) }

// Records returns copies of the selected rows in table order.
func (v *View) Records() []dataset.Record {
	out := make([]dataset.Record, len(v.rows))
	for i, idx := range v.rows {
		out[i] = v.table.At(idx)
	}
	return out
}

func (v *View) each(fn func(r dataset.Record)) {
	for _, idx := range v.rows {
		fn(v.table.At(idx))
	}
}

// ParseRiskLevels resolves level names case-insensitively, dropping
// duplicates. Comma-separated entries are split.
func ParseRiskLevels(names []string) ([]dataset.RiskLevel, error) {
	var out []dataset.RiskLevel
	seen := map[dataset.RiskLevel]bool{}
	for _, n := range splitList(names) {
		l, ok := dataset.ParseRiskLevel(n)
		if !ok {
			return nil, &UnknownRiskLevelError{Name: n}
		}
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out, nil
}

// ParseConditions resolves condition names case-insensitively.
func ParseConditions(names []string) ([]dataset.Condition, error) {
	var out []dataset.Condition
	for _, n := range splitList(names) {
		c, err := ParseCondition(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseCondition resolves a single condition name.
func ParseCondition(name string) (dataset.Condition, error) {
	c, ok := dataset.ParseCondition(name)
	if !ok {
		return "", &UnknownConditionError{Name: name}
	}
	return c, nil
}

// ParseAgeGroup validates an age bucket label. A plain hyphen is accepted in
// place of the en dash.
func ParseAgeGroup(name string) (string, error) {
	n := strings.ReplaceAll(strings.TrimSpace(name), "-", "–")
	if features.AgeGroupIndex(n) < 0 {
		return "", &UnknownAgeGroupError{Name: name}
	}
	return n, nil
}

func splitList(names []string) []string {
	var out []string
	for _, n := range names {
		for _, p := range strings.Split(n, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
