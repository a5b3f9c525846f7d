package query

import (
	"math"
	"sort"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/features"
)

// Summary holds the headline premium figures for a view. When Empty is set
// the numeric fields are NaN.
type Summary struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Empty bool    `json:"empty" yaml:"empty"`
}

// Summarize computes count, mean, min and max premium.
func Summarize(v *View) Summary {
	if v.Len() == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Min: nan, Max: nan, Empty: true}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	v.each(func(r dataset.Record) {
		s.Count++
		sum += r.PremiumPrice
		s.Min = min(s.Min, r.PremiumPrice)
		s.Max = max(s.Max, r.PremiumPrice)
	})
	s.Mean = sum / float64(s.Count)
	return s
}

// RiskStat is one risk level's row count and mean premium. Mean is NaN when
// Count is zero.
type RiskStat struct {
	Level dataset.RiskLevel `json:"level" yaml:"level"`
	Count int               `json:"count" yaml:"count"`
	Mean  float64           `json:"mean" yaml:"mean"`
}

func riskStats(v *View) []RiskStat {
	sums := map[dataset.RiskLevel]float64{}
	counts := map[dataset.RiskLevel]int{}
	v.each(func(r dataset.Record) {
		sums[r.RiskLevel] += r.PremiumPrice
		counts[r.RiskLevel]++
	})
	out := make([]RiskStat, len(dataset.RiskLevels))
	for i, l := range dataset.RiskLevels {
		out[i] = RiskStat{Level: l, Count: counts[l], Mean: math.NaN()}
		if counts[l] > 0 {
			out[i].Mean = sums[l] / float64(counts[l])
		}
	}
	return out
}

// CountByRisk returns counts for Low, Moderate and High in that order,
// zero-filled.
func CountByRisk(v *View) []RiskStat {
	out := riskStats(v)
	for i := range out {
		out[i].Mean = math.NaN()
	}
	return out
}

// MeanPremiumByRisk returns the mean premium for Low, Moderate and High in
// that order. Levels without rows report NaN.
func MeanPremiumByRisk(v *View) []RiskStat { return riskStats(v) }

// AgeGroupMean is the mean premium of one age bucket, optionally restricted to
// rows with a condition flag set.
type AgeGroupMean struct {
	AgeGroup  string            `json:"age_group" yaml:"age_group"`
	Condition dataset.Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
	Count     int               `json:"count" yaml:"count"`
	Mean      float64           `json:"mean" yaml:"mean"`
}

// MeanPremiumByAgeGroup groups by age bucket. Without conditions it returns
// one series over all rows. With conditions it returns one series per
// condition, over rows where that flag is 1, concatenated in argument order.
// Buckets with no rows are omitted.
func MeanPremiumByAgeGroup(v *View, conditions ...dataset.Condition) ([]AgeGroupMean, error) {
	if len(conditions) == 0 {
		return ageGroupMeans(v, "", func(dataset.Record) bool { return true }), nil
	}
	var out []AgeGroupMean
	for _, c := range conditions {
		if _, ok := (dataset.Record{}).Flag(c); !ok {
			return nil, &UnknownConditionError{Name: string(c)}
		}
		c := c
		out = append(out, ageGroupMeans(v, c, func(r dataset.Record) bool {
			f, _ := r.Flag(c)
			return f == 1
		})...)
	}
	return out, nil
}

func ageGroupMeans(v *View, cond dataset.Condition, keep func(dataset.Record) bool) []AgeGroupMean {
	sums := make([]float64, len(features.AgeLabels))
	counts := make([]int, len(features.AgeLabels))
	v.each(func(r dataset.Record) {
		g := features.AgeGroupIndex(r.AgeGroup)
		if g < 0 || !keep(r) {
			return
		}
		sums[g] += r.PremiumPrice
		counts[g]++
	})
	var out []AgeGroupMean
	for g, label := range features.AgeLabels {
		if counts[g] == 0 {
			continue
		}
		out = append(out, AgeGroupMean{AgeGroup: label, Condition: cond, Count: counts[g], Mean: sums[g] / float64(counts[g])})
	}
	return out
}

// CrossCell is the mean premium of rows with X == XValue and Y == YValue.
type CrossCell struct {
	XValue int     `json:"x" yaml:"x"`
	YValue int     `json:"y" yaml:"y"`
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
}

// CrossTab is a two-condition mean-premium table. Only observed combinations
// are present, sorted by (x, y).
type CrossTab struct {
	X     dataset.Condition `json:"x" yaml:"x"`
	Y     dataset.Condition `json:"y" yaml:"y"`
	Cells []CrossCell       `json:"cells" yaml:"cells"`
}

// Cell returns the cell for (x, y) if it was observed.
func (ct *CrossTab) Cell(x, y int) (CrossCell, bool) {
	for _, c := range ct.Cells {
		if c.XValue == x && c.YValue == y {
			return c, true
		}
	}
	return CrossCell{}, false
}

// ConditionCrossTab computes mean premium for every observed combination of
// two distinct condition flags.
func ConditionCrossTab(v *View, x, y dataset.Condition) (*CrossTab, error) {
	if _, ok := (dataset.Record{}).Flag(x); !ok {
		return nil, &UnknownConditionError{Name: string(x)}
	}
	if _, ok := (dataset.Record{}).Flag(y); !ok {
		return nil, &UnknownConditionError{Name: string(y)}
	}
	if x == y {
		return nil, ErrSelfCrossTab
	}
	type key struct{ x, y int }
	sums := map[key]float64{}
	counts := map[key]int{}
	v.each(func(r dataset.Record) {
		xv, _ := r.Flag(x)
		yv, _ := r.Flag(y)
		k := key{xv, yv}
		sums[k] += r.PremiumPrice
		counts[k]++
	})
	ct := &CrossTab{X: x, Y: y}
	for k, n := range counts {
		ct.Cells = append(ct.Cells, CrossCell{XValue: k.x, YValue: k.y, Count: n, Mean: sums[k] / float64(n)})
	}
	sort.Slice(ct.Cells, func(i, j int) bool {
		if ct.Cells[i].XValue != ct.Cells[j].XValue {
			return ct.Cells[i].XValue < ct.Cells[j].XValue
		}
		return ct.Cells[i].YValue < ct.Cells[j].YValue
	})
	return ct, nil
}

// RiskShare is the proportion of an age group's rows at one risk level.
type RiskShare struct {
	Level dataset.RiskLevel `json:"level" yaml:"level"`
	Count int               `json:"count" yaml:"count"`
	Share float64           `json:"share" yaml:"share"`
}

// AgeRiskProfile is the risk mix of one age group. Shares sum to 1.
type AgeRiskProfile struct {
	AgeGroup string      `json:"age_group" yaml:"age_group"`
	Total    int         `json:"total" yaml:"total"`
	Shares   []RiskShare `json:"shares" yaml:"shares"`
}

// RiskProfileByAgeGroup normalizes the (age group, risk level) counts per age
// group. Columns are the view's selected levels; age groups without rows are
// omitted.
func RiskProfileByAgeGroup(v *View) []AgeRiskProfile {
	counts := make([]map[dataset.RiskLevel]int, len(features.AgeLabels))
	totals := make([]int, len(features.AgeLabels))
	v.each(func(r dataset.Record) {
		g := features.AgeGroupIndex(r.AgeGroup)
		if g < 0 {
			return
		}
		if counts[g] == nil {
			counts[g] = map[dataset.RiskLevel]int{}
		}
		counts[g][r.RiskLevel]++
		totals[g]++
	})
	var out []AgeRiskProfile
	for g, label := range features.AgeLabels {
		if totals[g] == 0 {
			continue
		}
		p := AgeRiskProfile{AgeGroup: label, Total: totals[g]}
		for _, l := range v.Levels {
			n := counts[g][l]
			p.Shares = append(p.Shares, RiskShare{Level: l, Count: n, Share: float64(n) / float64(totals[g])})
		}
		out = append(out, p)
	}
	return out
}
