package query

import (
	"math"
	"sort"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/features"
)

// BoxStats is the five-number summary of premiums for one age group and
// condition flag value.
type BoxStats struct {
	AgeGroup string  `json:"age_group" yaml:"age_group"`
	Flag     int     `json:"flag" yaml:"flag"`
	Count    int     `json:"count" yaml:"count"`
	Min      float64 `json:"min" yaml:"min"`
	Q1       float64 `json:"q1" yaml:"q1"`
	Median   float64 `json:"median" yaml:"median"`
	Q3       float64 `json:"q3" yaml:"q3"`
	Max      float64 `json:"max" yaml:"max"`
}

// Quantile returns the p-quantile of sorted values using linear
// interpolation between closest ranks. It returns NaN for empty input.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// PremiumDistributionByAgeGroup returns box-plot data per age group, split by
// the 0/1 value of cond. Groups are in bucket order, flag 0 before flag 1;
// empty combinations are omitted.
func PremiumDistributionByAgeGroup(v *View, cond dataset.Condition) ([]BoxStats, error) {
	if _, ok := (dataset.Record{}).Flag(cond); !ok {
		return nil, &UnknownConditionError{Name: string(cond)}
	}
	buckets := make([][2][]float64, len(features.AgeLabels))
	v.each(func(r dataset.Record) {
		g := features.AgeGroupIndex(r.AgeGroup)
		f, _ := r.Flag(cond)
		if g < 0 || f < 0 || f > 1 {
			return
		}
		buckets[g][f] = append(buckets[g][f], r.PremiumPrice)
	})
	var out []BoxStats
	for g, label := range features.AgeLabels {
		for f := 0; f < 2; f++ {
			xs := buckets[g][f]
			if len(xs) == 0 {
				continue
			}
			sort.Float64s(xs)
			out = append(out, BoxStats{
				AgeGroup: label,
				Flag:     f,
				Count:    len(xs),
				Min:      xs[0],
				Q1:       Quantile(xs, 0.25),
				Median:   Quantile(xs, 0.5),
				Q3:       Quantile(xs, 0.75),
				Max:      xs[len(xs)-1],
			})
		}
	}
	return out, nil
}

// HighlightBar is one age group's mean premium with the selection flag.
type HighlightBar struct {
	AgeGroupMean `yaml:",inline"`
	Highlighted  bool `json:"highlighted" yaml:"highlighted"`
}

// Highlight is the age-group comparison with one group emphasized and the
// view's overall mean as a reference line.
type Highlight struct {
	Selected    string         `json:"selected" yaml:"selected"`
	OverallMean float64        `json:"overall_mean" yaml:"overall_mean"`
	Bars        []HighlightBar `json:"bars" yaml:"bars"`
}

// AgeHighlight compares mean premium across age groups, flagging group. The
// selected group may be absent from Bars when the view has no rows in it.
func AgeHighlight(v *View, group string) (*Highlight, error) {
	label, err := ParseAgeGroup(group)
	if err != nil {
		return nil, err
	}
	h := &Highlight{Selected: label, OverallMean: Summarize(v).Mean}
	for _, m := range ageGroupMeans(v, "", func(dataset.Record) bool { return true }) {
		h.Bars = append(h.Bars, HighlightBar{AgeGroupMean: m, Highlighted: m.AgeGroup == label})
	}
	return h, nil
}
