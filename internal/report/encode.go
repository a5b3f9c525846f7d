package report

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/KaramelBytes/premium-explorer/internal/query"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
	"github.com/KaramelBytes/premium-explorer/internal/utils"
	"gopkg.in/yaml.v3"
)

// Missing values encode as null since JSON has no NaN.
type document struct {
	Snapshot       string                 `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Source         string                 `json:"source,omitempty" yaml:"source,omitempty"`
	Selection      explorer.Selection     `json:"selection" yaml:"selection"`
	Summary        *summaryDoc            `json:"summary,omitempty" yaml:"summary,omitempty"`
	RiskCounts     []levelDoc             `json:"risk_counts,omitempty" yaml:"risk_counts,omitempty"`
	RiskMeans      []levelDoc             `json:"risk_means,omitempty" yaml:"risk_means,omitempty"`
	AgeMeans       []query.AgeGroupMean   `json:"age_means,omitempty" yaml:"age_means,omitempty"`
	Highlight      *highlightDoc          `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	ConditionMeans []query.AgeGroupMean   `json:"condition_means,omitempty" yaml:"condition_means,omitempty"`
	CrossTab       *query.CrossTab        `json:"heatmap,omitempty" yaml:"heatmap,omitempty"`
	Distribution   []query.BoxStats       `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	RiskProfile    []query.AgeRiskProfile `json:"risk_profile,omitempty" yaml:"risk_profile,omitempty"`
	Clusters       *risk.Classification   `json:"clusters,omitempty" yaml:"clusters,omitempty"`
}

type summaryDoc struct {
	Count int      `json:"count" yaml:"count"`
	Mean  *float64 `json:"mean" yaml:"mean"`
	Min   *float64 `json:"min" yaml:"min"`
	Max   *float64 `json:"max" yaml:"max"`
}

type levelDoc struct {
	Level dataset.RiskLevel `json:"level" yaml:"level"`
	Count int               `json:"count" yaml:"count"`
	Mean  *float64          `json:"mean,omitempty" yaml:"mean,omitempty"`
}

type highlightDoc struct {
	Selected    string               `json:"selected" yaml:"selected"`
	OverallMean *float64             `json:"overall_mean" yaml:"overall_mean"`
	Bars        []query.HighlightBar `json:"bars" yaml:"bars"`
}

func num(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func newDocument(d *explorer.Dashboard, opt Options) *document {
	doc := &document{Snapshot: d.SnapshotID, Source: d.Source, Selection: d.Selection}
	if opt.has(SectionSummary) {
		doc.Summary = &summaryDoc{Count: d.Summary.Count, Mean: num(d.Summary.Mean), Min: num(d.Summary.Min), Max: num(d.Summary.Max)}
	}
	if opt.has(SectionRiskCounts) {
		for _, c := range d.RiskCounts {
			doc.RiskCounts = append(doc.RiskCounts, levelDoc{Level: c.Level, Count: c.Count})
		}
	}
	if opt.has(SectionRiskMeans) {
		for _, m := range d.RiskMeans {
			doc.RiskMeans = append(doc.RiskMeans, levelDoc{Level: m.Level, Count: m.Count, Mean: num(m.Mean)})
		}
	}
	if opt.has(SectionAgeMeans) {
		doc.AgeMeans = d.AgeMeans
		if h := d.Highlight; h != nil {
			doc.Highlight = &highlightDoc{Selected: h.Selected, OverallMean: num(h.OverallMean), Bars: h.Bars}
		}
	}
	if opt.has(SectionConditions) {
		doc.ConditionMeans = d.ConditionMeans
	}
	if opt.has(SectionHeatmap) {
		doc.CrossTab = d.CrossTab
	}
	if opt.has(SectionDistribution) {
		doc.Distribution = d.Distribution
	}
	if opt.has(SectionRiskProfile) {
		doc.RiskProfile = d.RiskProfile
	}
	if opt.has(SectionClusters) {
		doc.Clusters = d.Classification
	}
	return doc
}

// JSON renders the selected sections as indented JSON.
func JSON(d *explorer.Dashboard, opt Options) ([]byte, error) {
	b, err := utils.PrettyJSON(newDocument(d, opt))
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// YAML renders the selected sections as YAML.
func YAML(d *explorer.Dashboard, opt Options) ([]byte, error) {
	b, err := yaml.Marshal(newDocument(d, opt))
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}
