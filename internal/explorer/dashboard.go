package explorer

import (
	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/query"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
)

// Selection is the analyst's choice of filters and cross-cuts for one
// interaction. Empty HighlightAge or BoxCondition turns that section off.
type Selection struct {
	Risk         []dataset.RiskLevel `json:"risk" yaml:"risk"`
	HighlightAge string              `json:"highlight_age,omitempty" yaml:"highlight_age,omitempty"`
	Conditions   []dataset.Condition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	HeatmapX     dataset.Condition   `json:"heatmap_x" yaml:"heatmap_x"`
	HeatmapY     dataset.Condition   `json:"heatmap_y" yaml:"heatmap_y"`
	BoxCondition dataset.Condition   `json:"box_condition,omitempty" yaml:"box_condition,omitempty"`
}

// DefaultSelection selects every risk level and the first two conditions as
// heatmap axes.
func DefaultSelection() Selection {
	return Selection{
		Risk:     append([]dataset.RiskLevel(nil), dataset.RiskLevels...),
		HeatmapX: dataset.Conditions[0],
		HeatmapY: dataset.Conditions[1],
	}
}

// Dashboard is every table produced for one selection. Optional sections are
// nil when not requested.
type Dashboard struct {
	SnapshotID     string
	Source         string
	Selection      Selection
	Summary        query.Summary
	RiskCounts     []query.RiskStat
	RiskMeans      []query.RiskStat
	AgeMeans       []query.AgeGroupMean
	Highlight      *query.Highlight
	ConditionMeans []query.AgeGroupMean
	CrossTab       *query.CrossTab
	Distribution   []query.BoxStats
	RiskProfile    []query.AgeRiskProfile
	Classification *risk.Classification
}

// Dashboard filters the resident table and runs every query for sel. The
// heatmap is skipped when both axes are the same condition.
func (s *Session) Dashboard(sel Selection) (*Dashboard, error) {
	return Build(s.snap, sel)
}

// Build assembles a Dashboard from a snapshot.
func Build(snap *Snapshot, sel Selection) (*Dashboard, error) {
	v := query.Filter(snap.Table, sel.Risk)
	d := &Dashboard{
		SnapshotID:     snap.ID,
		Source:         snap.Source,
		Selection:      sel,
		Summary:        query.Summarize(v),
		RiskCounts:     query.CountByRisk(v),
		RiskMeans:      query.MeanPremiumByRisk(v),
		RiskProfile:    query.RiskProfileByAgeGroup(v),
		Classification: snap.Classification,
	}
	var err error
	if d.AgeMeans, err = query.MeanPremiumByAgeGroup(v); err != nil {
		return nil, err
	}
	if sel.HighlightAge != "" {
		if d.Highlight, err = query.AgeHighlight(v, sel.HighlightAge); err != nil {
			return nil, err
		}
	}
	if len(sel.Conditions) > 0 {
		if d.ConditionMeans, err = query.MeanPremiumByAgeGroup(v, sel.Conditions...); err != nil {
			return nil, err
		}
	}
	if sel.HeatmapX != "" && sel.HeatmapY != "" && sel.HeatmapX != sel.HeatmapY {
		if d.CrossTab, err = query.ConditionCrossTab(v, sel.HeatmapX, sel.HeatmapY); err != nil {
			return nil, err
		}
	}
	if sel.BoxCondition != "" {
		if d.Distribution, err = query.PremiumDistributionByAgeGroup(v, sel.BoxCondition); err != nil {
			return nil, err
		}
	}
	return d, nil
}
