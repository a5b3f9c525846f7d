package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
)

// Markdown renders a sectioned report suitable for standalone docs.
func Markdown(d *explorer.Dashboard, opt Options) string {
	var b strings.Builder
	b.WriteString("[PREMIUM SUMMARY]\n")
	if d.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", d.Source))
	}
	if d.SnapshotID != "" {
		b.WriteString(fmt.Sprintf("Snapshot: %s\n", d.SnapshotID))
	}
	b.WriteString(fmt.Sprintf("Risk levels: %s\n", joinLevels(d)))
	if opt.has(SectionSummary) {
		s := d.Summary
		b.WriteString(fmt.Sprintf("Records: %s\n", count(s.Count)))
		b.WriteString(fmt.Sprintf("Avg Premium: %s\n", money(s.Mean)))
		b.WriteString(fmt.Sprintf("Min Premium: %s\n", money(s.Min)))
		b.WriteString(fmt.Sprintf("Max Premium: %s\n", money(s.Max)))
	}

	if opt.has(SectionRiskCounts) {
		b.WriteString("\n[RISK CATEGORY COUNTS]\n")
		for _, c := range d.RiskCounts {
			b.WriteString(fmt.Sprintf("- %s Risk: %s\n", c.Level, count(c.Count)))
		}
	}
	if opt.has(SectionRiskMeans) {
		b.WriteString("\n[AVERAGE PREMIUM BY RISK LEVEL]\n")
		b.WriteString("| Risk Level | Records | Avg Premium |\n| --- | --- | --- |\n")
		for _, m := range d.RiskMeans {
			b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", m.Level, m.Count, money(m.Mean)))
		}
	}
	if opt.has(SectionAgeMeans) {
		b.WriteString("\n[AVERAGE PREMIUM BY AGE GROUP]\n")
		if len(d.AgeMeans) == 0 {
			b.WriteString("- no records\n")
		}
		if d.Highlight != nil {
			b.WriteString(fmt.Sprintf("Highlight: %s (reference avg %s)\n", d.Highlight.Selected, money(d.Highlight.OverallMean)))
			for _, bar := range d.Highlight.Bars {
				mark := ""
				if bar.Highlighted {
					mark = " ◀"
				}
				b.WriteString(fmt.Sprintf("- %s: %s (n=%d)%s\n", bar.AgeGroup, money(bar.Mean), bar.Count, mark))
			}
		} else {
			for _, m := range d.AgeMeans {
				b.WriteString(fmt.Sprintf("- %s: %s (n=%d)\n", m.AgeGroup, money(m.Mean), m.Count))
			}
		}
	}
	if opt.has(SectionConditions) && len(d.ConditionMeans) > 0 {
		b.WriteString("\n[AVERAGE PREMIUM BY AGE GROUP FOR SELECTED CONDITIONS]\n")
		b.WriteString("| Condition | Age Group | Records | Avg Premium |\n| --- | --- | --- | --- |\n")
		for _, m := range d.ConditionMeans {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", conditionLabel(string(m.Condition)), m.AgeGroup, m.Count, money(m.Mean)))
		}
	}
	if opt.has(SectionHeatmap) && d.CrossTab != nil {
		ct := d.CrossTab
		b.WriteString(fmt.Sprintf("\n[HEATMAP: %s vs %s]\n", ct.X, ct.Y))
		b.WriteString(fmt.Sprintf("| %s \\ %s | 0 | 1 |\n| --- | --- | --- |\n", ct.X, ct.Y))
		for x := 0; x <= 1; x++ {
			row := make([]string, 2)
			for y := 0; y <= 1; y++ {
				if c, ok := ct.Cell(x, y); ok {
					row[y] = fmt.Sprintf("%s (n=%d)", money(c.Mean), c.Count)
				} else {
					row[y] = "-"
				}
			}
			b.WriteString(fmt.Sprintf("| %d | %s | %s |\n", x, row[0], row[1]))
		}
	}
	if opt.has(SectionDistribution) && d.Selection.BoxCondition != "" {
		b.WriteString(fmt.Sprintf("\n[PREMIUM DISTRIBUTION BY AGE GROUP FOR %s]\n", d.Selection.BoxCondition))
		b.WriteString("| Age Group | Flag | Records | Min | Q1 | Median | Q3 | Max |\n| --- | --- | --- | --- | --- | --- | --- | --- |\n")
		for _, s := range d.Distribution {
			b.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %s | %s | %s | %s |\n",
				s.AgeGroup, s.Flag, s.Count, money(s.Min), money(s.Q1), money(s.Median), money(s.Q3), money(s.Max)))
		}
	}
	if opt.has(SectionRiskProfile) {
		b.WriteString("\n[RISK PROFILE BY AGE GROUP]\n")
		if len(d.RiskProfile) == 0 {
			b.WriteString("- no records\n")
		}
		for _, p := range d.RiskProfile {
			parts := make([]string, len(p.Shares))
			for i, s := range p.Shares {
				parts[i] = fmt.Sprintf("%s %s", s.Level, percent(s.Share))
			}
			b.WriteString(fmt.Sprintf("- %s (n=%d): %s\n", p.AgeGroup, p.Total, strings.Join(parts, ", ")))
		}
	}
	if opt.has(SectionClusters) && d.Classification != nil {
		b.WriteString("\n[CLUSTERS]\n")
		writeClusters(&b, d.Classification)
	}
	return b.String()
}

func writeClusters(b *strings.Builder, c *risk.Classification) {
	b.WriteString(fmt.Sprintf("Policy: %s (seed %d, inertia %.4g, %d iterations)\n", c.Policy, c.Seed, c.Inertia, c.Iterations))
	b.WriteString(fmt.Sprintf("Scaler: mean %s, std %s\n", money(c.Mean), money(c.Std)))
	b.WriteString("| Cluster | Centroid (z) | Centroid Premium | Records | Risk Level |\n| --- | --- | --- | --- | --- |\n")
	for _, ct := range c.ByPremium() {
		b.WriteString(fmt.Sprintf("| %d | %.4f | %s | %d | %s |\n", ct.Cluster, ct.Standardized, money(ct.Premium), ct.Size, ct.RiskLevel))
	}
}

func joinLevels(d *explorer.Dashboard) string {
	if len(d.Selection.Risk) == 0 {
		return "(none)"
	}
	parts := make([]string, len(d.Selection.Risk))
	for i, l := range d.Selection.Risk {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}
