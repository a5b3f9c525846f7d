package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 30

var (
	colorTitle   = lipgloss.Color("62")
	colorMuted   = lipgloss.Color("241")
	colorLight   = lipgloss.Color("250")
	colorHighlit = lipgloss.Color("33")
)

// Risk palette: green, orange, red.
var riskColors = map[dataset.RiskLevel]lipgloss.Color{
	dataset.Low:      lipgloss.Color("#2ca02c"),
	dataset.Moderate: lipgloss.Color("#ff7f0e"),
	dataset.High:     lipgloss.Color("#d62728"),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			MarginTop(1)

	kpiStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	valueStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(colorLight)
	markStyle  = lipgloss.NewStyle().Foreground(colorHighlit).Bold(true)
)

// Text renders the dashboard for a terminal. Colors degrade to plain text when
// the output is not a TTY.
func Text(d *explorer.Dashboard, opt Options) string {
	var out []string
	out = append(out, titleStyle.Render("Medical Premium Explorer"))
	out = append(out, labelStyle.Render(fmt.Sprintf("%s · risk levels: %s", d.Source, joinLevels(d))))

	if opt.has(SectionSummary) {
		s := d.Summary
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top,
			kpi("Avg Premium", money(s.Mean)),
			kpi("Min Premium", money(s.Min)),
			kpi("Max Premium", money(s.Max)),
			kpi("Records", count(s.Count)),
		))
	}
	if opt.has(SectionRiskCounts) {
		out = append(out, sectionStyle.Render("Risk Category Counts"))
		cards := make([]string, len(d.RiskCounts))
		for i, c := range d.RiskCounts {
			cards[i] = kpiStyle.BorderForeground(riskColors[c.Level]).Render(
				labelStyle.Render(string(c.Level)+" Risk") + "\n" + valueStyle.Render(count(c.Count)))
		}
		out = append(out, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	if opt.has(SectionRiskMeans) {
		out = append(out, sectionStyle.Render("Average Premium by Risk Level"))
		peak := 0.0
		for _, m := range d.RiskMeans {
			if !math.IsNaN(m.Mean) {
				peak = max(peak, m.Mean)
			}
		}
		for _, m := range d.RiskMeans {
			style := barStyle.Foreground(riskColors[m.Level])
			out = append(out, row(string(m.Level), style.Render(bar(m.Mean, peak)), money(m.Mean)))
		}
	}
	if opt.has(SectionAgeMeans) {
		out = append(out, sectionStyle.Render("Avg Premium by Age Group"))
		peak := 0.0
		for _, m := range d.AgeMeans {
			peak = max(peak, m.Mean)
		}
		for _, m := range d.AgeMeans {
			style, label := barStyle, m.AgeGroup
			if d.Highlight != nil && m.AgeGroup == d.Highlight.Selected {
				style, label = markStyle, m.AgeGroup+" ◀"
			}
			out = append(out, row(label, style.Render(bar(m.Mean, peak)), money(m.Mean)))
		}
		if d.Highlight != nil {
			out = append(out, labelStyle.Render("reference avg "+money(d.Highlight.OverallMean)))
		}
		if len(d.AgeMeans) == 0 {
			out = append(out, labelStyle.Render("no records"))
		}
	}
	if opt.has(SectionConditions) && len(d.ConditionMeans) > 0 {
		out = append(out, sectionStyle.Render("Avg Premium by Age Group for Selected Conditions"))
		for _, m := range d.ConditionMeans {
			out = append(out, row(string(m.Condition)+" "+m.AgeGroup, "", money(m.Mean)))
		}
	}
	if opt.has(SectionHeatmap) && d.CrossTab != nil {
		ct := d.CrossTab
		out = append(out, sectionStyle.Render(fmt.Sprintf("Heatmap: %s vs %s", ct.X, ct.Y)))
		for _, c := range ct.Cells {
			out = append(out, row(fmt.Sprintf("%s=%d %s=%d", ct.X, c.XValue, ct.Y, c.YValue), "", money(c.Mean)))
		}
	}
	if opt.has(SectionDistribution) && d.Selection.BoxCondition != "" {
		out = append(out, sectionStyle.Render("Premium Distribution by Age Group for "+string(d.Selection.BoxCondition)))
		for _, s := range d.Distribution {
			out = append(out, row(fmt.Sprintf("%s flag=%d", s.AgeGroup, s.Flag), "",
				fmt.Sprintf("%s · %s · %s · %s · %s", money(s.Min), money(s.Q1), money(s.Median), money(s.Q3), money(s.Max))))
		}
	}
	if opt.has(SectionRiskProfile) {
		out = append(out, sectionStyle.Render("Risk Profile by Age Group"))
		for _, p := range d.RiskProfile {
			var seg strings.Builder
			var parts []string
			for _, s := range p.Shares {
				w := int(math.Round(s.Share * barWidth))
				seg.WriteString(lipgloss.NewStyle().Foreground(riskColors[s.Level]).Render(strings.Repeat("█", w)))
				parts = append(parts, fmt.Sprintf("%s %s", s.Level, percent(s.Share)))
			}
			out = append(out, row(p.AgeGroup, seg.String(), strings.Join(parts, " / ")))
		}
	}
	if opt.has(SectionClusters) && d.Classification != nil {
		c := d.Classification
		out = append(out, sectionStyle.Render(fmt.Sprintf("Clusters (%s policy, seed %d)", c.Policy, c.Seed)))
		for _, ct := range c.ByPremium() {
			out = append(out, row(fmt.Sprintf("cluster %d", ct.Cluster), valueStyle.Render(string(ct.RiskLevel)),
				fmt.Sprintf("%s (n=%d)", money(ct.Premium), ct.Size)))
		}
	}
	return strings.Join(out, "\n") + "\n"
}

func kpi(label, value string) string {
	return kpiStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func row(label, graphic, value string) string {
	l := lipgloss.NewStyle().Width(22).Render(label)
	if graphic == "" {
		return l + " " + value
	}
	return l + " " + graphic + " " + value
}

func bar(v, peak float64) string {
	if math.IsNaN(v) || peak <= 0 {
		return strings.Repeat(" ", barWidth)
	}
	n := int(math.Round(v / peak * barWidth))
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}
