// Package report renders explorer dashboards as Markdown, styled terminal
// text, JSON or YAML.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/dustin/go-humanize"
)

// Format selects the output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat accepts markdown (md), text, json and yaml (yml).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format %q (use markdown, text, json or yaml)", s)
}

// Section names one block of the dashboard.
type Section string

const (
	SectionSummary      Section = "summary"
	SectionRiskCounts   Section = "risk_counts"
	SectionRiskMeans    Section = "risk_means"
	SectionAgeMeans     Section = "age_means"
	SectionConditions   Section = "conditions"
	SectionHeatmap      Section = "heatmap"
	SectionDistribution Section = "distribution"
	SectionRiskProfile  Section = "risk_profile"
	SectionClusters     Section = "clusters"
)

// DashboardSections is the default layout of explore.
var DashboardSections = []Section{
	SectionSummary,
	SectionRiskCounts,
	SectionRiskMeans,
	SectionAgeMeans,
	SectionConditions,
	SectionHeatmap,
	SectionDistribution,
	SectionRiskProfile,
}

// Options select the format and which sections to include. Nil Sections
// means DashboardSections.
type Options struct {
	Format   Format
	Sections []Section
}

func (o Options) has(s Section) bool {
	secs := o.Sections
	if secs == nil {
		secs = DashboardSections
	}
	for _, x := range secs {
		if x == s {
			return true
		}
	}
	return false
}

// Render encodes d in the requested format.
func Render(d *explorer.Dashboard, opt Options) ([]byte, error) {
	switch opt.Format {
	case FormatMarkdown, "":
		return []byte(Markdown(d, opt)), nil
	case FormatText:
		return []byte(Text(d, opt)), nil
	case FormatJSON:
		return JSON(d, opt)
	case FormatYAML:
		return YAML(d, opt)
	}
	return nil, fmt.Errorf("unsupported format %q", opt.Format)
}

// money formats a premium as whole rupees with thousands separators.
func money(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return "₹" + humanize.Comma(int64(math.Round(f)))
}

func count(n int) string { return humanize.Comma(int64(n)) }

func percent(f float64) string { return fmt.Sprintf("%.1f%%", f*100) }

func conditionLabel(c string) string {
	if c == "" {
		return "(none)"
	}
	return c
}
