package cmd

import (
	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/KaramelBytes/premium-explorer/internal/query"
	"github.com/KaramelBytes/premium-explorer/internal/report"
	"github.com/spf13/cobra"
)

var (
	expFlags      datasetFlags
	expRisk       []string
	expHighlight  string
	expConditions []string
	expHeatmapX   string
	expHeatmapY   string
	expBox        string
	expClusters   bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore [file]",
	Short: "Render the premium dashboard for a risk-level selection",
	Long: `Load a premium dataset, classify risk levels once and render every
dashboard table for the selected risk levels: KPIs, risk counts, average
premium by risk level and age group, condition comparisons, a two-condition
heatmap, premium distribution and the risk profile by age group.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := exploreSelection(cmd)
		if err != nil {
			return err
		}
		sections := append([]report.Section(nil), report.DashboardSections...)
		if expClusters {
			sections = append(sections, report.SectionClusters)
		}
		return expFlags.render(cmd, args, sel, sections)
	},
}

func exploreSelection(cmd *cobra.Command) (explorer.Selection, error) {
	sel := explorer.DefaultSelection()
	var err error
	if cmd.Flags().Changed("risk") {
		if sel.Risk, err = query.ParseRiskLevels(expRisk); err != nil {
			return sel, err
		}
	}
	if expHighlight != "" && expHighlight != "None" {
		if sel.HighlightAge, err = query.ParseAgeGroup(expHighlight); err != nil {
			return sel, err
		}
	}
	if sel.Conditions, err = query.ParseConditions(expConditions); err != nil {
		return sel, err
	}
	if expHeatmapX != "" {
		if sel.HeatmapX, err = query.ParseCondition(expHeatmapX); err != nil {
			return sel, err
		}
	}
	if expHeatmapY != "" {
		if sel.HeatmapY, err = query.ParseCondition(expHeatmapY); err != nil {
			return sel, err
		}
	}
	// Explicitly asking for a same-axis heatmap is an error; the default
	// dashboard simply skips it.
	if (cmd.Flags().Changed("heatmap-x") || cmd.Flags().Changed("heatmap-y")) && sel.HeatmapX == sel.HeatmapY {
		return sel, query.ErrSelfCrossTab
	}
	if expBox != "" && expBox != "None" {
		if sel.BoxCondition, err = query.ParseCondition(expBox); err != nil {
			return sel, err
		}
	}
	return sel, nil
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	expFlags.register(exploreCmd)
	exploreCmd.Flags().StringSliceVarP(&expRisk, "risk", "r", nil, "risk levels to include: Low, Moderate, High (default all)")
	exploreCmd.Flags().StringVar(&expHighlight, "highlight-age", "", "age group to highlight, e.g. 30-39")
	exploreCmd.Flags().StringSliceVar(&expConditions, "conditions", nil, "conditions to compare by age group")
	exploreCmd.Flags().StringVar(&expHeatmapX, "heatmap-x", "", "heatmap condition X (default Diabetes)")
	exploreCmd.Flags().StringVar(&expHeatmapY, "heatmap-y", "", "heatmap condition Y (default BloodPressureProblems)")
	exploreCmd.Flags().StringVar(&expBox, "box-condition", "", "condition for the premium distribution by age group")
	exploreCmd.Flags().BoolVar(&expClusters, "clusters", false, "append the fitted cluster table")
}
