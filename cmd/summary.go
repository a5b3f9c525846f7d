package cmd

import (
	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/KaramelBytes/premium-explorer/internal/query"
	"github.com/KaramelBytes/premium-explorer/internal/report"
	"github.com/spf13/cobra"
)

var (
	sumFlags datasetFlags
	sumRisk  []string
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Show premium KPIs and risk category counts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sel := explorer.DefaultSelection()
		if cmd.Flags().Changed("risk") {
			levels, err := query.ParseRiskLevels(sumRisk)
			if err != nil {
				return err
			}
			sel.Risk = levels
		}
		return sumFlags.render(cmd, args, sel, []report.Section{report.SectionSummary, report.SectionRiskCounts})
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	sumFlags.register(summaryCmd)
	summaryCmd.Flags().StringSliceVarP(&sumRisk, "risk", "r", nil, "risk levels to include: Low, Moderate, High (default all)")
}
