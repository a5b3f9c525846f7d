package cmd

import (
	"github.com/KaramelBytes/premium-explorer/internal/explorer"
	"github.com/KaramelBytes/premium-explorer/internal/report"
	"github.com/spf13/cobra"
)

var cluFlags datasetFlags

var clustersCmd = &cobra.Command{
	Use:   "clusters [file]",
	Short: "Show the fitted premium clusters and their risk labels",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cluFlags.render(cmd, args, explorer.DefaultSelection(), []report.Section{report.SectionClusters})
	},
}

func init() {
	rootCmd.AddCommand(clustersCmd)
	cluFlags.register(clustersCmd)
}
