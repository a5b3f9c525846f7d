package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/premium-explorer/internal/config"
	"github.com/KaramelBytes/premium-explorer/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:           "premex",
	Short:         "Premex: explore medical insurance premiums by risk level",
	Long:          `Premex clusters premium prices into Low, Moderate and High risk levels and reports premium cross-cuts by age group and health condition.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.premex/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, disabled (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
	} else {
		cfg = c
	}
	level := ""
	if cfg != nil {
		level = cfg.LogLevel
	}
	if rootCmd.PersistentFlags().Changed("log-level") {
		level = logLevel
	}
	logging.Setup(level, os.Stderr)
}
