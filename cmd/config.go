package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/premium-explorer/internal/config"
	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/logging"
	"github.com/KaramelBytes/premium-explorer/internal/report"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set premex configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "data_path: %s\n", c.DataPath)
		fmt.Fprintf(out, "output_format: %s\n", c.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		if c.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		}
		if c.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		}
		fmt.Fprintf(out, "risk.label_policy: %s\n", c.Risk.LabelPolicy)
		if len(c.Risk.ClusterLabels) > 0 {
			fmt.Fprintf(out, "risk.cluster_labels: %s\n", cfgpkg.FormatClusterLabels(c.Risk.ClusterLabels))
		} else {
			fmt.Fprintf(out, "risk.cluster_labels: (legacy) %s\n", legacyLabels())
		}
		km := c.Risk.KMeans
		fmt.Fprintf(out, "risk.kmeans.clusters: %d\n", km.K)
		fmt.Fprintf(out, "risk.kmeans.seed: %d\n", km.Seed)
		fmt.Fprintf(out, "risk.kmeans.max_iter: %d\n", km.MaxIter)
		fmt.Fprintf(out, "risk.kmeans.n_init: %d\n", km.NInit)
		fmt.Fprintf(out, "risk.kmeans.tolerance: %g\n", km.Tolerance)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "data_path":
			cfg.DataPath = val
		case "output_format":
			f, err := report.ParseFormat(val)
			if err != nil {
				return err
			}
			cfg.OutputFormat = string(f)
		case "log_level":
			if logging.ParseLevel(val) == zerolog.Disabled && val != "disabled" {
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn, error or disabled)", val)
			}
			cfg.LogLevel = val
		case "sheet_name":
			cfg.SheetName = val
		case "max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for max_rows: %v", val)
			}
			cfg.MaxRows = i
		case "risk.label_policy", "label_policy":
			p, err := risk.ParseLabelPolicy(val)
			if err != nil {
				return err
			}
			cfg.Risk.LabelPolicy = string(p)
		case "risk.cluster_labels", "cluster_labels":
			m, err := cfgpkg.ParseClusterLabels(val)
			if err != nil {
				return err
			}
			if _, err := risk.FixedLabels(toLevels(m), cfg.Risk.KMeans.K); len(m) > 0 && err != nil {
				return err
			}
			cfg.Risk.ClusterLabels = m
		case "risk.kmeans.clusters":
			i, err := strconv.Atoi(val)
			if err != nil || i < 3 {
				return fmt.Errorf("invalid cluster count: %v (need at least 3)", val)
			}
			cfg.Risk.KMeans.K = i
		case "risk.kmeans.seed", "seed":
			u, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed: %w", err)
			}
			cfg.Risk.KMeans.Seed = u
		case "risk.kmeans.max_iter":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for max_iter: %v", val)
			}
			cfg.Risk.KMeans.MaxIter = i
		case "risk.kmeans.n_init":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for n_init: %v", val)
			}
			cfg.Risk.KMeans.NInit = i
		case "risk.kmeans.tolerance":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for tolerance: %v", val)
			}
			cfg.Risk.KMeans.Tolerance = f
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func legacyLabels() string {
	m := make(map[string]string, len(risk.LegacyClusterLabels))
	for k, v := range risk.LegacyClusterLabels {
		m[strconv.Itoa(k)] = string(v)
	}
	return cfgpkg.FormatClusterLabels(m)
}

func toLevels(m map[string]string) map[int]dataset.RiskLevel {
	out := make(map[int]dataset.RiskLevel, len(m))
	for k, v := range m {
		if i, err := strconv.Atoi(k); err == nil {
			out[i] = dataset.RiskLevel(v)
		}
	}
	return out
}
