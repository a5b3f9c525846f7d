package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	DataPath     string `mapstructure:"data_path" yaml:"data_path"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`

	// Loader
	SheetName string `mapstructure:"sheet_name" yaml:"sheet_name,omitempty"`
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`

	Risk Risk `mapstructure:"risk" yaml:"risk"`
}

// Risk holds the classifier settings.
type Risk struct {
	LabelPolicy string `mapstructure:"label_policy" yaml:"label_policy"`
	// ClusterLabels maps cluster index (as a string key) to a risk level. Used
	// only by the fixed policy; empty means the legacy map.
	ClusterLabels map[string]string  `mapstructure:"cluster_labels" yaml:"cluster_labels,omitempty"`
	KMeans        risk.KMeansOptions `mapstructure:"kmeans" yaml:"kmeans"`
}

// Classifier converts the settings into a risk.Config.
func (r Risk) Classifier() (risk.Config, error) {
	policy, err := risk.ParseLabelPolicy(r.LabelPolicy)
	if err != nil {
		return risk.Config{}, err
	}
	c := risk.Config{KMeans: r.KMeans, Policy: policy}
	if len(r.ClusterLabels) > 0 {
		c.FixedLabels = make(map[int]dataset.RiskLevel, len(r.ClusterLabels))
		for k, v := range r.ClusterLabels {
			idx, err := strconv.Atoi(strings.TrimSpace(k))
			if err != nil {
				return risk.Config{}, fmt.Errorf("cluster_labels: invalid cluster index %q", k)
			}
			l, ok := dataset.ParseRiskLevel(v)
			if !ok {
				return risk.Config{}, fmt.Errorf("cluster_labels: invalid risk level %q for cluster %d", v, idx)
			}
			c.FixedLabels[idx] = l
		}
	}
	return c, nil
}

// FormatClusterLabels renders the label table as "0=High,1=Low,...".
func FormatClusterLabels(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, ",")
}

// ParseClusterLabels reads the "0=High,1=Low" form used by config set.
func ParseClusterLabels(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid cluster label %q (want index=Level)", part)
		}
		if _, err := strconv.Atoi(strings.TrimSpace(k)); err != nil {
			return nil, fmt.Errorf("invalid cluster index %q", k)
		}
		l, ok := dataset.ParseRiskLevel(v)
		if !ok {
			return nil, fmt.Errorf("invalid risk level %q", v)
		}
		out[strings.TrimSpace(k)] = string(l)
	}
	return out, nil
}

// DefaultPath returns ~/.premex/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".premex", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.premex/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is applied to the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PREMEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	km := risk.DefaultKMeansOptions()
	v.SetDefault("data_path", "")
	v.SetDefault("output_format", "markdown")
	v.SetDefault("log_level", "disabled")
	v.SetDefault("sheet_name", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("risk.label_policy", string(risk.PolicyRank))
	v.SetDefault("risk.cluster_labels", map[string]string{})
	v.SetDefault("risk.kmeans.clusters", km.K)
	v.SetDefault("risk.kmeans.seed", km.Seed)
	v.SetDefault("risk.kmeans.max_iter", km.MaxIter)
	v.SetDefault("risk.kmeans.n_init", km.NInit)
	v.SetDefault("risk.kmeans.tolerance", km.Tolerance)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".premex"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := risk.ParseLabelPolicy(c.Risk.LabelPolicy); err != nil {
		return nil, err
	}
	return &c, nil
}
