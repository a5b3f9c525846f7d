// Package risk assigns premium risk levels by clustering standardized premium
// prices and mapping clusters to labels.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/rs/zerolog/log"
)

// Config selects the clustering parameters and the label policy.
type Config struct {
	KMeans KMeansOptions
	Policy LabelPolicy
	// FixedLabels overrides LegacyClusterLabels under PolicyFixed.
	FixedLabels map[int]dataset.RiskLevel
}

// DefaultConfig uses the rank policy with the default k-means options.
func DefaultConfig() Config {
	return Config{KMeans: DefaultKMeansOptions(), Policy: PolicyRank}
}

// Centroid describes one fitted cluster.
type Centroid struct {
	Cluster      int               `json:"cluster" yaml:"cluster"`
	Standardized float64           `json:"standardized" yaml:"standardized"`
	Premium      float64           `json:"premium" yaml:"premium"`
	Size         int               `json:"size" yaml:"size"`
	RiskLevel    dataset.RiskLevel `json:"risk_level" yaml:"risk_level"`
}

// Classification is the fitted artifact: scaler parameters, centroids and the
// label map that was applied.
type Classification struct {
	Policy     LabelPolicy `json:"policy" yaml:"policy"`
	Labels     LabelMap    `json:"labels" yaml:"labels"`
	Centroids  []Centroid  `json:"centroids" yaml:"centroids"`
	Mean       float64     `json:"mean" yaml:"mean"`
	Std        float64     `json:"std" yaml:"std"`
	Seed       uint64      `json:"seed" yaml:"seed"`
	Inertia    float64     `json:"inertia" yaml:"inertia"`
	Iterations int         `json:"iterations" yaml:"iterations"`
}

// ByPremium returns centroids sorted by ascending premium.
func (c *Classification) ByPremium() []Centroid {
	out := append([]Centroid(nil), c.Centroids...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Premium < out[j].Premium })
	return out
}

// Standardize returns z-scores using the population standard deviation. A
// constant column yields all zeros.
func Standardize(x []float64) (z []float64, mean, std float64) {
	if len(x) == 0 {
		return nil, 0, 0
	}
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	var ss float64
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	std = math.Sqrt(ss / float64(len(x)))
	scale := std
	if scale == 0 {
		scale = 1
	}
	z = make([]float64, len(x))
	for i, v := range x {
		z[i] = (v - mean) / scale
	}
	return z, mean, std
}

// Classify fits the clustering over the whole table and returns a copy with
// Cluster and RiskLevel filled in.
func Classify(t *dataset.Table, cfg Config) (*dataset.Table, *Classification, error) {
	opt := cfg.KMeans
	if opt.K <= 0 {
		opt.K = DefaultKMeansOptions().K
	}
	if t.Len() == 0 {
		return nil, nil, &InsufficientDataError{Required: opt.K}
	}
	premiums := t.Premiums()
	for i, p := range premiums {
		if math.IsNaN(p) {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, ErrMissingPremium)
		}
	}

	z, mean, std := Standardize(premiums)
	fit, err := KMeans1D(z, opt)
	if err != nil {
		return nil, nil, err
	}

	var labels LabelMap
	switch cfg.Policy {
	case PolicyFixed:
		labels, err = FixedLabels(cfg.FixedLabels, opt.K)
	case PolicyRank, "":
		labels, err = RankLabels(fit.Centroids)
	default:
		err = fmt.Errorf("unknown label policy %q", cfg.Policy)
	}
	if err != nil {
		return nil, nil, err
	}

	res := &Classification{
		Policy:     cfg.Policy,
		Labels:     labels,
		Mean:       mean,
		Std:        std,
		Seed:       opt.Seed,
		Inertia:    fit.Inertia,
		Iterations: fit.Iterations,
	}
	if res.Policy == "" {
		res.Policy = PolicyRank
	}
	scale := std
	if scale == 0 {
		scale = 1
	}
	for c, zc := range fit.Centroids {
		res.Centroids = append(res.Centroids, Centroid{
			Cluster:      c,
			Standardized: zc,
			Premium:      zc*scale + mean,
			Size:         fit.Sizes[c],
			RiskLevel:    labels[c],
		})
	}

	out := t.Map([]string{"Cluster", "RiskLevel"}, func(i int, r *dataset.Record) {
		r.Cluster = fit.Labels[i]
		r.RiskLevel = labels[fit.Labels[i]]
	})

	log.Debug().
		Str("policy", string(res.Policy)).
		Int("rows", t.Len()).
		Int("clusters", opt.K).
		Uint64("seed", opt.Seed).
		Float64("inertia", fit.Inertia).
		Int("iterations", fit.Iterations).
		Msg("premium clustering fitted")
	return out, res, nil
}
