package risk

import (
	"errors"
	"math"
	"testing"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func premiumTable(premiums ...float64) *dataset.Table {
	recs := make([]dataset.Record, len(premiums))
	for i, p := range premiums {
		recs[i] = dataset.Record{Age: 30, PremiumPrice: p, Cluster: -1}
	}
	return dataset.NewTable("premiums", []string{"Age", "PremiumPrice"}, recs)
}

func TestStandardize(t *testing.T) {
	z, mean, std := Standardize([]float64{10000, 15000, 20000, 25000, 30000})
	assert.Equal(t, 20000.0, mean)
	assert.InDelta(t, math.Sqrt(50_000_000), std, 1e-9)
	assert.InDelta(t, 0.0, z[2], 1e-12)
	assert.InDelta(t, -math.Sqrt2, z[0], 1e-9)
	assert.InDelta(t, math.Sqrt2, z[4], 1e-9)

	z, _, std = Standardize([]float64{5, 5, 5})
	assert.Equal(t, 0.0, std)
	assert.Equal(t, []float64{0, 0, 0}, z)
}

func TestClassifyFivePointScenario(t *testing.T) {
	premiums := []float64{10000, 15000, 20000, 25000, 30000}
	out, cls, err := Classify(premiumTable(premiums...), DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 5, out.Len())

	// Four clusters over five evenly spaced points: seed 42 merges the two
	// highest premiums and leaves rows 0-2 as singletons.
	c := func(i int) int { return out.At(i).Cluster }
	for i := 0; i < out.Len(); i++ {
		require.GreaterOrEqual(t, c(i), 0)
		require.Less(t, c(i), 4)
	}
	assert.Equal(t, c(3), c(4))
	distinct := map[int]bool{c(0): true, c(1): true, c(2): true, c(3): true}
	assert.Len(t, distinct, 4)
	assert.Equal(t, 2, cls.Centroids[c(3)].Size)

	// Nearest-centroid property holds for every row.
	for i := 0; i < out.Len(); i++ {
		r := out.At(i)
		own := math.Abs(r.PremiumPrice - cls.Centroids[r.Cluster].Premium)
		for _, c := range cls.Centroids {
			assert.LessOrEqual(t, own, math.Abs(r.PremiumPrice-c.Premium)+1e-9)
		}
	}

	want := []dataset.RiskLevel{dataset.Low, dataset.Moderate, dataset.Moderate, dataset.High, dataset.High}
	for i, lvl := range want {
		assert.Equal(t, lvl, out.At(i).RiskLevel, "row %d", i)
	}
	assert.Equal(t, PolicyRank, cls.Policy)
	assert.InDelta(t, 0.25, cls.Inertia, 1e-9)
}

func TestClassifyDeterministic(t *testing.T) {
	premiums := []float64{15000, 23000, 28000, 31000, 11000, 25000, 40000, 21000, 29000, 35000, 19000, 23000, 15000, 38000}
	tbl := premiumTable(premiums...)
	for _, policy := range []LabelPolicy{PolicyRank, PolicyFixed} {
		cfg := DefaultConfig()
		cfg.Policy = policy
		a, ca, err := Classify(tbl, cfg)
		require.NoError(t, err)
		b, cb, err := Classify(tbl, cfg)
		require.NoError(t, err)
		assert.Equal(t, ca, cb)
		for i := 0; i < tbl.Len(); i++ {
			assert.Equal(t, a.At(i).Cluster, b.At(i).Cluster)
			assert.Equal(t, a.At(i).RiskLevel, b.At(i).RiskLevel)
		}
	}
}

func TestClassifyFixedPolicyUsesLegacyMap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicyFixed
	out, cls, err := Classify(premiumTable(10000, 15000, 20000, 25000, 30000, 32000), cfg)
	require.NoError(t, err)
	for i := 0; i < out.Len(); i++ {
		r := out.At(i)
		assert.Equal(t, LegacyClusterLabels[r.Cluster], r.RiskLevel)
	}
	moderate := 0
	for _, l := range cls.Labels {
		require.True(t, l.Valid())
		if l == dataset.Moderate {
			moderate++
		}
	}
	assert.Equal(t, 2, moderate)
}

func TestClassifyDoesNotMutateInput(t *testing.T) {
	tbl := premiumTable(1, 2, 3, 4, 5)
	_, _, err := Classify(tbl, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, -1, tbl.At(0).Cluster)
	assert.Empty(t, tbl.At(0).RiskLevel)
}

func TestClassifyErrors(t *testing.T) {
	var insufficient *InsufficientDataError

	_, _, err := Classify(premiumTable(100, 100, 200, 300, 300), DefaultConfig())
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 3, insufficient.Distinct)
	assert.Equal(t, 4, insufficient.Required)

	_, _, err = Classify(premiumTable(), DefaultConfig())
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 0, insufficient.Rows)

	_, _, err = Classify(premiumTable(1, 2, math.NaN(), 4, 5), DefaultConfig())
	assert.ErrorIs(t, err, ErrMissingPremium)
	assert.Contains(t, err.Error(), "row 3")

	cfg := DefaultConfig()
	cfg.Policy = "quantile"
	_, _, err = Classify(premiumTable(1, 2, 3, 4), cfg)
	assert.Error(t, err)
}

func TestRankLabels(t *testing.T) {
	m, err := RankLabels([]float64{0.9, -1.2, 0.1, -0.3})
	require.NoError(t, err)
	assert.Equal(t, LabelMap{dataset.High, dataset.Low, dataset.Moderate, dataset.Moderate}, m)

	_, err = RankLabels([]float64{0, 1})
	var lme *LabelMapError
	assert.True(t, errors.As(err, &lme))
}

func TestFixedLabels(t *testing.T) {
	m, err := FixedLabels(nil, 4)
	require.NoError(t, err)
	assert.Equal(t, LabelMap{dataset.High, dataset.Low, dataset.Moderate, dataset.Moderate}, m)
	assert.Equal(t, LegacyClusterLabels, m.AsMap())

	l, ok := m.Level(1)
	assert.True(t, ok)
	assert.Equal(t, dataset.Low, l)
	_, ok = m.Level(4)
	assert.False(t, ok)

	_, err = FixedLabels(map[int]dataset.RiskLevel{0: dataset.Low, 1: dataset.High, 2: "Severe", 3: dataset.Low}, 4)
	assert.Error(t, err)
	_, err = FixedLabels(map[int]dataset.RiskLevel{0: dataset.Low, 1: dataset.High}, 4)
	assert.Error(t, err)
	_, err = FixedLabels(map[int]dataset.RiskLevel{0: dataset.Low, 1: dataset.High, 2: dataset.Low, 3: dataset.Low, 7: dataset.High}, 4)
	assert.Error(t, err)
}

func TestParseLabelPolicy(t *testing.T) {
	p, err := ParseLabelPolicy(" Fixed ")
	require.NoError(t, err)
	assert.Equal(t, PolicyFixed, p)
	p, err = ParseLabelPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRank, p)
	_, err = ParseLabelPolicy("kmeans")
	assert.Error(t, err)
}
