package query_test

import (
	"slices"
	"testing"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/KaramelBytes/premium-explorer/internal/features"
	"github.com/KaramelBytes/premium-explorer/internal/query"
	"github.com/KaramelBytes/premium-explorer/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveClassifyAgeGroupMeans(t *testing.T) {
	ages := []float64{25, 25, 35, 35, 35}
	premiums := []float64{10000, 15000, 20000, 25000, 30000}
	recs := make([]dataset.Record, len(ages))
	for i := range ages {
		recs[i] = dataset.Record{Age: ages[i], PremiumPrice: premiums[i], Cluster: -1}
	}
	raw := dataset.NewTable("five", []string{"Age", "PremiumPrice"}, recs)

	classified, cls, err := risk.Classify(features.Derive(raw), risk.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 5, classified.Len())

	// Seed 42 merges the two highest premiums; the rest are singletons.
	c := func(i int) int { return classified.At(i).Cluster }
	assert.Equal(t, c(3), c(4))
	got := map[int]bool{c(0): true, c(1): true, c(2): true, c(3): true}
	assert.Len(t, got, 4, "rows 0-2 must be singletons distinct from the merged pair")
	var sizes []int
	for _, ce := range cls.Centroids {
		sizes = append(sizes, ce.Size)
	}
	slices.Sort(sizes)
	assert.Equal(t, []int{1, 1, 1, 2}, sizes)
	assert.InDelta(t, 0.25, cls.Inertia, 1e-9)

	levels := make([]dataset.RiskLevel, classified.Len())
	for i := range levels {
		levels[i] = classified.At(i).RiskLevel
	}
	assert.Equal(t, []dataset.RiskLevel{dataset.Low, dataset.Moderate, dataset.Moderate, dataset.High, dataset.High}, levels)

	means, err := query.MeanPremiumByAgeGroup(query.All(classified))
	require.NoError(t, err)
	require.Len(t, means, 2)
	assert.Equal(t, "18–29", means[0].AgeGroup)
	assert.Equal(t, 2, means[0].Count)
	assert.InDelta(t, 12500.0, means[0].Mean, 1e-9)
	assert.Equal(t, "30–39", means[1].AgeGroup)
	assert.Equal(t, 3, means[1].Count)
	assert.InDelta(t, 25000.0, means[1].Mean, 1e-9)

	high, err := query.MeanPremiumByAgeGroup(query.Filter(classified, []dataset.RiskLevel{dataset.High}))
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "30–39", high[0].AgeGroup)
	assert.InDelta(t, 27500.0, high[0].Mean, 1e-9)
}
