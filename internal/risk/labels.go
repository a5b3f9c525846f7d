package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
)

// LabelPolicy selects how cluster indices become risk levels.
type LabelPolicy string

const (
	// PolicyFixed applies a constant index->label table. The default table was
	// read off one particular fit; cluster indices carry no order, so it is only
	// meaningful for that fit.
	PolicyFixed LabelPolicy = "fixed"
	// PolicyRank orders centroids by premium: lowest Low, highest High, the
	// rest Moderate.
	PolicyRank LabelPolicy = "rank"
)

// ParseLabelPolicy accepts "fixed" or "rank".
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch LabelPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicyFixed:
		return PolicyFixed, nil
	case PolicyRank, "":
		return PolicyRank, nil
	}
	return "", fmt.Errorf("unknown label policy %q (use fixed or rank)", s)
}

// LegacyClusterLabels is the hand-assigned map from the original analysis.
var LegacyClusterLabels = map[int]dataset.RiskLevel{
	0: dataset.High,
	1: dataset.Low,
	2: dataset.Moderate,
	3: dataset.Moderate,
}

// LabelMap maps cluster index to risk level. Index i is cluster i.
type LabelMap []dataset.RiskLevel

// Level returns the label for cluster c.
func (m LabelMap) Level(c int) (dataset.RiskLevel, bool) {
	if c < 0 || c >= len(m) {
		return "", false
	}
	return m[c], true
}

// AsMap returns the mapping in the map form used by configuration files.
func (m LabelMap) AsMap() map[int]dataset.RiskLevel {
	out := make(map[int]dataset.RiskLevel, len(m))
	for i, l := range m {
		out[i] = l
	}
	return out
}

// FixedLabels validates a constant table for k clusters.
func FixedLabels(table map[int]dataset.RiskLevel, k int) (LabelMap, error) {
	if len(table) == 0 {
		table = LegacyClusterLabels
	}
	m := make(LabelMap, k)
	for c := 0; c < k; c++ {
		l, ok := table[c]
		if !ok {
			return nil, &LabelMapError{Cluster: c, Reason: "no label assigned"}
		}
		if !l.Valid() {
			return nil, &LabelMapError{Cluster: c, Reason: fmt.Sprintf("invalid risk level %q", l)}
		}
		m[c] = l
	}
	for c := range table {
		if c < 0 || c >= k {
			return nil, &LabelMapError{Cluster: c, Reason: fmt.Sprintf("outside 0..%d", k-1)}
		}
	}
	return m, nil
}

// RankLabels labels clusters by centroid order. It needs at least three
// clusters so that every level is used.
func RankLabels(centroids []float64) (LabelMap, error) {
	k := len(centroids)
	if k < 3 {
		return nil, &LabelMapError{Cluster: k, Reason: "rank policy needs at least 3 clusters"}
	}
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return centroids[order[a]] < centroids[order[b]] })
	m := make(LabelMap, k)
	for rank, c := range order {
		switch rank {
		case 0:
			m[c] = dataset.Low
		case k - 1:
			m[c] = dataset.High
		default:
			m[c] = dataset.Moderate
		}
	}
	return m, nil
}
