// Package features derives per-record columns used for grouping: the
// major-surgery flag and the age bucket.
package features

import (
	"math"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
)

// AgeEdges are the bucket boundaries. Buckets are right-closed:
// (17,29], (29,39], (39,49], (49,59], (59,69].
var AgeEdges = []float64{17, 29, 39, 49, 59, 69}

// AgeLabels name the buckets between consecutive AgeEdges.
var AgeLabels = []string{"18–29", "30–39", "40–49", "50–59", "60–69"}

// AgeGroup returns the bucket label for age, or "" when age is NaN or falls
// outside (17,69].
func AgeGroup(age float64) string {
	if math.IsNaN(age) || age <= AgeEdges[0] || age > AgeEdges[len(AgeEdges)-1] {
		return ""
	}
	for i := 1; i < len(AgeEdges); i++ {
		if age <= AgeEdges[i] {
			return AgeLabels[i-1]
		}
	}
	return ""
}

// AgeGroupIndex returns the position of label in AgeLabels, or -1.
func AgeGroupIndex(label string) int {
	for i, l := range AgeLabels {
		if l == label {
			return i
		}
	}
	return -1
}

// HasMajorSurgery is 1 when at least one major surgery is recorded. Missing
// counts were loaded as 0.
func HasMajorSurgery(r dataset.Record) int {
	if r.NumberOfMajorSurgeries >= 1 {
		return 1
	}
	return 0
}

// Derive returns a copy of t with HasMajorSurgery and AgeGroup filled in.
func Derive(t *dataset.Table) *dataset.Table {
	return t.Map([]string{"HasMajorSurgery", "AgeGroup"}, func(_ int, r *dataset.Record) {
		r.HasMajorSurgery = HasMajorSurgery(*r)
		r.AgeGroup = AgeGroup(r.Age)
	})
}
