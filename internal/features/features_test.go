package features

import (
	"math"
	"testing"

	"github.com/KaramelBytes/premium-explorer/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeGroupBoundaries(t *testing.T) {
	tests := []struct {
		age  float64
		want string
	}{
		{17, ""},
		{17.5, "18–29"},
		{18, "18–29"},
		{29, "18–29"},
		{29.01, "30–39"},
		{30, "30–39"},
		{39, "30–39"},
		{40, "40–49"},
		{49, "40–49"},
		{50, "50–59"},
		{59, "50–59"},
		{60, "60–69"},
		{69, "60–69"},
		{69.5, ""},
		{70, ""},
		{0, ""},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeGroup(tt.age), "age %v", tt.age)
	}
}

func TestEveryAdultAgeHasExactlyOneBucket(t *testing.T) {
	for age := 18; age <= 69; age++ {
		label := AgeGroup(float64(age))
		require.NotEmpty(t, label, "age %d", age)
		matches := 0
		for i := 1; i < len(AgeEdges); i++ {
			if float64(age) > AgeEdges[i-1] && float64(age) <= AgeEdges[i] {
				matches++
				assert.Equal(t, AgeLabels[i-1], label)
			}
		}
		assert.Equal(t, 1, matches, "age %d", age)
	}
}

func TestDerive(t *testing.T) {
	base := dataset.NewTable("t", []string{"Age", "NumberOfMajorSurgeries"}, []dataset.Record{
		{Age: 25, NumberOfMajorSurgeries: 0},
		{Age: 45, NumberOfMajorSurgeries: 1},
		{Age: 66, NumberOfMajorSurgeries: 3},
		{Age: 70, SurgeriesMissing: true},
	})

	out := Derive(base)

	require.Equal(t, 4, out.Len())
	assert.Equal(t, []int{0, 1, 1, 0}, []int{out.At(0).HasMajorSurgery, out.At(1).HasMajorSurgery, out.At(2).HasMajorSurgery, out.At(3).HasMajorSurgery})
	assert.Equal(t, []string{"18–29", "40–49", "60–69", ""}, []string{out.At(0).AgeGroup, out.At(1).AgeGroup, out.At(2).AgeGroup, out.At(3).AgeGroup})
	assert.True(t, out.HasColumn("AgeGroup"))
	assert.Empty(t, base.At(1).AgeGroup, "input table must not change")

	for i := 0; i < out.Len(); i++ {
		r := out.At(i)
		flag, ok := r.Flag(dataset.HasMajorSurgery)
		require.True(t, ok)
		assert.Equal(t, r.NumberOfMajorSurgeries >= 1, flag == 1)
	}
}

func TestAgeGroupIndex(t *testing.T) {
	assert.Equal(t, 0, AgeGroupIndex("18–29"))
	assert.Equal(t, 4, AgeGroupIndex("60–69"))
	assert.Equal(t, -1, AgeGroupIndex("70+"))
}
