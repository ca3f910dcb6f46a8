package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareMeans(t *testing.T) {
	low := []float64{1, 2, 3}
	high := []float64{4, 5, 6}

	tests := []struct {
		name     string
		samples  [][]float64
		level    float64
		expected bool
	}{
		// p is about 0.021 for both the t-test and the ANOVA on these samples
		{"two groups at caller level", [][]float64{low, high}, 0.05, true},
		{"two groups strict level", [][]float64{low, high}, 0.01, false},
		{"two usable of three ignores level", [][]float64{low, high, nil}, 0.01, true},
		{"three usable groups", [][]float64{low, high, {7, 8, 9}}, 0.05, false},
		{"one group", [][]float64{low}, 0.05, false},
		{"no groups", nil, 0.05, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareMeans(tt.samples, tt.level))
		})
	}
}

func TestCompareProportions(t *testing.T) {
	assert.Nil(t, compareProportions(nil, 0.05))

	noRespondents := []Tally{{Counts: []int{0}}, {Counts: []int{0}}}
	assert.Equal(t, []bool{false}, compareProportions(noRespondents, 0.05))

	skewed := []Tally{
		{Counts: []int{10, 10}, Respondents: 10},
		{Counts: []int{0, 10}, Respondents: 10},
	}
	assert.Equal(t, []bool{true, false}, compareProportions(skewed, 0.05))
}
