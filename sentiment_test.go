package semantic

import (
	"math"
	"testing"
)

func TestAnalyzeSentimentPatternsClassification(t *testing.T) {
	tests := []struct {
		name       string
		embeddings [][]float64
		want       string
	}{
		{
			// Per-dimension population variance of {1, -1} is 1.
			"high variance is diverse",
			[][]float64{{1, 1}, {-1, -1}},
			"Mixed/Diverse",
		},
		{
			// Variance of {0.25, -0.25} is 0.0625, between the bounds.
			"mid variance is moderate consensus",
			[][]float64{{0.25, 0.25}, {-0.25, -0.25}},
			"Moderate Consensus",
		},
		{
			// Variance of {0.1, -0.1} is 0.01, under the lower bound.
			"low variance is strong consensus",
			[][]float64{{0.1, 0.1}, {-0.1, -0.1}},
			"Strong Consensus",
		},
		{
			"identical vectors are strong consensus",
			[][]float64{{0.5, 0.5}, {0.5, 0.5}, {0.5, 0.5}},
			"Strong Consensus",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metric := AnalyzeSentimentPatterns(tt.embeddings)
			if metric.Pattern != tt.want {
				t.Errorf("pattern = %q (variance %v), want %q", metric.Pattern, metric.Variance, tt.want)
			}
			if metric.Note != "Based on semantic diversity, not explicit sentiment scoring" {
				t.Errorf("unexpected note %q", metric.Note)
			}
		})
	}
}

func TestMeanDimensionVariance(t *testing.T) {
	// Dimension 0: values {1, 3}, mean 2, population variance 1.
	// Dimension 1: values {2, 2}, variance 0. Mean over dims: 0.5.
	embeddings := [][]float64{{1, 2}, {3, 2}}

	got := meanDimensionVariance(embeddings)
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("meanDimensionVariance = %v, want 0.5", got)
	}
}

func TestMeanDimensionVarianceEmpty(t *testing.T) {
	if got := meanDimensionVariance(nil); got != 0 {
		t.Errorf("variance of nil = %v, want 0", got)
	}
	if got := meanDimensionVariance([][]float64{}); got != 0 {
		t.Errorf("variance of empty = %v, want 0", got)
	}
}

func TestAnalyzeSentimentPatternsSingleComment(t *testing.T) {
	metric := AnalyzeSentimentPatterns([][]float64{{0.2, 0.8, 0.1}})
	if metric.Pattern != "Strong Consensus" {
		t.Errorf("single comment pattern = %q, want Strong Consensus", metric.Pattern)
	}
	if metric.Variance != 0 {
		t.Errorf("single comment variance = %v, want 0", metric.Variance)
	}
}
