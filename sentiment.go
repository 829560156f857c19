package semantic

// DiversityMetric is a coarse consensus/diversity signal derived from
// how spread out the batch embeddings are. It is a proxy over semantic
// variance, not polarity detection, and every payload carries the
// disclaimer so downstream dashboards cannot mistake it for sentiment.
type DiversityMetric struct {
	Pattern  string  `json:"pattern" jsonschema:"description=One of Strong Consensus, Moderate Consensus, Mixed/Diverse"`
	Variance float64 `json:"variance" jsonschema:"description=Mean of per-dimension embedding variances"`
	Note     string  `json:"note" jsonschema:"description=Fixed disclaimer about the nature of this signal"`
}

const diversityNote = "Based on semantic diversity, not explicit sentiment scoring"

// Classification boundaries for the mean per-dimension variance.
const (
	diverseVarianceThreshold  = 0.1
	moderateVarianceThreshold = 0.05
)

// AnalyzeSentimentPatterns computes the population variance of each
// embedding dimension across the batch, averages them, and classifies
// the result: high variance suggests diverse opinions, low variance
// suggests consensus.
func AnalyzeSentimentPatterns(embeddings [][]float64) DiversityMetric {
	meanVariance := meanDimensionVariance(embeddings)

	pattern := "Strong Consensus"
	switch {
	case meanVariance > diverseVarianceThreshold:
		pattern = "Mixed/Diverse"
	case meanVariance > moderateVarianceThreshold:
		pattern = "Moderate Consensus"
	}

	return DiversityMetric{
		Pattern:  pattern,
		Variance: meanVariance,
		Note:     diversityNote,
	}
}

func meanDimensionVariance(embeddings [][]float64) float64 {
	if len(embeddings) == 0 || len(embeddings[0]) == 0 {
		return 0
	}

	n := float64(len(embeddings))
	dims := len(embeddings[0])

	totalVariance := 0.0
	for j := 0; j < dims; j++ {
		mean := 0.0
		for _, vector := range embeddings {
			mean += vector[j]
		}
		mean /= n

		variance := 0.0
		for _, vector := range embeddings {
			diff := vector[j] - mean
			variance += diff * diff
		}
		totalVariance += variance / n
	}

	return totalVariance / float64(dims)
}
