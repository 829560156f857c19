package semantic

import (
	"math"
	"sort"
)

// similarityThreshold is the minimum cosine similarity for two comments
// to count as near-duplicates.
const similarityThreshold = 0.7

// SimilarPair is a near-duplicate comment pair. Pairs are unique by
// unordered index with the lower-indexed comment first.
type SimilarPair struct {
	CommentA   string  `json:"comment1" jsonschema:"description=First comment of the pair, truncated to 150 characters"`
	CommentB   string  `json:"comment2" jsonschema:"description=Second comment of the pair, truncated to 150 characters"`
	Similarity float64 `json:"similarity" jsonschema:"description=Cosine similarity of the pair, in [-1, 1]"`
}

// RankedResult is one candidate ranked against a query text.
type RankedResult struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
	Rank       int     `json:"rank"`
}

// FindSimilarPairs scans every unordered pair (i, j), i < j, and keeps
// those with cosine similarity at or above threshold, sorted by
// similarity descending. The scan streams one row at a time and only
// qualifying pairs are retained, so memory stays proportional to the
// output rather than the full N x N similarity matrix.
func FindSimilarPairs(comments []string, embeddings [][]float64, threshold float64) []SimilarPair {
	var pairs []SimilarPair

	for i := 0; i < len(comments); i++ {
		for j := i + 1; j < len(comments); j++ {
			similarity := cosineSimilarity(embeddings[i], embeddings[j])
			if similarity >= threshold {
				pairs = append(pairs, SimilarPair{
					CommentA:   truncateText(comments[i], 150),
					CommentB:   truncateText(comments[j], 150),
					Similarity: similarity,
				})
			}
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].Similarity > pairs[b].Similarity
	})

	return pairs
}

// RankCandidates orders candidates by cosine similarity to the query
// embedding, descending, with 1-based ranks assigned in sorted order.
func RankCandidates(query []float64, candidates []string, embeddings [][]float64) []RankedResult {
	results := make([]RankedResult, len(candidates))
	for i, text := range candidates {
		results[i] = RankedResult{
			Text:       text,
			Similarity: cosineSimilarity(query, embeddings[i]),
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Similarity > results[b].Similarity
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	return results
}

// cosineSimilarity calculates cosine similarity between two vectors.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}

	dotProduct := 0.0
	normA := 0.0
	normB := 0.0

	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// truncateText cuts s to at most max characters (runes, since comments
// are user text in arbitrary scripts).
func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
