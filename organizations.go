package semantic

import "strings"

// OrganizationProfile summarizes one organization's comments.
type OrganizationProfile struct {
	CommentCount   int      `json:"comment_count" jsonschema:"description=Number of comments from this organization"`
	CoherenceScore float64  `json:"coherence_score" jsonschema:"description=Mean pairwise cosine similarity within the organization, in [-1, 1]"`
	TopKeywords    []string `json:"top_keywords" jsonschema:"description=Up to 5 keywords ranked by frequency"`
}

// AnalyzeByOrganization groups comments by their organization label and
// computes a profile per organization. The slices must be parallel;
// callers validate lengths before getting here. Empty and
// whitespace-only labels are skipped (earlier revisions of the service
// disagreed on this; skipping is the canonical behavior). The coherence
// score is the mean of the strictly-upper-triangular entries of the
// intra-group cosine similarity matrix, or exactly 1.0 when there is
// nothing to compare.
func AnalyzeByOrganization(comments, organizations []string, embeddings [][]float64) map[string]OrganizationProfile {
	groups := make(map[string][]int)
	for i, org := range organizations {
		if strings.TrimSpace(org) == "" {
			continue
		}
		groups[org] = append(groups[org], i)
	}

	insights := make(map[string]OrganizationProfile, len(groups))
	for org, indices := range groups {
		orgComments := make([]string, len(indices))
		for i, idx := range indices {
			orgComments[i] = comments[idx]
		}

		insights[org] = OrganizationProfile{
			CommentCount:   len(indices),
			CoherenceScore: coherenceScore(indices, embeddings),
			TopKeywords:    ExtractKeywords(orgComments, 5),
		}
	}

	return insights
}

// coherenceScore averages cosine similarity over all unordered pairs in
// the group. A single comment has no pair to compare, so it scores 1.0.
func coherenceScore(indices []int, embeddings [][]float64) float64 {
	if len(indices) <= 1 {
		return 1.0
	}

	total := 0.0
	pairs := 0
	for a := 0; a < len(indices); a++ {
		for b := a + 1; b < len(indices); b++ {
			total += cosineSimilarity(embeddings[indices[a]], embeddings[indices[b]])
			pairs++
		}
	}

	return total / float64(pairs)
}
