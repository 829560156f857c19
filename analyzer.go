package semantic

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// maxSimilarPairs caps how many near-duplicate pairs the analysis
// response carries; the finder itself returns the complete sorted list.
const maxSimilarPairs = 20

// defaultClusterCount is used by ClusterTexts when the caller does not
// supply an explicit cluster count.
const defaultClusterCount = 5

// Analyzer runs the full semantic pipeline against an embedding
// provider. The provider handle is created once at startup and shared
// read-only, so an Analyzer is safe for concurrent requests; nothing
// computed here outlives a single call.
type Analyzer struct {
	embedder Embedder
}

func NewAnalyzer(embedder Embedder) *Analyzer {
	return &Analyzer{embedder: embedder}
}

// ModelInfo describes the embedding provider used for an analysis.
type ModelInfo struct {
	Name               string `json:"name" jsonschema:"description=Embedding model identifier"`
	Type               string `json:"type" jsonschema:"description=Provider type"`
	EmbeddingDimension int    `json:"embedding_dimension" jsonschema:"description=Length of each embedding vector"`
}

// AnalyzeResult is the full output of one pipeline invocation.
type AnalyzeResult struct {
	TotalComments         int                            `json:"total_comments" jsonschema:"description=Number of comments analyzed"`
	TotalOrganizations    int                            `json:"total_organizations" jsonschema:"description=Number of distinct organization labels supplied"`
	Themes                []Theme                        `json:"themes" jsonschema:"description=Theme clusters sorted by member count descending"`
	OrganizationInsights  map[string]OrganizationProfile `json:"organization_insights" jsonschema:"description=Per-organization profiles keyed by organization label"`
	SimilarCommentPairs   []SimilarPair                  `json:"similar_comment_pairs" jsonschema:"description=Up to 20 near-duplicate comment pairs sorted by similarity descending"`
	SentimentDistribution DiversityMetric                `json:"sentiment_distribution" jsonschema:"description=Consensus/diversity proxy over embedding variance"`
	ModelInfo             ModelInfo                      `json:"model_info"`
}

// Analyze runs the whole pipeline for one batch: a single embedding
// call, then clustering, theme building, organization profiles,
// near-duplicate detection and the diversity signal, all over the same
// shared read-only embedding matrix.
func (a *Analyzer) Analyze(ctx context.Context, comments, organizations []string) (*AnalyzeResult, error) {
	if len(comments) == 0 {
		return nil, validationErrorf("no comments provided")
	}
	if len(organizations) > 0 && len(organizations) != len(comments) {
		return nil, validationErrorf("comments and organizations must have the same length, got %d and %d",
			len(comments), len(organizations))
	}

	embeddings, err := a.encode(ctx, comments)
	if err != nil {
		return nil, err
	}

	data := denseFromRows(embeddings)
	clustering, err := KMeans(data, ClusterCount(len(comments)))
	if err != nil {
		return nil, &ComputationError{Stage: "clustering", Err: err}
	}

	pairs := FindSimilarPairs(comments, embeddings, similarityThreshold)
	if len(pairs) > maxSimilarPairs {
		pairs = pairs[:maxSimilarPairs]
	}

	return &AnalyzeResult{
		TotalComments:         len(comments),
		TotalOrganizations:    distinctCount(organizations),
		Themes:                BuildThemes(comments, embeddings, clustering),
		OrganizationInsights:  AnalyzeByOrganization(comments, organizations, embeddings),
		SimilarCommentPairs:   pairs,
		SentimentDistribution: AnalyzeSentimentPatterns(embeddings),
		ModelInfo: ModelInfo{
			Name:               a.embedder.ModelName(),
			Type:               a.embedder.ProviderType(),
			EmbeddingDimension: len(embeddings[0]),
		},
	}, nil
}

// ClusterTexts is the ad-hoc exploration entry point: raw cluster
// labels only, no theme naming. An explicitly supplied nClusters is
// honored (capped at the batch size); zero or negative means the
// default. Returns the labels and the effective cluster count.
func (a *Analyzer) ClusterTexts(ctx context.Context, texts []string, nClusters int) ([]int, int, error) {
	if len(texts) == 0 {
		return nil, 0, validationErrorf("no texts provided")
	}
	if nClusters <= 0 {
		nClusters = defaultClusterCount
	}

	embeddings, err := a.encode(ctx, texts)
	if err != nil {
		return nil, 0, err
	}

	clustering, err := KMeans(denseFromRows(embeddings), nClusters)
	if err != nil {
		return nil, 0, &ComputationError{Stage: "clustering", Err: err}
	}

	return clustering.Assignments, clustering.K, nil
}

// RankBySimilarity embeds the query together with the candidates in one
// batch and returns the candidates ordered by cosine similarity to the
// query, descending, with 1-based ranks.
func (a *Analyzer) RankBySimilarity(ctx context.Context, query string, candidates []string) ([]RankedResult, error) {
	if query == "" || len(candidates) == 0 {
		return nil, validationErrorf("query and candidates required")
	}

	batch := make([]string, 0, len(candidates)+1)
	batch = append(batch, query)
	batch = append(batch, candidates...)

	embeddings, err := a.encode(ctx, batch)
	if err != nil {
		return nil, err
	}

	return RankCandidates(embeddings[0], candidates, embeddings[1:]), nil
}

// encode runs the single batched embedding call and validates the
// resulting matrix shape. Provider failure is unrecoverable for the
// request; there are no partial results.
func (a *Analyzer) encode(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings, err := a.embedder.Encode(ctx, texts)
	if err != nil {
		return nil, &ComputationError{Stage: "embedding", Err: err}
	}
	if len(embeddings) != len(texts) {
		return nil, &ComputationError{
			Stage: "embedding",
			Err:   fmt.Errorf("provider returned %d vectors for %d texts", len(embeddings), len(texts)),
		}
	}

	dims := len(embeddings[0])
	if dims == 0 {
		return nil, &ComputationError{Stage: "embedding", Err: fmt.Errorf("provider returned empty vectors")}
	}
	for i, vector := range embeddings {
		if len(vector) != dims {
			return nil, &ComputationError{
				Stage: "embedding",
				Err:   fmt.Errorf("vector %d has dimension %d, expected %d", i, len(vector), dims),
			}
		}
	}

	return embeddings, nil
}

// denseFromRows packs row vectors into a gonum matrix for clustering.
func denseFromRows(rows [][]float64) *mat.Dense {
	data := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		data.SetRow(i, row)
	}
	return data
}

func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
