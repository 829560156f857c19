package semantic

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Embedder turns a batch of texts into fixed-dimension vectors. The
// whole batch goes out in a single call and the returned slice is
// parallel to the input: vector i belongs to text i, always.
// Implementations must be deterministic for a pinned model version and
// safe for concurrent use.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float64, error)
	ModelName() string
	// ProviderType names the kind of provider for the model_info
	// payload, e.g. "OpenAI".
	ProviderType() string
}

// openaiEmbedder calls the OpenAI embeddings API.
type openaiEmbedder struct {
	client openai.Client
	model  string
}

// NewOpenAIEmbedder creates an Embedder backed by the OpenAI API. Rate
// limit retries are handled by the SDK.
func NewOpenAIEmbedder(apiKey, model string) Embedder {
	return &openaiEmbedder{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithMaxRetries(5),
		),
		model: model,
	}
}

func (e *openaiEmbedder) ModelName() string {
	return e.model
}

func (e *openaiEmbedder) ProviderType() string {
	return "OpenAI"
}

func (e *openaiEmbedder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// Address vectors by the index the API reports rather than response
	// order; inputs must never be reordered.
	vectors := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("no embedding data for input %d", i)
		}
	}

	return vectors, nil
}

// NewEmbedderFromConfig builds the configured provider, wrapping it in
// the sqlite cache unless caching is disabled. The returned close
// function releases the cache handle and is safe to call when caching
// is off.
func NewEmbedderFromConfig(cfg Config) (Embedder, func() error, error) {
	embedder := NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if cfg.CachePath == "" {
		return embedder, func() error { return nil }, nil
	}

	cached, err := NewCachedEmbedder(cfg.CachePath, embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedding cache: %w", err)
	}
	return cached, cached.Close, nil
}
