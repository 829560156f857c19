package semantic

import (
	"context"
	"math"
	"strings"
)

// bowEmbedder is a deterministic bag-of-words embedder for tests. It
// grows a shared vocabulary across Encode calls and returns L2
// normalized term-frequency vectors, so related texts score high cosine
// similarity without any network access.
type bowEmbedder struct {
	vocab map[string]int
	dim   int
}

func newBOWEmbedder() *bowEmbedder {
	return &bowEmbedder{vocab: make(map[string]int)}
}

func (b *bowEmbedder) ModelName() string {
	return "bow-test-embedder"
}

func (b *bowEmbedder) ProviderType() string {
	return "Bag of Words"
}

func (b *bowEmbedder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	// First pass grows the vocabulary so every vector in this batch
	// shares one dimensionality.
	for _, text := range texts {
		for _, token := range bowTokenize(text) {
			if _, ok := b.vocab[token]; !ok {
				b.vocab[token] = b.dim
				b.dim++
			}
		}
	}

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vector := make([]float64, b.dim)
		for _, token := range bowTokenize(text) {
			vector[b.vocab[token]]++
		}

		norm := 0.0
		for _, v := range vector {
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range vector {
				vector[j] /= norm
			}
		}
		vectors[i] = vector
	}

	return vectors, nil
}

func bowTokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		token := strings.Trim(field, ".,!?;:")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// fixedEmbedder returns pre-baked vectors keyed by text; it fails the
// shape checks on purpose when a text is missing.
type fixedEmbedder struct {
	vectors map[string][]float64
	model   string
}

func (f *fixedEmbedder) ModelName() string {
	if f.model == "" {
		return "fixed-test-embedder"
	}
	return f.model
}

func (f *fixedEmbedder) ProviderType() string {
	return "Fixed"
}

func (f *fixedEmbedder) Encode(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i] = f.vectors[text]
	}
	return out, nil
}
