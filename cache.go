package semantic

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// CachedEmbedder wraps an Embedder with a sqlite-backed cache. The
// provider contract is deterministic for a pinned model, so a vector
// computed once for a given (model, text) pair never goes stale;
// repeated analyses of the same upload skip inference entirely.
type CachedEmbedder struct {
	inner Embedder
	db    *sql.DB
}

// NewCachedEmbedder opens (or creates) the cache database at path.
func NewCachedEmbedder(path string, inner Embedder) (*CachedEmbedder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS embeddings (
		cache_key TEXT PRIMARY KEY,
		model TEXT NOT NULL,
		embedding_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_model ON embeddings(model);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Failed to close cache database: %v", closeErr)
		}
		return nil, err
	}

	return &CachedEmbedder{inner: inner, db: db}, nil
}

// Close releases the cache database handle.
func (c *CachedEmbedder) Close() error {
	return c.db.Close()
}

func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

func (c *CachedEmbedder) ProviderType() string {
	return c.inner.ProviderType()
}

// Encode returns cached vectors where available and asks the inner
// provider for the rest in one batched call, preserving input order.
func (c *CachedEmbedder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float64, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		vector, err := c.lookup(ctx, cacheKey(c.ModelName(), text))
		if err != nil {
			return nil, fmt.Errorf("cache lookup failed: %w", err)
		}
		if vector != nil {
			vectors[i] = vector
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("provider returned %d vectors for %d inputs", len(fresh), len(missing))
	}

	for j, vector := range fresh {
		i := missingIdx[j]
		vectors[i] = vector
		if err := c.store(ctx, cacheKey(c.ModelName(), texts[i]), vector); err != nil {
			// Cache writes are best-effort; the analysis still has its vector.
			log.Printf("Failed to cache embedding: %v", err)
		}
	}

	return vectors, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float64, error) {
	var embeddingJSON string
	err := c.db.QueryRowContext(ctx,
		"SELECT embedding_json FROM embeddings WHERE cache_key = ?", key,
	).Scan(&embeddingJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var vector []float64
	if err := json.Unmarshal([]byte(embeddingJSON), &vector); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	return vector, nil
}

func (c *CachedEmbedder) store(ctx context.Context, key string, vector []float64) error {
	embeddingJSON, err := json.Marshal(vector)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO embeddings (cache_key, model, embedding_json) VALUES (?, ?, ?)",
		key, c.ModelName(), string(embeddingJSON),
	)
	return err
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
