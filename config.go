package semantic

import (
	"fmt"
	"os"
	"time"

	"github.com/sosodev/duration"
)

// Config holds all service settings. It is built once from the
// environment in LoadConfig and passed explicitly to whatever needs it;
// there is no ambient package-level state.
type Config struct {
	OpenAIAPIKey   string
	EmbeddingModel string
	ListenAddr     string
	EmbedTimeout   time.Duration
	CachePath      string // path to the sqlite embedding cache; empty disables caching
	ReportDir      string
}

// LoadConfig reads settings from environment variables. OPENAI_API_KEY
// is required; everything else has a default.
func LoadConfig() (Config, error) {
	cfg := Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: envOr("EMBEDDING_MODEL", "text-embedding-3-large"),
		ListenAddr:     envOr("LISTEN_ADDR", ":5001"),
		CachePath:      "embeddings.db",
		ReportDir:      envOr("REPORT_DIR", "."),
	}

	// EMBEDDING_CACHE distinguishes set-but-empty from unset: unset
	// means the default path, an explicitly empty value disables
	// caching.
	if path, ok := os.LookupEnv("EMBEDDING_CACHE"); ok {
		cfg.CachePath = path
	}

	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("missing required environment variable: OPENAI_API_KEY")
	}

	timeout, err := parseTimeout(envOr("EMBED_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid EMBED_TIMEOUT: %w", err)
	}
	cfg.EmbedTimeout = timeout

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parseTimeout accepts both Go duration strings ("90s", "2m") and
// ISO-8601 durations ("PT90S"). The deploy tooling on the frontend side
// templates env files with ISO-8601 values.
func parseTimeout(value string) (time.Duration, error) {
	if d, err := time.ParseDuration(value); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %q", value)
		}
		return d, nil
	}

	iso, err := duration.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as Go or ISO-8601 duration", value)
	}
	d := iso.ToTimeDuration()
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", value)
	}
	return d, nil
}
