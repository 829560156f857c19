package semantic

import (
	"os"
	"testing"
	"time"
)

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"60s", 60 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"PT90S", 90 * time.Second, false},
		{"PT2M", 2 * time.Minute, false},
		{"PT1H", time.Hour, false},
		{"0s", 0, true},
		{"-5s", 0, true},
		{"ninety", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimeout(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseTimeout(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("parseTimeout(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("EMBED_TIMEOUT", "")
	t.Setenv("REPORT_DIR", "")

	// t.Setenv registers the restore; unset so the default applies.
	t.Setenv("EMBEDDING_CACHE", "placeholder")
	os.Unsetenv("EMBEDDING_CACHE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.OpenAIAPIKey != "sk-test" {
		t.Errorf("api key = %q", cfg.OpenAIAPIKey)
	}
	if cfg.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("model = %q", cfg.EmbeddingModel)
	}
	if cfg.ListenAddr != ":5001" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.EmbedTimeout != 60*time.Second {
		t.Errorf("timeout = %v", cfg.EmbedTimeout)
	}
	if cfg.CachePath != "embeddings.db" {
		t.Errorf("cache path = %q", cfg.CachePath)
	}
	if cfg.ReportDir != "." {
		t.Errorf("report dir = %q", cfg.ReportDir)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_MODEL", "text-embedding-3-small")
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("EMBED_TIMEOUT", "PT2M")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("model = %q", cfg.EmbeddingModel)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.EmbedTimeout != 2*time.Minute {
		t.Errorf("timeout = %v", cfg.EmbedTimeout)
	}
}

func TestLoadConfigEmptyCacheDisablesCaching(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_CACHE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CachePath != "" {
		t.Errorf("empty EMBEDDING_CACHE should disable caching, got %q", cfg.CachePath)
	}
}

func TestLoadConfigCustomCachePath(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_CACHE", "/var/cache/embeddings.db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CachePath != "/var/cache/embeddings.db" {
		t.Errorf("cache path = %q", cfg.CachePath)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMBED_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid EMBED_TIMEOUT")
	}
}
