package config

import (
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Indexing.Mode != "pooled" {
		t.Errorf("Expected mode 'pooled', got '%s'", cfg.Indexing.Mode)
	}
	if cfg.Indexing.Concurrency != 200 {
		t.Errorf("Expected concurrency 200, got %d", cfg.Indexing.Concurrency)
	}
	if cfg.Indexing.ChunkSize != 500 {
		t.Errorf("Expected chunk size 500, got %d", cfg.Indexing.ChunkSize)
	}
	if cfg.Indexing.Retry.MaxAttempts != 4 {
		t.Errorf("Expected 4 retry attempts, got %d", cfg.Indexing.Retry.MaxAttempts)
	}
	if cfg.Indexing.Retry.BaseDelayMs != 500 {
		t.Errorf("Expected base delay 500ms, got %d", cfg.Indexing.Retry.BaseDelayMs)
	}
	if cfg.Face.QualityFilter != "AUTO" {
		t.Errorf("Expected quality filter AUTO, got '%s'", cfg.Face.QualityFilter)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INDEX_CONCURRENCY", "8")
	t.Setenv("INDEX_CHUNK_SIZE", "100")
	t.Setenv("INDEX_MODE", "chunked")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")

	cfg := Load()

	if cfg.Indexing.Concurrency != 8 {
		t.Errorf("Expected concurrency 8, got %d", cfg.Indexing.Concurrency)
	}
	if cfg.Indexing.ChunkSize != 100 {
		t.Errorf("Expected chunk size 100, got %d", cfg.Indexing.ChunkSize)
	}
	if cfg.Indexing.Mode != "chunked" {
		t.Errorf("Expected mode 'chunked', got '%s'", cfg.Indexing.Mode)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("Expected 10 max open conns, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestEnvIntInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"empty", "", 42},
		{"garbage", "abc", 42},
		{"negative", "-5", 42},
		{"zero", "0", 42},
		{"valid", "7", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.value)
			if got := envInt("TEST_ENV_INT", 42); got != tt.want {
				t.Errorf("envInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}
