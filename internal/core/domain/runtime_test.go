package domain

import "testing"

func TestRuntimeConfigFlags(t *testing.T) {
	cfg := NewRuntimeConfig("redis", "postgres", true)

	if cfg.LockBackend != "redis" || cfg.QueueBackend != "postgres" || !cfg.CacheEnabled {
		t.Errorf("static config not preserved: %+v", cfg)
	}
	if cfg.CanAnalyze() {
		t.Error("analysis should start unavailable")
	}
	if cfg.CanEmbedClauses() {
		t.Error("embedding should start unavailable")
	}

	cfg.SetAnalysisAvailable(true)
	cfg.SetEmbeddingAvailable(true)
	if !cfg.CanAnalyze() || !cfg.CanEmbedClauses() {
		t.Error("flags should flip on")
	}

	cfg.SetAnalysisAvailable(false)
	if cfg.CanAnalyze() {
		t.Error("analysis flag should flip off")
	}
}
