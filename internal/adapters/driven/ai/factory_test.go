package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven"
)

func TestFactory_CreateAnalysisService_Unconfigured(t *testing.T) {
	f := NewFactory()

	svc, err := f.CreateAnalysisService(nil)
	if err != nil || svc != nil {
		t.Errorf("nil settings should yield nil, nil; got %v, %v", svc, err)
	}

	svc, err = f.CreateAnalysisService(&driven.AISettings{})
	if err != nil || svc != nil {
		t.Errorf("empty settings should yield nil, nil; got %v, %v", svc, err)
	}
}

func TestFactory_CreateAnalysisService_OpenAI(t *testing.T) {
	f := NewFactory()

	svc, err := f.CreateAnalysisService(&driven.AISettings{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected a service")
	}
	if svc.Model() != "gpt-4o" {
		t.Errorf("default model = %s, want gpt-4o", svc.Model())
	}
}

func TestFactory_CreateAnalysisService_UnknownProvider(t *testing.T) {
	f := NewFactory()

	_, err := f.CreateAnalysisService(&driven.AISettings{
		Provider: "clairvoyance",
		APIKey:   "sk-test",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("err = %v, want ErrInvalidProvider", err)
	}
}

func TestFactory_CreateEmbeddingService_OpenAI(t *testing.T) {
	f := NewFactory()

	svc, err := f.CreateEmbeddingService(&driven.AISettings{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test",
		Model:    "text-embedding-3-large",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Dimensions() != 3072 {
		t.Errorf("dimensions = %d, want 3072", svc.Dimensions())
	}
}

func TestFactory_CreateEmbeddingService_UnknownProvider(t *testing.T) {
	f := NewFactory()

	_, err := f.CreateEmbeddingService(&driven.AISettings{
		Provider: "semaphore",
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("err = %v, want ErrInvalidProvider", err)
	}
}
