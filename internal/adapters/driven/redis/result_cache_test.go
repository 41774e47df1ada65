package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/lexcore/internal/core/domain"
	"github.com/custodia-labs/lexcore/internal/core/ports/driven/mocks"
)

func newTestCache(t *testing.T) (*ResultCache, *mocks.MockAnalysisResultStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	backing := mocks.NewMockAnalysisResultStore()
	return NewResultCache(client, backing, time.Hour, nil), backing, mr
}

func sampleResult(documentID string, kind domain.AnalysisKind) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		DocumentID: documentID,
		Kind:       kind,
		Payload:    []byte(`{"entities":[]}`),
		CreatedAt:  time.Now().Truncate(time.Second),
	}
}

func TestResultCacheWriteThrough(t *testing.T) {
	cache, backing, _ := newTestCache(t)
	ctx := context.Background()

	_, committed, err := cache.Store(ctx, sampleResult("doc-1", domain.KindExtraction))
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !committed {
		t.Error("first write should commit")
	}

	// The durable copy exists regardless of the cache.
	if _, err := backing.GetCached(ctx, "doc-1", domain.KindExtraction); err != nil {
		t.Errorf("backing store should hold the result: %v", err)
	}

	// A second writer loses the race and gets the winner back.
	_, committed, err = cache.Store(ctx, sampleResult("doc-1", domain.KindExtraction))
	if err != nil {
		t.Fatalf("second Store failed: %v", err)
	}
	if committed {
		t.Error("second write should not commit")
	}
}

func TestResultCacheReadThrough(t *testing.T) {
	cache, backing, mr := newTestCache(t)
	ctx := context.Background()

	backing.Seed(sampleResult("doc-1", domain.KindRisk))

	// First read misses Redis and falls back to the backing store.
	res, err := cache.GetCached(ctx, "doc-1", domain.KindRisk)
	if err != nil {
		t.Fatalf("GetCached failed: %v", err)
	}
	if res.DocumentID != "doc-1" || res.Kind != domain.KindRisk {
		t.Errorf("unexpected result: %+v", res)
	}

	// The read repopulated Redis.
	if !mr.Exists(resultKey("doc-1", domain.KindRisk)) {
		t.Error("read-through should repopulate the cache")
	}

	// Second read is served from Redis even if the backing store breaks.
	backing.GetCachedErr = errors.New("database down")
	if _, err := cache.GetCached(ctx, "doc-1", domain.KindRisk); err != nil {
		t.Errorf("cached read should not touch the backing store: %v", err)
	}
}

func TestResultCacheMiss(t *testing.T) {
	cache, _, _ := newTestCache(t)

	_, err := cache.GetCached(context.Background(), "doc-1", domain.KindJurisdiction)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResultCacheSupersedeInvalidates(t *testing.T) {
	cache, backing, mr := newTestCache(t)
	ctx := context.Background()

	if _, _, err := cache.Store(ctx, sampleResult("doc-1", domain.KindExtraction)); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(resultKey("doc-1", domain.KindExtraction)) {
		t.Fatal("store should populate the cache")
	}

	if err := cache.Supersede(ctx, "doc-1", domain.KindExtraction); err != nil {
		t.Fatalf("Supersede failed: %v", err)
	}

	if mr.Exists(resultKey("doc-1", domain.KindExtraction)) {
		t.Error("supersede should invalidate the cache entry")
	}
	if _, err := backing.GetCached(ctx, "doc-1", domain.KindExtraction); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("durable copy should be gone, got %v", err)
	}
}

func TestResultCacheDeleteByDocument(t *testing.T) {
	cache, _, mr := newTestCache(t)
	ctx := context.Background()

	for _, kind := range domain.AllKinds() {
		if _, _, err := cache.Store(ctx, sampleResult("doc-1", kind)); err != nil {
			t.Fatal(err)
		}
	}

	if err := cache.DeleteByDocument(ctx, "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument failed: %v", err)
	}
	for _, kind := range domain.AllKinds() {
		if mr.Exists(resultKey("doc-1", kind)) {
			t.Errorf("cache entry for %s should be gone", kind)
		}
	}
}

func TestResultCacheCorruptEntryFallsBack(t *testing.T) {
	cache, backing, mr := newTestCache(t)
	ctx := context.Background()

	backing.Seed(sampleResult("doc-1", domain.KindRisk))
	mr.Set(resultKey("doc-1", domain.KindRisk), "not json")

	res, err := cache.GetCached(ctx, "doc-1", domain.KindRisk)
	if err != nil {
		t.Fatalf("corrupt cache entry should fall back to the store: %v", err)
	}
	if res.DocumentID != "doc-1" {
		t.Errorf("unexpected result: %+v", res)
	}
}
