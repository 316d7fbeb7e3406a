package cache_test

import (
	"context"
	"testing"
	"time"

	"jobpulse/search-service/internal/cache"
	"jobpulse/search-service/internal/model"
)

// ── Key derivation ─────────────────────────────────────────────────────────

func TestKey_Deterministic(t *testing.T) {
	min := 50000
	f := model.Filters{Location: "Austin", Remote: true, SalaryMin: &min}

	k1 := cache.Key(model.CategoryJobs, "data scientist", f)
	k2 := cache.Key(model.CategoryJobs, "data scientist", f)
	if k1 != k2 {
		t.Errorf("identical inputs produced different keys: %s vs %s", k1, k2)
	}
	if len(k1) != 32 {
		t.Errorf("key should be a 32-char md5 hex digest, got %d chars", len(k1))
	}
}

func TestKey_NormalizesQuery(t *testing.T) {
	f := model.Filters{}
	k1 := cache.Key(model.CategoryJobs, "Data Scientist", f)
	k2 := cache.Key(model.CategoryJobs, "  data scientist  ", f)
	if k1 != k2 {
		t.Error("query normalisation should make case/whitespace variants collide")
	}
}

func TestKey_DistinguishesInputs(t *testing.T) {
	f := model.Filters{}
	base := cache.Key(model.CategoryJobs, "engineer", f)

	if got := cache.Key(model.CategoryGeneral, "engineer", f); got == base {
		t.Error("different categories must yield different keys")
	}
	if got := cache.Key(model.CategoryJobs, "designer", f); got == base {
		t.Error("different queries must yield different keys")
	}
	if got := cache.Key(model.CategoryJobs, "engineer", model.Filters{JobType: "remote"}); got == base {
		t.Error("different filters must yield different keys")
	}
}

// ── Memory backend ─────────────────────────────────────────────────────────

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	s.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := s.Get(ctx, "k")
	if !ok {
		t.Fatal("expected hit for freshly written key")
	}
	if string(got) != "v" {
		t.Errorf("Get returned %q, want %q", got, "v")
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	s := cache.NewMemoryStore()
	if _, ok := s.Get(context.Background(), "absent"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	s.Set(ctx, "a", []byte("1"), time.Minute)
	s.Set(ctx, "b", []byte("2"), time.Minute)
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear returned unexpected error: %v", err)
	}

	if n, backend := s.Stats(ctx); n != 0 || backend != "memory" {
		t.Errorf("Stats after Clear = (%d, %s), want (0, memory)", n, backend)
	}
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := cache.NewMemoryStore()

	s.Set(ctx, "k", []byte("old"), time.Minute)
	s.Set(ctx, "k", []byte("new"), time.Minute)

	got, ok := s.Get(ctx, "k")
	if !ok || string(got) != "new" {
		t.Errorf("Get after overwrite = (%q, %v), want (new, true)", got, ok)
	}
	if n, _ := s.Stats(ctx); n != 1 {
		t.Errorf("overwrite should not grow the map, count=%d", n)
	}
}
