package websearch

// Client tests run against an httptest server, so they override the private
// baseURL and live inside the package.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(srv *httptest.Server) *Client {
	c := NewClient("test-key", "example.invalid")
	c.baseURL = srv.URL
	c.client = srv.Client()
	return c
}

func TestSearch_NormalizesHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-RapidAPI-Key"); got != "test-key" {
			t.Errorf("X-RapidAPI-Key header = %q, want test-key", got)
		}
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("q param = %q, want golang", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"title": "A", "url": "https://a.example.com", "snippet": "s1"},
				{"title": "B", "link": "https://b.example.com", "description": "s2"},
			},
		})
	}))
	defer srv.Close()

	results, err := testClient(srv).Search(context.Background(), "golang", 100)
	if err != nil {
		t.Fatalf("Search returned unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search returned %d results, want 2", len(results))
	}
	if results[1].URL != "https://b.example.com" {
		t.Errorf("link field should normalise into URL, got %q", results[1].URL)
	}
	if results[1].Snippet != "s2" {
		t.Errorf("description field should normalise into Snippet, got %q", results[1].Snippet)
	}
	if results[0].Type != "general" {
		t.Errorf("raw hits should be tagged type=general, got %q", results[0].Type)
	}
}

func TestSearch_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv).Search(context.Background(), "golang", 100); err == nil {
		t.Error("non-200 upstream status must surface as an error")
	}
}

func TestSearch_MissingKeySkips(t *testing.T) {
	c := NewClient("", "example.invalid")
	results, err := c.Search(context.Background(), "golang", 100)
	if err != nil {
		t.Errorf("missing key should skip gracefully, got error: %v", err)
	}
	if results != nil {
		t.Errorf("missing key should return nil results, got %d", len(results))
	}
}

func TestSearchJobs_MergesAndDeduplicates(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Primary call returns two hits; every supplemental call returns one
		// duplicate and one fresh hit.
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{
					{"title": "A", "url": "https://jobs.example.com/a"},
					{"title": "B", "url": "https://jobs.example.com/b"},
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"title": "A", "url": "https://jobs.example.com/a"},
				{"title": fmt.Sprintf("extra-%d", calls), "url": fmt.Sprintf("https://jobs.example.com/x%d", calls)},
			},
		})
	}))
	defer srv.Close()

	results, err := testClient(srv).SearchJobs(context.Background(), "go developer", "remote", 100, 3)
	if err != nil {
		t.Fatalf("SearchJobs returned unexpected error: %v", err)
	}
	if calls != 4 {
		t.Errorf("expected 1 primary + 3 supplemental calls, got %d", calls)
	}
	// 2 primary + 3 fresh supplemental hits; duplicates dropped.
	if len(results) != 5 {
		t.Errorf("SearchJobs returned %d results, want 5", len(results))
	}

	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.URL] {
			t.Errorf("duplicate URL in merged results: %s", r.URL)
		}
		seen[r.URL] = true
	}
}

func TestSearchJobs_ExtraCapHonoured(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"title": "hit", "url": fmt.Sprintf("https://jobs.example.com/%d", calls)},
			},
		})
	}))
	defer srv.Close()

	if _, err := testClient(srv).SearchJobs(context.Background(), "go", "", 100, 2); err != nil {
		t.Fatalf("SearchJobs returned unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("maxExtra=2 should mean 3 calls total, got %d", calls)
	}
}

func TestSearchJobs_EmptyPrimarySkipsSupplements(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer srv.Close()

	results, err := testClient(srv).SearchJobs(context.Background(), "go", "", 100, 3)
	if err != nil {
		t.Fatalf("SearchJobs returned unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if calls != 1 {
		t.Errorf("empty primary response should stop the cycle, got %d calls", calls)
	}
}

func TestSearchJobs_SupplementalFailureIsPartial(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"title": "A", "url": "https://jobs.example.com/a"},
			},
		})
	}))
	defer srv.Close()

	results, err := testClient(srv).SearchJobs(context.Background(), "go", "", 100, 3)
	if err != nil {
		t.Fatalf("supplemental failures must not fail the cycle: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the primary result to survive, got %d results", len(results))
	}
}
