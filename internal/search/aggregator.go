// Package search implements the aggregation pipeline: cache lookup, local
// store query, external fetch, merge/dedupe, classification and pagination.
package search

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"jobpulse/search-service/internal/cache"
	"jobpulse/search-service/internal/model"
	"jobpulse/search-service/internal/telemetry"
	"jobpulse/search-service/internal/websearch"
)

// CacheStore is the slice of the cache contract the aggregator needs.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// LocalFinder queries the persisted job table.
type LocalFinder interface {
	Find(ctx context.Context, query string, f model.Filters, page, pageSize int) ([]model.Job, int, error)
}

// ExternalSearcher fetches hits from the third-party search API.
type ExternalSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
	SearchJobs(ctx context.Context, query, jobType string, limit, maxExtra int) ([]model.SearchResult, error)
}

// Options carries the tuning knobs resolved at startup.
type Options struct {
	TTL             time.Duration
	ResultsPerPage  int
	MaxFetchResults int
	MaxExtraQueries int
}

// Aggregator orchestrates one search request end to end. All collaborators
// are injected once at startup; the aggregator itself is stateless.
type Aggregator struct {
	cache    CacheStore
	local    LocalFinder
	external ExternalSearcher
	opts     Options
}

// New returns a configured Aggregator.
func New(c CacheStore, local LocalFinder, external ExternalSearcher, opts Options) *Aggregator {
	return &Aggregator{cache: c, local: local, external: external, opts: opts}
}

// Request is one search invocation.
type Request struct {
	Query        string
	Category     model.Category
	Page         int
	Filters      model.Filters
	ForceRefresh bool
}

// Result is one page of classified results plus pagination metadata.
type Result struct {
	Results      []model.SearchResult `json:"results"`
	Total        int                  `json:"total"`
	TotalFetched int                  `json:"total_fetched"`
	Page         int                  `json:"page"`
	TotalPages   int                  `json:"total_pages"`
	PerPage      int                  `json:"results_per_page"`
	HasNext      bool                 `json:"has_next"`
	HasPrev      bool                 `json:"has_prev"`
	Cached       bool                 `json:"cached"`
}

// Search runs the pipeline: cache hit returns the stored bundle directly;
// on miss the local store is queried, supplemented from the external API
// when thin, merged with URL dedup, classified, cached and paginated.
//
// Upstream and cache failures degrade to fewer results; only a local store
// error propagates, to be mapped to a generic failure at the HTTP boundary.
func (a *Aggregator) Search(ctx context.Context, req Request) (*Result, error) {
	if req.Page < 1 {
		req.Page = 1
	}

	key := cache.Key(req.Category, req.Query, req.Filters)

	if !req.ForceRefresh {
		if raw, ok := a.cache.Get(ctx, key); ok {
			var bundle model.Bundle
			if err := json.Unmarshal(raw, &bundle); err == nil {
				telemetry.SearchesTotal.WithLabelValues(string(req.Category), "true").Inc()
				return a.paginate(&bundle, req.Page, true), nil
			}
			log.Printf("[search] corrupt cache entry %s — refetching", key)
		}
	}

	bundle, err := a.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(bundle); err == nil {
		a.cache.Set(ctx, key, raw, a.opts.TTL)
	}

	telemetry.SearchesTotal.WithLabelValues(string(req.Category), "false").Inc()
	return a.paginate(bundle, req.Page, false), nil
}

// fetch builds a fresh bundle: local rows verbatim, external hits appended
// when their normalised URL is unseen, externals classified for job
// searches.
func (a *Aggregator) fetch(ctx context.Context, req Request) (*model.Bundle, error) {
	local, _, err := a.local.Find(ctx, req.Query, req.Filters, 1, a.opts.MaxFetchResults)
	if err != nil {
		return nil, err
	}

	merged := make([]model.SearchResult, 0, len(local))
	seen := make(map[string]struct{}, len(local))
	for _, j := range local {
		r := j.ToResult()
		merged = append(merged, r)
		seen[normalizeURL(r.URL)] = struct{}{}
	}
	classified := append([]model.SearchResult(nil), merged...)

	// Supplement from upstream only when the local store came up thin.
	if len(local) < a.opts.ResultsPerPage {
		external := a.fetchExternal(ctx, req)

		appended := make([]model.SearchResult, 0, len(external))
		for _, r := range external {
			u := normalizeURL(r.URL)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			appended = append(appended, r)
		}
		merged = append(merged, appended...)

		// Local rows already satisfied the SQL filters; classification
		// narrows only the web hits.
		if req.Category == model.CategoryJobs {
			appended = websearch.Classify(appended, req.Filters.JobType)
		}
		classified = append(classified, appended...)
	}

	return &model.Bundle{
		AllResults: merged,
		Results:    classified,
		Timestamp:  time.Now().UTC(),
		Query:      req.Query,
		Category:   req.Category,
		Filters:    req.Filters,
	}, nil
}

// fetchExternal runs at most one upstream fetch cycle. Failures are logged
// and reported as an empty set — the request is served from whatever the
// local store produced.
func (a *Aggregator) fetchExternal(ctx context.Context, req Request) []model.SearchResult {
	var (
		results []model.SearchResult
		err     error
	)
	if req.Category == model.CategoryJobs {
		results, err = a.external.SearchJobs(ctx, req.Query, req.Filters.JobType,
			a.opts.MaxFetchResults, a.opts.MaxExtraQueries)
	} else {
		results, err = a.external.Search(ctx, req.Query, a.opts.MaxFetchResults)
	}
	if err != nil {
		telemetry.ExternalCallsTotal.WithLabelValues("error").Inc()
		log.Printf("[search] external fetch for %q failed: %v — serving local results only", req.Query, err)
		return nil
	}
	telemetry.ExternalCallsTotal.WithLabelValues("ok").Inc()
	return results
}

// paginate slices the classified list. Out-of-range pages yield an empty
// slice, never an error.
func (a *Aggregator) paginate(bundle *model.Bundle, page int, cached bool) *Result {
	total := len(bundle.Results)
	perPage := a.opts.ResultsPerPage
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	var pageResults []model.SearchResult
	switch {
	case start >= total:
		pageResults = []model.SearchResult{}
	case end > total:
		pageResults = bundle.Results[start:total]
	default:
		pageResults = bundle.Results[start:end]
	}

	return &Result{
		Results:      pageResults,
		Total:        total,
		TotalFetched: len(bundle.AllResults),
		Page:         page,
		TotalPages:   totalPages,
		PerPage:      perPage,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
		Cached:       cached,
	}
}

// normalizeURL lowercases and strips the trailing slash from a dedup key.
func normalizeURL(u string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(u)), "/")
}
