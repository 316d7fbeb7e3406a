// Package websearch implements the third-party search API client and the
// heuristics that classify raw web hits as job postings.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobpulse/search-service/internal/model"
)

const (
	searchTimeout     = 15 * time.Second
	supplementTimeout = 10 * time.Second // narrower supplemental calls
	supplementLimit   = 50
	maxCombined       = 300 // stop issuing supplemental queries past this
)

// Client queries the RapidAPI real-time web search endpoint.
// If APIKey is empty, Search returns (nil, nil) gracefully — callers simply
// see an empty upstream and serve local results only.
type Client struct {
	APIKey  string
	Host    string
	baseURL string
	client  *http.Client
}

// NewClient constructs a client with a shared HTTP client.
func NewClient(apiKey, host string) *Client {
	return &Client{
		APIKey:  apiKey,
		Host:    host,
		baseURL: "https://" + host,
		client:  &http.Client{Timeout: searchTimeout},
	}
}

// Configured reports whether an API key is present (health endpoint).
func (c *Client) Configured() bool { return c.APIKey != "" }

// searchResponse mirrors the top-level upstream JSON response.
type searchResponse struct {
	Data []rawHit `json:"data"`
}

// rawHit mirrors a single upstream hit. Every field is optional; url/link
// and snippet/description are interchangeable aliases in practice.
type rawHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Domain      string `json:"domain"`
	Date        string `json:"date"`
}

func (h rawHit) normalize() model.SearchResult {
	u := h.URL
	if u == "" {
		u = h.Link
	}
	snippet := h.Snippet
	if snippet == "" {
		snippet = h.Description
	}
	return model.SearchResult{
		Title:   h.Title,
		URL:     u,
		Snippet: snippet,
		Source:  h.Source,
		Domain:  h.Domain,
		Date:    h.Date,
		Type:    "general",
	}
}

// Search issues a single GET for query and normalises the hits.
// At most one attempt: non-200 and transport errors are returned as-is and
// treated as an empty result set by callers — no retry, no backoff.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	if c.APIKey == "" {
		log.Println("[websearch] RAPID_API_KEY not set — skipping upstream search")
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.Host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	results := make([]model.SearchResult, 0, len(apiResp.Data))
	for _, h := range apiResp.Data {
		results = append(results, h.normalize())
	}
	return results, nil
}

// SearchJobs runs the job-category fetch cycle: one augmented primary query,
// then up to maxExtra supplemental queries (careers/hiring/employment
// variants), merged with URL dedup and capped at maxCombined results.
// Supplemental failures are logged and skipped — partial results win over
// none.
func (c *Client) SearchJobs(ctx context.Context, query, jobType string, limit, maxExtra int) ([]model.SearchResult, error) {
	primary := AugmentJobQuery(query, jobType)

	results, err := c.Search(ctx, primary, limit)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		seen[r.URL] = struct{}{}
	}

	for i, extra := range SupplementalQueries(query, jobType) {
		if i >= maxExtra || len(results) >= maxCombined {
			break
		}

		extraCtx, cancel := context.WithTimeout(ctx, supplementTimeout)
		batch, err := c.Search(extraCtx, extra, supplementLimit)
		cancel()
		if err != nil {
			log.Printf("[websearch] supplemental query %q failed: %v — continuing", extra, err)
			continue
		}

		for _, r := range batch {
			if r.URL == "" {
				continue
			}
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			results = append(results, r)
		}
	}

	return results, nil
}

// AugmentJobQuery broadens a job search with role hints and a job-board site
// restriction to improve recall.
func AugmentJobQuery(query, jobType string) string {
	var b strings.Builder
	b.WriteString(query)
	b.WriteString(" job")
	if jobType != "" {
		b.WriteString(" ")
		b.WriteString(jobType)
	}
	b.WriteString(" site:linkedin.com OR site:indeed.com OR site:glassdoor.com")
	return b.String()
}

// SupplementalQueries returns the careers/hiring/employment variants issued
// after the primary query.
func SupplementalQueries(query, jobType string) []string {
	base := query
	if jobType != "" {
		base = query + " " + jobType
	}
	return []string{
		base + " careers",
		base + " hiring",
		base + " employment",
	}
}
