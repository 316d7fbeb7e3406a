package websearch

import (
	"strings"

	"jobpulse/search-service/internal/model"
)

// jobDomains is the job-board allow-list: a hit from one of these hosts is
// accepted without keyword evidence.
var jobDomains = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"monster.com",
}

// jobKeywords mark a hit as job-indicative when found in title or snippet.
var jobKeywords = []string{"job", "career", "hire", "hiring", "employment"}

// typeKeywords narrows classified hits to a requested job type.
var typeKeywords = map[string][]string{
	"remote":     {"remote", "work from home", "wfh"},
	"full-time":  {"full-time", "full time"},
	"part-time":  {"part-time", "part time"},
	"contract":   {"contract", "freelance"},
	"internship": {"internship", "intern"},
}

// KnownJobType reports whether jobType has a keyword table entry.
func KnownJobType(jobType string) bool {
	_, ok := typeKeywords[jobType]
	return ok
}

// IsJobPosting decides whether a raw hit looks like a job posting: its URL
// is on the job-board allow-list, or its title/snippet carries a
// job-indicative keyword.
func IsJobPosting(r model.SearchResult) bool {
	u := strings.ToLower(r.URL)
	for _, domain := range jobDomains {
		if strings.Contains(u, domain) {
			return true
		}
	}

	title := strings.ToLower(r.Title)
	snippet := strings.ToLower(r.Snippet)
	for _, kw := range jobKeywords {
		if strings.Contains(title, kw) || strings.Contains(snippet, kw) {
			return true
		}
	}
	return false
}

// MatchesJobType reports whether a hit's text matches the requested type.
// An unrecognised type matches nothing: the requested filter is honoured
// strictly rather than silently including every hit.
func MatchesJobType(r model.SearchResult, jobType string) bool {
	keywords, ok := typeKeywords[jobType]
	if !ok {
		return false
	}
	title := strings.ToLower(r.Title)
	snippet := strings.ToLower(r.Snippet)
	for _, kw := range keywords {
		if strings.Contains(title, kw) || strings.Contains(snippet, kw) {
			return true
		}
	}
	return false
}

// Classify filters raw hits down to job postings, optionally narrowed to a
// requested job type, and tags survivors as type "job".
func Classify(results []model.SearchResult, jobType string) []model.SearchResult {
	classified := make([]model.SearchResult, 0, len(results))
	for _, r := range results {
		if !IsJobPosting(r) {
			continue
		}
		if jobType != "" && !MatchesJobType(r, jobType) {
			continue
		}
		r.Type = "job"
		classified = append(classified, r)
	}
	return classified
}
