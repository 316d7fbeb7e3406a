// Package tasks implements the background maintenance jobs: refreshing
// stale rows, fetching new postings for the default keyword set and
// purging long-inactive rows. Each task is safe to trigger manually while
// the scheduler is running; all writes are idempotent.
package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/search-service/internal/jobstore"
	"jobpulse/search-service/internal/model"
)

// Stale and retention thresholds. Refresh looks at rows untouched for a
// day; cleanup removes inactive rows after a month.
const (
	refreshAfter     = 24 * time.Hour
	refreshBatchSize = 100
	fetchBatchSize   = 20
	cleanupBatchSize = 100
	defaultRetention = 30 // days
	fetchPerKeyword  = 50
)

// DefaultKeywords seeds the job table when no explicit keyword list is
// given to FetchNewJobs.
var DefaultKeywords = []string{
	"software engineer",
	"data scientist",
	"web developer",
	"product manager",
	"marketing",
	"sales",
}

// JobSearcher is the upstream surface FetchNewJobs depends on.
type JobSearcher interface {
	SearchJobs(ctx context.Context, query, jobType string, limit, maxExtra int) ([]model.SearchResult, error)
}

// Runner executes maintenance tasks against the job table.
type Runner struct {
	pool     *pgxpool.Pool
	jobs     *jobstore.Store
	searcher JobSearcher
	maxExtra int
}

// NewRunner constructs a Runner. searcher may be nil when no upstream API
// key is configured; FetchNewJobs then reports zero keywords processed.
func NewRunner(pool *pgxpool.Pool, jobs *jobstore.Store, searcher JobSearcher, maxExtra int) *Runner {
	return &Runner{pool: pool, jobs: jobs, searcher: searcher, maxExtra: maxExtra}
}

// ─── Refresh ─────────────────────────────────────────────────────────────────

// RefreshResult summarises one RefreshJobs run.
type RefreshResult struct {
	Processed   int `json:"processed"`
	Updated     int `json:"updated"`
	Deactivated int `json:"deactivated"`
}

// RefreshJobs revisits active rows untouched for over a day, up to one
// batch per run. Rows past their expiry date are deactivated, the rest
// get their updated_at bumped so the next run picks different rows.
// Per-row failures are logged and skipped.
func (r *Runner) RefreshJobs(ctx context.Context) (*RefreshResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, expires_date
		 FROM jobs
		 WHERE is_active = true AND updated_at < NOW() - $1::interval
		 ORDER BY updated_at
		 LIMIT $2`,
		fmt.Sprintf("%d seconds", int(refreshAfter.Seconds())), refreshBatchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("refresh select: %w", err)
	}

	type stale struct {
		id      string
		expires *time.Time
	}
	var batch []stale
	for rows.Next() {
		var s stale
		if err := rows.Scan(&s.id, &s.expires); err != nil {
			rows.Close()
			return nil, fmt.Errorf("refresh scan: %w", err)
		}
		batch = append(batch, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res := &RefreshResult{}
	now := time.Now().UTC()
	for _, s := range batch {
		res.Processed++
		if s.expires != nil && s.expires.Before(now) {
			if _, err := r.pool.Exec(ctx,
				`UPDATE jobs SET is_active = false, updated_at = NOW() WHERE id = $1`, s.id); err != nil {
				log.Printf("[tasks] deactivate %s failed: %v — continuing", s.id, err)
				continue
			}
			res.Deactivated++
			continue
		}
		if _, err := r.pool.Exec(ctx,
			`UPDATE jobs SET updated_at = NOW() WHERE id = $1`, s.id); err != nil {
			log.Printf("[tasks] touch %s failed: %v — continuing", s.id, err)
			continue
		}
		res.Updated++
	}

	log.Printf("[tasks] refresh done — processed=%d updated=%d deactivated=%d",
		res.Processed, res.Updated, res.Deactivated)
	return res, nil
}

// ─── Fetch ───────────────────────────────────────────────────────────────────

// FetchResult summarises one FetchNewJobs run.
type FetchResult struct {
	Keywords int `json:"keywords"`
	New      int `json:"new"`
	Skipped  int `json:"skipped"`
}

// FetchNewJobs queries the upstream API for each keyword and upserts the
// hits into the job table. Duplicate external IDs are skipped by the
// upsert; a failing keyword is logged and the rest still run. perKeyword
// <= 0 selects the default fetch cap.
func (r *Runner) FetchNewJobs(ctx context.Context, keywords []string, perKeyword int) (*FetchResult, error) {
	res := &FetchResult{}
	if r.searcher == nil {
		log.Printf("[tasks] fetch skipped — no upstream searcher configured")
		return res, nil
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	if perKeyword <= 0 {
		perKeyword = fetchPerKeyword
	}

	for _, kw := range keywords {
		hits, err := r.searcher.SearchJobs(ctx, kw, "", perKeyword, r.maxExtra)
		if err != nil {
			log.Printf("[tasks] fetch %q failed: %v — continuing", kw, err)
			continue
		}
		res.Keywords++

		var sinceLog int
		for _, hit := range hits {
			inserted, err := r.jobs.Upsert(ctx, ResultToJob(hit))
			if err != nil {
				log.Printf("[tasks] upsert %q failed: %v — continuing", hit.URL, err)
				continue
			}
			if inserted {
				res.New++
			} else {
				res.Skipped++
			}
			if sinceLog++; sinceLog == fetchBatchSize {
				log.Printf("[tasks] fetch %q progress — new=%d skipped=%d", kw, res.New, res.Skipped)
				sinceLog = 0
			}
		}
	}

	log.Printf("[tasks] fetch done — keywords=%d new=%d skipped=%d",
		res.Keywords, res.New, res.Skipped)
	return res, nil
}

// ResultToJob converts an upstream hit into a job row. Job type,
// experience level and remote flag are derived from the title and
// snippet; hits without a usable URL get a generated external ID so the
// upsert key is never empty.
func ResultToJob(r model.SearchResult) model.Job {
	externalID := r.URL
	if externalID == "" {
		externalID = "generated:" + uuid.NewString()
	}

	now := time.Now().UTC()
	return model.Job{
		ExternalID:      externalID,
		Title:           r.Title,
		Company:         r.Company,
		JobType:         jobstore.ExtractJobType(r.Title, r.Snippet),
		ExperienceLevel: jobstore.ExtractExperienceLevel(r.Title, r.Snippet),
		Description:     r.Snippet,
		Remote:          jobstore.IsRemote(r.Title, r.Snippet),
		ApplyURL:        r.URL,
		Source:          r.Source,
		SourceURL:       r.URL,
		PostedDate:      &now,
		IsActive:        true,
	}
}

// ─── Cleanup ─────────────────────────────────────────────────────────────────

// CleanupResult summarises one CleanupJobs run.
type CleanupResult struct {
	Deleted       int `json:"deleted"`
	RetentionDays int `json:"retention_days"`
}

// CleanupJobs deletes inactive rows untouched for longer than the
// retention window, in bounded batches until none remain. days <= 0
// selects the default retention.
func (r *Runner) CleanupJobs(ctx context.Context, days int) (*CleanupResult, error) {
	if days <= 0 {
		days = defaultRetention
	}

	res := &CleanupResult{RetentionDays: days}
	for {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM jobs
			 WHERE id IN (
			   SELECT id FROM jobs
			   WHERE is_active = false AND updated_at < NOW() - $1::interval
			   LIMIT $2
			 )`,
			fmt.Sprintf("%d days", days), cleanupBatchSize,
		)
		if err != nil {
			return res, fmt.Errorf("cleanup delete: %w", err)
		}
		n := int(tag.RowsAffected())
		res.Deleted += n
		if n < cleanupBatchSize {
			break
		}
	}

	log.Printf("[tasks] cleanup done — deleted=%d (retention %dd)", res.Deleted, res.RetentionDays)
	return res, nil
}
