package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/search-service/internal/model"
)

// querier is the slice of pgxpool.Pool the store uses; tests substitute a
// scripted implementation.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store wraps all job-table persistence used by the request path.
type Store struct {
	pool querier
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// jobColumns is the scan list shared by every job query.
const jobColumns = `id, external_id, title, COALESCE(company, ''), COALESCE(location, ''),
	COALESCE(job_type, ''), COALESCE(experience_level, ''),
	salary_min, salary_max, COALESCE(salary_currency, 'USD'), COALESCE(salary_period, 'yearly'),
	COALESCE(description, ''), remote, apply_url, COALESCE(source, ''), COALESCE(source_url, ''),
	posted_date, expires_date, is_active, created_at, updated_at`

func scanJob(row pgx.Row) (model.Job, error) {
	var j model.Job
	var salaryMin, salaryMax *int
	var currency, period string
	err := row.Scan(
		&j.ID, &j.ExternalID, &j.Title, &j.Company, &j.Location,
		&j.JobType, &j.ExperienceLevel,
		&salaryMin, &salaryMax, &currency, &period,
		&j.Description, &j.Remote, &j.ApplyURL, &j.Source, &j.SourceURL,
		&j.PostedDate, &j.ExpiresDate, &j.IsActive, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return j, err
	}
	if salaryMin != nil || salaryMax != nil {
		j.Salary = &model.Salary{Min: salaryMin, Max: salaryMax, Currency: currency, Period: period}
	}
	return j, nil
}

// ─── Search ──────────────────────────────────────────────────────────────────

// Find queries active jobs matching the query terms and filter set.
// Every whitespace-separated term must match title, description or company
// (case-insensitive substring); filters are independent conjunctive
// predicates. Results are newest-first with id as the stable tie-break.
func (s *Store) Find(ctx context.Context, query string, f model.Filters, page, pageSize int) ([]model.Job, int, error) {
	where := []string{"is_active = true"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, term := range strings.Fields(query) {
		p := arg("%" + term + "%")
		where = append(where, fmt.Sprintf("(title ILIKE %s OR description ILIKE %s OR company ILIKE %s)", p, p, p))
	}

	if f.Location != "" {
		where = append(where, "location ILIKE "+arg("%"+f.Location+"%"))
	}
	if f.JobType != "" {
		where = append(where, "job_type = "+arg(f.JobType))
	}
	if f.Experience != "" {
		where = append(where, "experience_level = "+arg(f.Experience))
	}
	if f.Remote {
		where = append(where, "remote = true")
	}
	if f.SalaryMin != nil {
		where = append(where, "(salary_max IS NULL OR salary_max >= "+arg(*f.SalaryMin)+")")
	}
	if f.SalaryMax != nil {
		where = append(where, "(salary_min IS NULL OR salary_min <= "+arg(*f.SalaryMax)+")")
	}

	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM jobs WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("find count: %w", err)
	}

	limit := arg(pageSize)
	offset := arg((page - 1) * pageSize)
	rows, err := s.pool.Query(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE "+cond+
			" ORDER BY posted_date DESC NULLS LAST, id LIMIT "+limit+" OFFSET "+offset,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("find query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("find scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}

// GetJob returns a single job by ID.
func (s *Store) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE id = $1", jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getJob: %w", err)
	}
	return &j, nil
}

// Upsert inserts a job unless its external_id already exists.
// Returns true when a new row was created.
func (s *Store) Upsert(ctx context.Context, j model.Job) (bool, error) {
	var salaryMin, salaryMax *int
	currency, period := "USD", "yearly"
	if j.Salary != nil {
		salaryMin, salaryMax = j.Salary.Min, j.Salary.Max
		if j.Salary.Currency != "" {
			currency = j.Salary.Currency
		}
		if j.Salary.Period != "" {
			period = j.Salary.Period
		}
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (external_id, title, company, location, job_type, experience_level,
		                   salary_min, salary_max, salary_currency, salary_period,
		                   description, remote, apply_url, source, source_url,
		                   posted_date, is_active)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''),
		         $7, $8, $9, $10,
		         $11, $12, $13, $14, $15,
		         $16, true)
		 ON CONFLICT (external_id) DO NOTHING`,
		j.ExternalID, j.Title, j.Company, j.Location, j.JobType, j.ExperienceLevel,
		salaryMin, salaryMax, currency, period,
		j.Description, j.Remote, j.ApplyURL, j.Source, j.SourceURL,
		j.PostedDate,
	)
	if err != nil {
		return false, fmt.Errorf("upsert job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ─── Saved jobs ──────────────────────────────────────────────────────────────

// ToggleSave saves a job for a user, or removes the existing save.
// Returns the action taken ("saved" or "unsaved"); one row per (user, job).
func (s *Store) ToggleSave(ctx context.Context, userID, jobID, notes string, status Status) (string, *model.SavedJob, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return "", nil, err
	}

	var existingID string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM saved_jobs WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	).Scan(&existingID)
	if err == nil {
		if _, err := s.pool.Exec(ctx, `DELETE FROM saved_jobs WHERE id = $1`, existingID); err != nil {
			return "", nil, fmt.Errorf("unsave: %w", err)
		}
		return "unsaved", nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", nil, fmt.Errorf("toggleSave lookup: %w", err)
	}

	var sj model.SavedJob
	err = s.pool.QueryRow(ctx,
		`INSERT INTO saved_jobs (user_id, job_id, notes, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, job_id, COALESCE(notes, ''), status, applied_date, created_at, updated_at`,
		userID, jobID, notes, string(status),
	).Scan(&sj.ID, &sj.UserID, &sj.JobID, &sj.Notes, &sj.Status, &sj.AppliedDate, &sj.CreatedAt, &sj.UpdatedAt)
	if err != nil {
		return "", nil, fmt.Errorf("save job: %w", err)
	}
	return "saved", &sj, nil
}

// ListSaved returns a user's saved jobs, newest first, optionally filtered
// by status, with the linked job embedded.
func (s *Store) ListSaved(ctx context.Context, userID string, status string, page, pageSize int) ([]model.SavedJob, int, error) {
	cond := "sj.user_id = $1"
	args := []any{userID}
	if status != "" && status != "all" {
		args = append(args, status)
		cond += fmt.Sprintf(" AND sj.status = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM saved_jobs sj WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listSaved count: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx,
		`SELECT sj.id, sj.user_id, sj.job_id, COALESCE(sj.notes, ''), sj.status,
		        sj.applied_date, sj.created_at, sj.updated_at
		 FROM saved_jobs sj
		 WHERE `+cond+`
		 ORDER BY sj.created_at DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listSaved query: %w", err)
	}
	defer rows.Close()

	saved := make([]model.SavedJob, 0)
	for rows.Next() {
		var sj model.SavedJob
		if err := rows.Scan(&sj.ID, &sj.UserID, &sj.JobID, &sj.Notes, &sj.Status,
			&sj.AppliedDate, &sj.CreatedAt, &sj.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("listSaved scan: %w", err)
		}
		saved = append(saved, sj)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range saved {
		job, err := s.GetJob(ctx, saved[i].JobID)
		if err != nil {
			slog.Warn("saved job missing linked row", "saved", saved[i].ID, "job", saved[i].JobID, "err", err)
			continue
		}
		saved[i].Job = job
	}
	return saved, total, nil
}

// ─── Applications ────────────────────────────────────────────────────────────

// Apply records a job application. A duplicate (user, job) application is
// rejected; the matching saved job, if any, is advanced to applied.
func (s *Store) Apply(ctx context.Context, userID, jobID, coverLetter, resumeURL, notes string) (*model.Application, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	var existingID string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM applications WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	).Scan(&existingID)
	if err == nil {
		return nil, ErrAlreadyApplied
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("apply lookup: %w", err)
	}

	var a model.Application
	err = s.pool.QueryRow(ctx,
		`INSERT INTO applications (user_id, job_id, cover_letter, resume_url, status, notes)
		 VALUES ($1, $2, $3, $4, 'applied', $5)
		 RETURNING id, user_id, job_id, COALESCE(cover_letter, ''), COALESCE(resume_url, ''),
		           status, COALESCE(notes, ''), applied_date, updated_at`,
		userID, jobID, coverLetter, resumeURL, notes,
	).Scan(&a.ID, &a.UserID, &a.JobID, &a.CoverLetter, &a.ResumeURL,
		&a.Status, &a.Notes, &a.AppliedDate, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("apply insert: %w", err)
	}

	// Advance the saved-job card if one exists. The application row is
	// already committed, so a failure here is logged and swallowed.
	_, err = s.pool.Exec(ctx,
		`UPDATE saved_jobs
		 SET status = $1, applied_date = NOW(), updated_at = NOW()
		 WHERE user_id = $2 AND job_id = $3`,
		string(StatusApplied), userID, jobID,
	)
	if err != nil {
		slog.Warn("saved-job status advance failed", "user", userID, "job", jobID, "err", err)
	}
	return &a, nil
}

// ListApplications returns a user's applications, newest first.
func (s *Store) ListApplications(ctx context.Context, userID, status string, page, pageSize int) ([]model.Application, int, error) {
	cond := "user_id = $1"
	args := []any{userID}
	if status != "" && status != "all" {
		args = append(args, status)
		cond += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM applications WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listApplications count: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, job_id, COALESCE(cover_letter, ''), COALESCE(resume_url, ''),
		        status, COALESCE(notes, ''), applied_date, updated_at
		 FROM applications
		 WHERE `+cond+`
		 ORDER BY applied_date DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]model.Application, 0)
	for rows.Next() {
		var a model.Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobID, &a.CoverLetter, &a.ResumeURL,
			&a.Status, &a.Notes, &a.AppliedDate, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}

// ─── Search history ──────────────────────────────────────────────────────────

// LogSearch appends a search-history entry. History rows are append-only
// and never mutated.
func (s *Store) LogSearch(ctx context.Context, userID, query string, f model.Filters, resultCount int) error {
	filtersJSON, _ := json.Marshal(f)
	_, err := s.pool.Exec(ctx,
		`INSERT INTO search_history (user_id, query, filters, result_count)
		 VALUES (NULLIF($1, ''), $2, $3::jsonb, $4)`,
		userID, query, string(filtersJSON), resultCount,
	)
	if err != nil {
		return fmt.Errorf("logSearch: %w", err)
	}
	return nil
}

// RecentSearches returns a user's latest history entries, newest first.
func (s *Store) RecentSearches(ctx context.Context, userID string, limit int) ([]model.SearchHistory, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(user_id::text, ''), query, filters, result_count, created_at
		 FROM search_history
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recentSearches query: %w", err)
	}
	defer rows.Close()

	history := make([]model.SearchHistory, 0)
	for rows.Next() {
		var h model.SearchHistory
		var filtersJSON []byte
		if err := rows.Scan(&h.ID, &h.UserID, &h.Query, &filtersJSON, &h.ResultCount, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("recentSearches scan: %w", err)
		}
		if len(filtersJSON) > 0 {
			_ = json.Unmarshal(filtersJSON, &h.Filters)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a job or link row is missing.
var ErrNotFound = errors.New("job not found")

// ErrAlreadyApplied is returned on a duplicate (user, job) application.
var ErrAlreadyApplied = errors.New("application already exists for this job")
