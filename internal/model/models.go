// Package model defines shared data structures for the search service.
package model

import "time"

// Category selects which search pipeline a request goes through.
// Job searches get query augmentation and classification; general
// searches pass hits through untouched.
type Category string

const (
	CategoryJobs    Category = "jobs"
	CategoryGeneral Category = "general"
)

// Salary is the nested salary range attached to a job posting.
type Salary struct {
	Min      *int   `json:"min"`
	Max      *int   `json:"max"`
	Currency string `json:"currency"`
	Period   string `json:"period"` // yearly, monthly, hourly
}

// Job mirrors a row in the jobs table.
// ExternalID is globally unique per source and is the upsert key.
type Job struct {
	ID              string     `json:"id"`
	ExternalID      string     `json:"external_id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	JobType         string     `json:"job_type"`         // full-time, part-time, contract, internship
	ExperienceLevel string     `json:"experience_level"` // entry, mid, senior, executive
	Salary          *Salary    `json:"salary"`
	Description     string     `json:"description"`
	Remote          bool       `json:"remote"`
	ApplyURL        string     `json:"apply_url"`
	Source          string     `json:"source"`
	SourceURL       string     `json:"source_url"`
	PostedDate      *time.Time `json:"posted_date"`
	ExpiresDate     *time.Time `json:"expires_date,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SearchResult is the common record shape flowing through the aggregation
// pipeline: local rows and external hits are both normalised to it before
// merging. URL doubles as the dedup key.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Company string `json:"company,omitempty"`
	Source  string `json:"source"`
	Domain  string `json:"domain,omitempty"`
	Date    string `json:"date,omitempty"`
	Type    string `json:"type"` // "job" or "general"
}

// ToResult converts a stored job into the pipeline record shape.
func (j *Job) ToResult() SearchResult {
	date := ""
	if j.PostedDate != nil {
		date = j.PostedDate.UTC().Format(time.RFC3339)
	}
	return SearchResult{
		Title:   j.Title,
		URL:     j.ApplyURL,
		Snippet: j.Description,
		Company: j.Company,
		Source:  j.Source,
		Date:    date,
		Type:    "job",
	}
}

// Filters is the conjunctive filter set applied to a search.
// Zero values mean "not requested"; nil salary bounds are open-ended.
type Filters struct {
	Location   string `json:"location,omitempty"`
	JobType    string `json:"job_type,omitempty"`
	Experience string `json:"experience,omitempty"`
	Remote     bool   `json:"remote,omitempty"`
	SalaryMin  *int   `json:"salary_min,omitempty"`
	SalaryMax  *int   `json:"salary_max,omitempty"`
}

// Bundle is the cached value for one (category, query, filters) key:
// everything fetched plus everything that survived classification.
// Caching the whole bundle makes a repeat request byte-identical.
type Bundle struct {
	AllResults []SearchResult `json:"all_results"`
	Results    []SearchResult `json:"results"`
	Timestamp  time.Time      `json:"timestamp"`
	Query      string         `json:"query"`
	Category   Category       `json:"category"`
	Filters    Filters        `json:"filters"`
}

// SavedJob links a user to a job with tracking status and notes.
// One row per (user, job) pair.
type SavedJob struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	JobID       string     `json:"job_id"`
	Notes       string     `json:"notes"`
	Status      string     `json:"status"`
	AppliedDate *time.Time `json:"applied_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Job         *Job       `json:"job,omitempty"`
}

// Application records a submitted job application.
type Application struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	JobID       string    `json:"job_id"`
	CoverLetter string    `json:"cover_letter"`
	ResumeURL   string    `json:"resume_url"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	AppliedDate time.Time `json:"applied_date"`
	UpdatedAt   time.Time `json:"updated_at"`
	Job         *Job      `json:"job,omitempty"`
}

// SearchHistory is an append-only log entry for a user search.
type SearchHistory struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Query       string    `json:"query"`
	Filters     Filters   `json:"filters"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}
