package jobstore

import (
	"strings"

	"jobpulse/search-service/internal/model"
)

// MatchesFilters checks a job against the requested filter set. Every filter
// is an independent conjunctive predicate; a filter only rejects when the
// job carries a conflicting value (missing attributes pass, except remote
// which must be affirmatively set).
func MatchesFilters(job model.Job, f model.Filters) bool {
	if f.Location != "" && job.Location != "" {
		if !strings.Contains(strings.ToLower(job.Location), strings.ToLower(f.Location)) {
			return false
		}
	}

	if f.JobType != "" && job.JobType != "" && f.JobType != job.JobType {
		return false
	}

	if f.Experience != "" && job.ExperienceLevel != "" && f.Experience != job.ExperienceLevel {
		return false
	}

	if f.Remote && !job.Remote {
		return false
	}

	// Salary ranges must overlap; nil bounds are open-ended.
	if job.Salary != nil {
		if f.SalaryMin != nil && job.Salary.Max != nil && *job.Salary.Max < *f.SalaryMin {
			return false
		}
		if f.SalaryMax != nil && job.Salary.Min != nil && *job.Salary.Min > *f.SalaryMax {
			return false
		}
	}

	return true
}

// ExtractJobType guesses a job type from title/snippet text.
// Returns "" when nothing matches.
func ExtractJobType(title, snippet string) string {
	text := strings.ToLower(title + " " + snippet)
	switch {
	case containsAny(text, "full-time", "full time"):
		return "full-time"
	case containsAny(text, "part-time", "part time"):
		return "part-time"
	case containsAny(text, "contract", "freelance"):
		return "contract"
	case containsAny(text, "internship", "intern"):
		return "internship"
	}
	return ""
}

// ExtractExperienceLevel guesses a seniority level from title/snippet text.
func ExtractExperienceLevel(title, snippet string) string {
	text := strings.ToLower(title + " " + snippet)
	switch {
	case containsAny(text, "senior", "sr.", "lead", "principal"):
		return "senior"
	case containsAny(text, "mid-level", "mid level"):
		return "mid"
	case containsAny(text, "junior", "entry-level", "entry level", "associate"):
		return "entry"
	case containsAny(text, "executive", "director", "vp", "c-level"):
		return "executive"
	}
	return ""
}

// IsRemote reports whether title/snippet text indicates a remote position.
func IsRemote(title, snippet string) bool {
	text := strings.ToLower(title + " " + snippet)
	return containsAny(text, "remote", "work from home", "wfh", "virtual", "telecommute")
}

func containsAny(text string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
