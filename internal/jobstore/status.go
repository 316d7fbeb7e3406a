// Package jobstore implements persistence for jobs, saved jobs,
// applications and search history on PostgreSQL.
package jobstore

import "fmt"

// Status values mirror the saved_job_status enum in PostgreSQL.
// A saved job starts at interested and is advanced by user actions;
// submitting an application moves it to applied automatically.
type Status string

const (
	StatusInterested   Status = "interested"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
)

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusInterested, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown saved-job status %q", s)
}
