package jobstore_test

import (
	"testing"

	"jobpulse/search-service/internal/jobstore"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"interested", "applied", "interviewing", "offer", "rejected"}
	for _, s := range valid {
		got, err := jobstore.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "Interested", "hired", ""} {
		if _, err := jobstore.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}
