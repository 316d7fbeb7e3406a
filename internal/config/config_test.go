package config_test

import (
	"testing"
	"time"

	"jobpulse/search-service/internal/config"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected an error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobpulse")
	t.Setenv("SINGLE_WORKER", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("RESULTS_PER_PAGE", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.CacheTTL != time.Hour {
		t.Errorf("TTL = %v, want 1h", cfg.CacheTTL)
	}
	if cfg.MaxExtraQueries != 3 {
		t.Errorf("extra queries = %d, want 3", cfg.MaxExtraQueries)
	}
	if cfg.ResultsPerPage != 15 {
		t.Errorf("results per page = %d, want 15", cfg.ResultsPerPage)
	}
	if !cfg.EnableScheduler {
		t.Error("scheduler should default on")
	}
}

func TestLoad_SingleWorkerMode(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobpulse")
	t.Setenv("SINGLE_WORKER", "true")
	t.Setenv("CACHE_TTL_SECONDS", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("TTL = %v, want 30m", cfg.CacheTTL)
	}
	if cfg.MaxExtraQueries != 2 {
		t.Errorf("extra queries = %d, want 2", cfg.MaxExtraQueries)
	}
	if cfg.EnableScheduler {
		t.Error("single-worker mode must not run the scheduler")
	}
}

func TestLoad_TTLOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobpulse")
	t.Setenv("CACHE_TTL_SECONDS", "90")

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("TTL = %v, want 90s", cfg.CacheTTL)
	}
}

func TestLoad_RejectsBadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobpulse")

	for _, tc := range []struct{ key, val string }{
		{"CACHE_TTL_SECONDS", "zero"},
		{"CACHE_TTL_SECONDS", "0"},
		{"RESULTS_PER_PAGE", "-1"},
	} {
		t.Setenv("CACHE_TTL_SECONDS", "")
		t.Setenv("RESULTS_PER_PAGE", "")
		t.Setenv(tc.key, tc.val)
		if _, err := config.Load(); err == nil {
			t.Errorf("%s=%q should be rejected", tc.key, tc.val)
		}
	}
}
