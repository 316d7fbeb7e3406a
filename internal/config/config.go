// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Deployment-mode defaults. Single-worker deployments get a shorter TTL,
// fewer supplemental API calls and no in-process scheduler; maintenance is
// triggered through /api/tasks/* instead.
const (
	defaultTTL             = time.Hour
	singleWorkerTTL        = 30 * time.Minute
	defaultExtraQueries    = 3
	singleWorkerExtra      = 2
	defaultResultsPerPage  = 15
	defaultMaxFetchResults = 100
)

// Config holds all runtime configuration for the search service.
// Every capability toggle is resolved here, once; request handlers never
// branch on the environment directly.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // empty means "do not probe Redis, use memory cache"

	RapidAPIKey  string
	RapidAPIHost string

	ResultsPerPage  int
	MaxFetchResults int // cap per upstream request
	MaxExtraQueries int // supplemental query cap per search
	CacheTTL        time.Duration

	SingleWorker    bool
	EnableScheduler bool
}

// Load reads environment variables and returns a validated Config.
// A .env file in the working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	port := os.Getenv("SEARCH_PORT")
	if port == "" {
		port = "8080"
	}

	host := os.Getenv("RAPID_API_HOST")
	if host == "" {
		host = "real-time-web-search.p.rapidapi.com"
	}

	singleWorker := os.Getenv("SINGLE_WORKER") == "true"

	ttl := defaultTTL
	extra := defaultExtraQueries
	if singleWorker {
		ttl = singleWorkerTTL
		extra = singleWorkerExtra
	}
	if s := os.Getenv("CACHE_TTL_SECONDS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("CACHE_TTL_SECONDS must be a positive integer, got %q", s)
		}
		ttl = time.Duration(v) * time.Second
	}

	perPage := defaultResultsPerPage
	if s := os.Getenv("RESULTS_PER_PAGE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("RESULTS_PER_PAGE must be a positive integer, got %q", s)
		}
		perPage = v
	}

	return &Config{
		Port:            port,
		DatabaseURL:     dbURL,
		RedisURL:        os.Getenv("REDIS_URL"),
		RapidAPIKey:     os.Getenv("RAPID_API_KEY"),
		RapidAPIHost:    host,
		ResultsPerPage:  perPage,
		MaxFetchResults: defaultMaxFetchResults,
		MaxExtraQueries: extra,
		CacheTTL:        ttl,
		SingleWorker:    singleWorker,
		EnableScheduler: !singleWorker,
	}, nil
}
