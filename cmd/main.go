// jobpulse search-service
//
// Job search aggregation over a local Postgres job table and a third-party
// web search API. Exposes a REST API used by the frontend to implement:
//   - job / general search with caching and pagination
//   - saved jobs, applications and search history
//   - cache administration and manual maintenance triggers
//
// Cache backend is probed at startup: Redis when reachable, otherwise an
// in-process map with the same TTL semantics.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobpulse/search-service/internal/cache"
	"jobpulse/search-service/internal/config"
	"jobpulse/search-service/internal/db"
	"jobpulse/search-service/internal/httpapi"
	"jobpulse/search-service/internal/jobstore"
	"jobpulse/search-service/internal/scheduler"
	"jobpulse/search-service/internal/search"
	"jobpulse/search-service/internal/tasks"
	"jobpulse/search-service/internal/telemetry"
	"jobpulse/search-service/internal/websearch"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[search-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[search-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[search-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[search-service] PostgreSQL connected ✓")

	// ── Cache backend probe ──────────────────────────────────────────────────
	// Redis when configured and reachable; otherwise the in-process map.
	// The choice is made once and never revisited at request time.
	var cacheStore cache.Store = cache.NewMemoryStore()
	if cfg.RedisURL != "" {
		probeCtx, probeCancel := context.WithTimeout(ctx, 5*time.Second)
		rdb, err := db.NewRedisClient(probeCtx, cfg.RedisURL)
		probeCancel()
		if err != nil {
			log.Printf("[search-service] Redis unavailable (%v) — using in-memory cache", err)
		} else {
			defer rdb.Close()
			cacheStore = cache.NewRedisStore(rdb)
			log.Println("[search-service] Redis connected ✓")
		}
	} else {
		log.Println("[search-service] REDIS_URL not set — using in-memory cache")
	}
	_, cacheBackend := cacheStore.Stats(ctx)

	// ── Wiring ───────────────────────────────────────────────────────────────
	webClient := websearch.NewClient(cfg.RapidAPIKey, cfg.RapidAPIHost)
	jobs := jobstore.NewStore(pool)

	aggregator := search.New(cacheStore, jobs, webClient, search.Options{
		TTL:             cfg.CacheTTL,
		ResultsPerPage:  cfg.ResultsPerPage,
		MaxFetchResults: cfg.MaxFetchResults,
		MaxExtraQueries: cfg.MaxExtraQueries,
	})

	runner := tasks.NewRunner(pool, jobs, webClient, cfg.MaxExtraQueries)

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":            "ok",
			"service":           "search-service",
			"version":           version,
			"cache":             cacheBackend,
			"scheduler_enabled": cfg.EnableScheduler,
			"search_api":        cfg.RapidAPIKey != "",
		})
	})
	mux.HandleFunc("/api/environment", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"single_worker":     cfg.SingleWorker,
			"scheduler_enabled": cfg.EnableScheduler,
			"cache_type":        cacheBackend,
			"cache_ttl_seconds": int(cfg.CacheTTL.Seconds()),
			"results_per_page":  cfg.ResultsPerPage,
		})
	})
	mux.Handle("/metrics", telemetry.Handler())

	h := httpapi.NewHandler(aggregator, cacheStore, jobs)
	h.RegisterRoutes(mux)

	th := tasks.NewHandler(runner, cfg.EnableScheduler)
	th.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      telemetry.Middleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// ── Scheduler ────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.EnableScheduler {
		sched = scheduler.New(runner)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[search-service] Scheduler: %v", err)
		}
	} else {
		log.Println("[search-service] Scheduler disabled — maintenance via /api/tasks/*")
	}

	go func() {
		log.Printf("[search-service] v%s listening on :%s (cache=%s)", version, cfg.Port, cacheBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[search-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[search-service] Shutting down…")
	if sched != nil {
		sched.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[search-service] Shutdown error: %v", err)
	}
	log.Println("[search-service] Stopped.")
}
