// jobhunter-service
//
// Keeps a local jobs table in sync with the Remotive remote-jobs feed:
//   - every SYNC_INTERVAL_HOURS, prune rows older than RETENTION_DAYS
//   - fetch the full listing snapshot and insert unseen, recent listings
//   - store descriptions as plain text
//
// Publishes EVENT_JOBS_SYNCED to Redis after each committed cycle when
// REDIS_URL is set. Serves /health and /metrics on HTTP_PORT.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobmate/jobhunter-service/internal/config"
	"jobmate/jobhunter-service/internal/db"
	"jobmate/jobhunter-service/internal/events"
	"jobmate/jobhunter-service/internal/scheduler"
	"jobmate/jobhunter-service/internal/scraper"
	"jobmate/jobhunter-service/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[jobhunter-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ─────────────────────────────────────────────────────────────
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[jobhunter-service] Storage: %v", err)
	}
	defer closeStore()

	// ── Redis (optional) ────────────────────────────────────────────────────
	var publisher events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		log.Println("[jobhunter-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[jobhunter-service] Redis: %v", err)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
		log.Println("[jobhunter-service] Redis connected ✓")
	}

	// ── Sync engine + scheduler ─────────────────────────────────────────────
	engine := scraper.NewEngine(st, scraper.NewRemotiveFetcher(cfg.SourceURL),
		scraper.WithRetentionDays(cfg.RetentionDays),
		scraper.WithExcludeTerms(cfg.ExcludeTerms),
		scraper.WithLogger(slog.Default()),
	)
	sched := scheduler.New(st, engine, publisher, cfg.SyncIntervalHours, cfg.SampleSize)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[jobhunter-service] Scheduler: %v", err)
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      newMux(sched),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[jobhunter-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[jobhunter-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[jobhunter-service] Shutting down…")
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[jobhunter-service] Shutdown error: %v", err)
	}
	log.Println("[jobhunter-service] Stopped.")
}

// openStore connects to the configured backend and returns the store with a
// function releasing its connection.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		log.Printf("[jobhunter-service] Opening SQLite database %s…", cfg.SQLitePath)
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Println("[jobhunter-service] SQLite ready ✓")
		return store.NewSQLiteStore(sqlDB), func() { _ = sqlDB.Close() }, nil
	default:
		log.Println("[jobhunter-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("[jobhunter-service] PostgreSQL connected ✓")
		return store.NewPostgresStore(pool), pool.Close, nil
	}
}
