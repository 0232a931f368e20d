// Package scheduler wires up the cron job that periodically runs the sync
// cycle.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobmate/jobhunter-service/internal/events"
	"jobmate/jobhunter-service/internal/metrics"
	"jobmate/jobhunter-service/internal/model"
	"jobmate/jobhunter-service/internal/store"
)

// Syncer runs one synchronization cycle.
type Syncer interface {
	SyncOnce(ctx context.Context) (model.CycleReport, error)
}

// Status is the reporting snapshot kept after every cycle.
type Status struct {
	Cycles     int                `json:"cycles"`
	Failures   int                `json:"failures"`
	LastRun    time.Time          `json:"lastRun,omitempty"`
	LastReport *model.CycleReport `json:"lastReport,omitempty"`
	LastError  string             `json:"lastError,omitempty"`
	StoredJobs int64              `json:"storedJobs"`
	Sample     []model.JobSummary `json:"sample,omitempty"`
}

// Scheduler wraps robfig/cron and runs the sync loop at a fixed interval.
// Cycles never overlap: a tick that fires while a cycle is still running is
// skipped. There is no jitter or backoff after failures.
type Scheduler struct {
	cron       *cron.Cron
	store      store.Store
	engine     Syncer
	publisher  events.Publisher
	spec       string // cron spec, e.g. "@every 6h"
	sampleSize int

	wg     sync.WaitGroup
	mu     sync.RWMutex
	status Status
}

// New creates a Scheduler that fires every intervalHours hours.
func New(st store.Store, engine Syncer, publisher events.Publisher, intervalHours, sampleSize int) *Scheduler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLogger(cron.DefaultLogger)),
		store:      st,
		engine:     engine,
		publisher:  publisher,
		spec:       fmt.Sprintf("@every %dh", intervalHours),
		sampleSize: sampleSize,
	}
}

// Start ensures the schema exists, registers the job and starts the
// scheduler. One cycle also runs immediately so the table is populated
// without waiting for the first tick. A schema failure is returned; cycle
// failures never are.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	job := cron.NewChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DefaultLogger),
	).Then(cron.FuncJob(func() { s.RunCycle(ctx) }))

	if _, err := s.cron.AddJob(s.spec, job); err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()

	return nil
}

// Stop halts the scheduler and waits for a running cycle to return.
// Cancel the context given to Start first to abort that cycle.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	log.Println("[scheduler] Cron stopped")
}

// Status returns a copy of the latest reporting snapshot.
func (s *Scheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Sample = append([]model.JobSummary(nil), s.status.Sample...)
	return st
}

// RunCycle runs one sync cycle, records its outcome and emits the reporting
// snapshot. Errors are logged, never returned, so the loop keeps going.
func (s *Scheduler) RunCycle(ctx context.Context) {
	log.Println("[scheduler] Sync cycle started")

	report, err := s.engine.SyncOnce(ctx)
	metrics.RecordCycle(report, err)
	s.recordCycle(report, err)

	if err != nil {
		log.Printf("[scheduler] Sync cycle failed, next attempt on schedule (%s): %v", s.spec, err)
		return
	}

	log.Printf("[scheduler] Sync cycle complete — inserted=%d duplicates=%d stale=%d filtered=%d failed=%d pruned=%d",
		report.Inserted, report.Duplicates, report.Stale, report.Filtered, report.Failed, report.Pruned)

	if err := s.publisher.PublishCycle(ctx, report); err != nil {
		slog.Warn("publish "+events.ChannelJobsSynced+" failed", "err", err)
	}

	s.snapshot(ctx)
}

func (s *Scheduler) recordCycle(report model.CycleReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Cycles++
	s.status.LastRun = report.StartedAt
	if err != nil {
		s.status.Failures++
		s.status.LastError = err.Error()
		return
	}
	s.status.LastError = ""
	s.status.LastReport = &report
}

// snapshot logs the row count and a few recent titles.
func (s *Scheduler) snapshot(ctx context.Context) {
	count, err := s.store.Count(ctx)
	if err != nil {
		log.Printf("[scheduler] Count error: %v", err)
		return
	}
	sample, err := s.store.Sample(ctx, s.sampleSize)
	if err != nil {
		log.Printf("[scheduler] Sample error: %v", err)
		return
	}

	metrics.SetStoredJobs(count)
	log.Printf("[scheduler] %d job(s) stored", count)
	for _, j := range sample {
		log.Printf("[scheduler]   %s  %s", j.CreatedAt.Format("2006-01-02"), j.Title)
	}

	s.mu.Lock()
	s.status.StoredJobs = count
	s.status.Sample = sample
	s.mu.Unlock()
}
