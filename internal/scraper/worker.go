package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobmate/jobhunter-service/internal/model"
	"jobmate/jobhunter-service/internal/store"
)

// Source returns the complete current listing snapshot.
type Source interface {
	FetchAll(ctx context.Context) ([]model.Listing, error)
}

// Engine runs the synchronization cycle: prune stale rows, fetch the
// snapshot, drop stale and excluded listings, skip known job ids, and insert
// the rest with a sanitized description.
type Engine struct {
	store         store.Store
	source        Source
	retentionDays int
	excludeTerms  []string
	now           func() time.Time
	logger        *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRetentionDays overrides model.DefaultRetentionDays.
func WithRetentionDays(days int) EngineOption {
	return func(e *Engine) { e.retentionDays = days }
}

// WithExcludeTerms discards listings mentioning any of terms.
func WithExcludeTerms(terms []string) EngineOption {
	return func(e *Engine) { e.excludeTerms = terms }
}

// WithClock overrides time.Now for age filtering.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the structured logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine constructs an Engine over an explicit store handle.
func NewEngine(st store.Store, src Source, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         st,
		source:        src,
		retentionDays: model.DefaultRetentionDays,
		now:           time.Now,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncOnce executes one cycle inside a single store transaction and commits
// it at the end. A fetch failure or a store failure outside an individual
// insert rolls the whole cycle back, pruning included, and is returned.
// Failures confined to one listing are logged and counted in Failed.
func (e *Engine) SyncOnce(ctx context.Context) (model.CycleReport, error) {
	started := e.now()
	report := model.CycleReport{StartedAt: started}

	err := e.store.InTx(ctx, func(tx store.Store) error {
		return e.run(ctx, tx, &report)
	})
	if err != nil {
		return model.CycleReport{StartedAt: started, Duration: e.now().Sub(started)}, err
	}

	report.Duration = e.now().Sub(started)
	e.logger.Info("sync cycle finished",
		"pruned", report.Pruned,
		"fetched", report.Fetched,
		"inserted", report.Inserted,
		"duplicates", report.Duplicates,
		"stale", report.Stale,
		"filtered", report.Filtered,
		"failed", report.Failed,
	)
	return report, nil
}

func (e *Engine) run(ctx context.Context, tx store.Store, report *model.CycleReport) error {
	pruned, err := tx.PruneOlderThan(ctx, e.retentionDays)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	report.Pruned = pruned

	listings, err := e.source.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	report.Fetched = len(listings)

	now := e.now()
	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.process(ctx, tx, l, now, report); err != nil {
			return err
		}
	}
	return nil
}

// process handles one listing. Only errors that make the rest of the cycle
// pointless (the existence check failing) are returned.
func (e *Engine) process(ctx context.Context, tx store.Store, l model.Listing, now time.Time, report *model.CycleReport) error {
	jobID := string(l.ID)
	if jobID == "" {
		e.logger.Warn("listing without id skipped", "title", l.Title)
		report.Failed++
		return nil
	}

	published, err := model.ParsePublicationDate(l.PublicationDate)
	if err != nil {
		e.logger.Warn("listing with bad publication date skipped", "jobId", jobID, "err", err)
		report.Failed++
		return nil
	}
	if model.IsStale(published, now, e.retentionDays) {
		report.Stale++
		return nil
	}

	if MatchesExcludedTerm(l, e.excludeTerms) {
		report.Filtered++
		return nil
	}

	exists, err := tx.Exists(ctx, jobID)
	if err != nil {
		return fmt.Errorf("exists %s: %w", jobID, err)
	}
	if exists {
		report.Duplicates++
		return nil
	}

	createdAt, err := l.CreationDate()
	if err != nil {
		e.logger.Warn("listing with bad creation date skipped", "jobId", jobID, "err", err)
		report.Failed++
		return nil
	}
	job := model.StoredJob{
		JobID:       jobID,
		Company:     l.CompanyName,
		CreatedAt:   createdAt,
		URL:         l.URL,
		Title:       l.Title,
		Description: ToPlainText(l.Description),
	}

	var inserted bool
	err = tx.InTx(ctx, func(sp store.Store) error {
		var insErr error
		inserted, insErr = sp.Insert(ctx, job)
		return insErr
	})
	if err != nil {
		e.logger.Warn("insert failed, continuing", "jobId", jobID, "err", err)
		report.Failed++
		return nil
	}
	if !inserted {
		report.Duplicates++
		return nil
	}

	e.logger.Info("added new job", "jobId", jobID, "title", l.Title, "company", l.CompanyName)
	report.Inserted++
	return nil
}
