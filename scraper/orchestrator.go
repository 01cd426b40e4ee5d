package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"leadgen/config"
	"leadgen/models"
)

// dedupCacheSize bounds the per-run externalId cache; a run never sees
// more than maxPages x itemsPerPage items.
const dedupCacheSize = 512

// RunStore persists run summaries: one create at task start, one
// finalize at task end.
type RunStore interface {
	CreateScrapeRun(ctx context.Context, run *models.RunSummary) error
	FinalizeScrapeRun(ctx context.Context, run *models.RunSummary) error
}

// LeadStore accepts extracted records. Upsert reports whether the
// record was inserted (new lead) or updated an existing row.
type LeadStore interface {
	Upsert(ctx context.Context, rec *models.BusinessRecord) (bool, error)
}

// OpsLogger mirrors run log lines into the operational store.
type OpsLogger interface {
	Log(runID *int64, level models.LogLevel, message, task string) error
}

// Orchestrator drives the task list: one browser session per task, one
// task at a time, each record persisted before the next item is
// requested.
type Orchestrator struct {
	cfg       *config.Config
	runs      RunStore
	leads     LeadStore
	ops       OpsLogger
	metrics   *Metrics
	extractor *Extractor

	// mu guards paused; the command poller flips it while scheduled
	// runs read it.
	mu     sync.Mutex
	paused bool
	// runMu serializes task lists: a cron tick and an operator command
	// must never drive two sessions at once.
	runMu sync.Mutex

	// openSession is swappable in tests.
	openSession func(headless bool) (SearchSession, error)
}

func NewOrchestrator(cfg *config.Config, runs RunStore, leads LeadStore) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		runs:      runs,
		leads:     leads,
		extractor: NewExtractor(cfg.Scraper.BlockedHosts),
		openSession: func(headless bool) (SearchSession, error) {
			return NewSession(cfg.Scraper, headless)
		},
	}
}

func (o *Orchestrator) SetOpsLogger(ops OpsLogger) { o.ops = ops }
func (o *Orchestrator) SetMetrics(m *Metrics)      { o.metrics = m }

func (o *Orchestrator) Pause() {
	o.mu.Lock()
	o.paused = true
	o.mu.Unlock()
}

func (o *Orchestrator) Resume() {
	o.mu.Lock()
	o.paused = false
	o.mu.Unlock()
}

func (o *Orchestrator) IsPaused() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paused
}

// RunMode runs every task the mode selects, sequentially, with a
// session break between tasks.
func (o *Orchestrator) RunMode(ctx context.Context, mode string) error {
	return o.runTasks(ctx, o.cfg.TasksForMode(mode), mode)
}

// RunLocation runs all configured categories against one location.
func (o *Orchestrator) RunLocation(ctx context.Context, location string) error {
	return o.runTasks(ctx, o.cfg.TasksForLocation(location), "full")
}

func (o *Orchestrator) runTasks(ctx context.Context, tasks []config.Task, mode string) error {
	if o.IsPaused() {
		log.Println("Scraper is paused, skipping run")
		return nil
	}
	if !o.runMu.TryLock() {
		log.Println("A scrape is already in progress, skipping run")
		return nil
	}
	defer o.runMu.Unlock()

	for i, task := range tasks {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.RunTask(ctx, task, mode); err != nil {
			log.Printf("Task %s / %s ended with error: %v", task.Location, task.Category, err)
		}
		if i < len(tasks)-1 && ctx.Err() == nil {
			log.Printf("Session break before next task")
			sleepRandom(ctx, o.cfg.Scraper.SessionBreakMin, o.cfg.Scraper.SessionBreakMax)
		}
	}
	return ctx.Err()
}

// RunTask executes one (location, category) task end to end. Whatever
// happens, the run summary created at the start is finalized exactly
// once before returning.
func (o *Orchestrator) RunTask(ctx context.Context, task config.Task, mode string) error {
	summary := &models.RunSummary{
		Location:  task.Location,
		Category:  task.Category,
		Mode:      mode,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := o.runs.CreateScrapeRun(ctx, summary); err != nil {
		return fmt.Errorf("create run record: %w", err)
	}

	o.logRun(summary, models.LogLevelInfo, fmt.Sprintf("Starting scrape: %s", summary.Task()))

	sess, err := o.openSession(o.cfg.HeadlessForMode(mode))
	if err != nil {
		o.finalize(ctx, summary, models.RunStatusFailed, err)
		return err
	}
	defer sess.Close()

	if err := o.scrapeTask(ctx, sess, task, mode, summary); err != nil {
		o.interrupt(ctx, summary, err)
		return err
	}

	o.finalize(ctx, summary, models.RunStatusCompleted, nil)
	return nil
}

func (o *Orchestrator) scrapeTask(ctx context.Context, sess SearchSession, task config.Task, mode string, summary *models.RunSummary) error {
	maxPages := o.cfg.Mode(mode).MaxPages

	page, err := sess.Search(ctx, task.Location, task.Category)
	if err != nil {
		return err
	}
	walker := NewWalker(page, maxPages, o.cfg.Scraper.ItemsPerPage)

	seen, err := lru.New[string, struct{}](dedupCacheSize)
	if err != nil {
		return err
	}
	pagesSeen := 0

	for {
		// Cooperative stop: honored between items so a half-built
		// record is never persisted.
		if ctx.Err() != nil {
			return ErrNavigation{Err: ctx.Err()}
		}

		item, err := walker.Next(ctx)
		if errors.Is(err, ErrExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
		if walker.PagesWalked() > pagesSeen {
			pagesSeen = walker.PagesWalked()
			o.metrics.IncPages()
		}

		sess.Delay(ctx)

		rec, err := o.extractor.Extract(ctx, item, task.Location, task.Category)
		if err != nil {
			var mandatory ErrMandatoryFieldMissing
			if errors.As(err, &mandatory) {
				summary.ErrorsCount++
				o.metrics.IncError(err)
				o.logRun(summary, models.LogLevelWarn, fmt.Sprintf("Skipping item: %v", err))
				continue
			}
			return err
		}
		o.metrics.IncItems()

		if _, dup := seen.Get(rec.ExternalID); dup {
			o.logRun(summary, models.LogLevelInfo, fmt.Sprintf("Duplicate in run, skipping: %s", rec.Name))
			continue
		}

		// Incremental save: the upsert must complete before the next
		// handle is requested.
		inserted, err := o.leads.Upsert(ctx, rec)
		if err != nil {
			summary.ErrorsCount++
			return ErrPersistence{Err: err}
		}
		seen.Add(rec.ExternalID, struct{}{})

		summary.BusinessesFound++
		if !rec.HasWebsite {
			summary.BusinessesWithoutWebsites++
		}
		result := "updated"
		if inserted {
			summary.NewBusinessesAdded++
			result = "inserted"
		}
		o.metrics.IncUpsert(result)
		o.logRun(summary, models.LogLevelInfo,
			fmt.Sprintf("Saved %s (%s): website=%v phone=%q", rec.Name, result, rec.HasWebsite, rec.Phone))

		recycled, err := sess.NoteExtraction(ctx)
		if err != nil {
			return err
		}
		if recycled {
			// The fresh browser invalidated the walker's page; re-issue
			// the search. Already-saved items are skipped by the dedup
			// cache and the idempotent upsert.
			page, err = sess.Search(ctx, task.Location, task.Category)
			if err != nil {
				return err
			}
			walker = NewWalker(page, maxPages, o.cfg.Scraper.ItemsPerPage)
			pagesSeen = 0
		}
	}
}

// interrupt finalizes an interrupted run: partial when anything new was
// saved, failed otherwise. Saved records are preserved either way.
func (o *Orchestrator) interrupt(ctx context.Context, summary *models.RunSummary, cause error) {
	status := models.RunStatusFailed
	if summary.NewBusinessesAdded > 0 {
		status = models.RunStatusPartial
	}
	o.metrics.IncError(cause)
	o.finalize(ctx, summary, status, cause)
}

func (o *Orchestrator) finalize(ctx context.Context, summary *models.RunSummary, status models.RunStatus, cause error) {
	if summary.FinishedAt != nil {
		return
	}
	now := time.Now()
	summary.FinishedAt = &now
	summary.Status = status
	if cause != nil {
		summary.ErrorLog = cause.Error()
	}

	// The run context is already canceled on a cooperative stop; the
	// summary row must still be written or the run stays "running"
	// forever.
	finCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := o.runs.FinalizeScrapeRun(finCtx, summary); err != nil {
		log.Printf("Error finalizing run %d: %v", summary.ID, err)
	}
	o.metrics.IncRun(string(status))
	o.logRun(summary, models.LogLevelInfo, fmt.Sprintf(
		"Run %s: %d found, %d without websites, %d new, %d errors",
		status, summary.BusinessesFound, summary.BusinessesWithoutWebsites,
		summary.NewBusinessesAdded, summary.ErrorsCount))
}

func (o *Orchestrator) logRun(summary *models.RunSummary, level models.LogLevel, message string) {
	log.Printf("[%s] %s: %s", level, summary.Task(), message)
	if o.ops != nil {
		o.ops.Log(&summary.ID, level, message, summary.Task())
	}
}
