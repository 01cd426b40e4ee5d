package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"leadgen/config"
	"leadgen/models"
	"leadgen/scraper"
	"leadgen/storage"
)

type fakeTriggerable struct {
	triggers int
}

func (f *fakeTriggerable) Trigger() { f.triggers++ }

func newTestScheduler(t *testing.T) (*Scheduler, *scraper.Orchestrator, *storage.SQLiteStore) {
	t.Helper()
	cfg := &config.Config{
		Tasks: config.TasksConfig{
			Locations:  []string{"Joliet, IL"},
			Categories: []string{"plumber"},
			Modes: map[string]config.ModeConfig{
				"test": {Locations: 1, Categories: 1, MaxPages: 1},
			},
		},
	}
	ops, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ops.db"))
	if err != nil {
		t.Fatalf("failed to open ops store: %v", err)
	}
	t.Cleanup(func() { ops.Close() })

	orch := scraper.NewOrchestrator(cfg, nil, nil)
	return New(cfg, orch, ops), orch, ops
}

func pendingCommand(t *testing.T, ops *storage.SQLiteStore, cmd models.CommandType, params *models.CommandParams) *models.Command {
	t.Helper()
	if err := ops.EnqueueCommand(cmd, params); err != nil {
		t.Fatalf("EnqueueCommand failed: %v", err)
	}
	pending, err := ops.GetPendingCommands()
	if err != nil {
		t.Fatalf("GetPendingCommands failed: %v", err)
	}
	if len(pending) == 0 {
		t.Fatal("enqueued command not pending")
	}
	return &pending[len(pending)-1]
}

func TestHandlePauseAndResume(t *testing.T) {
	s, orch, ops := newTestScheduler(t)
	ctx := context.Background()

	if err := s.handleCommand(ctx, pendingCommand(t, ops, models.CmdPause, nil)); err != nil {
		t.Fatalf("pause command failed: %v", err)
	}
	if !orch.IsPaused() {
		t.Error("orchestrator not paused after pause command")
	}

	if err := s.handleCommand(ctx, pendingCommand(t, ops, models.CmdResume, nil)); err != nil {
		t.Fatalf("resume command failed: %v", err)
	}
	if orch.IsPaused() {
		t.Error("orchestrator still paused after resume command")
	}
}

func TestHandleWebsiteCheckTrigger(t *testing.T) {
	s, _, ops := newTestScheduler(t)
	worker := &fakeTriggerable{}
	s.SetWebsiteWorker(worker)

	cmd := pendingCommand(t, ops, models.CmdCheckWebsite, nil)
	if err := s.handleCommand(context.Background(), cmd); err != nil {
		t.Fatalf("check_websites command failed: %v", err)
	}
	if worker.triggers != 1 {
		t.Errorf("expected 1 trigger, got %d", worker.triggers)
	}

	// No worker registered is not an error.
	s.SetWebsiteWorker(nil)
	if err := s.handleCommand(context.Background(), cmd); err != nil {
		t.Errorf("check_websites without a worker should be a no-op, got %v", err)
	}
}

func TestHandleScrapeNowWhilePaused(t *testing.T) {
	s, orch, ops := newTestScheduler(t)
	orch.Pause()

	cmd := pendingCommand(t, ops, models.CmdScrapeNow, &models.CommandParams{Mode: "test"})
	if err := s.handleCommand(context.Background(), cmd); err != nil {
		t.Fatalf("scrape_now while paused should be skipped quietly, got %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
	s.Stop()
}
