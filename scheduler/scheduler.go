package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"leadgen/config"
	"leadgen/models"
	"leadgen/scraper"
	"leadgen/storage"
)

// Triggerable lets commands kick background workers manually.
type Triggerable interface {
	Trigger()
}

// Scheduler runs full scrapes on a cron expression or fixed interval
// and polls the ops store for operator commands.
type Scheduler struct {
	cfg          *config.Config
	orchestrator *scraper.Orchestrator
	ops          *storage.SQLiteStore
	cron         *cron.Cron
	ticker       *time.Ticker
	stopCh       chan struct{}
	stopped      bool

	websiteWorker Triggerable
}

func New(cfg *config.Config, orchestrator *scraper.Orchestrator, ops *storage.SQLiteStore) *Scheduler {
	return &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		ops:          ops,
		cron:         cron.New(),
		stopCh:       make(chan struct{}),
	}
}

func (s *Scheduler) SetWebsiteWorker(w Triggerable) {
	s.websiteWorker = w
}

func (s *Scheduler) Start(ctx context.Context) error {
	go s.pollCommands(ctx)

	switch {
	case s.cfg.Scheduler.Cron != "":
		log.Printf("Starting scheduler with cron: %s", s.cfg.Scheduler.Cron)
		_, err := s.cron.AddFunc(s.cfg.Scheduler.Cron, func() {
			if err := s.orchestrator.RunMode(ctx, "full"); err != nil {
				log.Printf("Scheduled run error: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	case s.cfg.Scheduler.Interval > 0:
		log.Printf("Starting scheduler with interval: %s", s.cfg.Scheduler.Interval)
		s.ticker = time.NewTicker(s.cfg.Scheduler.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					if err := s.orchestrator.RunMode(ctx, "full"); err != nil {
						log.Printf("Scheduled run error: %v", err)
					}
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	default:
		log.Println("No schedule configured, daemon will only respond to commands")
	}

	return nil
}

func (s *Scheduler) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}

func (s *Scheduler) pollCommands(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cmds, err := s.ops.GetPendingCommands()
			if err != nil {
				log.Printf("Error getting commands: %v", err)
				continue
			}
			for _, cmd := range cmds {
				log.Printf("Processing command: %s", cmd.Command)
				if err := s.handleCommand(ctx, &cmd); err != nil {
					log.Printf("Command error: %v", err)
				}
				if err := s.ops.MarkCommandProcessed(cmd.ID); err != nil {
					log.Printf("Error marking command processed: %v", err)
				}
			}
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) handleCommand(ctx context.Context, cmd *models.Command) error {
	params, err := s.ops.ParseCommandParams(cmd)
	if err != nil {
		return err
	}

	switch cmd.Command {
	case models.CmdScrapeNow:
		mode := params.Mode
		if mode == "" {
			mode = "full"
		}
		if params.Location != "" {
			return s.orchestrator.RunLocation(ctx, params.Location)
		}
		return s.orchestrator.RunMode(ctx, mode)
	case models.CmdPause:
		s.orchestrator.Pause()
		log.Println("Scraper paused")
	case models.CmdResume:
		s.orchestrator.Resume()
		log.Println("Scraper resumed")
	case models.CmdCheckWebsite:
		if s.websiteWorker != nil {
			s.websiteWorker.Trigger()
			log.Println("Website check triggered via command")
		}
	}
	return nil
}
