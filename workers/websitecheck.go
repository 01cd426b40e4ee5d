package workers

import (
	"context"
	"log"
	"net/http"
	"time"

	"leadgen/models"
)

// WebsiteStore is what the checker needs from the lead store.
type WebsiteStore interface {
	WebsitesToCheck(ctx context.Context, olderThan time.Duration, limit int) ([]models.WebsiteTarget, error)
	SetWebsiteAlive(ctx context.Context, businessID string, alive bool) error
}

// WebsiteCheckWorker periodically verifies that stored website URLs
// still resolve. A business whose site has gone dark becomes an
// outreach lead again, so staleness here costs real leads.
type WebsiteCheckWorker struct {
	store     WebsiteStore
	client    *http.Client
	triggerCh chan struct{}
}

func NewWebsiteCheckWorker(store WebsiteStore, client *http.Client) *WebsiteCheckWorker {
	return &WebsiteCheckWorker{
		store:     store,
		client:    client,
		triggerCh: make(chan struct{}, 1),
	}
}

// Trigger requests an immediate batch outside the regular interval.
func (w *WebsiteCheckWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run checks batches of `batch` websites not verified within olderThan,
// every interval, until the context is canceled.
func (w *WebsiteCheckWorker) Run(ctx context.Context, olderThan time.Duration, batch int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runBatch(ctx, olderThan, batch)
		case <-w.triggerCh:
			w.runBatch(ctx, olderThan, batch)
		case <-ctx.Done():
			return
		}
	}
}

func (w *WebsiteCheckWorker) runBatch(ctx context.Context, olderThan time.Duration, batch int) {
	targets, err := w.store.WebsitesToCheck(ctx, olderThan, batch)
	if err != nil {
		log.Printf("Website check: query failed: %v", err)
		return
	}
	if len(targets) == 0 {
		return
	}

	log.Printf("Website check: verifying %d sites", len(targets))
	for _, t := range targets {
		if ctx.Err() != nil {
			return
		}
		alive := w.checkOne(ctx, t.URL)
		if err := w.store.SetWebsiteAlive(ctx, t.BusinessID, alive); err != nil {
			log.Printf("Website check: update failed for %s: %v", t.URL, err)
		}
		if !alive {
			log.Printf("Website check: %s appears dead", t.URL)
		}
	}
}

func (w *WebsiteCheckWorker) checkOne(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}
