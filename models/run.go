package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// RunSummary tracks one scrape task (location x category) from start to
// finalization. The orchestrator owns all mutation; a summary is created
// with status "running" and finalized exactly once.
type RunSummary struct {
	ID                        int64      `json:"id" db:"id"`
	Location                  string     `json:"location" db:"location"`
	Category                  string     `json:"category" db:"category"`
	Mode                      string     `json:"mode" db:"mode"`
	StartedAt                 time.Time  `json:"started_at" db:"started_at"`
	FinishedAt                *time.Time `json:"finished_at" db:"finished_at"`
	Status                    RunStatus  `json:"status" db:"status"`
	BusinessesFound           int        `json:"businesses_found" db:"businesses_found"`
	BusinessesWithoutWebsites int        `json:"businesses_without_websites" db:"businesses_without_websites"`
	NewBusinessesAdded        int        `json:"new_businesses_added" db:"new_businesses_added"`
	ErrorsCount               int        `json:"errors_count" db:"errors_count"`
	ErrorLog                  string     `json:"error_log,omitempty" db:"error_log"`
}

// Task names what this run scrapes, for log lines.
func (r *RunSummary) Task() string {
	return r.Location + " / " + r.Category
}
