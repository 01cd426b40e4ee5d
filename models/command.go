package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdScrapeNow    CommandType = "scrape_now"
	CmdPause        CommandType = "pause"
	CmdResume       CommandType = "resume"
	CmdCheckWebsite CommandType = "check_websites"
)

// Command is an operational instruction queued in the ops store and
// picked up by the daemon's command poller.
type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	Mode     string `json:"mode,omitempty"`
	Location string `json:"location,omitempty"`
}
