package organizer

import (
	"context"
	"time"
)

// Step outcomes reported to listeners.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Skip reasons.
const (
	ReasonGuard  = "guard"
	ReasonPolicy = "policy"
)

// StepEvent describes one transition of one entry during a run.
type StepEvent struct {
	RunID     string        `json:"runID"`
	Organizer string        `json:"organizer"`
	Step      string        `json:"step"`
	Index     int           `json:"index"`
	Status    string        `json:"status"`
	Reason    string        `json:"reason,omitempty"`
	Error     string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
	Err       error         `json:"-"`
}

// Listener receives step events synchronously on the run goroutine.
type Listener func(ctx context.Context, event *StepEvent)
