package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/organizer/internal/clock"
)

// Delta is an incremental counter change. Fields are signed.
type Delta struct {
	Total     int
	Completed int
	Skipped   int
	Failed    int
	Running   int
}

// Progress aggregates step counters of a root run and every organizer
// nested in it. It is safe for concurrent use.
type Progress struct {
	RunID     string
	Organizer string
	StartedAt time.Time

	// TotalSteps counts every invoke or skip decision. A guard error
	// decides nothing and is not counted.
	TotalSteps     int
	CompletedSteps int
	SkippedSteps   int
	FailedSteps    int
	RunningSteps   int

	mux      sync.Mutex
	onChange func(Snapshot)
}

// Snapshot is a read-only copy of the counters.
type Snapshot struct {
	RunID          string
	Organizer      string
	StartedAt      time.Time
	TotalSteps     int
	CompletedSteps int
	SkippedSteps   int
	FailedSteps    int
	RunningSteps   int
}

// Update applies d. The onChange callback, if any, runs outside the lock
// with the counters as they were right after this update.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.TotalSteps += d.Total
	p.CompletedSteps += d.Completed
	p.SkippedSteps += d.Skipped
	p.FailedSteps += d.Failed
	p.RunningSteps += d.Running
	snapshot := p.snapshot()
	cb := p.onChange
	p.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the current counters.
func (p *Progress) Snapshot() Snapshot {
	if p == nil {
		return Snapshot{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.snapshot()
}

func (p *Progress) snapshot() Snapshot {
	return Snapshot{
		RunID:          p.RunID,
		Organizer:      p.Organizer,
		StartedAt:      p.StartedAt,
		TotalSteps:     p.TotalSteps,
		CompletedSteps: p.CompletedSteps,
		SkippedSteps:   p.SkippedSteps,
		FailedSteps:    p.FailedSteps,
		RunningSteps:   p.RunningSteps,
	}
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker embeds a new tracker in a derived context.
func WithNewTracker(ctx context.Context, runID, organizer string, onChange func(Snapshot)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:     runID,
		Organizer: organizer,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext returns the tracker carried by ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies d to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
