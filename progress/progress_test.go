package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/organizer/internal/clock"
)

func TestWithNewTracker(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	clock.NowFunc = func() time.Time { return fixed }
	defer func() { clock.NowFunc = time.Now }()

	var seen []Snapshot
	ctx, tr := WithNewTracker(context.Background(), "run-1", "checkout", func(s Snapshot) {
		seen = append(seen, s)
	})
	require.NotNil(t, tr)

	UpdateCtx(ctx, Delta{Total: 1, Running: 1})
	UpdateCtx(ctx, Delta{Running: -1, Completed: 1})
	UpdateCtx(ctx, Delta{Total: 1, Skipped: 1})

	carried, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, tr, carried)
	assert.Equal(t, Snapshot{
		RunID:          "run-1",
		Organizer:      "checkout",
		StartedAt:      fixed,
		TotalSteps:     2,
		CompletedSteps: 1,
		SkippedSteps:   1,
	}, tr.Snapshot())
	require.Len(t, seen, 3)
	assert.Equal(t, 1, seen[0].RunningSteps)
	assert.Equal(t, 0, seen[1].RunningSteps)
}

func TestUpdateCtx_NoTracker(t *testing.T) {
	UpdateCtx(context.Background(), Delta{Total: 1})
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	var p *Progress
	p.Update(Delta{Total: 1})
	assert.Equal(t, Snapshot{}, p.Snapshot())
}

func TestProgress_ConcurrentUpdates(t *testing.T) {
	_, tr := WithNewTracker(context.Background(), "run", "org", nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Update(Delta{Total: 1, Completed: 1})
		}()
	}
	wg.Wait()
	snapshot := tr.Snapshot()
	assert.Equal(t, 50, snapshot.TotalSteps)
	assert.Equal(t, 50, snapshot.CompletedSteps)
}
