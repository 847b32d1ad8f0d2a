package organizer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/organizer/internal/clock"
	"github.com/viant/organizer/internal/idgen"
	"github.com/viant/organizer/internal/log"
	"github.com/viant/organizer/policy"
	"github.com/viant/organizer/progress"
	"github.com/viant/organizer/service/event"
	"github.com/viant/organizer/tracing"
)

// Organizer runs its registration table in order against one state. The
// zero value is an unnamed organizer with an empty table.
type Organizer[T any] struct {
	name    string
	mux     sync.RWMutex
	entries []Entry[T]
	options
}

var _ Step[any] = (*Organizer[any])(nil)

// New creates an organizer; name labels it in logs, spans and events.
func New[T any](name string, opts ...Option) *Organizer[T] {
	ret := &Organizer[T]{name: name}
	for _, opt := range opts {
		opt(&ret.options)
	}
	return ret
}

func (o *Organizer[T]) Name() string {
	return o.name
}

// Organize replaces the registration table with items, flattened and
// normalised. It accepts steps, step functions, entries, slices of those and
// nested []any. Any other value is kept and fails with ErrNotInvocable when
// a run reaches it.
func (o *Organizer[T]) Organize(items ...interface{}) *Organizer[T] {
	entries := appendEntries(make([]Entry[T], 0, len(items)), items)
	o.mux.Lock()
	o.entries = entries
	o.mux.Unlock()
	return o
}

// Organized returns a copy of the registration table, empty but never nil
// before the first Organize.
func (o *Organizer[T]) Organized() []Entry[T] {
	o.mux.RLock()
	defer o.mux.RUnlock()
	ret := make([]Entry[T], len(o.entries))
	copy(ret, o.entries)
	return ret
}

// Len returns the number of declared entries.
func (o *Organizer[T]) Len() int {
	o.mux.RLock()
	defer o.mux.RUnlock()
	return len(o.entries)
}

// Call runs the table as it was when Call started. Entries whose guard is
// false, or that the context policy refuses, are skipped without being
// invoked. The first guard or step error is returned unchanged and no later
// entry is evaluated.
func (o *Organizer[T]) Call(ctx context.Context, state T) (err error) {
	entries := o.Organized()
	ctx, r := o.begin(ctx, len(entries))
	defer func() { r.end(err) }()

	for i, entry := range entries {
		label := entry.Label(i)
		ok, guardErr := entry.Guard(ctx, state)
		if guardErr != nil {
			r.failed(ctx, i, label, ReasonGuard, 0, guardErr)
			return guardErr
		}
		if !ok {
			r.skipped(ctx, i, label, ReasonGuard)
			continue
		}
		if !r.policy.Approve(ctx, o.name+"."+label) {
			r.skipped(ctx, i, label, ReasonPolicy)
			continue
		}
		if err = r.invoke(ctx, i, label, entry, state); err != nil {
			return err
		}
	}
	return nil
}

func (o *Organizer[T]) loggerOrDefault() *slog.Logger {
	if o.options.logger != nil {
		return o.options.logger
	}
	return slog.Default()
}

type runIDKeyT struct{}

var runIDKey runIDKeyT

// RunIDFromContext returns the identifier of the run ctx belongs to. Nested
// organizers share the identifier of the outermost run.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

type run[T any] struct {
	organizer *Organizer[T]
	id        string
	logger    *slog.Logger
	policy    *policy.Policy
	span      *tracing.Span
}

func (o *Organizer[T]) begin(ctx context.Context, size int) (context.Context, *run[T]) {
	id, ok := RunIDFromContext(ctx)
	if !ok {
		id = idgen.New()
		ctx = context.WithValue(ctx, runIDKey, id)
	}
	ctx, span := tracing.StartSpan(ctx, "organizer/"+o.name)
	span.WithAttributes(map[string]string{"organizer.name": o.name, "organizer.run_id": id}).WithInt("organizer.entries", size)
	return ctx, &run[T]{
		organizer: o,
		id:        id,
		logger:    o.loggerOrDefault().With(log.Organizer(o.name), log.RunID(id)),
		policy:    policy.FromContext(ctx),
		span:      span,
	}
}

func (r *run[T]) end(err error) {
	tracing.EndSpan(r.span, err)
}

func (r *run[T]) invoke(ctx context.Context, index int, label string, entry Entry[T], state T) error {
	progress.UpdateCtx(ctx, progress.Delta{Total: 1, Running: 1})
	r.notify(ctx, &StepEvent{Index: index, Step: label, Status: StatusStarted})
	r.logger.Debug("step started", log.Step(label), log.Index(index))

	started := clock.Now()
	stepCtx, span := tracing.StartSpan(ctx, "step/"+label)
	span.WithAttributes(map[string]string{"step.name": label}).WithInt("step.index", index)
	var err error
	if entry.Step == nil {
		err = &NotInvocableError{Name: label}
	} else {
		err = entry.Step.Call(stepCtx, state)
	}
	tracing.EndSpan(span, err)
	elapsed := clock.Since(started)

	if err != nil {
		progress.UpdateCtx(ctx, progress.Delta{Running: -1, Failed: 1})
		r.failed(ctx, index, label, "", elapsed, err)
		return err
	}
	progress.UpdateCtx(ctx, progress.Delta{Running: -1, Completed: 1})
	r.notify(ctx, &StepEvent{Index: index, Step: label, Status: StatusCompleted, Elapsed: elapsed})
	r.logger.Debug("step completed", log.Step(label), log.Index(index), log.Duration(elapsed))
	return nil
}

func (r *run[T]) skipped(ctx context.Context, index int, label, reason string) {
	progress.UpdateCtx(ctx, progress.Delta{Total: 1, Skipped: 1})
	r.notify(ctx, &StepEvent{Index: index, Step: label, Status: StatusSkipped, Reason: reason})
	r.logger.Debug("step skipped", log.Step(label), log.Index(index), log.Reason(reason))
}

func (r *run[T]) failed(ctx context.Context, index int, label, reason string, elapsed time.Duration, err error) {
	evt := &StepEvent{Index: index, Step: label, Status: StatusFailed, Reason: reason, Error: err.Error(), Err: err, Elapsed: elapsed}
	r.notify(ctx, evt)
	r.logger.Debug("step failed", log.Step(label), log.Index(index), log.Reason(reason), log.Error(err))
}

// notify fills the run fields of e and hands it to the listener and the
// event service. Delivery problems are logged and never fail the run.
func (r *run[T]) notify(ctx context.Context, e *StepEvent) {
	e.RunID = r.id
	e.Organizer = r.organizer.name
	if listener := r.organizer.listener; listener != nil {
		listener(ctx, e)
	}
	service := r.organizer.events
	if service == nil || !event.Listening[*StepEvent](service) {
		return
	}
	evtCtx := &event.Context{
		RunID:       e.RunID,
		Organizer:   e.Organizer,
		Step:        e.Step,
		Index:       e.Index,
		EventType:   e.Status,
		TimeTakenMs: int(e.Elapsed.Milliseconds()),
	}
	if err := event.PublisherOf[*StepEvent](service).Publish(context.WithoutCancel(ctx), event.NewEvent(evtCtx, e)); err != nil {
		r.logger.Warn("step event not published", log.Step(e.Step), log.Error(err))
	}
}
