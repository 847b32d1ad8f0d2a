package event

import (
	"context"
	"sync/atomic"

	"github.com/viant/organizer/service/messaging"
)

// Publisher sends typed events to a queue and mirrors them to the untyped
// stream while that stream has a listener. Publishers owned by a Service
// skip their typed queue until a typed listener is set.
type Publisher[T any] struct {
	queue    messaging.Queue[Event[T]]
	anyQueue messaging.Queue[Event[any]]
	mirror   *atomic.Bool
	observed *atomic.Bool
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if p.anyQueue != nil && p.mirror != nil && p.mirror.Load() {
		mirrored := &Event[any]{
			Context:   event.Context,
			CreatedAt: event.CreatedAt,
			Metadata:  event.Metadata,
			Data:      event.Data,
		}
		if err := p.anyQueue.Publish(ctx, mirrored); err != nil {
			return err
		}
	}
	if p.observed != nil && !p.observed.Load() {
		return nil
	}
	return p.queue.Publish(ctx, event)
}

// Consume blocks for the next delivery; the caller settles it.
func (p *Publisher[T]) Consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

func (p *Publisher[T]) unobserve() {
	if p.observed != nil {
		p.observed.Store(false)
	}
}
