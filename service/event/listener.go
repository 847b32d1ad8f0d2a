package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/organizer/service/messaging"
)

// Listener drains a publisher on its own goroutine until stopped. A handler
// panic is recovered and the event is redelivered until the queue gives up.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T]), logger *slog.Logger) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Stop cancels consumption and waits for the goroutine to exit.
func (l *Listener[T]) Stop() {
	l.cancel()
	<-l.done
}

func (l *Listener[T]) Start() {
	go func() {
		defer close(l.done)
		for {
			msg, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if l.ctx.Err() != nil {
					return
				}
				l.logger.Warn("event consume failed", "error", err)
				continue
			}
			if msg != nil {
				l.handle(msg)
			}
		}
	}()
}

func (l *Listener[T]) handle(msg messaging.Message[Event[T]]) {
	if err := l.deliver(msg.T()); err != nil {
		if nackErr := msg.Nack(err); nackErr != nil {
			l.logger.Warn("event dropped", "id", msg.ID(), "error", nackErr)
		}
		return
	}
	_ = msg.Ack()
}

func (l *Listener[T]) deliver(event *Event[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panic: %v", r)
		}
	}()
	l.handler(event)
	return nil
}
