package messaging

import (
	"context"
)

// Queue is a typed message queue.
type Queue[T any] interface {
	// Publish enqueues a copy of t.
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a single delivery taken from a Queue.
type Message[T any] interface {
	// ID returns the delivery identifier, stable across redeliveries.
	ID() string

	// T returns the payload.
	T() *T

	// Ack marks the delivery as handled.
	Ack() error

	// Nack marks the delivery as failed with cause. The queue may redeliver
	// it; an error means the payload was dropped.
	Nack(cause error) error
}
