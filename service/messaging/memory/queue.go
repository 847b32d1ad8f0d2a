package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viant/organizer/internal/idgen"
	"github.com/viant/organizer/service/messaging"
)

var (
	// ErrProcessed is returned when a delivery is settled twice.
	ErrProcessed = errors.New("message already processed")
	// ErrRetriesExhausted is returned by Nack once a payload used up its
	// redeliveries; the payload is dropped.
	ErrRetriesExhausted = errors.New("message retries exhausted")
)

// Config controls an in-memory queue.
type Config struct {
	// MaxRetries caps redeliveries after a Nack.
	MaxRetries  int
	RetryDelay  time.Duration
	QueueBuffer int
}

func DefaultConfig() Config {
	return Config{MaxRetries: 3, RetryDelay: 100 * time.Millisecond, QueueBuffer: 100}
}

// Queue is a messaging.Queue over a buffered channel.
type Queue[T any] struct {
	config   Config
	messages chan *Message[T]
}

// NewQueue creates a queue; a non-positive buffer falls back to the default.
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{config: config, messages: make(chan *Message[T], config.QueueBuffer)}
}

func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return q.send(ctx, &Message[T]{id: idgen.New(), payload: *t, queue: q})
}

func (q *Queue[T]) send(ctx context.Context, msg *Message[T]) error {
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// redeliver schedules another delivery of m after RetryDelay.
func (q *Queue[T]) redeliver(m *Message[T], cause error) error {
	if m.attempt >= q.config.MaxRetries {
		return errors.Join(ErrRetriesExhausted, cause)
	}
	next := &Message[T]{id: m.id, payload: m.payload, queue: q, attempt: m.attempt + 1}
	time.AfterFunc(q.config.RetryDelay, func() {
		_ = q.send(context.Background(), next)
	})
	return nil
}

// Message is one delivery taken from a Queue. Redeliveries keep the id.
type Message[T any] struct {
	id      string
	payload T
	queue   *Queue[T]
	attempt int

	mux       sync.Mutex
	processed bool
}

func (m *Message[T]) ID() string { return m.id }

func (m *Message[T]) T() *T { return &m.payload }

func (m *Message[T]) settle() error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.processed {
		return ErrProcessed
	}
	m.processed = true
	return nil
}

func (m *Message[T]) Ack() error {
	return m.settle()
}

// Nack schedules a redelivery, or reports ErrRetriesExhausted with cause
// when none is left.
func (m *Message[T]) Nack(cause error) error {
	if err := m.settle(); err != nil {
		return err
	}
	return m.queue.redeliver(m, cause)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
