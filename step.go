package organizer

import "context"

// Step is a unit of work invoked with the shared state. A non-nil error
// stops the run that invoked it.
type Step[T any] interface {
	Call(ctx context.Context, state T) error
}

// StepFunc adapts a function to Step.
type StepFunc[T any] func(ctx context.Context, state T) error

func (f StepFunc[T]) Call(ctx context.Context, state T) error {
	return f(ctx, state)
}
