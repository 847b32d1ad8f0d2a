package organizer

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotInvocable matches errors returned when the runner reaches an entry
// that holds no usable step.
var ErrNotInvocable = errors.New("step is not invocable")

// NotInvocableError reports the value that was declared in place of a step.
type NotInvocableError struct {
	Name  string
	Value interface{}
}

func (e *NotInvocableError) Error() string {
	name := e.Name
	if name == "" {
		name = "entry"
	}
	if e.Value == nil {
		return fmt.Sprintf("cannot invoke %v: missing step", name)
	}
	return fmt.Sprintf("cannot invoke %v: %T is not a step", name, e.Value)
}

func (e *NotInvocableError) Is(target error) bool {
	return target == ErrNotInvocable
}

// invalidStep holds a declared value that is not a step.
type invalidStep[T any] struct {
	name  string
	value interface{}
}

func (s *invalidStep[T]) Call(context.Context, T) error {
	return &NotInvocableError{Name: s.name, Value: s.value}
}
