package extension

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/organizer"
	"github.com/viant/structology/conv"
)

// Factory builds a step from an entry's input.
type Factory[T any] func(input map[string]interface{}) (organizer.Step[T], error)

// Steps is a named, concurrency-safe step factory registry.
type Steps[T any] struct {
	factories map[string]Factory[T]
	mux       sync.RWMutex
}

// NewSteps creates an empty registry.
func NewSteps[T any]() *Steps[T] {
	return &Steps[T]{factories: make(map[string]Factory[T])}
}

// Register binds name to a ready step; input is ignored.
func (s *Steps[T]) Register(name string, step organizer.Step[T]) {
	s.RegisterFactory(name, func(map[string]interface{}) (organizer.Step[T], error) {
		return step, nil
	})
}

// RegisterFactory binds name to factory, replacing any earlier binding.
func (s *Steps[T]) RegisterFactory(name string, factory Factory[T]) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.factories[name] = factory
}

// Lookup returns the factory registered under name.
func (s *Steps[T]) Lookup(name string) (Factory[T], bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	factory, ok := s.factories[name]
	return factory, ok
}

// Build creates the named step. An unknown name is not an error here: the
// returned step fails with ErrStepNotFound when invoked.
func (s *Steps[T]) Build(name string, input map[string]interface{}) (organizer.Step[T], error) {
	factory, ok := s.Lookup(name)
	if !ok {
		return &missingStep[T]{name: name}, nil
	}
	step, err := factory(input)
	if err != nil {
		return nil, fmt.Errorf("failed to build step %v: %w", name, err)
	}
	return &namedStep[T]{name: name, Step: step}, nil
}

// Names returns the registered names in lexical order.
func (s *Steps[T]) Names() []string {
	s.mux.RLock()
	ret := make([]string, 0, len(s.factories))
	for name := range s.factories {
		ret = append(ret, name)
	}
	s.mux.RUnlock()
	sort.Strings(ret)
	return ret
}

type namedStep[T any] struct {
	name string
	organizer.Step[T]
}

func (n *namedStep[T]) Name() string { return n.name }

type missingStep[T any] struct {
	name string
}

func (m *missingStep[T]) Name() string { return m.name }

func (m *missingStep[T]) Call(context.Context, T) error {
	return fmt.Errorf("%w: %v", ErrStepNotFound, m.name)
}

var converter = newConverter()

func newConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	return conv.NewConverter(options)
}

// Typed adapts fn to a Factory whose input map is decoded into I once, at
// build time.
func Typed[T, I any](fn func(ctx context.Context, state T, input *I) error) Factory[T] {
	return func(input map[string]interface{}) (organizer.Step[T], error) {
		decoded := new(I)
		if len(input) > 0 {
			if err := converter.Convert(input, decoded); err != nil {
				return nil, fmt.Errorf("failed to decode input into %T: %w", decoded, err)
			}
		}
		return organizer.StepFunc[T](func(ctx context.Context, state T) error {
			return fn(ctx, state, decoded)
		}), nil
	}
}
