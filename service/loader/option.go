package loader

import (
	"io"

	"github.com/viant/afs"
	"github.com/viant/organizer"
	"github.com/viant/organizer/extension"
	"github.com/viant/organizer/model"
	"github.com/viant/organizer/runtime/guard"
	"github.com/viant/organizer/service/action/input"
)

type Option func(s *Service)

// WithFS sets the storage service used by Load.
func WithFS(fs afs.Service) Option {
	return func(s *Service) {
		s.fs = fs
	}
}

// WithSteps replaces the step registry; built-in actions are still added.
func WithSteps(steps *extension.Steps[model.State]) Option {
	return func(s *Service) {
		s.steps = steps
	}
}

// WithGuards replaces the guard language registry.
func WithGuards(guards *guard.Registry) Option {
	return func(s *Service) {
		s.guards = guards
	}
}

// WithOrganizerOptions sets options applied to every built organizer,
// nested ones included.
func WithOrganizerOptions(options ...organizer.Option) Option {
	return func(s *Service) {
		s.options = append(s.options, options...)
	}
}

// WithOutput sets the writer of the printer action.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		s.output = w
	}
}

// WithInput sets the service behind the input actions.
func WithInput(in *input.Service) Option {
	return func(s *Service) {
		s.input = in
	}
}
