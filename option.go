package organizer

import (
	"log/slog"

	"github.com/viant/organizer/service/event"
)

type options struct {
	logger   *slog.Logger
	listener Listener
	events   *event.Service
}

// Option configures an Organizer.
type Option func(o *options)

// WithLogger sets the logger used for per-step debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithListener sets a synchronous step event callback.
func WithListener(listener Listener) Option {
	return func(o *options) {
		o.listener = listener
	}
}

// WithEvents publishes step events to service as event.Event[*StepEvent].
func WithEvents(service *event.Service) Option {
	return func(o *options) {
		o.events = service
	}
}
