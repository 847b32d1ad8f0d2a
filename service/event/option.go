package event

import (
	"log/slog"

	"github.com/viant/organizer/service/messaging/memory"
)

type Option func(s *Service)

// WithQueueConfig sets the per-stream memory queue configuration.
func WithQueueConfig(newConfig func(name string) memory.Config) Option {
	return func(s *Service) {
		s.newQueueConfig = newConfig
	}
}

// WithLogger sets the logger used by listeners.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
