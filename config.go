package organizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/organizer/internal/env"
	"github.com/viant/organizer/internal/log"
	"github.com/viant/organizer/policy"
	"github.com/viant/organizer/service/event"
	"github.com/viant/organizer/service/messaging/memory"
	"github.com/viant/organizer/tracing"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the ambient organizer setup.
// The zero value of each section keeps that concern disabled or at its
// package default.
type Config struct {
	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	// Policy is applied to runs started by the CLI; flags extend it.
	Policy *policy.Config `json:"policy,omitempty" yaml:"policy,omitempty"`
}

type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	// OutputFile receives stdout-exporter spans; empty writes to stdout.
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

type EventsConfig struct {
	Enabled     bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	QueueBuffer int  `json:"queueBuffer,omitempty" yaml:"queueBuffer,omitempty"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: log.FormatText},
		Tracing: TracingConfig{ServiceName: "organizer", ServiceVersion: "0.1.0"},
		Events:  EventsConfig{QueueBuffer: memory.DefaultConfig().QueueBuffer},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Logging.Level != "" && !log.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "", log.FormatText, log.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of text, json", c.Logging.Format))
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = append(errs, errors.New("tracing.serviceName is required when tracing is enabled"))
	}
	if c.Events.QueueBuffer < 0 {
		errs = append(errs, errors.New("events.queueBuffer must be >= 0"))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML config from any afs URL on top of DefaultConfig.
// ${env.KEY} references are expanded before decoding.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(env.Expand(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}

// Options turns c into organizer options. Enabling tracing installs the
// global tracer provider; the event service, when enabled, is returned so
// callers can attach listeners.
func (c *Config) Options() ([]Option, *event.Service, error) {
	if c == nil {
		c = DefaultConfig()
	}
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	options := []Option{WithLogger(log.New(c.Logging.Level, c.Logging.Format))}
	if c.Tracing.Enabled {
		if err := tracing.Init(c.Tracing.ServiceName, c.Tracing.ServiceVersion, c.Tracing.OutputFile); err != nil {
			return nil, nil, fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	var events *event.Service
	if c.Events.Enabled {
		buffer := c.Events.QueueBuffer
		events = event.New(event.WithQueueConfig(func(string) memory.Config {
			cfg := memory.DefaultConfig()
			if buffer > 0 {
				cfg.QueueBuffer = buffer
			}
			return cfg
		}))
		options = append(options, WithEvents(events))
	}
	return options, events, nil
}
