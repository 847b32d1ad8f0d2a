package tracing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used for organizer spans.
const InstrumentationName = "github.com/viant/organizer"

var (
	providerOnce sync.Once
	providerErr  error
	mux          sync.Mutex
	provider     *sdktrace.TracerProvider
	output       io.Closer
)

// Init installs the stdout exporter as the global trace provider. When
// outputFile is empty spans go to os.Stdout. Only the first successful
// initialisation takes effect; Shutdown flushes it and closes outputFile.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	var f *os.File
	if outputFile != "" {
		var err error
		if f, err = os.Create(outputFile); err != nil {
			return err
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err == nil {
		var installed bool
		installed, err = installProvider(serviceName, serviceVersion, sdktrace.NewSimpleSpanProcessor(exporter))
		if installed && f != nil {
			mux.Lock()
			output = f
			mux.Unlock()
			return err
		}
	}
	if f != nil {
		_ = f.Close()
	}
	return err
}

// InitWithExporter installs the supplied exporter (OTLP, Jaeger, in-memory…)
// as the global trace provider. Only the first successful initialisation
// takes effect.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	_, err := installProvider(serviceName, serviceVersion, sdktrace.NewSimpleSpanProcessor(exporter))
	return err
}

func installProvider(serviceName, serviceVersion string, processor sdktrace.SpanProcessor) (installed bool, err error) {
	providerOnce.Do(func() {
		installed = true
		res, resErr := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if resErr != nil {
			providerErr = resErr
			return
		}
		mux.Lock()
		defer mux.Unlock()
		provider = sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(processor),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(provider)
	})
	return installed && providerErr == nil, providerErr
}

// Shutdown flushes the provider installed by Init or InitWithExporter and
// closes the span output file. It is a no-op when nothing was installed.
func Shutdown(ctx context.Context) error {
	mux.Lock()
	defer mux.Unlock()
	var err error
	if provider != nil {
		err = provider.Shutdown(ctx)
		provider = nil
	}
	if output != nil {
		err = errors.Join(err, output.Close())
		output = nil
	}
	return err
}

// Span wraps an OpenTelemetry span so callers do not import otel directly.
type Span struct {
	span trace.Span
}

// WithAttributes attaches string attributes to the span.
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.String(k, v))
	}
	s.span.SetAttributes(kvs...)
	return s
}

// WithInt attaches a single integer attribute to the span.
func (s *Span) WithInt(key string, value int) *Span {
	if s == nil {
		return s
	}
	s.span.SetAttributes(attribute.Int(key, value))
	return s
}

// SetStatus records err on the span, or an OK status when err is nil.
func (s *Span) SetStatus(err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// StartSpan starts an internal child span of whatever span ctx carries.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, span := otel.Tracer(InstrumentationName).Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return ctx, &Span{span: span}
}

// EndSpan records the outcome and ends the span.
func EndSpan(sp *Span, err error) {
	if sp == nil {
		return
	}
	sp.SetStatus(err)
	sp.span.End()
}
