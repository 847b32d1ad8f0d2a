// Package tracing connects organizer runs to OpenTelemetry. Every run and
// every invoked step gets a span; without an installed provider the spans
// are no-ops.
package tracing
