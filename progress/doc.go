// Package progress keeps aggregated step counters (invoked, completed,
// skipped, failed, running) for a run. The tracker travels in the context so
// nested organizers report into the same counters.
package progress
