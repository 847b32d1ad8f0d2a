// Package organizer runs an ordered list of steps against one shared state.
//
// An Organizer holds a registration table of entries, each pairing a Step
// with a Guard. Call walks the table in declaration order, skips entries
// whose guard is false and stops at the first error, returning it exactly as
// the guard or step produced it:
//
//	var checkout = organizer.New[*Order]("checkout").Organize(
//		validate,
//		organizer.When[*Order](charge, organizer.If(func(o *Order) bool { return o.Total > 0 })),
//		[]any{reserve, notify},
//	)
//
//	err := checkout.Call(ctx, order)
//
// An *Organizer is itself a Step, so organizers nest. Declaring again with
// Organize replaces the whole table.
//
// Runs are optionally observed through tracing spans, a progress tracker
// carried in the context, a synchronous Listener and an event.Service. A
// policy.Policy in the context can refuse individual steps, which are then
// skipped.
package organizer
