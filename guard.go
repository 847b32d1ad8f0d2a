package organizer

import "context"

// Guard decides whether an entry runs for the given state. An error aborts
// the run and is returned unchanged.
type Guard[T any] func(ctx context.Context, state T) (bool, error)

// Always is the guard of entries declared without a condition.
func Always[T any]() Guard[T] {
	return func(context.Context, T) (bool, error) { return true, nil }
}

// Never disables an entry.
func Never[T any]() Guard[T] {
	return func(context.Context, T) (bool, error) { return false, nil }
}

// If lifts an infallible predicate into a Guard.
func If[T any](predicate func(state T) bool) Guard[T] {
	return func(_ context.Context, state T) (bool, error) {
		return predicate(state), nil
	}
}

// Not negates guard.
func Not[T any](guard Guard[T]) Guard[T] {
	return func(ctx context.Context, state T) (bool, error) {
		ok, err := guard(ctx, state)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

// All is true when every guard is; evaluation stops at the first false or
// error.
func All[T any](guards ...Guard[T]) Guard[T] {
	return func(ctx context.Context, state T) (bool, error) {
		for _, guard := range guards {
			ok, err := guard(ctx, state)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any is true when some guard is; evaluation stops at the first true or
// error.
func Any[T any](guards ...Guard[T]) Guard[T] {
	return func(ctx context.Context, state T) (bool, error) {
		for _, guard := range guards {
			ok, err := guard(ctx, state)
			if err != nil || ok {
				return ok && err == nil, err
			}
		}
		return false, nil
	}
}
