package extension

import "errors"

// ErrStepNotFound is returned when a run reaches a step whose name was never
// registered.
var ErrStepNotFound = errors.New("step not found")
