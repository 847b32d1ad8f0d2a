package loader

import "errors"

// ErrInvalidDefinition wraps decode and guard compile failures.
var ErrInvalidDefinition = errors.New("invalid organizer definition")
