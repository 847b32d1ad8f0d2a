package idgen

import "github.com/google/uuid"

// NewFunc returns a new run identifier. Tests replace it to get stable ids.
var NewFunc = func() string { return uuid.NewString() }

// New returns a new globally unique run identifier.
func New() string { return NewFunc() }
