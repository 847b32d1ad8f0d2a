// Package model contains the declarative representation of an organizer: a
// named, ordered list of step declarations decoded from YAML or JSON.
//
// The steps list accepts the same shapes as organizer.Organize: bare step
// names, structured entries with a guard and input, nested lists that are
// flattened, and inline organizers that run as a single nested step.
package model
