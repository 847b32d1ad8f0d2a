// Package extension provides a run-time registry of named step factories,
// used to build organizers from declarative definitions. Factories receive
// the entry's input map; Typed decodes that map into a Go struct first.
package extension
