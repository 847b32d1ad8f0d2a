// Package idgen generates run identifiers. Callers must treat the returned
// values as opaque strings.
package idgen
