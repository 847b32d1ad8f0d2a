// Package policy provides an optional per-run step approval layer carried in
// the context. A run without a policy executes every step whose guard passes.
package policy
