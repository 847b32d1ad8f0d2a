// Package cli implements the organizer command line tool.
//
// Commands are built by factory functions taking an outputFn closure, so the
// Output is created after persistent flags are parsed:
//
//   - run: load a definition, run it against a JSON state, print the state
//   - validate: report structural issues of a definition
//   - steps: list the built-in step names
//
// Data goes to stdout and messages to stderr, so the state can be piped:
//
//	organizer run -d checkout.yaml -s order.json | jq .
package cli
