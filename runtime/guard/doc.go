// Package guard compiles textual guard conditions into organizer guards over
// map state. Two languages ship by default: "path", a gjson path whose match
// must be truthy, and "lua", a sandboxed Lua expression or chunk.
package guard
