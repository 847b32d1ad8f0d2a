// Package env expands ${env.KEY} references in declarative documents.
package env

import (
	"os"
	"strings"
)

const prefix = "${env."

// Expand replaces every ${env.KEY} in value with the KEY environment
// variable, or with an empty string when it is unset. KEY may only contain
// letters, digits and '_'; anything else leaves the prefix as literal text.
// An unterminated reference is copied verbatim.
func Expand(value string) string {
	return ExpandWith(value, os.Getenv)
}

// ExpandWith is Expand with a custom lookup.
func ExpandWith(value string, lookup func(string) string) string {
	if !strings.Contains(value, prefix) {
		return value
	}
	var b strings.Builder
	rest := value
	for {
		idx := strings.Index(rest, prefix)
		if idx < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:idx])
		tail := rest[idx+len(prefix):]
		end := strings.IndexByte(tail, '}')
		if end < 0 {
			b.WriteString(rest[idx:])
			return b.String()
		}
		key := tail[:end]
		if !isKey(key) {
			b.WriteString(prefix)
			rest = tail
			continue
		}
		b.WriteString(lookup(key))
		rest = tail[end+1:]
	}
}

func isKey(key string) bool {
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !(c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}
