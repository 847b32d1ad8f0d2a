// Command organizer runs declarative step organizers.
//
// Usage:
//
//	organizer [--json] <command> [flags]
//
// Commands:
//
//	run       run a definition against a JSON state
//	validate  report definition issues
//	steps     list built-in steps
package main

import (
	"fmt"
	"os"

	"github.com/viant/organizer/internal/cli"
)

// version is set with ldflags at build time.
var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version, os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
