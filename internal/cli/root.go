package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the organizer command tree. in feeds interactive
// prompts; out and errOut receive data and messages.
func NewRootCmd(version string, in io.Reader, out, errOut io.Writer) *cobra.Command {
	var jsonOutput bool
	rootCmd := &cobra.Command{
		Use:           "organizer",
		Short:         "Run declarative step organizers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	outputFn := func() *Output { return NewOutputWithWriters(jsonOutput, out, errOut) }

	rootCmd.AddCommand(
		NewRunCmd(outputFn, in),
		NewValidateCmd(outputFn),
		NewStepsCmd(outputFn),
	)
	return rootCmd
}
