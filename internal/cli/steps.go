package cli

import (
	"github.com/spf13/cobra"
	"github.com/viant/organizer/service/loader"
)

// NewStepsCmd creates the steps command.
func NewStepsCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List built-in step names",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := loader.New().Steps().Names()
			rows := make([][]string, len(names))
			for i, name := range names {
				rows[i] = []string{name}
			}
			outputFn().Print([]string{"STEP"}, rows, names)
			return nil
		},
	}
}
