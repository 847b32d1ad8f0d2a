package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/organizer/service/loader"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd(outputFn func() *Output) *cobra.Command {
	var definition string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report structural issues of a definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			srv := loader.New()
			def, err := srv.LoadDefinition(cmd.Context(), normalize(definition))
			if err != nil {
				return err
			}
			issues := srv.Validate(def)
			if len(issues) == 0 {
				if _, err = srv.Build(def); err != nil {
					issues = append(issues, err)
				}
			}
			rows := make([][]string, len(issues))
			messages := make([]string, len(issues))
			for i, issue := range issues {
				rows[i] = []string{def.Name, issue.Error()}
				messages[i] = issue.Error()
			}
			if len(issues) == 0 {
				out.Message(fmt.Sprintf("%v: ok", def.Name))
				return nil
			}
			out.Print([]string{"DEFINITION", "ISSUE"}, rows, map[string]interface{}{"name": def.Name, "issues": messages})
			return fmt.Errorf("%v: %d issue(s)", def.Name, len(issues))
		},
	}
	cmd.Flags().StringVarP(&definition, "definition", "d", "", "definition URL or path")
	_ = cmd.MarkFlagRequired("definition")
	return cmd
}
